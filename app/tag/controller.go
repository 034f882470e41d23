/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tag

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/dbs"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

const tagCollection = "tags"

// Insert registers a physical tag id. Registering an id twice is an
// input error, not a crash.
func Insert(dbs *dbs.DB, tagID int) error {

	metrics.GetOrRegisterGauge(`SpotASpot.Insert-Tag.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.Insert-Tag.Success`, nil)
	mInsertErr := metrics.GetOrRegisterGauge(`SpotASpot.Insert-Tag.Insert-Error`, nil)
	mInsertLatency := metrics.GetOrRegisterTimer(`SpotASpot.Insert-Tag.Insert-Latency`, nil)

	if tagID <= 0 {
		return errors.Wrap(web.ErrInvalidInput, "tag id must be a positive integer")
	}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Insert(Tag{ID: tagID, IssuedAt: time.Now()})
	}

	insertTimer := time.Now()
	if err := dbs.Execute(tagCollection, execFunc); err != nil {
		if mgo.IsDup(err) {
			return errors.Wrapf(web.ErrInvalidInput, "tag %d is already registered", tagID)
		}
		mInsertErr.Update(1)
		return errors.Wrap(err, "db.tags.insert()")
	}
	mInsertLatency.Update(time.Since(insertTimer))

	mSuccess.Update(1)
	return nil
}

// Exists reports whether a tag id has been issued.
func Exists(dbs *dbs.DB, tagID int) (bool, error) {

	var found Tag

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(bson.M{"_id": tagID}).One(&found)
	}

	if err := dbs.Execute(tagCollection, execFunc); err != nil {
		if err == mgo.ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "db.tags.find()")
	}

	return true, nil
}

// Delete removes a tag registration. Administrative only.
func Delete(dbs *dbs.DB, tagID int) error {

	execFunc := func(collection *mgo.Collection) error {
		return collection.Remove(bson.M{"_id": tagID})
	}

	if err := dbs.Execute(tagCollection, execFunc); err != nil {
		if err == mgo.ErrNotFound {
			return web.ErrNotFound
		}
		return errors.Wrap(err, "db.tags.remove()")
	}

	return nil
}
