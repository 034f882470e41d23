/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package reader

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/spot"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/dbs"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/geo"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

const readerCollection = "readers"

// Insert installs a new reader and the spot it watches. Returns the new
// reader id.
func Insert(dbs *dbs.DB, latitude float64, longitude float64, readerRange float64, frontBearing float64) (int, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.Insert-Reader.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.Insert-Reader.Success`, nil)
	mInsertErr := metrics.GetOrRegisterGauge(`SpotASpot.Insert-Reader.Insert-Error`, nil)
	mInsertLatency := metrics.GetOrRegisterTimer(`SpotASpot.Insert-Reader.Insert-Latency`, nil)

	if readerRange <= 0 {
		return -1, errors.Wrap(web.ErrInvalidInput, "reader range must be positive")
	}

	readerID, err := dbs.NextSequence(readerCollection)
	if err != nil {
		mInsertErr.Update(1)
		return -1, errors.Wrap(err, "unable to allocate reader id")
	}

	spotID, err := dbs.NextSequence("spots")
	if err != nil {
		mInsertErr.Update(1)
		return -1, errors.Wrap(err, "unable to allocate spot id")
	}

	newReader := Reader{
		ID:           readerID,
		Latitude:     latitude,
		Longitude:    longitude,
		Range:        readerRange,
		FrontBearing: frontBearing,
		SpotID:       spotID,
	}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Insert(newReader)
	}

	insertTimer := time.Now()
	if err := dbs.Execute(readerCollection, execFunc); err != nil {
		mInsertErr.Update(1)
		return -1, errors.Wrap(err, "db.readers.insert()")
	}

	newSpot := spot.Spot{
		ID:        spotID,
		ReaderID:  readerID,
		Latitude:  latitude,
		Longitude: longitude,
	}
	if err := spot.Insert(dbs, newSpot); err != nil {
		mInsertErr.Update(1)
		return -1, errors.Wrapf(err, "unable to create spot for reader %d", readerID)
	}
	mInsertLatency.Update(time.Since(insertTimer))

	mSuccess.Update(1)
	return readerID, nil
}

// FindByID retrieves one reader.
func FindByID(dbs *dbs.DB, readerID int) (Reader, error) {

	var found Reader

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(bson.M{"_id": readerID}).One(&found)
	}

	if err := dbs.Execute(readerCollection, execFunc); err != nil {
		if err == mgo.ErrNotFound {
			return Reader{}, web.ErrNotFound
		}
		return Reader{}, errors.Wrap(err, "db.readers.find()")
	}

	return found, nil
}

// InRadius returns every reader within the given planar radius of the
// center point. Filtering happens application side on the summary
// projection; the reader population is small and index-friendly
// geo queries would change the distance semantics.
func InRadius(dbs *dbs.DB, latitude float64, longitude float64, radius float64) ([]Summary, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.Readers-InRadius.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.Readers-InRadius.Success`, nil)
	mFindErr := metrics.GetOrRegisterGauge(`SpotASpot.Readers-InRadius.Find-Error`, nil)
	mFindLatency := metrics.GetOrRegisterTimer(`SpotASpot.Readers-InRadius.Find-Latency`, nil)

	var all []Summary

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(nil).All(&all)
	}

	findTimer := time.Now()
	if err := dbs.Execute(readerCollection, execFunc); err != nil {
		mFindErr.Update(1)
		return nil, errors.Wrap(err, "db.readers.find.All()")
	}
	mFindLatency.Update(time.Since(findTimer))

	inRange := []Summary{}
	for _, item := range all {
		if geo.InRange(latitude, longitude, item.Latitude, item.Longitude, radius) {
			inRange = append(inRange, item)
		}
	}

	mSuccess.Update(1)
	return inRange, nil
}
