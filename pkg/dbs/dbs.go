/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package dbs

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const countersCollection = "counters"

// DB wraps the master mgo session. Every Execute call runs against a
// fresh copy of the session so a severed connection is recovered before
// the next operation instead of surfacing to every caller.
type DB struct {
	session *mgo.Session
	name    string
}

// NewSession dials the database and returns the master session wrapper.
func NewSession(host string, name string, timeout time.Duration) (*DB, error) {
	session, err := mgo.DialWithTimeout(host, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to dial database at %s", host)
	}

	session.SetMode(mgo.Monotonic, true)

	return &DB{session: session, name: name}, nil
}

// Close shuts down the master session.
func (db *DB) Close() {
	db.session.Close()
}

// Execute runs execFunc against the named collection on a copy of the
// master session. If the operation fails for anything other than a
// logical result (not found, duplicate key), the master socket is
// refreshed and the operation retried once.
func (db *DB) Execute(collectionName string, execFunc func(collection *mgo.Collection) error) error {

	run := func() error {
		copySession := db.session.Copy()
		defer copySession.Close()
		return execFunc(copySession.DB(db.name).C(collectionName))
	}

	err := run()
	if err == nil || err == mgo.ErrNotFound || mgo.IsDup(err) {
		return err
	}

	if pingErr := db.session.Ping(); pingErr != nil {
		log.WithFields(log.Fields{
			"Method":     "dbs.Execute",
			"Collection": collectionName,
			"Error":      pingErr.Error(),
		}).Warn("database connection lost, refreshing session")

		db.session.Refresh()

		retryErr := run()
		if retryErr != nil {
			return errors.Wrapf(retryErr, "db.%s operation failed after reconnect", collectionName)
		}
		return nil
	}

	return err
}

// NextSequence returns the next integer id for the named counter.
// Backed by an atomic findAndModify upsert on the counters collection.
func (db *DB) NextSequence(counterName string) (int, error) {

	var counter struct {
		Seq int `bson:"seq"`
	}

	change := mgo.Change{
		Update:    bson.M{"$inc": bson.M{"seq": 1}},
		Upsert:    true,
		ReturnNew: true,
	}

	execFunc := func(collection *mgo.Collection) error {
		_, err := collection.Find(bson.M{"_id": counterName}).Apply(change, &counter)
		return err
	}

	if err := db.Execute(countersCollection, execFunc); err != nil {
		return 0, errors.Wrapf(err, "db.counters.Apply(%s)", counterName)
	}

	return counter.Seq, nil
}
