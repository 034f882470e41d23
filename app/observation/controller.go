/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package observation

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/dbs"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

const observationCollection = "observations"

// Insert persists a new observation event with is_relevant set. Exactly
// one row is created per call.
func Insert(dbs *dbs.DB, timeObserved time.Time, signalStrength float64, readerID int, tagID int) (bson.ObjectId, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.Insert-Observation.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.Insert-Observation.Success`, nil)
	mInsertErr := metrics.GetOrRegisterGauge(`SpotASpot.Insert-Observation.Insert-Error`, nil)
	mInsertLatency := metrics.GetOrRegisterTimer(`SpotASpot.Insert-Observation.Insert-Latency`, nil)

	event := ObservationEvent{
		ID:             bson.NewObjectId(),
		TimeObserved:   timeObserved,
		SignalStrength: signalStrength,
		ReaderID:       readerID,
		TagID:          tagID,
		IsRelevant:     true,
	}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Insert(event)
	}

	insertTimer := time.Now()
	if err := dbs.Execute(observationCollection, execFunc); err != nil {
		mInsertErr.Update(1)
		return "", errors.Wrap(err, "db.observations.insert()")
	}
	mInsertLatency.Update(time.Since(insertTimer))

	mSuccess.Update(1)
	return event.ID, nil
}

// FindByID retrieves one observation event.
func FindByID(dbs *dbs.DB, observationID bson.ObjectId) (ObservationEvent, error) {

	var found ObservationEvent

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(bson.M{"_id": observationID}).One(&found)
	}

	if err := dbs.Execute(observationCollection, execFunc); err != nil {
		if err == mgo.ErrNotFound {
			return ObservationEvent{}, web.ErrNotFound
		}
		return ObservationEvent{}, errors.Wrap(err, "db.observations.find()")
	}

	return found, nil
}

// FindRelevantByTags returns the still-relevant sightings of any of the
// given tags at one reader since the given time, newest first. The
// caller owns the distinct-tag counting.
func FindRelevantByTags(dbs *dbs.DB, tagIDs []int, readerID int, since time.Time) ([]ObservationEvent, error) {

	var events []ObservationEvent

	selector := bson.M{
		"reader_id":     readerID,
		"tag_id":        bson.M{"$in": tagIDs},
		"is_relevant":   true,
		"time_observed": bson.M{"$gte": since},
	}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(selector).Sort("-time_observed").All(&events)
	}

	if err := dbs.Execute(observationCollection, execFunc); err != nil {
		return nil, errors.Wrap(err, "db.observations.find()")
	}

	return events, nil
}

// FindRelevantByCarTags is the car-wide variant used to attribute
// supporting evidence; it does not restrict by reader.
func FindRelevantByCarTags(dbs *dbs.DB, tagIDs []int, since time.Time) ([]ObservationEvent, error) {

	var events []ObservationEvent

	selector := bson.M{
		"tag_id":        bson.M{"$in": tagIDs},
		"is_relevant":   true,
		"time_observed": bson.M{"$gte": since},
	}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(selector).Sort("-time_observed").All(&events)
	}

	if err := dbs.Execute(observationCollection, execFunc); err != nil {
		return nil, errors.Wrap(err, "db.observations.find()")
	}

	return events, nil
}

// MarkIrrelevant tombstones the given observation events so they are
// excluded from all future corroboration queries. The rows themselves
// are preserved for audit history.
func MarkIrrelevant(dbs *dbs.DB, observationIDs []bson.ObjectId) error {

	metrics.GetOrRegisterGauge(`SpotASpot.Retire-Observation.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.Retire-Observation.Success`, nil)
	mUpdateErr := metrics.GetOrRegisterGauge(`SpotASpot.Retire-Observation.Update-Error`, nil)

	if len(observationIDs) == 0 {
		return nil
	}

	selector := bson.M{"_id": bson.M{"$in": observationIDs}}
	update := bson.M{"$set": bson.M{"is_relevant": false}}

	execFunc := func(collection *mgo.Collection) error {
		_, err := collection.UpdateAll(selector, update)
		return err
	}

	if err := dbs.Execute(observationCollection, execFunc); err != nil {
		mUpdateErr.Update(1)
		return errors.Wrap(err, "db.observations.UpdateAll()")
	}

	mSuccess.Update(1)
	return nil
}
