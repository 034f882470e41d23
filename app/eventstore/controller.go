/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package eventstore is the mongo-backed implementation of the
// detection engine's EventStore contract. It composes the per-entity
// controllers and owns the detections collection; the single-document
// conditional claim on the spot row is what serializes concurrent park
// confirmations.
package eventstore

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/car"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/detection"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/observation"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/reader"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/spot"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/dbs"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

const detectionCollection = "detections"

// Store implements detection.EventStore on top of the shared DB
// session. The corroboration window bounds how old a sighting may be
// and still count toward the quorum.
type Store struct {
	db     *dbs.DB
	window time.Duration
}

// New returns a store bound to the given session.
func New(db *dbs.DB, window time.Duration) *Store {
	return &Store{db: db, window: window}
}

// InsertObservation persists one raw sighting.
func (store *Store) InsertObservation(timeObserved time.Time, signalStrength float64, readerID int, tagID int) (detection.ObservationID, error) {

	observationID, err := observation.Insert(store.db, timeObserved, signalStrength, readerID, tagID)
	if err != nil {
		return "", err
	}

	return detection.ObservationID(observationID.Hex()), nil
}

// CompareObservation resolves the sighting's car and evaluates the
// 2-of-3 distinct-tag quorum at the sighting's reader. A nil comparison
// means the tag is not mounted on any registered car.
func (store *Store) CompareObservation(observationID detection.ObservationID) (*detection.Comparison, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.Compare-Observation.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.Compare-Observation.Success`, nil)
	mFindErr := metrics.GetOrRegisterGauge(`SpotASpot.Compare-Observation.Find-Error`, nil)

	event, err := store.findObservation(observationID)
	if err != nil {
		mFindErr.Update(1)
		return nil, err
	}

	sightedCar, err := car.FindByTag(store.db, event.TagID)
	if err != nil {
		if errors.Cause(err) == web.ErrNotFound {
			mSuccess.Update(1)
			return nil, nil
		}
		mFindErr.Update(1)
		return nil, err
	}

	comparison := detection.Comparison{
		ReaderID: event.ReaderID,
		CarID:    sightedCar.ID,
	}

	sightingReader, err := reader.FindByID(store.db, event.ReaderID)
	if err != nil {
		mFindErr.Update(1)
		return nil, errors.Wrapf(err, "unable to resolve reader %d", event.ReaderID)
	}

	watchedSpot, err := spot.FindByID(store.db, sightingReader.SpotID)
	if err != nil {
		mFindErr.Update(1)
		return nil, errors.Wrapf(err, "unable to resolve spot %d", sightingReader.SpotID)
	}
	if watchedSpot.IsOccupied && watchedSpot.ParkedCarID != nil && *watchedSpot.ParkedCarID == sightedCar.ID {
		comparison.IsCarParked = true
		comparison.AlreadyParked = true
		mSuccess.Update(1)
		return &comparison, nil
	}

	since := event.TimeObserved.Add(-store.window)
	sightings, err := observation.FindRelevantByTags(store.db, sightedCar.TagIDs(), event.ReaderID, since)
	if err != nil {
		mFindErr.Update(1)
		return nil, err
	}

	distinct := make(map[int]bool)
	for _, sighting := range sightings {
		distinct[sighting.TagID] = true
	}
	comparison.IsCarParked = len(distinct) >= 2

	mSuccess.Update(1)
	return &comparison, nil
}

// ObservationsSupportingPark returns the newest still-relevant sighting
// per distinct tag of the car, at most three rows.
func (store *Store) ObservationsSupportingPark(carID int) ([]detection.SupportingObservation, error) {

	parkedCar, err := car.FindByID(store.db, carID)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve car %d", carID)
	}

	since := time.Now().Add(-store.window)
	sightings, err := observation.FindRelevantByCarTags(store.db, parkedCar.TagIDs(), since)
	if err != nil {
		return nil, err
	}

	// sightings arrive newest first; keep the first row per tag
	seen := make(map[int]bool)
	var supporting []detection.SupportingObservation
	for _, sighting := range sightings {
		if seen[sighting.TagID] {
			continue
		}
		seen[sighting.TagID] = true
		supporting = append(supporting, detection.SupportingObservation{
			TagID:         sighting.TagID,
			ObservationID: detection.ObservationID(sighting.ID.Hex()),
		})
		if len(supporting) == 3 {
			break
		}
	}

	return supporting, nil
}

// ConfirmParkAndUpdateSpot commits a park: claims the reader's spot,
// records the detection, and tombstones the evidence. The conditional
// spot claim is the race gate; a (nil, nil) return means another
// confirmation got there first.
func (store *Store) ConfirmParkAndUpdateSpot(readerID int, observation1 detection.ObservationID, observation2 detection.ObservationID, observation3 *detection.ObservationID) (*detection.ParkConfirmation, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.Confirm-Park.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.Confirm-Park.Success`, nil)
	mInsertErr := metrics.GetOrRegisterGauge(`SpotASpot.Confirm-Park.Insert-Error`, nil)
	mInsertLatency := metrics.GetOrRegisterTimer(`SpotASpot.Confirm-Park.Insert-Latency`, nil)

	sightingReader, err := reader.FindByID(store.db, readerID)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve reader %d", readerID)
	}

	trigger, err := store.findObservation(observation1)
	if err != nil {
		return nil, err
	}
	parkedCar, err := car.FindByTag(store.db, trigger.TagID)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve car for tag %d", trigger.TagID)
	}

	evidence := []bson.ObjectId{bson.ObjectIdHex(string(observation1))}
	for _, extra := range []*detection.ObservationID{&observation2, observation3} {
		if extra == nil {
			continue
		}
		if !bson.IsObjectIdHex(string(*extra)) {
			return nil, errors.Wrapf(web.ErrInvalidID, "observation id %s", *extra)
		}
		evidence = append(evidence, bson.ObjectIdHex(string(*extra)))
	}

	claimed, err := spot.Claim(store.db, sightingReader.SpotID, parkedCar.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}

	record := DetectionRecord{
		ID:             bson.NewObjectId(),
		ReaderID:       readerID,
		CarID:          parkedCar.ID,
		SpotID:         sightingReader.SpotID,
		ObservationIDs: evidence,
		IsCarParked:    true,
		CreatedAt:      time.Now(),
	}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Insert(record)
	}

	insertTimer := time.Now()
	if err := store.db.Execute(detectionCollection, execFunc); err != nil {
		mInsertErr.Update(1)
		// roll the claim back so the spot does not stay occupied
		// without a detection record behind it
		if releaseErr := spot.Release(store.db, sightingReader.SpotID); releaseErr != nil {
			log.WithFields(log.Fields{
				"Method": "eventstore.ConfirmParkAndUpdateSpot",
				"SpotID": sightingReader.SpotID,
				"Error":  releaseErr.Error(),
			}).Error("unable to release spot after failed detection insert")
		}
		return nil, errors.Wrap(err, "db.detections.insert()")
	}
	mInsertLatency.Update(time.Since(insertTimer))

	if err := observation.MarkIrrelevant(store.db, evidence); err != nil {
		// the park is committed; stale evidence only risks a duplicate
		// quorum that the spot claim will reject anyway
		log.WithFields(log.Fields{
			"Method":      "eventstore.ConfirmParkAndUpdateSpot",
			"DetectionID": record.ID.Hex(),
			"Error":       err.Error(),
		}).Warn("unable to tombstone evidence after confirmation")
	}

	mSuccess.Update(1)
	return &detection.ParkConfirmation{
		DetectionID: detection.DetectionID(record.ID.Hex()),
		CarID:       parkedCar.ID,
		SpotID:      sightingReader.SpotID,
	}, nil
}

// RetireObservation tombstones one sighting.
func (store *Store) RetireObservation(observationID detection.ObservationID) error {

	if !bson.IsObjectIdHex(string(observationID)) {
		return errors.Wrapf(web.ErrInvalidID, "observation id %s", observationID)
	}

	return observation.MarkIrrelevant(store.db, []bson.ObjectId{bson.ObjectIdHex(string(observationID))})
}

// SpotStatuses returns the occupancy of every spot the given reader
// watches, keyed by spot id.
func (store *Store) SpotStatuses(readerID int) (map[int]spot.Status, error) {
	return spot.StatusByReader(store.db, readerID)
}

// ReadersInRadius lists the readers within the given planar radius of
// the center point.
func (store *Store) ReadersInRadius(latitude float64, longitude float64, radius float64) ([]reader.Summary, error) {
	return reader.InRadius(store.db, latitude, longitude, radius)
}

func (store *Store) findObservation(observationID detection.ObservationID) (observation.ObservationEvent, error) {

	if !bson.IsObjectIdHex(string(observationID)) {
		return observation.ObservationEvent{}, errors.Wrapf(web.ErrInvalidID, "observation id %s", observationID)
	}

	return observation.FindByID(store.db, bson.ObjectIdHex(string(observationID)))
}
