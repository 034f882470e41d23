/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package detection_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/detection"
)

// fakeEventStore is an in-memory EventStore with the same semantics the
// mongo-backed store provides: distinct-tag quorum counting, tombstoned
// evidence, and a first-writer-wins spot claim. All mutation happens
// under one mutex so concurrent engine calls observe atomic transitions.
type fakeEventStore struct {
	mutex  sync.Mutex
	window time.Duration

	tagToCar   map[int]int   // mounted tag -> car
	carTags    map[int][]int // car -> its three tags
	readerSpot map[int]int   // reader -> spot
	spotCar    map[int]int   // occupied spot -> parked car

	observations []*fakeObservation
	detections   []fakeDetection

	nextObservationSeq int
	nextDetectionSeq   int

	insertErr  error
	compareErr error
}

type fakeObservation struct {
	id           detection.ObservationID
	timeObserved time.Time
	readerID     int
	tagID        int
	isRelevant   bool
}

type fakeDetection struct {
	id       detection.DetectionID
	carID    int
	spotID   int
	readerID int
	evidence []detection.ObservationID
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		window:     5 * time.Minute,
		tagToCar:   make(map[int]int),
		carTags:    make(map[int][]int),
		readerSpot: make(map[int]int),
		spotCar:    make(map[int]int),
	}
}

func (store *fakeEventStore) registerCar(carID int, tagIDs ...int) {
	store.carTags[carID] = tagIDs
	for _, tagID := range tagIDs {
		store.tagToCar[tagID] = carID
	}
}

func (store *fakeEventStore) registerReader(readerID int, spotID int) {
	store.readerSpot[readerID] = spotID
}

func (store *fakeEventStore) InsertObservation(timeObserved time.Time, signalStrength float64, readerID int, tagID int) (detection.ObservationID, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.insertErr != nil {
		return "", store.insertErr
	}

	store.nextObservationSeq++
	event := &fakeObservation{
		id:           detection.ObservationID(fmt.Sprintf("obs-%d", store.nextObservationSeq)),
		timeObserved: timeObserved,
		readerID:     readerID,
		tagID:        tagID,
		isRelevant:   true,
	}
	store.observations = append(store.observations, event)
	return event.id, nil
}

func (store *fakeEventStore) CompareObservation(observationID detection.ObservationID) (*detection.Comparison, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.compareErr != nil {
		return nil, store.compareErr
	}

	trigger := store.findLocked(observationID)
	if trigger == nil {
		return nil, errors.New("observation not found")
	}

	carID, mounted := store.tagToCar[trigger.tagID]
	if !mounted {
		return nil, nil
	}

	comparison := detection.Comparison{
		ReaderID: trigger.readerID,
		CarID:    carID,
	}

	spotID, ok := store.readerSpot[trigger.readerID]
	if ok {
		if parkedCar, occupied := store.spotCar[spotID]; occupied && parkedCar == carID {
			comparison.IsCarParked = true
			comparison.AlreadyParked = true
			return &comparison, nil
		}
	}

	distinct := store.distinctRelevantTagsLocked(carID, trigger.readerID, trigger.timeObserved)
	comparison.IsCarParked = len(distinct) >= 2
	return &comparison, nil
}

func (store *fakeEventStore) ObservationsSupportingPark(carID int) ([]detection.SupportingObservation, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	carTagSet := make(map[int]bool)
	for _, tagID := range store.carTags[carID] {
		carTagSet[tagID] = true
	}

	// newest first, one row per distinct tag
	seen := make(map[int]bool)
	var supporting []detection.SupportingObservation
	for i := len(store.observations) - 1; i >= 0; i-- {
		event := store.observations[i]
		if !event.isRelevant || !carTagSet[event.tagID] || seen[event.tagID] {
			continue
		}
		seen[event.tagID] = true
		supporting = append(supporting, detection.SupportingObservation{
			TagID:         event.tagID,
			ObservationID: event.id,
		})
	}
	return supporting, nil
}

func (store *fakeEventStore) ConfirmParkAndUpdateSpot(readerID int, observation1 detection.ObservationID, observation2 detection.ObservationID, observation3 *detection.ObservationID) (*detection.ParkConfirmation, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	spotID, ok := store.readerSpot[readerID]
	if !ok {
		return nil, errors.New("reader has no spot")
	}
	if _, occupied := store.spotCar[spotID]; occupied {
		return nil, nil
	}

	trigger := store.findLocked(observation1)
	if trigger == nil {
		return nil, errors.New("observation not found")
	}
	carID, mounted := store.tagToCar[trigger.tagID]
	if !mounted {
		return nil, errors.New("observation tag has no car")
	}

	evidence := []detection.ObservationID{observation1, observation2}
	if observation3 != nil {
		evidence = append(evidence, *observation3)
	}

	store.spotCar[spotID] = carID
	store.nextDetectionSeq++
	record := fakeDetection{
		id:       detection.DetectionID(fmt.Sprintf("det-%d", store.nextDetectionSeq)),
		carID:    carID,
		spotID:   spotID,
		readerID: readerID,
		evidence: evidence,
	}
	store.detections = append(store.detections, record)

	for _, observationID := range evidence {
		if event := store.findLocked(observationID); event != nil {
			event.isRelevant = false
		}
	}

	return &detection.ParkConfirmation{
		DetectionID: record.id,
		CarID:       carID,
		SpotID:      spotID,
	}, nil
}

func (store *fakeEventStore) RetireObservation(observationID detection.ObservationID) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	event := store.findLocked(observationID)
	if event == nil {
		return errors.New("observation not found")
	}
	event.isRelevant = false
	return nil
}

func (store *fakeEventStore) findLocked(observationID detection.ObservationID) *fakeObservation {
	for _, event := range store.observations {
		if event.id == observationID {
			return event
		}
	}
	return nil
}

func (store *fakeEventStore) distinctRelevantTagsLocked(carID int, readerID int, reference time.Time) map[int]bool {
	carTagSet := make(map[int]bool)
	for _, tagID := range store.carTags[carID] {
		carTagSet[tagID] = true
	}

	since := reference.Add(-store.window)
	distinct := make(map[int]bool)
	for _, event := range store.observations {
		if !event.isRelevant || event.readerID != readerID || !carTagSet[event.tagID] {
			continue
		}
		if event.timeObserved.Before(since) {
			continue
		}
		distinct[event.tagID] = true
	}
	return distinct
}

func (store *fakeEventStore) detectionCount() int {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return len(store.detections)
}

func (store *fakeEventStore) observationCount() int {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return len(store.observations)
}

func (store *fakeEventStore) isRelevant(observationID detection.ObservationID) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	event := store.findLocked(observationID)
	return event != nil && event.isRelevant
}
