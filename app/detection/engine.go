/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

// Package detection decides, one observation at a time, whether a car
// has become parked at a reader's spot. A car counts as parked only
// when at least two of its three tags have relevant sightings at the
// reader within the corroboration window; a single sighting is noise.
// The engine holds no state of its own, so any number of workers may
// drive it concurrently against the same EventStore.
package detection

import (
	"time"

	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

const maxEvidenceSlots = 3

// Engine turns raw sightings into at most one occupancy transition per
// physical parking event.
type Engine struct {
	store EventStore
}

// NewEngine returns an engine bound to the given store.
func NewEngine(store EventStore) *Engine {
	return &Engine{store: store}
}

// RecordObservation persists one reader sighting and returns its id.
// Inputs are assumed validated by the caller; the engine neither
// retries nor deduplicates (duplicate suppression is the reader's
// debounce responsibility).
func (engine *Engine) RecordObservation(timeObserved time.Time, signalStrength float64, readerID int, tagID int) (ObservationID, error) {

	observationID, err := engine.store.InsertObservation(timeObserved, signalStrength, readerID, tagID)
	if err != nil {
		return "", errors.Wrap(err, "unable to record observation")
	}

	return observationID, nil
}

// EvaluateDetection decides what the just-stored observation means. The
// returned outcome is nil when the sighted tag is not mounted on any
// registered car. When the quorum stands, Evidence lists the 2-3
// attributed observations with the triggering observation always
// included, in slot one.
func (engine *Engine) EvaluateDetection(observationID ObservationID) (*DetectionOutcome, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.EvaluateDetection.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.EvaluateDetection.Success`, nil)
	mCompareErr := metrics.GetOrRegisterGauge(`SpotASpot.EvaluateDetection.Compare-Error`, nil)
	mSupportErr := metrics.GetOrRegisterGauge(`SpotASpot.EvaluateDetection.Support-Error`, nil)

	comparison, err := engine.store.CompareObservation(observationID)
	if err != nil {
		mCompareErr.Update(1)
		return nil, errors.Wrap(err, "unable to compare observation")
	}
	if comparison == nil {
		// tag is not registered to a car; the stored event keeps its
		// audit value but cannot drive a detection
		mSuccess.Update(1)
		return nil, nil
	}

	outcome := DetectionOutcome{
		ReaderID:    comparison.ReaderID,
		CarID:       comparison.CarID,
		IsCarParked: comparison.IsCarParked,
	}

	if comparison.AlreadyParked {
		// the car already holds this spot; retire the new sighting so
		// it cannot corroborate a detection somewhere else
		if err := engine.store.RetireObservation(observationID); err != nil {
			log.WithFields(log.Fields{
				"Method":        "detection.EvaluateDetection",
				"ObservationID": observationID,
				"Error":         err.Error(),
			}).Warn("unable to retire observation of already-parked car")
		}
		mSuccess.Update(1)
		return &outcome, nil
	}

	if !comparison.IsCarParked {
		mSuccess.Update(1)
		return &outcome, nil
	}

	supporting, err := engine.store.ObservationsSupportingPark(comparison.CarID)
	if err != nil {
		mSupportErr.Update(1)
		return nil, errors.Wrap(err, "unable to retrieve supporting observations")
	}

	outcome.Evidence = assembleEvidence(observationID, supporting)
	if len(outcome.Evidence) < 2 {
		// a concurrent confirmation consumed the evidence between the
		// comparison and the attribution query; the quorum no longer
		// stands from this caller's point of view
		outcome.IsCarParked = false
		outcome.Evidence = nil
	}

	mSuccess.Update(1)
	return &outcome, nil
}

// ConfirmPark commits an evaluated park decision: one detection record,
// the spot marked occupied, the evidence tombstoned, all as a single
// store-side transition. Returns nil when a concurrent confirmation won
// the race, which is a normal outcome rather than an error.
func (engine *Engine) ConfirmPark(outcome *DetectionOutcome) (*ParkConfirmation, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.ConfirmPark.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.ConfirmPark.Success`, nil)
	mRaceLost := metrics.GetOrRegisterGauge(`SpotASpot.ConfirmPark.Race-Lost`, nil)
	mConfirmErr := metrics.GetOrRegisterGauge(`SpotASpot.ConfirmPark.Confirm-Error`, nil)

	if outcome == nil || !outcome.IsCarParked || len(outcome.Evidence) < 2 {
		return nil, errors.New("confirm requires an outcome with at least two evidence observations")
	}

	var observation3 *ObservationID
	if len(outcome.Evidence) > 2 {
		observation3 = &outcome.Evidence[2]
	}

	confirmation, err := engine.store.ConfirmParkAndUpdateSpot(
		outcome.ReaderID, outcome.Evidence[0], outcome.Evidence[1], observation3)
	if err != nil {
		mConfirmErr.Update(1)
		return nil, errors.Wrap(err, "unable to confirm park")
	}

	if confirmation == nil {
		mRaceLost.Update(1)
		log.WithFields(log.Fields{
			"Method":   "detection.ConfirmPark",
			"ReaderID": outcome.ReaderID,
			"CarID":    outcome.CarID,
		}).Debug("park already confirmed by a concurrent event")
		return nil, nil
	}

	mSuccess.Update(1)
	return confirmation, nil
}

// HandleReaderEvent is the single entry point the ingestion router
// calls per reader report. A missing reader or tag id short-circuits to
// the all-null result without touching the store. A store failure is
// returned as an error alongside the best-known result so the caller
// can distinguish "no detection" from "store down".
func (engine *Engine) HandleReaderEvent(readerID int, tagID int, signalStrength float64, timeObserved time.Time) (ReaderEventResult, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.HandleReaderEvent.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.HandleReaderEvent.Success`, nil)
	mInputErr := metrics.GetOrRegisterGauge(`SpotASpot.HandleReaderEvent.Input-Error`, nil)
	startTime := time.Now()
	defer metrics.GetOrRegisterTimer(`SpotASpot.HandleReaderEvent.Latency`, nil).Update(time.Since(startTime))

	var result ReaderEventResult

	if readerID <= 0 || tagID <= 0 {
		mInputErr.Update(1)
		log.WithFields(log.Fields{
			"Method":   "detection.HandleReaderEvent",
			"ReaderID": readerID,
			"TagID":    tagID,
		}).Info("rejecting reader event with missing ids")
		return result, nil
	}

	if timeObserved.IsZero() {
		timeObserved = time.Now()
	}

	observationID, err := engine.RecordObservation(timeObserved, signalStrength, readerID, tagID)
	if err != nil {
		return result, err
	}

	outcome, err := engine.EvaluateDetection(observationID)
	if err != nil {
		return result, err
	}
	if outcome == nil {
		mSuccess.Update(1)
		return result, nil
	}

	result.IsCarParked = outcome.IsCarParked
	carID := outcome.CarID
	result.CarID = &carID

	if !outcome.IsCarParked || len(outcome.Evidence) < 2 {
		mSuccess.Update(1)
		return result, nil
	}

	confirmation, err := engine.ConfirmPark(outcome)
	if err != nil {
		return result, err
	}
	if confirmation != nil {
		detectionID := string(confirmation.DetectionID)
		result.DetectionID = &detectionID
		result.ParkedSpotID = &confirmation.SpotID
	}

	mSuccess.Update(1)
	return result, nil
}

// assembleEvidence orders the attribution slots: the triggering
// observation first, then the remaining supporting sightings in
// retrieval order, capped at three.
func assembleEvidence(trigger ObservationID, supporting []SupportingObservation) []ObservationID {

	evidence := []ObservationID{trigger}
	for _, row := range supporting {
		if row.ObservationID == trigger {
			continue
		}
		evidence = append(evidence, row.ObservationID)
		if len(evidence) == maxEvidenceSlots {
			break
		}
	}

	return evidence
}
