/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package detection

import "time"

// ObservationID identifies one stored observation event.
type ObservationID string

// DetectionID identifies one stored detection record.
type DetectionID string

// Comparison is the aggregate answer the store gives for one freshly
// recorded observation: which reader and car it maps to, whether the
// quorum currently stands, and whether the car was already confirmed
// parked at this reader's spot by a prior detection.
type Comparison struct {
	ReaderID      int
	CarID         int
	IsCarParked   bool
	AlreadyParked bool
}

// SupportingObservation is one row of corroborating evidence: the tag
// that was sighted and the observation that recorded it.
type SupportingObservation struct {
	TagID         int
	ObservationID ObservationID
}

// ParkConfirmation reports a committed park transition.
type ParkConfirmation struct {
	DetectionID DetectionID
	CarID       int
	SpotID      int
}

// EventStore is the narrow durable-store contract the engine consumes.
// All shared state lives behind it, which is what makes the engine safe
// to call from any number of concurrent workers.
type EventStore interface {
	// InsertObservation persists one observation event and returns its id.
	InsertObservation(timeObserved time.Time, signalStrength float64, readerID int, tagID int) (ObservationID, error)

	// CompareObservation resolves the observation's car and reader and
	// evaluates the 2-of-3 quorum against current durable state. A nil
	// comparison (no error) means the tag is not mounted on any
	// registered car and no detection is possible.
	CompareObservation(observationID ObservationID) (*Comparison, error)

	// ObservationsSupportingPark returns the ordered (newest first)
	// still-relevant sightings backing the car's quorum, one row per
	// distinct tag, at most three rows.
	ObservationsSupportingPark(carID int) ([]SupportingObservation, error)

	// ConfirmParkAndUpdateSpot atomically records the detection, marks
	// the reader's spot occupied, and tombstones the attributed
	// observations. Returns (nil, nil) when a concurrent confirmation
	// won the race; only one of any set of concurrent callers succeeds.
	ConfirmParkAndUpdateSpot(readerID int, observation1 ObservationID, observation2 ObservationID, observation3 *ObservationID) (*ParkConfirmation, error)

	// RetireObservation tombstones a single observation that can no
	// longer contribute evidence (its car is already parked here).
	RetireObservation(observationID ObservationID) error
}
