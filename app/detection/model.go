/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package detection

// DetectionOutcome is the engine's decision for one observation before
// any commit happens. Evidence holds 0-3 observation ids, the
// triggering observation first and the remaining supporting sightings
// in retrieval order (newest first). Evidence is empty when the quorum
// does not stand or the car was already parked.
type DetectionOutcome struct {
	ReaderID    int
	CarID       int
	IsCarParked bool
	Evidence    []ObservationID
}

// ReaderEventResult is the response shape for one processed reader
// event. Pointer fields stay nil whenever the event did not produce a
// confirmed park.
type ReaderEventResult struct {
	IsCarParked  bool    `json:"is_car_parked"`
	CarID        *int    `json:"car_id"`
	DetectionID  *string `json:"detection_id"`
	ParkedSpotID *int    `json:"parked_spot_id"`
}
