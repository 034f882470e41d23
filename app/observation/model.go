/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package observation

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

// ObservationEvent is one sighting of one tag by one reader. Events are
// never deleted; once an event has been consumed by a confirmed
// detection (or its car was already parked) it is tombstoned by
// clearing is_relevant so it cannot corroborate a later detection.
type ObservationEvent struct {
	// Row id
	ID bson.ObjectId `json:"observation_id" bson:"_id"`
	// Event time as reported by the reader, not processing time
	TimeObserved time.Time `json:"time_observed" bson:"time_observed"`
	// Raw signal strength; stored metadata, never used for decisioning
	SignalStrength float64 `json:"signal_strength" bson:"signal_strength"`
	// Reporting reader
	ReaderID int `json:"reader_id" bson:"reader_id"`
	// Sighted tag
	TagID int `json:"tag_id" bson:"tag_id"`
	// Whether this event may still corroborate a future detection
	IsRelevant bool `json:"is_relevant" bson:"is_relevant"`
}
