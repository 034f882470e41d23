/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package eventstore

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

// DetectionRecord is one confirmed park event. The observation ids are
// the tombstoned evidence the quorum was built from, triggering
// observation first.
type DetectionRecord struct {
	ID             bson.ObjectId   `json:"detection_id" bson:"_id"`
	ReaderID       int             `json:"reader_id" bson:"reader_id"`
	CarID          int             `json:"car_id" bson:"car_id"`
	SpotID         int             `json:"spot_id" bson:"spot_id"`
	ObservationIDs []bson.ObjectId `json:"observation_ids" bson:"observation_ids"`
	IsCarParked    bool            `json:"is_car_parked" bson:"is_car_parked"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
}
