/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package spot

import "time"

// Spot is the physical space a reader monitors. Occupancy is a derived
// projection, mutated only as a side effect of a confirmed detection.
type Spot struct {
	// Spot id assigned when its reader is installed
	ID int `json:"spot_id" bson:"_id"`
	// The reader watching this spot
	ReaderID int `json:"reader_id" bson:"reader_id"`
	// Spot coordinates, copied from the reader at creation
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	// Whether a car is currently confirmed parked here
	IsOccupied bool `json:"is_occupied" bson:"is_occupied"`
	// The occupying car when IsOccupied is set
	ParkedCarID *int `json:"parked_car_id,omitempty" bson:"parked_car_id,omitempty"`
	// When the current occupancy was confirmed
	OccupiedSince *time.Time `json:"occupied_since,omitempty" bson:"occupied_since,omitempty"`
}

// Status is the per-spot projection returned to mobile clients.
type Status struct {
	IsTaken     bool    `json:"is_taken"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ParkedCarID *int    `json:"parked_car_id"`
}
