/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package car

// Car owns exactly three tags, one per mount point, and one owning
// user. All fields are immutable after registration.
type Car struct {
	// Car id assigned at registration
	ID int `json:"car_id" bson:"_id"`
	// Registering user
	OwnerID int `json:"owner_id" bson:"owner_id"`
	// Tag mounted at the front of the car
	FrontTagID int `json:"front_tag" bson:"front_tag"`
	// Tag mounted at the middle of the car
	MiddleTagID int `json:"middle_tag" bson:"middle_tag"`
	// Tag mounted at the rear of the car
	RearTagID int `json:"rear_tag" bson:"rear_tag"`
}

// TagIDs returns the car's three tag ids. Order carries no meaning to
// the detection quorum.
func (car Car) TagIDs() []int {
	return []int{car.FrontTagID, car.MiddleTagID, car.RearTagID}
}

// Response is the model used to return the add-car result
type Response struct {
	NewCarID int `json:"new_car_id"`
}
