/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package reader

// Reader is a stationary sensor watching exactly one parking spot.
// Created administratively; read-only to the detection path.
type Reader struct {
	// Reader id assigned at installation
	ID int `json:"reader_id" bson:"_id"`
	// Installed latitude
	Latitude float64 `json:"latitude" bson:"latitude"`
	// Installed longitude
	Longitude float64 `json:"longitude" bson:"longitude"`
	// Sensing radius in the same planar units as the coordinates
	Range float64 `json:"reader_range" bson:"reader_range"`
	// Compass bearing the reader faces
	FrontBearing float64 `json:"front_bearing" bson:"front_bearing"`
	// The spot this reader observes
	SpotID int `json:"spot_id" bson:"spot_id"`
}

// Summary is the projection returned by radius queries.
type Summary struct {
	ID        int     `json:"reader_id" bson:"_id"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Range     float64 `json:"reader_range" bson:"reader_range"`
}

// Response is the model used to return the add-reader result
type Response struct {
	NewReaderAdded int `json:"new_reader_added"`
}
