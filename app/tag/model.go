/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tag

import "time"

// Tag is one physical identifier affixed to a car mount point. The id
// is printed on the hardware and registered here at issuance time.
type Tag struct {
	// The physical tag id
	ID int `json:"tag_id" bson:"_id"`
	// When the tag was registered
	IssuedAt time.Time `json:"issued_at" bson:"issued_at"`
}

// Response is the model used to return the add-tag result
type Response struct {
	NewTagID int `json:"new_tag_id"`
}
