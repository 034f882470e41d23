/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package schemas

// AddCarSchema is the json schema for the add-car request body. The
// three tag ids must be distinct; distinctness is enforced by the
// controller since json schema cannot express it.
const AddCarSchema = `{
	"$schema": "http://json-schema.org/draft-04/schema#",
	"type": "object",
	"properties": {
		"owner_id": {
			"type": "integer",
			"minimum": 1
		},
		"front_tag": {
			"type": "integer",
			"minimum": 1
		},
		"middle_tag": {
			"type": "integer",
			"minimum": 1
		},
		"rear_tag": {
			"type": "integer",
			"minimum": 1
		}
	},
	"additionalProperties": false,
	"required": [
		"owner_id",
		"front_tag",
		"middle_tag",
		"rear_tag"
	]
}`
