/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package schemas

// AddTagSchema is the json schema for the add-tag request body
const AddTagSchema = `{
	"$schema": "http://json-schema.org/draft-04/schema#",
	"type": "object",
	"properties": {
		"tag_id": {
			"type": "integer",
			"minimum": 1
		}
	},
	"additionalProperties": false,
	"required": [
		"tag_id"
	]
}`
