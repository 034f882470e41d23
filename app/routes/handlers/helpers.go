/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/routes/schemas"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

// readAndValidateRequest reads the request body, checks it against the
// given json schema, and unmarshals it into target. A non-nil first
// return value carries the schema violations to send back to the
// client.
func readAndValidateRequest(request *http.Request, schema string, target interface{}) (interface{}, error) {

	body, err := io.ReadAll(request.Body)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read request body")
	}

	validatorResult, err := schemas.ValidateSchemaRequest(body, schema)
	if err != nil {
		return nil, err
	}
	if !validatorResult.Valid() {
		return schemas.BuildErrorsString(validatorResult.Errors()), nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return nil, errors.Wrap(web.ErrInvalidInput, err.Error())
	}

	return nil, nil
}

// intQueryArg returns the named query argument as an int, or 0 when it
// is missing or malformed. Zero is never a valid entity id, so the
// callers treat it as "not provided".
func intQueryArg(values url.Values, name string) int {

	raw := values.Get(name)
	if raw == "" {
		return 0
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}

// floatQueryArg returns the named query argument as a float64 and
// whether it was present and well formed.
func floatQueryArg(values url.Values, name string) (float64, bool) {

	raw := values.Get(name)
	if raw == "" {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
