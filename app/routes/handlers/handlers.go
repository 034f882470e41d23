/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/car"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/detection"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/eventstore"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/reader"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/routes/schemas"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/spot"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/tag"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/dbs"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

// SpotASpot represents the API method handler set.
type SpotASpot struct {
	MasterDB *dbs.DB
	Engine   *detection.Engine
	Store    *eventstore.Store
	MaxSize  int
}

// addTagRequest is the add-tag request body
type addTagRequest struct {
	TagID int `json:"tag_id"`
}

// addCarRequest is the add-car request body
type addCarRequest struct {
	OwnerID   int `json:"owner_id"`
	FrontTag  int `json:"front_tag"`
	MiddleTag int `json:"middle_tag"`
	RearTag   int `json:"rear_tag"`
}

// Index is used for Docker Healthcheck commands to indicate
// whether the http server is up and running to take requests
//nolint:unparam
func (sas *SpotASpot) Index(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
	web.Respond(ctx, writer, "SpotASpot Server", http.StatusOK)
	return nil
}

// SendEventData ingests one tag sighting from a reader and answers
// whether the sighting completed a park. Missing or malformed ids
// produce the all-null response without touching the database; readers
// in the field retry aggressively and a 4xx would only make them drop
// events on the floor.
// 200 OK, 500 Internal Error
func (sas *SpotASpot) SendEventData(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {

	metrics.GetOrRegisterGauge(`SpotASpot.SendEventData.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.SendEventData.Success`, nil)
	mEngineErr := metrics.GetOrRegisterGauge(`SpotASpot.SendEventData.Engine-Error`, nil)
	startTime := time.Now()
	defer metrics.GetOrRegisterTimer(`SpotASpot.SendEventData.Latency`, nil).Update(time.Since(startTime))

	args := request.URL.Query()
	readerID := intQueryArg(args, "reader_id")
	tagID := intQueryArg(args, "tag_id")
	signalStrength, _ := floatQueryArg(args, "signal_strength")

	var timeObserved time.Time
	if epochSeconds := intQueryArg(args, "observed_at"); epochSeconds > 0 {
		timeObserved = time.Unix(int64(epochSeconds), 0)
	}

	result, err := sas.Engine.HandleReaderEvent(readerID, tagID, signalStrength, timeObserved)
	if err != nil {
		mEngineErr.Update(1)
		return errors.Wrap(err, "unable to process reader event")
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, result, http.StatusOK)
	return nil
}

// AddReader installs a new reader and its watched spot. The reader id
// in the response is -1 when the installation arguments are missing or
// malformed, matching what the installer tooling expects.
// 200 OK, 500 Internal Error
func (sas *SpotASpot) AddReader(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {

	metrics.GetOrRegisterGauge(`SpotASpot.AddReader.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.AddReader.Success`, nil)
	mInputErr := metrics.GetOrRegisterGauge(`SpotASpot.AddReader.Input-Error`, nil)

	args := request.URL.Query()
	latitude, haveLatitude := floatQueryArg(args, "latitude")
	longitude, haveLongitude := floatQueryArg(args, "longitude")
	readerRange, haveRange := floatQueryArg(args, "reader_range")
	frontBearing, haveBearing := floatQueryArg(args, "front_bearing")

	if !haveLatitude || !haveLongitude || !haveRange || !haveBearing {
		mInputErr.Update(1)
		log.WithFields(log.Fields{
			"Method": "handlers.AddReader",
			"Query":  request.URL.RawQuery,
		}).Info("rejecting add-reader request with missing arguments")
		web.Respond(ctx, writer, reader.Response{NewReaderAdded: -1}, http.StatusOK)
		return nil
	}

	readerID, err := reader.Insert(sas.MasterDB, latitude, longitude, readerRange, frontBearing)
	if err != nil {
		if errors.Cause(err) == web.ErrInvalidInput {
			mInputErr.Update(1)
			web.Respond(ctx, writer, reader.Response{NewReaderAdded: -1}, http.StatusOK)
			return nil
		}
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, reader.Response{NewReaderAdded: readerID}, http.StatusOK)
	return nil
}

// AddTag registers a newly issued physical tag id.
// 200 OK, 400 Bad Request, 500 Internal Error
func (sas *SpotASpot) AddTag(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {

	metrics.GetOrRegisterGauge(`SpotASpot.AddTag.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.AddTag.Success`, nil)
	mValidateErr := metrics.GetOrRegisterGauge(`SpotASpot.AddTag.ValidateRequest-Error`, nil)

	var body addTagRequest
	validationErrors, err := readAndValidateRequest(request, schemas.AddTagSchema, &body)
	if err != nil {
		return err
	}
	if validationErrors != nil {
		mValidateErr.Update(1)
		web.Respond(ctx, writer, validationErrors, http.StatusBadRequest)
		return nil
	}

	if err := tag.Insert(sas.MasterDB, body.TagID); err != nil {
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, tag.Response{NewTagID: body.TagID}, http.StatusOK)
	return nil
}

// AddCar registers a car from its owner and three mounted tag ids.
// 200 OK, 400 Bad Request, 500 Internal Error
func (sas *SpotASpot) AddCar(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {

	metrics.GetOrRegisterGauge(`SpotASpot.AddCar.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.AddCar.Success`, nil)
	mValidateErr := metrics.GetOrRegisterGauge(`SpotASpot.AddCar.ValidateRequest-Error`, nil)

	var body addCarRequest
	validationErrors, err := readAndValidateRequest(request, schemas.AddCarSchema, &body)
	if err != nil {
		return err
	}
	if validationErrors != nil {
		mValidateErr.Update(1)
		web.Respond(ctx, writer, validationErrors, http.StatusBadRequest)
		return nil
	}

	carID, err := car.Insert(sas.MasterDB, body.OwnerID, body.FrontTag, body.MiddleTag, body.RearTag)
	if err != nil {
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, car.Response{NewCarID: carID}, http.StatusOK)
	return nil
}

// GetIsSpotTaken returns the occupancy of every spot watched by the
// given reader.
// 200 OK, 400 Bad Request, 404 Not Found, 500 Internal Error
func (sas *SpotASpot) GetIsSpotTaken(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {

	metrics.GetOrRegisterGauge(`SpotASpot.GetIsSpotTaken.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.GetIsSpotTaken.Success`, nil)

	vars := mux.Vars(request)
	readerID, err := strconv.Atoi(vars["reader_id"])
	if err != nil || readerID <= 0 {
		return errors.Wrapf(web.ErrInvalidID, "reader id %s", vars["reader_id"])
	}

	statuses, err := sas.Store.SpotStatuses(readerID)
	if err != nil {
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, statuses, http.StatusOK)
	return nil
}

// GetLocalReaders lists the readers within a planar radius of the given
// center point, which the mobile app uses to draw nearby spots.
// 200 OK, 400 Bad Request, 500 Internal Error
func (sas *SpotASpot) GetLocalReaders(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {

	metrics.GetOrRegisterGauge(`SpotASpot.GetLocalReaders.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.GetLocalReaders.Success`, nil)

	args := request.URL.Query()
	latitude, haveLatitude := floatQueryArg(args, "latitude")
	longitude, haveLongitude := floatQueryArg(args, "longitude")
	radius, haveRadius := floatQueryArg(args, "radius")

	if !haveLatitude || !haveLongitude || !haveRadius || radius <= 0 {
		return errors.Wrap(web.ErrInvalidInput, "latitude, longitude and a positive radius are required")
	}

	readers, err := sas.Store.ReadersInRadius(latitude, longitude, radius)
	if err != nil {
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, readers, http.StatusOK)
	return nil
}

// ReleaseSpot frees a spot whose car has left. Administrative endpoint;
// occupancy never clears on its own because departures are not sensed.
// 204 No Content, 400 Bad Request, 404 Not Found, 500 Internal Error
func (sas *SpotASpot) ReleaseSpot(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {

	metrics.GetOrRegisterGauge(`SpotASpot.ReleaseSpot.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.ReleaseSpot.Success`, nil)

	spotID := intQueryArg(request.URL.Query(), "spot_id")
	if spotID <= 0 {
		return errors.Wrap(web.ErrInvalidID, "spot_id is required")
	}

	if err := spot.Release(sas.MasterDB, spotID); err != nil {
		return err
	}

	mSuccess.Update(1)
	web.Respond(ctx, writer, nil, http.StatusNoContent)
	return nil
}
