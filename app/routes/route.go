/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package routes

import (
	"github.com/gorilla/mux"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/config"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/detection"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/eventstore"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/routes/handlers"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/dbs"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/middlewares"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

// Route struct holds attributes to declare routes
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc web.Handler
}

// NewRouter creates the routes for GET and POST
func NewRouter(masterDB *dbs.DB, engine *detection.Engine, store *eventstore.Store, maxSize int) *mux.Router {

	spotASpot := handlers.SpotASpot{MasterDB: masterDB, Engine: engine, Store: store, MaxSize: maxSize}

	var routes = []Route{
		//swagger:operation GET / default Healthcheck
		//
		// Healthcheck Endpoint
		//
		// Endpoint that is used to determine if the application is ready to take web requests
		//
		// ---
		// produces:
		// - application/json
		//
		// schemes:
		// - http
		//
		// responses:
		//   '200':
		//     description: OK
		//
		{
			"Index",
			"GET",
			"/",
			spotASpot.Index,
		},
		//swagger:operation POST /reader/send_event_data reader sendEventData
		//
		// Ingest one tag sighting
		//
		// A reader reports that it saw a tag. Query arguments: reader_id,
		// tag_id, signal_strength, and optionally observed_at (epoch
		// seconds). The response states whether the sighting completed a
		// park and, if so, which car, detection, and spot it produced.
		// Missing or unknown ids yield the all-null response so field
		// readers never treat noise as a hard failure.
		//
		// ---
		// produces:
		// - application/json
		//
		// schemes:
		// - http
		//
		// responses:
		//   '200':
		//     description: OK
		//   '500':
		//     description: Internal Error
		//
		{
			"SendEventData",
			"POST",
			"/reader/send_event_data",
			spotASpot.SendEventData,
		},
		//swagger:operation POST /reader/add_reader reader addReader
		//
		// Install a reader
		//
		// Registers a reader at a physical location and creates the spot
		// it watches. Query arguments: latitude, longitude, reader_range,
		// front_bearing. Responds with the new reader id, or -1 when the
		// arguments are missing or malformed.
		//
		// ---
		// produces:
		// - application/json
		//
		// schemes:
		// - http
		//
		// responses:
		//   '200':
		//     description: OK
		//   '500':
		//     description: Internal Error
		//
		{
			"AddReader",
			"POST",
			"/reader/add_reader",
			spotASpot.AddReader,
		},
		//swagger:operation POST /cars/add_tag cars addTag
		//
		// Register a physical tag
		//
		// Example Input:
		// ```
		// {
		//   "tag_id": 42
		// }
		// ```
		//
		// ---
		// consumes:
		// - application/json
		//
		// produces:
		// - application/json
		//
		// schemes:
		// - http
		//
		// responses:
		//   '200':
		//     description: OK
		//   '400':
		//     description: Schema Validation Error
		//   '500':
		//     description: Internal Error
		//
		{
			"AddTag",
			"POST",
			"/cars/add_tag",
			spotASpot.AddTag,
		},
		//swagger:operation POST /cars/add_car cars addCar
		//
		// Register a car
		//
		// Registers a car from its owner and the three distinct tags
		// mounted front, middle, and rear.
		//
		// Example Input:
		// ```
		// {
		//   "owner_id": 7,
		//   "front_tag": 1,
		//   "middle_tag": 2,
		//   "rear_tag": 3
		// }
		// ```
		//
		// ---
		// consumes:
		// - application/json
		//
		// produces:
		// - application/json
		//
		// schemes:
		// - http
		//
		// responses:
		//   '200':
		//     description: OK
		//   '400':
		//     description: Schema Validation Error
		//   '500':
		//     description: Internal Error
		//
		{
			"AddCar",
			"POST",
			"/cars/add_car",
			spotASpot.AddCar,
		},
		//swagger:operation GET /mobile/get_is_spot_taken/{reader_id} mobile getIsSpotTaken
		//
		// Get spot occupancy for a reader
		//
		// Returns the occupancy of every spot the reader watches, keyed
		// by spot id.
		//
		// ---
		// produces:
		// - application/json
		//
		// schemes:
		// - http
		//
		// responses:
		//   '200':
		//     description: OK
		//   '400':
		//     description: Invalid reader id
		//   '404':
		//     description: Reader has no spots
		//   '500':
		//     description: Internal Error
		//
		{
			"GetIsSpotTaken",
			"GET",
			"/mobile/get_is_spot_taken/{reader_id}",
			spotASpot.GetIsSpotTaken,
		},
		//swagger:operation GET /mobile/get_local_readers mobile getLocalReaders
		//
		// List readers near a point
		//
		// Query arguments: latitude, longitude, radius. Returns the
		// readers within the given planar radius of the center point.
		//
		// ---
		// produces:
		// - application/json
		//
		// schemes:
		// - http
		//
		// responses:
		//   '200':
		//     description: OK
		//   '400':
		//     description: Missing or invalid arguments
		//   '500':
		//     description: Internal Error
		//
		{
			"GetLocalReaders",
			"GET",
			"/mobile/get_local_readers",
			spotASpot.GetLocalReaders,
		},
		//swagger:operation POST /admin/release_spot admin releaseSpot
		//
		// Free an occupied spot
		//
		// Query arguments: spot_id. Departures are not sensed, so an
		// operator clears occupancy through this endpoint.
		//
		// ---
		// produces:
		// - application/json
		//
		// schemes:
		// - http
		//
		// responses:
		//   '204':
		//     description: Released
		//   '400':
		//     description: Invalid spot id
		//   '404':
		//     description: Spot not found
		//   '500':
		//     description: Internal Error
		//
		{
			"ReleaseSpot",
			"POST",
			"/admin/release_spot",
			spotASpot.ReleaseSpot,
		},
	}

	router := mux.NewRouter().StrictSlash(true)
	for _, route := range routes {

		var handler = route.HandlerFunc
		handler = middlewares.Recover(handler)
		handler = middlewares.Logger(handler)
		handler = middlewares.Bodylimiter(handler)
		if config.AppConfig.EnableCORS {
			handler = middlewares.CORS(config.AppConfig.CORSOrigin, handler)
		}

		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(handler)
	}

	return router
}
