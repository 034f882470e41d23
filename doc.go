// SpotASpot Server.
//
// Parking occupancy service fed by roadside RFID readers.
//
//     Schemes: http
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//
// swagger:meta
package main

// Internal Error
//swagger:response internalError
type internalError struct {
}

// Schema Validation Error
//swagger:response schemaValidation
type schemaValidation struct {
}
