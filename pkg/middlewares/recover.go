/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package middlewares

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Recover middleware converts handler panics into 500 responses so one
// bad request cannot take the listener down.
func Recover(next web.Handler) web.Handler {
	return web.Handler(func(ctx context.Context, writer http.ResponseWriter, request *http.Request) (err error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				contextValues := ctx.Value(web.KeyValues).(*web.ContextValues)
				log.WithFields(log.Fields{
					"Method":     contextValues.Method,
					"RequestURI": contextValues.RequestURI,
					"TraceID":    contextValues.TraceID,
					"Panic":      recovered,
					"Stack":      string(debug.Stack()),
				}).Error("Recovered from handler panic")
				err = errors.Errorf("panic: %v", recovered)
			}
		}()
		return next(ctx, writer, request)
	})
}
