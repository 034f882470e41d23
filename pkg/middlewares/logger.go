/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
	log "github.com/sirupsen/logrus"
)

// Logger middleware logs one line per request with trace id and latency.
func Logger(next web.Handler) web.Handler {
	return web.Handler(func(ctx context.Context, writer http.ResponseWriter, request *http.Request) error {
		contextValues := ctx.Value(web.KeyValues).(*web.ContextValues)

		startTime := time.Now()
		err := next(ctx, writer, request)

		log.WithFields(log.Fields{
			"Method":     contextValues.Method,
			"RequestURI": contextValues.RequestURI,
			"TraceID":    contextValues.TraceID,
			"RemoteAddr": request.RemoteAddr,
			"Latency":    time.Since(startTime).String(),
		}).Info("Request handled")

		return err
	})
}
