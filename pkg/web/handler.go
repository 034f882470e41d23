/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

// KeyValues is the context key for the per-request ContextValues.
const KeyValues ctxKey = 1

// ContextValues carries request-scoped values used in logging and responses.
type ContextValues struct {
	TraceID    string
	Method     string
	RequestURI string
}

// Handler is the signature all route handlers implement. Returning an
// error hands control to the web.Error response mapping.
type Handler func(ctx context.Context, writer http.ResponseWriter, request *http.Request) error

// ServeHTTP seeds the request context with trace values and funnels
// handler errors through the shared error responder.
func (handler Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {

	values := ContextValues{
		TraceID:    uuid.New().String(),
		Method:     request.Method,
		RequestURI: request.RequestURI,
	}
	ctx := context.WithValue(request.Context(), KeyValues, &values)

	if err := handler(ctx, writer, request); err != nil {
		Error(ctx, writer, err)
	}
}
