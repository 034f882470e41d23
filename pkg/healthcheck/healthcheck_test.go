/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package healthcheck

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

var status = "healthy"

func TestHealthcheck_Healthy(t *testing.T) {
	status = "healthy"
	client := http.DefaultClient
	client.Transport = newMockTransport()
	result := Healthcheck("80")
	if result == 1 {
		t.Error("Healthcheck healthy status should return 0")
	}
}

func TestHealthcheck_Unhealthy(t *testing.T) {
	status = "unhealthy"
	client := http.DefaultClient
	client.Transport = newMockTransport()
	result := Healthcheck("80")
	if result != 1 {
		t.Error("Healthcheck unhealthy status should return 1")
	}
}

type mockTransport struct{}

func newMockTransport() http.RoundTripper {
	return &mockTransport{}
}

func (transport *mockTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	response := &http.Response{
		Header:  make(http.Header),
		Request: request,
	}
	if status == "healthy" {
		response.StatusCode = http.StatusOK
	} else {
		response.StatusCode = http.StatusServiceUnavailable
	}
	response.Body = io.NopCloser(strings.NewReader(""))
	return response, nil
}
