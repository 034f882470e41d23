/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/detection"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

// scriptedStore feeds the detection engine canned store answers so the
// handler layer can be exercised without a database.
type scriptedStore struct {
	insertCalls  int
	comparison   *detection.Comparison
	supporting   []detection.SupportingObservation
	confirmation *detection.ParkConfirmation
}

func (store *scriptedStore) InsertObservation(timeObserved time.Time, signalStrength float64, readerID int, tagID int) (detection.ObservationID, error) {
	store.insertCalls++
	return "obs-1", nil
}

func (store *scriptedStore) CompareObservation(observationID detection.ObservationID) (*detection.Comparison, error) {
	return store.comparison, nil
}

func (store *scriptedStore) ObservationsSupportingPark(carID int) ([]detection.SupportingObservation, error) {
	return store.supporting, nil
}

func (store *scriptedStore) ConfirmParkAndUpdateSpot(readerID int, observation1 detection.ObservationID, observation2 detection.ObservationID, observation3 *detection.ObservationID) (*detection.ParkConfirmation, error) {
	return store.confirmation, nil
}

func (store *scriptedStore) RetireObservation(observationID detection.ObservationID) error {
	return nil
}

func testContext(request *http.Request) context.Context {
	return context.WithValue(request.Context(), web.KeyValues, &web.ContextValues{
		TraceID:    "test-trace",
		Method:     request.Method,
		RequestURI: request.RequestURI,
	})
}

func TestIndex(t *testing.T) {
	handler := SpotASpot{}
	request := httptest.NewRequest("GET", "/", nil)
	recorder := httptest.NewRecorder()

	if err := handler.Index(testContext(request), recorder, request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "SpotASpot Server") {
		t.Errorf("unexpected body %s", recorder.Body.String())
	}
}

func TestSendEventDataMissingIDs(t *testing.T) {
	store := &scriptedStore{}
	handler := SpotASpot{Engine: detection.NewEngine(store)}

	request := httptest.NewRequest("POST", "/reader/send_event_data?tag_id=5", nil)
	recorder := httptest.NewRecorder()

	if err := handler.SendEventData(testContext(request), recorder, request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if store.insertCalls != 0 {
		t.Errorf("missing reader_id must not reach the store, got %d inserts", store.insertCalls)
	}

	var result detection.ReaderEventResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("unable to decode response: %v", err)
	}
	if result.IsCarParked || result.CarID != nil || result.DetectionID != nil || result.ParkedSpotID != nil {
		t.Errorf("expected the all-null result, got %+v", result)
	}
}

func TestSendEventDataConfirmsPark(t *testing.T) {
	store := &scriptedStore{
		comparison: &detection.Comparison{ReaderID: 10, CarID: 77, IsCarParked: true},
		supporting: []detection.SupportingObservation{
			{TagID: 1, ObservationID: "obs-1"},
			{TagID: 2, ObservationID: "obs-0"},
		},
		confirmation: &detection.ParkConfirmation{DetectionID: "det-1", CarID: 77, SpotID: 500},
	}
	handler := SpotASpot{Engine: detection.NewEngine(store)}

	request := httptest.NewRequest("POST", "/reader/send_event_data?reader_id=10&tag_id=2&signal_strength=-40.5", nil)
	recorder := httptest.NewRecorder()

	if err := handler.SendEventData(testContext(request), recorder, request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var result detection.ReaderEventResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("unable to decode response: %v", err)
	}
	if !result.IsCarParked {
		t.Error("expected is_car_parked true")
	}
	if result.CarID == nil || *result.CarID != 77 {
		t.Errorf("expected car 77, got %v", result.CarID)
	}
	if result.DetectionID == nil || *result.DetectionID != "det-1" {
		t.Errorf("expected detection det-1, got %v", result.DetectionID)
	}
	if result.ParkedSpotID == nil || *result.ParkedSpotID != 500 {
		t.Errorf("expected spot 500, got %v", result.ParkedSpotID)
	}
}

func TestAddReaderMissingArgs(t *testing.T) {
	handler := SpotASpot{}

	request := httptest.NewRequest("POST", "/reader/add_reader?latitude=42.1&longitude=-71.0", nil)
	recorder := httptest.NewRecorder()

	if err := handler.AddReader(testContext(request), recorder, request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var response struct {
		NewReaderAdded int `json:"new_reader_added"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("unable to decode response: %v", err)
	}
	if response.NewReaderAdded != -1 {
		t.Errorf("expected -1 for missing arguments, got %d", response.NewReaderAdded)
	}
}

func TestAddTagRejectsBadBody(t *testing.T) {
	handler := SpotASpot{}

	for _, body := range []string{`{"tag_id": 0}`, `{"tag_id": "5"}`, `{}`} {
		request := httptest.NewRequest("POST", "/cars/add_tag", strings.NewReader(body))
		recorder := httptest.NewRecorder()

		if err := handler.AddTag(testContext(request), recorder, request); err != nil {
			t.Fatalf("unexpected error for %s: %v", body, err)
		}
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %s, got %d", body, recorder.Code)
		}
	}
}

func TestAddTagRejectsEmptyBody(t *testing.T) {
	handler := SpotASpot{}

	request := httptest.NewRequest("POST", "/cars/add_tag", strings.NewReader(""))
	recorder := httptest.NewRecorder()

	err := handler.AddTag(testContext(request), recorder, request)
	if errors.Cause(err) != web.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for an empty body, got %v", err)
	}
}

func TestAddCarRejectsBadBody(t *testing.T) {
	handler := SpotASpot{}

	body := `{"owner_id": 7, "front_tag": 1, "middle_tag": 2}`
	request := httptest.NewRequest("POST", "/cars/add_car", strings.NewReader(body))
	recorder := httptest.NewRecorder()

	if err := handler.AddCar(testContext(request), recorder, request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", recorder.Code)
	}
}

func TestGetIsSpotTakenInvalidID(t *testing.T) {
	handler := SpotASpot{}

	request := httptest.NewRequest("GET", "/mobile/get_is_spot_taken/zero", nil)
	recorder := httptest.NewRecorder()

	err := handler.GetIsSpotTaken(testContext(request), recorder, request)
	if errors.Cause(err) != web.ErrInvalidID {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestGetLocalReadersMissingArgs(t *testing.T) {
	handler := SpotASpot{}

	request := httptest.NewRequest("GET", "/mobile/get_local_readers?latitude=42.1", nil)
	recorder := httptest.NewRecorder()

	err := handler.GetLocalReaders(testContext(request), recorder, request)
	if errors.Cause(err) != web.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReleaseSpotInvalidID(t *testing.T) {
	handler := SpotASpot{}

	request := httptest.NewRequest("POST", "/admin/release_spot?spot_id=abc", nil)
	recorder := httptest.NewRecorder()

	err := handler.ReleaseSpot(testContext(request), recorder, request)
	if errors.Cause(err) != web.ErrInvalidID {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}
