package jsonapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crowelogic/tiergate/pkg/jsonapi"
)

func TestNewError(t *testing.T) {
	err := jsonapi.NewError(429, "quota_exceeded", "Quota Exceeded").
		Detail("1000 of 1000 calls used").
		Meta("remaining", 0).
		Meta("skipped", nil).
		Header("Authorization").
		Build()

	if err.StatusCode() != 429 {
		t.Errorf("StatusCode() = %d, want 429", err.StatusCode())
	}
	if err.Detail != "1000 of 1000 calls used" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if _, ok := err.Meta["skipped"]; ok {
		t.Error("nil meta values should be skipped")
	}
	if err.Source == nil || err.Source.Header != "Authorization" {
		t.Errorf("Source = %+v", err.Source)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err  jsonapi.Error
		want int
	}{
		{jsonapi.ErrBadRequest("x"), 400},
		{jsonapi.ErrUnauthorized(""), 401},
		{jsonapi.ErrValidation("prompt", "required"), 422},
		{jsonapi.ErrInternal(""), 500},
		{jsonapi.ErrBadGateway(""), 502},
	}
	for _, tt := range tests {
		if got := tt.err.StatusCode(); got != tt.want {
			t.Errorf("%s: StatusCode() = %d, want %d", tt.err.Code, got, tt.want)
		}
		if tt.err.Detail == "" {
			t.Errorf("%s: empty detail", tt.err.Code)
		}
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonapi.WriteError(rec, jsonapi.ErrUnauthorized("no"))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != jsonapi.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}

	var doc jsonapi.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Errors) != 1 || doc.Errors[0].Code != "unauthorized" {
		t.Errorf("errors = %+v", doc.Errors)
	}
	if doc.JSONAPI == nil || doc.JSONAPI.Version != jsonapi.Version {
		t.Errorf("jsonapi = %+v", doc.JSONAPI)
	}
}

func TestWriteError_Empty(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonapi.WriteError(rec)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestWriteCollection_Nil(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonapi.WriteCollection(rec, http.StatusOK, nil, nil)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["data"]) != "[]" {
		t.Errorf("data = %s, want []", raw["data"])
	}
}

func TestWriteResource(t *testing.T) {
	rec := httptest.NewRecorder()
	jsonapi.WriteResource(rec, http.StatusCreated, jsonapi.Resource{
		Type:       "subscriptions",
		ID:         "abc",
		Attributes: map[string]string{"tier": "freemium"},
	})

	var doc struct {
		Data jsonapi.Resource `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusCreated || doc.Data.ID != "abc" {
		t.Errorf("status = %d, data = %+v", rec.Code, doc.Data)
	}
}
