package envelope

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	OK().Field("html", "<div/>").Merge(map[string]any{"count": 2, "success": false}).Write(rec)

	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["success"] != true {
		t.Error("success flag must not be overwritable")
	}
	if body["html"] != "<div/>" || body["count"] != float64(2) {
		t.Errorf("body = %v", body)
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 404, "not_found", "panel not found")

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var body Error
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Success || body.Code != "not_found" {
		t.Errorf("body = %+v", body)
	}
}

func TestWriteError_DefaultStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, 0, "internal_failure", "boom")
	if rec.Code != 500 {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
