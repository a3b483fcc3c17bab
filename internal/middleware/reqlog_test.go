package middleware

import (
	"encoding/json"
	"testing"
)

func TestRedactLogBodyReports(t *testing.T) {
	body := []byte(`{"category":"road_damage","contact_phone":"09012345678","description":"pothole","photos":[{"memo":"note","key":"k"}]}`)
	out := redactLogBody("/v1/reports", body)

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if data["contact_phone"] == "09012345678" {
		t.Fatalf("contact_phone not redacted")
	}
	if data["description"] == "pothole" {
		t.Fatalf("description not redacted")
	}
	if data["category"] != "road_damage" {
		t.Fatalf("non-sensitive field altered: %v", data["category"])
	}
	photos, ok := data["photos"].([]interface{})
	if !ok || len(photos) != 1 {
		t.Fatalf("photos shape changed: %v", data["photos"])
	}
	if nested, ok := photos[0].(map[string]interface{}); ok {
		if nested["memo"] == "note" {
			t.Fatalf("nested memo not redacted")
		}
		if nested["key"] != "k" {
			t.Fatalf("nested non-sensitive field altered")
		}
	}
}

func TestRedactLogBodyNonSensitivePath(t *testing.T) {
	body := []byte(`{"ok":true}`)
	out := redactLogBody("/health", body)
	if out != string(body) {
		t.Fatalf("unexpected redaction on non-sensitive path")
	}
}

func TestRedactLogBodyInvalidJSON(t *testing.T) {
	body := []byte("not-json")
	out := redactLogBody("/v1/uploads/presign", body)
	if out != "[redacted]" {
		t.Fatalf("expected redacted placeholder for invalid json")
	}
}
