package service

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/CivicGate/civigate/internal/model"
)

func TestReportsToCSVRoundTrip(t *testing.T) {
	reports := []model.Report{
		{
			ReportID:     "r1",
			CreatedAt:    "2026-04-01T09:30:00.000Z",
			Category:     model.CategoryRoadDamage,
			Status:       model.StatusPending,
			Lat:          35.6812,
			Lng:          139.7671,
			Description:  "pothole, near the \"north\" gate\nsecond line",
			ContactPhone: "09012345678",
			PhotoKeys:    []string{"reports/c1/a.jpg", "reports/c1/b.jpg"},
			ReporterID:   "citizen-1",
		},
	}

	out := ReportsToCSV(reports, true)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not parseable csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	for i, col := range csvHeader {
		if records[0][i] != col {
			t.Fatalf("header column %d: got %q, want %q", i, records[0][i], col)
		}
	}

	row := records[1]
	if row[0] != "r1" || row[1] != "2026-04-01T09:30:00.000Z" {
		t.Fatalf("unexpected id/created_at: %v", row[:2])
	}
	if row[4] != "35.6812" || row[5] != "139.7671" {
		t.Fatalf("unexpected coordinates: %v", row[4:6])
	}
	// Embedded comma, quote and newline must round-trip through quoting.
	if row[6] != "pothole, near the \"north\" gate\nsecond line" {
		t.Fatalf("description mangled: %q", row[6])
	}
	if row[7] != "09012345678" {
		t.Fatalf("contact should be clear with includeContact: %q", row[7])
	}
	if row[8] != "reports/c1/a.jpg|reports/c1/b.jpg" {
		t.Fatalf("photo keys not pipe-joined: %q", row[8])
	}
}

func TestReportsToCSVMasksContact(t *testing.T) {
	reports := []model.Report{
		{ReportID: "r1", ContactPhone: "09012345678"},
		{ReportID: "r2"},
	}

	out := ReportsToCSV(reports, false)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if records[1][7] != "****5678" {
		t.Fatalf("contact not masked: %q", records[1][7])
	}
	if records[2][7] != "" {
		t.Fatalf("empty contact should stay empty: %q", records[2][7])
	}
}

func TestReportsToCSVEmpty(t *testing.T) {
	out := ReportsToCSV(nil, false)
	if out != strings.Join(csvHeader, ",")+"\n" {
		t.Fatalf("empty export should be header only: %q", out)
	}
}
