package service

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/CivicGate/civigate/internal/model"
)

var csvHeader = []string{
	"report_id",
	"created_at",
	"category",
	"status",
	"lat",
	"lng",
	"description",
	"contact_phone",
	"photo_keys",
	"reporter_id",
}

// ReportsToCSV renders reports as RFC-4180 CSV. The contact column is
// masked unless includeContact; photo keys are joined with "|" inside a
// single cell.
func ReportsToCSV(reports []model.Report, includeContact bool) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.UseCRLF = false

	_ = w.Write(csvHeader)
	for _, r := range reports {
		contact := r.ContactPhone
		if !includeContact && contact != "" {
			contact = MaskPhone(contact)
		}
		_ = w.Write([]string{
			r.ReportID,
			r.CreatedAt,
			r.Category,
			r.Status,
			strconv.FormatFloat(r.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Lng, 'f', -1, 64),
			r.Description,
			contact,
			strings.Join(r.PhotoKeys, "|"),
			r.ReporterID,
		})
	}
	w.Flush()
	return sb.String()
}
