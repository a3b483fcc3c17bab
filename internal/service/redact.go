package service

import "github.com/CivicGate/civigate/internal/model"

const maskPrefix = "****"

// MaskPhone hides everything but the last four characters. Inputs of
// four characters or fewer pass through unchanged, which also makes the
// transform idempotent: a masked value is prefix + 4 chars, and masking
// it again re-masks to the same tail. Character means rune here, so
// multibyte values never get split mid-sequence.
func MaskPhone(phone string) string {
	runes := []rune(phone)
	if len(runes) <= 4 {
		return phone
	}
	return maskPrefix + string(runes[len(runes)-4:])
}

// RedactReport applies the role-based redaction contract to a single
// report. Viewer is the only tier that sees a masked contact; operator
// and admin read it clear in ordinary responses.
func RedactReport(r model.Report, role model.Role) model.Report {
	if role == model.RoleViewer && r.ContactPhone != "" {
		r.ContactPhone = MaskPhone(r.ContactPhone)
	}
	return r
}

func RedactReports(reports []model.Report, role model.Role) []model.Report {
	if role != model.RoleViewer {
		return reports
	}
	out := make([]model.Report, len(reports))
	for i, r := range reports {
		out[i] = RedactReport(r, role)
	}
	return out
}
