package model

// Audit actor types.
const (
	ActorCitizen = "citizen"
	ActorStaff   = "staff"
)

// Audit actions beyond the history ledger ones (which are reused here
// verbatim: STATUS_CHANGE, MEMO_UPDATE, VIEW_CONTACT, EXPORT).
const (
	ActionReportCreate     = "REPORT_CREATE"
	ActionShelterSave      = "SHELTER_SAVE"
	ActionUploadPresignPut = "UPLOAD_PRESIGN_PUT"
	ActionUploadPresignGet = "UPLOAD_PRESIGN_GET"
)

// AuditLog is one entry of the global compliance trail. The service
// only ever appends; reads happen through the auditdump tool.
type AuditLog struct {
	LogID     string         `json:"log_id"`
	Timestamp string         `json:"timestamp"`
	ActorType string         `json:"actor_type"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	ReportID  string         `json:"report_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}
