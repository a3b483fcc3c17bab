package model

// Report categories form a closed enum fixed at intake time.
const (
	CategoryRoadDamage     = "road_damage"
	CategoryDisaster       = "disaster"
	CategoryAnimalAccident = "animal_accident"
)

// Report statuses; pending is assigned at creation, everything else is
// reached through the status-change operation only.
const (
	StatusPending     = "pending"
	StatusInProgress  = "in_progress"
	StatusCompleted   = "completed"
	StatusFalseReport = "false_report"
	StatusDuplicate   = "duplicate"
)

func IsValidCategory(s string) bool {
	switch s {
	case CategoryRoadDamage, CategoryDisaster, CategoryAnimalAccident:
		return true
	}
	return false
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFalseReport, StatusDuplicate:
		return true
	}
	return false
}

// Report is a citizen incident report. CreatedAt is a fixed-width
// ISO-8601 UTC string, so lexicographic order equals time order and it
// doubles as the natural sort key. Only Status is mutable.
type Report struct {
	ReportID     string   `json:"report_id" db:"report_id"`
	CreatedAt    string   `json:"created_at" db:"created_at"`
	Category     string   `json:"category" db:"category"`
	Status       string   `json:"status" db:"status"`
	Lat          float64  `json:"lat" db:"lat"`
	Lng          float64  `json:"lng" db:"lng"`
	Description  string   `json:"description,omitempty" db:"description"`
	ContactPhone string   `json:"contact_phone,omitempty" db:"contact_phone"`
	PhotoKeys    []string `json:"photo_keys"`
	ReporterID   string   `json:"reporter_id" db:"reporter_id"`
}

// History actions.
const (
	ActionStatusChange = "STATUS_CHANGE"
	ActionMemoUpdate   = "MEMO_UPDATE"
	ActionViewContact  = "VIEW_CONTACT"
	ActionExport       = "EXPORT"
)

// HistoryItem is one append-only ledger entry for a report mutation.
type HistoryItem struct {
	ReportID  string `json:"report_id" db:"report_id"`
	ChangedAt string `json:"changed_at" db:"changed_at"`
	ChangedBy string `json:"changed_by" db:"changed_by"`
	Action    string `json:"action" db:"action"`
	FromValue string `json:"from_value,omitempty" db:"from_value"`
	ToValue   string `json:"to_value,omitempty" db:"to_value"`
	Memo      string `json:"memo,omitempty" db:"memo"`
}

// ReportFilter narrows a list query. Status and Category are matched by
// set membership; Keyword is a case-sensitive substring match against
// Description; the date bounds compare lexicographically against
// CreatedAt.
type ReportFilter struct {
	StartDate string
	EndDate   string
	Status    []string
	Category  []string
	Keyword   string
}

type ReportSort struct {
	Field string // created_at | status | category
	Order string // asc | desc
}

const (
	SortFieldCreatedAt = "created_at"
	SortFieldStatus    = "status"
	SortFieldCategory  = "category"
)
