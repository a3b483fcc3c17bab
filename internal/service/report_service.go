package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/CivicGate/civigate/internal/pkg/metrics"
	"github.com/CivicGate/civigate/internal/repository"
	"github.com/google/uuid"
)

// ReportRepo covers the store's keyed primitives.
type ReportRepo interface {
	Insert(ctx context.Context, rep *model.Report) error
	Get(ctx context.Context, reportID string) (*model.Report, error)
	UpdateStatus(ctx context.Context, reportID, status string) error
}

// ReportFinder covers the query planner's access paths: the two
// secondary orderings and the full scan.
type ReportFinder interface {
	ListByStatus(ctx context.Context, status string, asc bool) ([]model.Report, error)
	ListByCategory(ctx context.Context, category string, asc bool) ([]model.Report, error)
	ScanAll(ctx context.Context) ([]model.Report, error)
}

// HistoryRepo is the append-only ledger.
type HistoryRepo interface {
	Append(ctx context.Context, item *model.HistoryItem) error
	ListByReport(ctx context.Context, reportID string) ([]model.HistoryItem, error)
}

// Auditor receives one entry per sensitive action; failures inside the
// sink never surface here.
type Auditor interface {
	Log(entry *model.AuditLog)
}

// ReportNotifier publishes the new-report event. Best effort by
// contract: the implementation must not let a delivery failure reach
// the caller.
type ReportNotifier interface {
	PublishNewReport(ev model.NewReportEvent)
}

type ReportService struct {
	reports  ReportRepo
	finder   ReportFinder
	history  HistoryRepo
	audit    Auditor
	notifier ReportNotifier // may be nil
	now      func() time.Time
}

func NewReportService(reports ReportRepo, finder ReportFinder, history HistoryRepo, audit Auditor, notifier ReportNotifier) *ReportService {
	return &ReportService{
		reports:  reports,
		finder:   finder,
		history:  history,
		audit:    audit,
		notifier: notifier,
		now:      time.Now,
	}
}

const (
	maxDescriptionLen = 2000
	maxContactLen     = 50
	maxMemoLen        = 4000
)

// Create validates and persists a citizen report. All validation runs
// before any write; the audit entry and the notification follow only
// after the store accepted the row.
func (s *ReportService) Create(ctx context.Context, reporterID string, req model.CreateReportRequest) (*model.Report, error) {
	if !model.IsValidCategory(req.Category) {
		return nil, apperrors.NewValidation("invalid category")
	}
	if req.Lat == nil || req.Lng == nil || !isFinite(*req.Lat) || !isFinite(*req.Lng) {
		return nil, apperrors.NewValidation("invalid lat/lng")
	}
	// Limits are in characters, not bytes; multibyte text counts per rune.
	if utf8.RuneCountInString(req.Description) > maxDescriptionLen {
		return nil, apperrors.NewValidation("description too long")
	}
	if utf8.RuneCountInString(req.ContactPhone) > maxContactLen {
		return nil, apperrors.NewValidation("contact phone too long")
	}

	rep := &model.Report{
		ReportID:     uuid.New().String(),
		CreatedAt:    formatISO(s.now()),
		Category:     req.Category,
		Status:       model.StatusPending,
		Lat:          *req.Lat,
		Lng:          *req.Lng,
		Description:  req.Description,
		ContactPhone: req.ContactPhone,
		PhotoKeys:    req.PhotoKeys,
		ReporterID:   reporterID,
	}
	if rep.PhotoKeys == nil {
		rep.PhotoKeys = []string{}
	}

	if err := s.reports.Insert(ctx, rep); err != nil {
		return nil, apperrors.Wrap(err)
	}

	metrics.ReportsCreated.WithLabelValues(rep.Category).Inc()
	s.audit.Log(&model.AuditLog{
		ActorType: model.ActorCitizen,
		ActorID:   reporterID,
		Action:    model.ActionReportCreate,
		ReportID:  rep.ReportID,
		Details:   map[string]any{"category": rep.Category},
	})

	if s.notifier != nil {
		s.notifier.PublishNewReport(model.NewReportEvent{
			ReportID:  rep.ReportID,
			Category:  rep.Category,
			CreatedAt: rep.CreatedAt,
			Lat:       rep.Lat,
			Lng:       rep.Lng,
		})
	}

	return rep, nil
}

func (s *ReportService) Get(ctx context.Context, reportID string, role model.Role) (*model.Report, error) {
	rep, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	redacted := RedactReport(*rep, role)
	return &redacted, nil
}

// GetContact is the reveal operation: it always returns the contact
// unmasked and always leaves History and Audit entries behind. A report
// without a stored contact yields an empty response and no entries.
func (s *ReportService) GetContact(ctx context.Context, reportID string, staff model.Staff) (*model.ContactResponse, error) {
	rep, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if rep.ContactPhone == "" {
		return &model.ContactResponse{}, nil
	}

	item := &model.HistoryItem{
		ReportID:  reportID,
		ChangedAt: formatISO(s.now()),
		ChangedBy: staff.StaffID,
		Action:    model.ActionViewContact,
		ToValue:   "viewed",
	}
	if err := s.history.Append(ctx, item); err != nil {
		return nil, apperrors.Wrap(err)
	}
	s.audit.Log(&model.AuditLog{
		ActorType: model.ActorStaff,
		ActorID:   staff.StaffID,
		Action:    model.ActionViewContact,
		ReportID:  reportID,
	})

	return &model.ContactResponse{ContactPhone: rep.ContactPhone}, nil
}

// UpdateStatus reads the current status for the ledger, persists the
// new one, then appends history and audit. Concurrent calls on the same
// report are not serialized: last writer wins on the current status
// while both transitions remain in history.
func (s *ReportService) UpdateStatus(ctx context.Context, reportID, status string, staff model.Staff) error {
	if !model.IsValidStatus(status) {
		return apperrors.NewValidation("invalid status")
	}

	current, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return mapStoreError(err)
	}

	if err := s.reports.UpdateStatus(ctx, reportID, status); err != nil {
		return mapStoreError(err)
	}

	item := &model.HistoryItem{
		ReportID:  reportID,
		ChangedAt: formatISO(s.now()),
		ChangedBy: staff.StaffID,
		Action:    model.ActionStatusChange,
		FromValue: current.Status,
		ToValue:   status,
	}
	if err := s.history.Append(ctx, item); err != nil {
		return apperrors.Wrap(err)
	}

	metrics.StatusChanges.WithLabelValues(status).Inc()
	s.audit.Log(&model.AuditLog{
		ActorType: model.ActorStaff,
		ActorID:   staff.StaffID,
		Action:    model.ActionStatusChange,
		ReportID:  reportID,
		Details:   map[string]any{"from": current.Status, "to": status},
	})
	return nil
}

// AddMemo appends a memo to the ledger without touching the report row.
func (s *ReportService) AddMemo(ctx context.Context, reportID, memo string, staff model.Staff) error {
	if strings.TrimSpace(memo) == "" {
		return apperrors.NewValidation("invalid memo")
	}
	if utf8.RuneCountInString(memo) > maxMemoLen {
		return apperrors.NewValidation("memo too long")
	}

	if _, err := s.reports.Get(ctx, reportID); err != nil {
		return mapStoreError(err)
	}

	item := &model.HistoryItem{
		ReportID:  reportID,
		ChangedAt: formatISO(s.now()),
		ChangedBy: staff.StaffID,
		Action:    model.ActionMemoUpdate,
		ToValue:   "memo",
		Memo:      memo,
	}
	if err := s.history.Append(ctx, item); err != nil {
		return apperrors.Wrap(err)
	}
	s.audit.Log(&model.AuditLog{
		ActorType: model.ActorStaff,
		ActorID:   staff.StaffID,
		Action:    model.ActionMemoUpdate,
		ReportID:  reportID,
	})
	return nil
}

// History returns the ledger newest-first.
func (s *ReportService) History(ctx context.Context, reportID string) ([]model.HistoryItem, error) {
	items, err := s.history.ListByReport(ctx, reportID)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return items, nil
}

// LogExport records a CSV export in the audit trail.
func (s *ReportService) LogExport(staff model.Staff, count int) {
	s.audit.Log(&model.AuditLog{
		ActorType: model.ActorStaff,
		ActorID:   staff.StaffID,
		Action:    model.ActionExport,
		Details:   map[string]any{"count": count},
	})
}

func mapStoreError(err error) error {
	if errors.Is(err, repository.ErrReportNotFound) {
		return apperrors.NewNotFound("report not found")
	}
	return apperrors.Wrap(err)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
