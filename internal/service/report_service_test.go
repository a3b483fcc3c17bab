package service

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/CivicGate/civigate/internal/repository"
)

type fakeReportStore struct {
	reports map[string]*model.Report
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: make(map[string]*model.Report)}
}

func (f *fakeReportStore) Insert(_ context.Context, rep *model.Report) error {
	cp := *rep
	f.reports[rep.ReportID] = &cp
	return nil
}

func (f *fakeReportStore) Get(_ context.Context, reportID string) (*model.Report, error) {
	rep, ok := f.reports[reportID]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	cp := *rep
	return &cp, nil
}

func (f *fakeReportStore) UpdateStatus(_ context.Context, reportID, status string) error {
	rep, ok := f.reports[reportID]
	if !ok {
		return repository.ErrReportNotFound
	}
	rep.Status = status
	return nil
}

// fakeLedger returns entries newest-first like the real repository.
type fakeLedger struct {
	items []model.HistoryItem
}

func (f *fakeLedger) Append(_ context.Context, item *model.HistoryItem) error {
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeLedger) ListByReport(_ context.Context, reportID string) ([]model.HistoryItem, error) {
	var out []model.HistoryItem
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].ReportID == reportID {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

type fakeAudit struct {
	entries []*model.AuditLog
}

func (f *fakeAudit) Log(entry *model.AuditLog) {
	f.entries = append(f.entries, entry)
}

type fixture struct {
	svc    *ReportService
	store  *fakeReportStore
	ledger *fakeLedger
	audit  *fakeAudit
	clock  *time.Time
}

func newFixture() *fixture {
	store := newFakeReportStore()
	ledger := &fakeLedger{}
	audit := &fakeAudit{}

	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc := NewReportService(store, nil, ledger, audit, nil)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, store: store, ledger: ledger, audit: audit, clock: &now}
}

func (f *fixture) tick() {
	*f.clock = f.clock.Add(time.Minute)
}

func ptr(v float64) *float64 { return &v }

func validCreateRequest() model.CreateReportRequest {
	return model.CreateReportRequest{
		Category:     model.CategoryRoadDamage,
		Lat:          ptr(35.6812),
		Lng:          ptr(139.7671),
		Description:  "pothole near the station",
		ContactPhone: "09012345678",
	}
}

func assertErrType(t *testing.T, err error, want apperrors.ErrorType) {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Type != want {
		t.Fatalf("expected %s, got %s (%v)", want, appErr.Type, err)
	}
}

func TestCreateAssignsPendingAndAudits(t *testing.T) {
	f := newFixture()

	rep, err := f.svc.Create(context.Background(), "citizen-1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rep.ReportID == "" {
		t.Fatal("report id not assigned")
	}
	if rep.Status != model.StatusPending {
		t.Fatalf("initial status must be pending, got %q", rep.Status)
	}
	if rep.CreatedAt != "2026-04-01T09:00:00.000Z" {
		t.Fatalf("created_at not fixed-width ISO: %q", rep.CreatedAt)
	}
	if rep.PhotoKeys == nil {
		t.Fatal("photo keys should default to an empty slice")
	}
	if rep.ReporterID != "citizen-1" {
		t.Fatalf("reporter id: %q", rep.ReporterID)
	}

	stored, err := f.store.Get(context.Background(), rep.ReportID)
	if err != nil {
		t.Fatalf("stored report missing: %v", err)
	}
	if stored.ContactPhone != "09012345678" {
		t.Fatalf("contact stored unmasked, got %q", stored.ContactPhone)
	}

	if len(f.audit.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(f.audit.entries))
	}
	entry := f.audit.entries[0]
	if entry.Action != model.ActionReportCreate || entry.ActorType != model.ActorCitizen || entry.ReportID != rep.ReportID {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*model.CreateReportRequest)
	}{
		{"unknown category", func(r *model.CreateReportRequest) { r.Category = "noise" }},
		{"missing lat", func(r *model.CreateReportRequest) { r.Lat = nil }},
		{"nan lng", func(r *model.CreateReportRequest) { r.Lng = ptr(math.NaN()) }},
		{"infinite lat", func(r *model.CreateReportRequest) { r.Lat = ptr(math.Inf(1)) }},
		{"description too long", func(r *model.CreateReportRequest) { r.Description = strings.Repeat("a", maxDescriptionLen+1) }},
		{"multibyte description too long", func(r *model.CreateReportRequest) { r.Description = strings.Repeat("道", maxDescriptionLen+1) }},
		{"contact too long", func(r *model.CreateReportRequest) { r.ContactPhone = strings.Repeat("9", maxContactLen+1) }},
	}
	for _, tc := range cases {
		req := validCreateRequest()
		tc.mutate(&req)
		if _, err := f.svc.Create(ctx, "citizen-1", req); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		} else {
			assertErrType(t, err, apperrors.ErrValidation)
		}
	}

	// Nothing may be written when validation fails.
	if len(f.store.reports) != 0 || len(f.audit.entries) != 0 {
		t.Fatal("failed create must not leave writes behind")
	}
}

func TestCreateCountsCharactersNotBytes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// A maximum-length Japanese description is three bytes per rune and
	// must still be accepted.
	req := validCreateRequest()
	req.Description = strings.Repeat("道", maxDescriptionLen)
	if _, err := f.svc.Create(ctx, "citizen-1", req); err != nil {
		t.Fatalf("%d-character description rejected: %v", maxDescriptionLen, err)
	}

	req = validCreateRequest()
	req.ContactPhone = strings.Repeat("〇", maxContactLen)
	if _, err := f.svc.Create(ctx, "citizen-1", req); err != nil {
		t.Fatalf("%d-character contact rejected: %v", maxContactLen, err)
	}
}

func TestUpdateStatusWritesLedgerAndAudit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	staff := model.Staff{StaffID: "staff-1", Role: model.RoleOperator}

	rep, err := f.svc.Create(ctx, "citizen-1", validCreateRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.tick()

	if err := f.svc.UpdateStatus(ctx, rep.ReportID, model.StatusInProgress, staff); err != nil {
		t.Fatalf("update status: %v", err)
	}

	stored, _ := f.store.Get(ctx, rep.ReportID)
	if stored.Status != model.StatusInProgress {
		t.Fatalf("status not persisted: %q", stored.Status)
	}

	items, _ := f.svc.History(ctx, rep.ReportID)
	if len(items) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(items))
	}
	entry := items[0]
	if entry.Action != model.ActionStatusChange || entry.FromValue != model.StatusPending || entry.ToValue != model.StatusInProgress {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}
	if entry.ChangedBy != "staff-1" {
		t.Fatalf("changed_by: %q", entry.ChangedBy)
	}

	last := f.audit.entries[len(f.audit.entries)-1]
	if last.Action != model.ActionStatusChange || last.Details["from"] != model.StatusPending || last.Details["to"] != model.StatusInProgress {
		t.Fatalf("unexpected audit entry: %+v", last)
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture()
	staff := model.Staff{StaffID: "staff-1", Role: model.RoleOperator}

	err := f.svc.UpdateStatus(context.Background(), "r1", "archived", staff)
	assertErrType(t, err, apperrors.ErrValidation)
}

func TestUpdateStatusMissingReport(t *testing.T) {
	f := newFixture()
	staff := model.Staff{StaffID: "staff-1", Role: model.RoleOperator}

	err := f.svc.UpdateStatus(context.Background(), "missing", model.StatusCompleted, staff)
	assertErrType(t, err, apperrors.ErrNotFound)
}

func TestAddMemoAppendsOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	staff := model.Staff{StaffID: "staff-1", Role: model.RoleOperator}

	rep, _ := f.svc.Create(ctx, "citizen-1", validCreateRequest())
	before, _ := f.store.Get(ctx, rep.ReportID)

	f.tick()
	if err := f.svc.AddMemo(ctx, rep.ReportID, "called the road crew", staff); err != nil {
		t.Fatalf("add memo: %v", err)
	}

	after, _ := f.store.Get(ctx, rep.ReportID)
	if !reflect.DeepEqual(after, before) {
		t.Fatal("memo must not touch the report row")
	}

	items, _ := f.svc.History(ctx, rep.ReportID)
	if len(items) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(items))
	}
	if items[0].Action != model.ActionMemoUpdate || items[0].ToValue != "memo" || items[0].Memo != "called the road crew" {
		t.Fatalf("unexpected memo entry: %+v", items[0])
	}
}

func TestAddMemoValidation(t *testing.T) {
	f := newFixture()
	staff := model.Staff{StaffID: "staff-1", Role: model.RoleOperator}
	ctx := context.Background()

	assertErrType(t, f.svc.AddMemo(ctx, "r1", "   ", staff), apperrors.ErrValidation)
	assertErrType(t, f.svc.AddMemo(ctx, "r1", strings.Repeat("x", maxMemoLen+1), staff), apperrors.ErrValidation)
	assertErrType(t, f.svc.AddMemo(ctx, "r1", strings.Repeat("あ", maxMemoLen+1), staff), apperrors.ErrValidation)
	assertErrType(t, f.svc.AddMemo(ctx, "missing", "memo", staff), apperrors.ErrNotFound)

	// Character-counted limit: a maximum-length multibyte memo passes.
	rep, _ := f.svc.Create(ctx, "citizen-1", validCreateRequest())
	if err := f.svc.AddMemo(ctx, rep.ReportID, strings.Repeat("あ", maxMemoLen), staff); err != nil {
		t.Fatalf("%d-character memo rejected: %v", maxMemoLen, err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	staff := model.Staff{StaffID: "staff-1", Role: model.RoleOperator}

	rep, _ := f.svc.Create(ctx, "citizen-1", validCreateRequest())
	f.tick()
	_ = f.svc.UpdateStatus(ctx, rep.ReportID, model.StatusInProgress, staff)
	f.tick()
	_ = f.svc.AddMemo(ctx, rep.ReportID, "first pass done", staff)

	items, err := f.svc.History(ctx, rep.ReportID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(items))
	}
	if items[0].Action != model.ActionMemoUpdate || items[1].Action != model.ActionStatusChange {
		t.Fatalf("not newest-first: %v then %v", items[0].Action, items[1].Action)
	}
	if !(items[0].ChangedAt > items[1].ChangedAt) {
		t.Fatalf("timestamps out of order: %q vs %q", items[0].ChangedAt, items[1].ChangedAt)
	}
}

func TestGetContactRevealLeavesTrail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	staff := model.Staff{StaffID: "staff-7", Role: model.RoleOperator}

	rep, _ := f.svc.Create(ctx, "citizen-1", validCreateRequest())
	auditBefore := len(f.audit.entries)

	contact, err := f.svc.GetContact(ctx, rep.ReportID, staff)
	if err != nil {
		t.Fatalf("get contact: %v", err)
	}
	if contact.ContactPhone != "09012345678" {
		t.Fatalf("reveal must return the clear value, got %q", contact.ContactPhone)
	}

	items, _ := f.svc.History(ctx, rep.ReportID)
	if len(items) != 1 || items[0].Action != model.ActionViewContact || items[0].ToValue != "viewed" {
		t.Fatalf("reveal must leave a ledger entry: %+v", items)
	}
	if len(f.audit.entries) != auditBefore+1 {
		t.Fatal("reveal must leave an audit entry")
	}
}

func TestGetContactEmptyLeavesNoTrail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	staff := model.Staff{StaffID: "staff-7", Role: model.RoleOperator}

	req := validCreateRequest()
	req.ContactPhone = ""
	rep, _ := f.svc.Create(ctx, "citizen-1", req)
	auditBefore := len(f.audit.entries)

	contact, err := f.svc.GetContact(ctx, rep.ReportID, staff)
	if err != nil {
		t.Fatalf("get contact: %v", err)
	}
	if contact.ContactPhone != "" {
		t.Fatalf("expected empty contact, got %q", contact.ContactPhone)
	}

	items, _ := f.svc.History(ctx, rep.ReportID)
	if len(items) != 0 {
		t.Fatalf("no-contact reveal must not write history: %+v", items)
	}
	if len(f.audit.entries) != auditBefore {
		t.Fatal("no-contact reveal must not write audit")
	}
}

func TestGetRedactsByRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rep, _ := f.svc.Create(ctx, "citizen-1", validCreateRequest())

	asViewer, err := f.svc.Get(ctx, rep.ReportID, model.RoleViewer)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if asViewer.ContactPhone != "****5678" {
		t.Fatalf("viewer should see masked contact, got %q", asViewer.ContactPhone)
	}

	asOperator, _ := f.svc.Get(ctx, rep.ReportID, model.RoleOperator)
	if asOperator.ContactPhone != "09012345678" {
		t.Fatalf("operator should see clear contact, got %q", asOperator.ContactPhone)
	}

	_, err = f.svc.Get(ctx, "missing", model.RoleAdmin)
	assertErrType(t, err, apperrors.ErrNotFound)
}

func TestLogExport(t *testing.T) {
	f := newFixture()
	staff := model.Staff{StaffID: "staff-1", Role: model.RoleAdmin}

	f.svc.LogExport(staff, 42)

	if len(f.audit.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(f.audit.entries))
	}
	entry := f.audit.entries[0]
	if entry.Action != model.ActionExport || entry.Details["count"] != 42 {
		t.Fatalf("unexpected export entry: %+v", entry)
	}
}
