package service

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/CivicGate/civigate/internal/model"
)

type captureAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditLog
}

func (r *captureAuditRepo) Insert(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func TestAuditServiceWritesRepoAndFile(t *testing.T) {
	dir := t.TempDir()
	repo := &captureAuditRepo{}

	svc, err := NewAuditService(dir, repo)
	if err != nil {
		t.Fatalf("new audit service: %v", err)
	}

	svc.Log(&model.AuditLog{
		ActorType: model.ActorStaff,
		ActorID:   "staff-1",
		Action:    model.ActionExport,
		Details:   map[string]any{"count": 3},
	})
	svc.Close()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 repo insert, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.LogID == "" {
		t.Fatal("log_id not assigned")
	}
	if entry.Timestamp == "" {
		t.Fatal("timestamp not assigned")
	}

	filename := filepath.Join(dir, "audit-"+time.Now().UTC().Format("2006-01-02")+".jsonl")
	f, err := os.Open(filename)
	if err != nil {
		t.Fatalf("audit file missing: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("audit file empty")
	}
	var fromFile model.AuditLog
	if err := json.Unmarshal(scanner.Bytes(), &fromFile); err != nil {
		t.Fatalf("audit line not json: %v", err)
	}
	if fromFile.LogID != entry.LogID || fromFile.Action != model.ActionExport {
		t.Fatalf("file entry mismatch: %+v", fromFile)
	}
}

func TestAuditServiceNilEntryIgnored(t *testing.T) {
	svc, err := NewAuditService(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new audit service: %v", err)
	}
	svc.Log(nil)
	svc.Close()
}
