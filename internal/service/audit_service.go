package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/logger"
	"github.com/google/uuid"
)

// AuditRepo is the durable sink for the global audit trail.
type AuditRepo interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
}

// AuditService decouples audit appends from the request path: entries
// go through a bounded channel to a consumer goroutine that writes
// Postgres and a daily JSONL file. When the buffer is full the entry is
// dropped with a warning rather than blocking or failing the primary
// operation.
type AuditService struct {
	logChan chan *model.AuditLog
	logFile *os.File
	repo    AuditRepo
	done    chan struct{}
	now     func() time.Time
}

func NewAuditService(logDir string, repo AuditRepo) (*AuditService, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	filename := filepath.Join(logDir, "audit-"+time.Now().UTC().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	svc := &AuditService{
		logChan: make(chan *model.AuditLog, 1000),
		logFile: f,
		repo:    repo,
		done:    make(chan struct{}),
		now:     time.Now,
	}

	go svc.consume()

	return svc, nil
}

// Log enqueues one entry, assigning log_id and timestamp when the
// caller left them empty. Never blocks.
func (s *AuditService) Log(entry *model.AuditLog) {
	if entry == nil {
		return
	}
	if entry.LogID == "" {
		entry.LogID = uuid.New().String()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = formatISO(s.now())
	}

	select {
	case s.logChan <- entry:
	default:
		logger.Warn("audit buffer full, dropping entry", "action", entry.Action)
	}
}

func (s *AuditService) consume() {
	defer close(s.done)
	encoder := json.NewEncoder(s.logFile)
	for entry := range s.logChan {
		if s.repo != nil {
			if err := s.repo.Insert(context.Background(), entry); err != nil {
				logger.Error("failed to persist audit entry", "error", err, "action", entry.Action)
			}
		}
		if err := encoder.Encode(entry); err != nil {
			logger.Error("failed to write audit file", "error", err)
		}
	}
}

func (s *AuditService) Close() {
	close(s.logChan)
	<-s.done
	_ = s.logFile.Close()
}
