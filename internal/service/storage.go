package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// photoKeyPrefix namespaces every citizen photo; download presigns are
// refused outside it so staff cannot mint URLs for arbitrary objects.
const photoKeyPrefix = "reports/"

var unsafeKeyChars = regexp.MustCompile(`[^\w.\-]`)

// StorageService issues presigned upload and download URLs for report
// photos. The object store itself stays external; the core only hands
// out short-lived URLs and records who asked.
type StorageService struct {
	client  *storage.Client
	bucket  string
	expires time.Duration
	audit   Auditor
}

func NewStorageService(ctx context.Context, bucket string, expires time.Duration, audit Auditor) (*StorageService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage client: %w", err)
	}
	return &StorageService{
		client:  client,
		bucket:  bucket,
		expires: expires,
		audit:   audit,
	}, nil
}

// PresignPut mints an upload URL under the citizen's own namespace. The
// requested key only contributes a sanitized basename; the final key is
// always server-chosen.
func (s *StorageService) PresignPut(citizenID, requestedKey, contentType string) (*model.PresignResponse, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("%s%s/%s-%s", photoKeyPrefix, citizenID, uuid.New().String(), safeBasename(requestedKey))

	url, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:      "PUT",
		Expires:     time.Now().Add(s.expires),
		ContentType: contentType,
		Scheme:      storage.SigningSchemeV4,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUpstream, "failed to sign upload url", err)
	}

	s.audit.Log(&model.AuditLog{
		ActorType: model.ActorCitizen,
		ActorID:   citizenID,
		Action:    model.ActionUploadPresignPut,
		Details:   map[string]any{"key": key},
	})
	return &model.PresignResponse{URL: url, Key: key, ExpiresIn: int(s.expires.Seconds())}, nil
}

func (s *StorageService) PresignGet(staff model.Staff, key string) (*model.PresignResponse, error) {
	if !strings.HasPrefix(key, photoKeyPrefix) {
		return nil, apperrors.NewValidation("invalid key")
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(s.expires),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.ErrUpstream, "failed to sign download url", err)
	}

	s.audit.Log(&model.AuditLog{
		ActorType: model.ActorStaff,
		ActorID:   staff.StaffID,
		Action:    model.ActionUploadPresignGet,
		Details:   map[string]any{"key": key},
	})
	return &model.PresignResponse{URL: url, Key: key, ExpiresIn: int(s.expires.Seconds())}, nil
}

// safeBasename strips path elements and risky characters from a
// client-supplied file name.
func safeBasename(name string) string {
	parts := strings.Split(name, "/")
	base := parts[len(parts)-1]
	if base == "" {
		base = name
	}
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	if len(base) > 120 {
		base = base[:120]
	}
	return base
}
