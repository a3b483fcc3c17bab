package service

import (
	"context"
	"strings"
	"time"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/google/uuid"
)

type ShelterRepo interface {
	Upsert(ctx context.Context, s *model.Shelter) error
	List(ctx context.Context) ([]model.Shelter, error)
}

type ShelterService struct {
	repo  ShelterRepo
	audit Auditor
	now   func() time.Time
}

func NewShelterService(repo ShelterRepo, audit Auditor) *ShelterService {
	return &ShelterService{repo: repo, audit: audit, now: time.Now}
}

func (s *ShelterService) List(ctx context.Context) ([]model.Shelter, error) {
	shelters, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return shelters, nil
}

// Save creates or replaces a shelter. An empty shelterID means create;
// the caller-provided id (from the URL) wins otherwise.
func (s *ShelterService) Save(ctx context.Context, shelterID string, req model.ShelterSaveRequest, staff model.Staff) (*model.Shelter, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidation("invalid name")
	}
	if req.Lat == nil || req.Lng == nil || !isFinite(*req.Lat) || !isFinite(*req.Lng) {
		return nil, apperrors.NewValidation("invalid lat/lng")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	if shelterID == "" {
		shelterID = uuid.New().String()
	}

	shelter := &model.Shelter{
		ShelterID: shelterID,
		Name:      name,
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		IsActive:  active,
		UpdatedAt: formatISO(s.now()),
		UpdatedBy: staff.StaffID,
	}
	if err := s.repo.Upsert(ctx, shelter); err != nil {
		return nil, apperrors.Wrap(err)
	}

	s.audit.Log(&model.AuditLog{
		ActorType: model.ActorStaff,
		ActorID:   staff.StaffID,
		Action:    model.ActionShelterSave,
		Details:   map[string]any{"shelter_id": shelter.ShelterID},
	})
	return shelter, nil
}
