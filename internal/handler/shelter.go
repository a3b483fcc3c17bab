package handler

import (
	"net/http"

	"github.com/CivicGate/civigate/internal/middleware"
	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/CivicGate/civigate/internal/service"
	"github.com/gin-gonic/gin"
)

type ShelterHandler struct {
	svc *service.ShelterService
}

func NewShelterHandler(svc *service.ShelterService) *ShelterHandler {
	return &ShelterHandler{svc: svc}
}

func (h *ShelterHandler) List(c *gin.Context) {
	shelters, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, shelters)
}

func (h *ShelterHandler) Create(c *gin.Context) {
	h.save(c, "")
}

func (h *ShelterHandler) Update(c *gin.Context) {
	h.save(c, c.Param("id"))
}

func (h *ShelterHandler) save(c *gin.Context, shelterID string) {
	staff := c.MustGet(middleware.ContextStaffKey).(model.Staff)

	var req model.ShelterSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}

	shelter, err := h.svc.Save(c.Request.Context(), shelterID, req, staff)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, shelter)
}
