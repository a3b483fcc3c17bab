package handler

import (
	"net/http"

	"github.com/CivicGate/civigate/internal/middleware"
	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// Presigner issues short-lived photo upload/download URLs.
type Presigner interface {
	PresignPut(citizenID, requestedKey, contentType string) (*model.PresignResponse, error)
	PresignGet(staff model.Staff, key string) (*model.PresignResponse, error)
}

type UploadHandler struct {
	svc Presigner
}

func NewUploadHandler(svc Presigner) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// PresignPut issues a citizen upload URL.
func (h *UploadHandler) PresignPut(c *gin.Context) {
	citizenID := c.MustGet(middleware.ContextCitizenKey).(string)

	var req model.PresignPutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}

	res, err := h.svc.PresignPut(citizenID, req.Key, req.ContentType)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PresignGet issues a staff download URL for keys under the report
// photo namespace.
func (h *UploadHandler) PresignGet(c *gin.Context) {
	staff := c.MustGet(middleware.ContextStaffKey).(model.Staff)

	var req model.PresignGetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}

	res, err := h.svc.PresignGet(staff, req.Key)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}
