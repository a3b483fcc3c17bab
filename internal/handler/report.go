package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/CivicGate/civigate/internal/middleware"
	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/apperrors"
	"github.com/CivicGate/civigate/internal/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Create is the citizen intake endpoint.
func (h *ReportHandler) Create(c *gin.Context) {
	citizenID := c.MustGet(middleware.ContextCitizenKey).(string)

	var req model.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}

	rep, err := h.svc.Create(c.Request.Context(), citizenID, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, rep)
}

func (h *ReportHandler) List(c *gin.Context) {
	staff := c.MustGet(middleware.ContextStaffKey).(model.Staff)

	filter, sortBy := service.ParseFilter(queryMap(c))
	items, err := h.svc.List(c.Request.Context(), filter, sortBy)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, service.RedactReports(items, staff.Role))
}

func (h *ReportHandler) ExportCSV(c *gin.Context) {
	staff := c.MustGet(middleware.ContextStaffKey).(model.Staff)

	filter, sortBy := service.ParseFilter(queryMap(c))
	items, err := h.svc.List(c.Request.Context(), filter, sortBy)
	if err != nil {
		c.Error(err)
		return
	}

	h.svc.LogExport(staff, len(items))

	includeContact := staff.Role != model.RoleViewer
	csvText := service.ReportsToCSV(items, includeContact)
	filename := fmt.Sprintf("reports_%s.csv", time.Now().UTC().Format("2006-01-02"))

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvText))
}

func (h *ReportHandler) Get(c *gin.Context) {
	staff := c.MustGet(middleware.ContextStaffKey).(model.Staff)

	rep, err := h.svc.Get(c.Request.Context(), c.Param("id"), staff.Role)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ReportHandler) History(c *gin.Context) {
	items, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ReportHandler) Contact(c *gin.Context) {
	staff := c.MustGet(middleware.ContextStaffKey).(model.Staff)

	contact, err := h.svc.GetContact(c.Request.Context(), c.Param("id"), staff)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	staff := c.MustGet(middleware.ContextStaffKey).(model.Staff)

	var req model.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}

	if err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, staff); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *ReportHandler) AddMemo(c *gin.Context) {
	staff := c.MustGet(middleware.ContextStaffKey).(model.Staff)

	var req model.MemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}

	if err := h.svc.AddMemo(c.Request.Context(), c.Param("id"), req.Memo, staff); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func queryMap(c *gin.Context) map[string]string {
	out := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}
