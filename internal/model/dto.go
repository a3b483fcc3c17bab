package model

// CreateReportRequest represents the citizen intake JSON body.
type CreateReportRequest struct {
	Category     string   `json:"category" binding:"required"`
	Lat          *float64 `json:"lat" binding:"required"`
	Lng          *float64 `json:"lng" binding:"required"`
	Description  string   `json:"description,omitempty"`
	ContactPhone string   `json:"contact_phone,omitempty"`
	PhotoKeys    []string `json:"photo_keys,omitempty"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

type MemoRequest struct {
	Memo string `json:"memo" binding:"required"`
}

type ContactResponse struct {
	ContactPhone string `json:"contact_phone"`
}

type PresignPutRequest struct {
	Key         string `json:"key" binding:"required"`
	ContentType string `json:"content_type,omitempty"`
}

type PresignGetRequest struct {
	Key string `json:"key" binding:"required"`
}

type PresignResponse struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

type ShelterSaveRequest struct {
	Name     string   `json:"name" binding:"required"`
	Lat      *float64 `json:"lat" binding:"required"`
	Lng      *float64 `json:"lng" binding:"required"`
	IsActive *bool    `json:"is_active,omitempty"`
}

// NewReportEvent is the payload published on the notification channel
// after a successful create. Delivery is best effort.
type NewReportEvent struct {
	ReportID  string  `json:"report_id"`
	Category  string  `json:"category"`
	CreatedAt string  `json:"created_at"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}
