package model

// Shelter is an evacuation site maintained by admin staff and shown to
// citizens.
type Shelter struct {
	ShelterID string  `json:"shelter_id" db:"shelter_id"`
	Name      string  `json:"name" db:"name"`
	Lat       float64 `json:"lat" db:"lat"`
	Lng       float64 `json:"lng" db:"lng"`
	IsActive  bool    `json:"is_active" db:"is_active"`
	UpdatedAt string  `json:"updated_at" db:"updated_at"`
	UpdatedBy string  `json:"updated_by" db:"updated_by"`
}
