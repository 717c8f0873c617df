package models

import "time"

// Severity labels assigned to reports and alerts.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Report status values. Transitions are not constrained.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// ValidSeverity reports whether s is one of the known severity labels.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the known report statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// User represents a registered citizen account
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EmergencyReport represents a citizen-submitted emergency report
type EmergencyReport struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Image       []byte    `json:"-"`
	HasImage    bool      `json:"has_image"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	AIAnalysis  string    `json:"ai_analysis,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Alert represents an active or expired area alert
type Alert struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AlertType   string     `json:"alert_type,omitempty"`
	Severity    string     `json:"severity"`
	Location    string     `json:"location,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	RadiusKm    *float64   `json:"radius,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Shelter represents static shelter reference data
type Shelter struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Capacity         int       `json:"capacity"`
	CurrentOccupancy int       `json:"current_occupancy"`
	ShelterType      string    `json:"shelter_type,omitempty"`
	ContactPhone     string    `json:"contact_phone,omitempty"`
	Facilities       string    `json:"facilities,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Location string `json:"location" binding:"omitempty,max=200"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents an authentication request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse represents the authentication response
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// CreateReportRequest represents a report submission. The image arrives as a
// separate multipart file part.
type CreateReportRequest struct {
	Title       string   `form:"title" json:"title" binding:"required,max=200"`
	Description string   `form:"description" json:"description" binding:"required"`
	Location    string   `form:"location" json:"location" binding:"omitempty,max=200"`
	Latitude    *float64 `form:"latitude" json:"latitude"`
	Longitude   *float64 `form:"longitude" json:"longitude"`
}

// UpdateReportStatusRequest changes a report's status
type UpdateReportStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TranslateRequest represents a translation request
type TranslateRequest struct {
	Text           string `json:"text" binding:"required"`
	TargetLanguage string `json:"target_language"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
