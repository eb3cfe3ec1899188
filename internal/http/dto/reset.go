package dto

import (
	"time"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/reset"
)

type ResetRequest struct {
	Email        string `json:"email"`
	UserType     string `json:"userType"`
	CaptchaToken string `json:"captchaToken"`
}

type ResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type ResetVerifyResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Email   string             `json:"email"`
	Class   domain.TenantClass `json:"userType"`
}

type ResetConfirmResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Class     domain.TenantClass `json:"userType"`
	LoginPath string             `json:"loginPath"`
}

type ResetStatsResponse struct {
	Success bool        `json:"success"`
	Stats   reset.Stats `json:"stats"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status     string                  `json:"status"` // ready | unavailable
	Version    string                  `json:"version,omitempty"`
	Components map[string]HealthStatus `json:"components,omitempty"`
	Timestamp  time.Time               `json:"timestamp"`
}
