package domain

import "time"

// Estados de usuario tal como los reporta el IdP.
const (
	StatusConfirmed           = "CONFIRMED"
	StatusUnconfirmed         = "UNCONFIRMED"
	StatusForceChangePassword = "FORCE_CHANGE_PASSWORD"
	StatusResetRequired       = "RESET_REQUIRED"
	StatusArchived            = "ARCHIVED"
	StatusUnknown             = "UNKNOWN"
)

// IdentityRecord es la vista normalizada de un usuario del IdP.
// No se cachea más allá de un request.
type IdentityRecord struct {
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"name"`
	SubjectID      string    `json:"sub"`
	Status         string    `json:"status"`
	Enabled        bool      `json:"enabled"`
	EmailVerified  bool      `json:"emailVerified"`
	CreatedAt      time.Time `json:"createdAt"`
	LastModifiedAt time.Time `json:"lastModified"`
}

// NeedsPasswordReset indica que el usuario debe cambiar la password temporal.
func (r IdentityRecord) NeedsPasswordReset() bool {
	return r.Status == StatusForceChangePassword
}
