package domain

import "time"

// ResetToken autoriza un cambio de password sin autenticación previa.
//
// Estados: pending (Used=false, no expirado) -> used (redención en curso)
// -> consumido (se borra). Expirado cuando now > ExpiresAt.
type ResetToken struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Username    string      `json:"username"`
	TenantClass TenantClass `json:"tenantClass"`
	IssuedAt    time.Time   `json:"issuedAt"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	Used        bool        `json:"used"`
}

func (t ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Check valida el token para uso. used tiene prioridad sobre expired.
func (t ResetToken) Check(now time.Time) error {
	if t.Used {
		return TokenError(TokenUsed)
	}
	if t.Expired(now) {
		return TokenError(TokenExpired)
	}
	return nil
}
