package accounts

import (
	"fmt"

	"github.com/dropDatabas3/accountsd/internal/domain"
	"github.com/dropDatabas3/accountsd/internal/domain/repository"
)

// ProfileSummary es la vista reducida del documento de perfil ligado.
type ProfileSummary struct {
	ID          string `json:"customerId,omitempty"`
	CompanyName string `json:"raisonSociale,omitempty"`
	Status      string `json:"status,omitempty"`
	ShopsCount  int    `json:"shopsCount"`
}

func summarize(d repository.Document) *ProfileSummary {
	if d == nil {
		return nil
	}
	s := &ProfileSummary{}
	if v, ok := d["_id"]; ok && v != nil {
		s.ID = fmt.Sprint(v)
	}
	s.CompanyName, _ = d["raisonSociale"].(string)
	s.Status, _ = d["status"].(string)
	switch shops := d["shops"].(type) {
	case []any:
		s.ShopsCount = len(shops)
	case []map[string]any:
		s.ShopsCount = len(shops)
	}
	return s
}

// Account es una identidad más, para customer, su perfil ligado.
type Account struct {
	domain.IdentityRecord
	Profile          *ProfileSummary `json:"customerMapping,omitempty"`
	HasLinkedProfile bool            `json:"hasMappedCustomer"`
	// ProfileLinkageError indica que no se pudo consultar el store de perfiles.
	ProfileLinkageError string `json:"customerMappingError,omitempty"`
}

type CreateAccountInput struct {
	DisplayName             string
	Email                   string
	Password                string
	SendWelcomeNotification bool
}

// CreateAccountResult: la identidad quedó creada aunque NotificationError no esté vacío.
type CreateAccountResult struct {
	Account           domain.IdentityRecord `json:"user"`
	WelcomeMessageID  string                `json:"welcomeMessageId,omitempty"`
	NotificationError string                `json:"notificationError,omitempty"`
}

// DeleteAccountResult: la identidad fue borrada aunque ProfileCleanupError no esté vacío.
type DeleteAccountResult struct {
	Username            string `json:"username"`
	ProfileFound        bool   `json:"profileFound"`
	ProfileDeleted      bool   `json:"profileDeleted"`
	ProfileCleanupError string `json:"customerDeletionError,omitempty"`
}

type UpdateAccountInput struct {
	DisplayName string
	Email       string
}

// Credentials es el resumen de acceso de una cuenta.
type Credentials struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	Status             string `json:"status"`
	Enabled            bool   `json:"enabled"`
	NeedsPasswordReset bool   `json:"needsPasswordReset"`
	LoginPath          string `json:"loginPath"`
}
