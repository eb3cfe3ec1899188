package email

import (
	"bytes"
	"embed"
	"fmt"
	htemplate "html/template"
	ttemplate "text/template"

	"github.com/dropDatabas3/accountsd/internal/domain"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// Kinds de template. Hay un welcome por clase de tenant.
const (
	KindWelcomeCustomer = "welcome_customer"
	KindWelcomeStaff    = "welcome_staff"
	KindWelcomeAdmin    = "welcome_admin"
	KindPasswordReset   = "password_reset"
)

var subjects = map[string]string{
	KindWelcomeCustomer: "Bienvenue ! Votre compte client est prêt",
	KindWelcomeStaff:    "Votre accès collaborateur a été créé",
	KindWelcomeAdmin:    "Votre accès administrateur a été créé",
	KindPasswordReset:   "Réinitialisation de votre mot de passe",
}

// WelcomeKind retorna el template de bienvenida de la clase.
func WelcomeKind(class domain.TenantClass) string {
	switch class {
	case domain.Staff:
		return KindWelcomeStaff
	case domain.Admin:
		return KindWelcomeAdmin
	}
	return KindWelcomeCustomer
}

type pair struct {
	html *htemplate.Template
	text *ttemplate.Template
}

// Templates son los templates compilados, indexados por kind.
type Templates struct {
	byKind map[string]pair
}

// LoadTemplates compila los templates embebidos.
func LoadTemplates() (*Templates, error) {
	t := &Templates{byKind: map[string]pair{}}
	for kind := range subjects {
		h, err := htemplate.ParseFS(templateFS, "templates/"+kind+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s html: %w", kind, err)
		}
		x, err := ttemplate.ParseFS(templateFS, "templates/"+kind+".txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s text: %w", kind, err)
		}
		t.byKind[kind] = pair{html: h, text: x}
	}
	return t, nil
}

// Render retorna subject, html y texto plano.
func (t *Templates) Render(kind string, data any) (subject, html, text string, err error) {
	p, ok := t.byKind[kind]
	if !ok {
		return "", "", "", fmt.Errorf("%w: unknown template %q", ErrTemplateRender, kind)
	}
	var hb, tb bytes.Buffer
	if err := p.html.Execute(&hb, data); err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	if err := p.text.Execute(&tb, data); err != nil {
		return "", "", "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return subjects[kind], hb.String(), tb.String(), nil
}
