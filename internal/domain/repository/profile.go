package repository

import "context"

// ProfileKeyField es el campo del documento que guarda el SubjectID del IdP.
const ProfileKeyField = "userId"

// Document es un perfil opaco. El orquestador solo mira ProfileKeyField.
type Document map[string]any

// SubjectID retorna el valor de ProfileKeyField si es string.
func (d Document) SubjectID() string {
	if d == nil {
		return ""
	}
	s, _ := d[ProfileKeyField].(string)
	return s
}

// ProfileRepository es el store de perfiles ligados a cuentas customer.
type ProfileRepository interface {
	// FindAll retorna todos los perfiles. Se usa una vez por listado.
	FindAll(ctx context.Context) ([]Document, error)

	// FindByKey busca el perfil cuyo userId == subjectID.
	// Retorna ErrNotFound si no existe.
	FindByKey(ctx context.Context, subjectID string) (Document, error)

	// DeleteByKey borra el perfil y retorna cuántos documentos se eliminaron.
	DeleteByKey(ctx context.Context, subjectID string) (int64, error)
}
