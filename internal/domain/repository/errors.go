package repository

import "errors"

var (
	// ErrNotFound indica que no hay documento para la clave pedida.
	ErrNotFound = errors.New("not found")

	// ErrNoDatabase indica que el driver no tiene conexión configurada.
	ErrNoDatabase = errors.New("no database configured")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
