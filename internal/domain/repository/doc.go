// Package repository define los puertos de almacenamiento que consume el dominio.
//
// Hoy hay un único contrato: ProfileRepository, el store de documentos de perfil
// ligados a cuentas customer. El orquestador solo lee y borra por clave
// (userId == SubjectID del IdP); el lenguaje de consultas del store no forma
// parte del contrato.
//
// Implementaciones en internal/store/{memory,mongo,pg}.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Un documento inexistente es ErrNotFound, nunca (nil, nil)
package repository
