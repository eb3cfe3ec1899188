// Package memory es un ProfileRepository en memoria para dev y tests.
package memory

import (
	"context"
	"sync"

	"github.com/dropDatabas3/accountsd/internal/domain/repository"
)

type ProfileRepo struct {
	mu   sync.RWMutex
	docs map[string]repository.Document
}

// NewProfileRepo indexa los documentos por userId; los que no lo tienen se ignoran.
func NewProfileRepo(docs ...repository.Document) *ProfileRepo {
	r := &ProfileRepo{docs: make(map[string]repository.Document, len(docs))}
	for _, d := range docs {
		if sub := d.SubjectID(); sub != "" {
			r.docs[sub] = clone(d)
		}
	}
	return r
}

func clone(d repository.Document) repository.Document {
	out := make(repository.Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Put inserta o reemplaza un perfil.
func (r *ProfileRepo) Put(d repository.Document) {
	r.mu.Lock()
	r.docs[d.SubjectID()] = clone(d)
	r.mu.Unlock()
}

func (r *ProfileRepo) FindAll(_ context.Context) ([]repository.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, clone(d))
	}
	return out, nil
}

func (r *ProfileRepo) FindByKey(_ context.Context, subjectID string) (repository.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[subjectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(d), nil
}

func (r *ProfileRepo) DeleteByKey(_ context.Context, subjectID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[subjectID]; !ok {
		return 0, nil
	}
	delete(r.docs, subjectID)
	return 1, nil
}
