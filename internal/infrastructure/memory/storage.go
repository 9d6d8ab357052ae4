// Package memory almacenamiento clave-valor en memoria. Se usa con CART_STORAGE=memory
// y en los tests.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/price-catalog/internal/domain/repository"
)

var _ repository.KeyValueStore = (*Storage)(nil)

// Storage KeyValueStore en memoria, seguro para uso concurrente.
type Storage struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte

	failWrites error
}

// NewStorage crea un almacenamiento vacío.
func NewStorage() *Storage {
	return &Storage{data: make(map[string]map[string][]byte)}
}

// Get devuelve una copia del valor o nil si no existe.
func (s *Storage) Get(_ context.Context, namespace, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[namespace][key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Set guarda una copia del valor.
func (s *Storage) Set(_ context.Context, namespace, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites != nil {
		return s.failWrites
	}
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		s.data[namespace] = ns
	}
	ns[key] = append([]byte(nil), value...)
	return nil
}

// SetFailWrites hace fallar Set con err (simula cuota excedida); nil lo desactiva.
func (s *Storage) SetFailWrites(err error) {
	s.mu.Lock()
	s.failWrites = err
	s.mu.Unlock()
}
