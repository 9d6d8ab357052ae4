package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/price-catalog/internal/domain/repository"
)

var _ repository.KeyValueStore = (*StorageRepo)(nil)

// StorageRepo almacenamiento duradero por cliente (tabla client_storage).
type StorageRepo struct {
	q Querier
}

// NewStorageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStorageRepository(q Querier) *StorageRepo {
	return &StorageRepo{q: q}
}

// Get devuelve el valor guardado o nil, nil si no existe.
func (r *StorageRepo) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := r.q.QueryRow(ctx,
		`SELECT value FROM client_storage WHERE namespace = $1 AND key = $2`,
		namespace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client storage: %w", err)
	}
	return value, nil
}

// Set inserta o reemplaza el valor.
func (r *StorageRepo) Set(ctx context.Context, namespace, key string, value []byte) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO client_storage (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("set client storage: %w", err)
	}
	return nil
}
