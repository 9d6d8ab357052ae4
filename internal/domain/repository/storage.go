package repository

import "context"

// KeyValueStore almacenamiento duradero por cliente: cada namespace (id de cliente)
// tiene sus propias claves ("cart", "user_id"). Get devuelve nil, nil si la clave no existe.
type KeyValueStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
}
