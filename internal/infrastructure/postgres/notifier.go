package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// CartChannel canal LISTEN/NOTIFY por el que se difunden los cambios de carrito.
const CartChannel = "cart_changed"

// Notifier publica y escucha cambios de carrito entre réplicas con pg_notify.
type Notifier struct {
	pool    *pgxpool.Pool
	channel string
	log     zerolog.Logger
}

// NewNotifier construye el notificador sobre el canal CartChannel.
func NewNotifier(pool *pgxpool.Pool, log zerolog.Logger) *Notifier {
	return &Notifier{pool: pool, channel: CartChannel, log: log}
}

// Publish envía el namespace modificado como payload.
func (n *Notifier) Publish(ctx context.Context, namespace string) error {
	if _, err := n.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, n.channel, namespace); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

// Listen bloquea recibiendo notificaciones y llama a handle con cada namespace hasta que ctx
// se cancela. Si la conexión se pierde reintenta con espera creciente (máx. 30s).
func (n *Notifier) Listen(ctx context.Context, handle func(ctx context.Context, namespace string)) error {
	backoff := time.Second
	for {
		err := n.listenOnce(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}
		n.log.Warn().Err(err).Dur("retry_in", backoff).Msg("LISTEN interrumpido")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (n *Notifier) listenOnce(ctx context.Context, handle func(ctx context.Context, namespace string)) error {
	conn, err := n.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `LISTEN `+n.channel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	n.log.Info().Str("channel", n.channel).Msg("escuchando cambios de carrito")
	for {
		msg, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			// conexión posiblemente rota: no devolverla al pool en estado LISTEN
			_ = conn.Conn().Close(context.Background())
			return fmt.Errorf("wait notification: %w", err)
		}
		handle(ctx, msg.Payload)
	}
}
