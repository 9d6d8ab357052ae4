package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/repository"
)

// Notifier difunde que el carrito de un namespace cambió, para que otras réplicas
// (y las pestañas conectadas a ellas) lo recarguen. Sin orden ni deduplicación garantizados.
type Notifier interface {
	Publish(ctx context.Context, namespace string) error
}

// Sessions mantiene un Store por cliente, creado bajo demanda.
type Sessions struct {
	mu       sync.Mutex
	storage  repository.KeyValueStore
	notifier Notifier
	log      zerolog.Logger
	opts     []Option
	stores   map[string]*Store
}

// NewSessions construye el registro de carritos. notifier puede ser nil (una sola réplica).
func NewSessions(storage repository.KeyValueStore, notifier Notifier, log zerolog.Logger, opts ...Option) *Sessions {
	return &Sessions{
		storage:  storage,
		notifier: notifier,
		log:      log,
		opts:     opts,
		stores:   make(map[string]*Store),
	}
}

// Get devuelve el carrito del cliente, cargándolo del almacenamiento la primera vez.
func (s *Sessions) Get(ctx context.Context, userID string) (*Store, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrMissingUserID
	}

	s.mu.Lock()
	st, ok := s.stores[userID]
	s.mu.Unlock()
	if ok {
		return st, nil
	}

	// La carga va fuera del lock: un cliente lento no bloquea al resto.
	opts := append(append([]Option(nil), s.opts...), withPersistHook(s.publish))
	loaded := NewStore(ctx, s.storage, userID, s.log, opts...)

	s.mu.Lock()
	if st, ok := s.stores[userID]; ok {
		s.mu.Unlock()
		return st, nil
	}
	s.stores[userID] = loaded
	s.mu.Unlock()

	s.EnsureUserID(ctx, userID)
	return loaded, nil
}

// HandleChange recarga el carrito del namespace si está en memoria. Se conecta al
// receptor de notificaciones (LISTEN de PostgreSQL).
func (s *Sessions) HandleChange(ctx context.Context, namespace string) {
	s.mu.Lock()
	st, ok := s.stores[namespace]
	s.mu.Unlock()
	if !ok {
		return
	}
	st.Reload(ctx)
}

// Sweep libera los carritos sin observadores que no se usan desde hace maxIdle.
// El estado está persistido, así que se vuelve a cargar en el próximo Get.
func (s *Sessions) Sweep(now time.Time, maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, st := range s.stores {
		if st.Observers() > 0 {
			continue
		}
		if now.Sub(st.idleSince()) >= maxIdle {
			delete(s.stores, id)
			removed++
		}
	}
	return removed
}

// Len número de carritos en memoria.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

func (s *Sessions) publish(ctx context.Context, namespace string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, namespace); err != nil {
		s.log.Warn().Err(err).Str("user_id", namespace).Msg("publicar cambio de carrito")
	}
}

// EnsureUserID guarda la clave "user_id" del namespace la primera vez que se ve al cliente.
// Errores de almacenamiento solo se registran.
func (s *Sessions) EnsureUserID(ctx context.Context, userID string) {
	v, err := s.storage.Get(ctx, userID, UserIDKey)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("leer user_id")
		return
	}
	if len(v) > 0 {
		return
	}
	if err := s.storage.Set(ctx, userID, UserIDKey, []byte(userID)); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("guardar user_id")
	}
}
