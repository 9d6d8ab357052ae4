package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/domain/leadtime"
	"github.com/jhoicas/price-catalog/internal/domain/repository"
)

// Claves del almacenamiento duradero de cada cliente.
const (
	CartKey   = "cart"
	UserIDKey = "user_id"
)

// Operaciones reportadas a Metrics.
const (
	OpAdd    = "add"
	OpSet    = "set_quantity"
	OpRemove = "remove"
	OpClear  = "clear"
)

// Metrics contadores del carrito (implementado en infrastructure/metrics).
type Metrics interface {
	CartMutation(op string)
	CartPersistFailed()
}

type nopMetrics struct{}

func (nopMetrics) CartMutation(string) {}
func (nopMetrics) CartPersistFailed()  {}

// Observer recibe una copia del estado tras cada cambio.
type Observer func(entity.CartState)

// Option configura un Store.
type Option func(*Store)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics registra las mutaciones y fallos de persistencia.
func WithMetrics(m Metrics) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// withPersistHook se invoca tras cada escritura correcta (lo usa Sessions para publicar el cambio).
func withPersistHook(fn func(ctx context.Context, namespace string)) Option {
	return func(s *Store) { s.onPersist = fn }
}

// Store carrito de un cliente. Cada mutación recalcula el plazo de la línea y escribe
// el estado completo en el almacenamiento duradero antes de retornar. Los fallos de
// escritura se registran pero no se devuelven: el estado en memoria manda durante la sesión.
type Store struct {
	mu        sync.Mutex
	namespace string
	storage   repository.KeyValueStore
	log       zerolog.Logger
	now       func() time.Time
	metrics   Metrics
	onPersist func(ctx context.Context, namespace string)

	state     entity.CartState
	seq       uint64 // escrituras locales; Reload descarta lecturas que las preceden
	observers map[int]Observer
	nextObs   int
	lastUsed  time.Time
}

// NewStore carga el carrito del namespace indicado. Un payload ausente o corrupto
// produce un carrito vacío; nunca falla.
func NewStore(ctx context.Context, storage repository.KeyValueStore, namespace string, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		namespace: namespace,
		storage:   storage,
		log:       log.With().Str("user_id", namespace).Logger(),
		now:       time.Now,
		metrics:   nopMetrics{},
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = s.load(ctx)
	s.lastUsed = s.now()
	return s
}

// Namespace identificador del cliente dueño del carrito.
func (s *Store) Namespace() string { return s.namespace }

// AddOrSet crea o sobrescribe la línea del producto con la cantidad dada.
// Precondición: quantity > 0; con cantidad no positiva devuelve domain.ErrInvalidQuantity
// sin tocar el estado (para eliminar hay que usar Remove o SetQuantity con 0).
func (s *Store) AddOrSet(ctx context.Context, product *entity.Product, quantity int) (entity.CartState, error) {
	if product == nil {
		return s.Snapshot(), domain.ErrProductNotFound
	}
	if quantity <= 0 {
		return s.Snapshot(), domain.ErrInvalidQuantity
	}
	article := entity.NormalizeArticle(product.Article)
	astana, almaty := nonNegative(product.AstanaQty), nonNegative(product.AlmatyQty)
	lt := leadtime.Estimate(astana, almaty, quantity, product.LeadTimeDefault)

	s.mu.Lock()
	s.state.Items[article] = entity.CartItem{
		Article:         article,
		Manufacturer:    product.Manufacturer,
		Name:            product.Name,
		PriceRub:        product.PriceRub,
		Quantity:        quantity,
		LeadTime:        lt.Text,
		AstanaQty:       astana,
		AlmatyQty:       almaty,
		LeadTimeDefault: product.LeadTimeDefault,
	}
	snap, ok := s.commitLocked(ctx, OpAdd)
	s.mu.Unlock()

	s.afterCommit(ctx, snap, ok)
	return snap, nil
}

// SetQuantity cambia la cantidad de una línea existente. Con quantity <= 0 elimina la línea.
// Stock usado para el plazo: hint si se pasa, si no el guardado en la línea.
// Si la línea no existe no crea nada, pero igual persiste el estado.
func (s *Store) SetQuantity(ctx context.Context, article string, quantity int, hint *entity.Stock) entity.CartState {
	if quantity <= 0 {
		return s.Remove(ctx, article)
	}
	article = entity.NormalizeArticle(article)

	s.mu.Lock()
	if item, found := s.state.Items[article]; found {
		if hint != nil {
			item.AstanaQty = nonNegative(hint.Astana)
			item.AlmatyQty = nonNegative(hint.Almaty)
		}
		item.Quantity = quantity
		item.LeadTime = leadtime.Estimate(item.AstanaQty, item.AlmatyQty, quantity, item.LeadTimeDefault).Text
		s.state.Items[article] = item
	}
	snap, ok := s.commitLocked(ctx, OpSet)
	s.mu.Unlock()

	s.afterCommit(ctx, snap, ok)
	return snap
}

// Remove elimina la línea si existe; persiste siempre.
func (s *Store) Remove(ctx context.Context, article string) entity.CartState {
	article = entity.NormalizeArticle(article)

	s.mu.Lock()
	delete(s.state.Items, article)
	snap, ok := s.commitLocked(ctx, OpRemove)
	s.mu.Unlock()

	s.afterCommit(ctx, snap, ok)
	return snap
}

// Clear vacía el carrito y persiste.
func (s *Store) Clear(ctx context.Context) entity.CartState {
	s.mu.Lock()
	s.state = entity.NewCartState(s.now())
	snap, ok := s.commitLocked(ctx, OpClear)
	s.mu.Unlock()

	s.afterCommit(ctx, snap, ok)
	return snap
}

// Reload vuelve a leer el estado duradero (escrito por otro contexto) y avisa a los observadores.
// Gana la última escritura: si durante la lectura hubo una mutación local, la lectura
// ya está vieja y se descarta (esa mutación publica su propio aviso).
func (s *Store) Reload(ctx context.Context) entity.CartState {
	s.mu.Lock()
	seq := s.seq
	s.mu.Unlock()

	state := s.load(ctx)

	s.mu.Lock()
	if s.seq != seq {
		snap := s.state.Clone()
		s.mu.Unlock()
		return snap
	}
	s.state = state
	snap := s.state.Clone()
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

// Snapshot copia del estado actual.
func (s *Store) Snapshot() entity.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	return s.state.Clone()
}

// Quantity cantidad del artículo en el carrito o 0.
func (s *Store) Quantity(article string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Items[entity.NormalizeArticle(article)].Quantity
}

// Contains indica si el artículo está en el carrito.
func (s *Store) Contains(article string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.Items[entity.NormalizeArticle(article)]
	return ok
}

// Total suma de precio × cantidad.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Total()
}

// ItemsCount número de productos distintos en el carrito (no unidades).
func (s *Store) ItemsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ItemsCount()
}

// TotalQuantity número total de unidades.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalQuantity()
}

// Items líneas ordenadas por fabricante y artículo.
func (s *Store) Items() []entity.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SortedItems()
}

// Subscribe registra un observador. La función devuelta lo da de baja; es idempotente.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Observers número de observadores activos.
func (s *Store) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// idleSince momento del último uso (para el barrido de Sessions).
func (s *Store) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// commitLocked actualiza lastUpdated, persiste y devuelve la copia del estado y si la
// escritura tuvo éxito. Requiere s.mu.
func (s *Store) commitLocked(ctx context.Context, op string) (entity.CartState, bool) {
	now := s.now()
	s.seq++
	s.state.LastUpdated = now
	s.lastUsed = now
	s.metrics.CartMutation(op)

	payload, err := json.Marshal(s.state)
	if err == nil {
		err = s.storage.Set(ctx, s.namespace, CartKey, payload)
	}
	if err != nil {
		s.metrics.CartPersistFailed()
		s.log.Error().Err(err).Str("op", op).Msg("guardar carrito")
		return s.state.Clone(), false
	}
	return s.state.Clone(), true
}

// afterCommit publica el cambio (si se persistió) y avisa a los observadores, fuera del lock.
func (s *Store) afterCommit(ctx context.Context, snap entity.CartState, persisted bool) {
	if persisted && s.onPersist != nil {
		s.onPersist(ctx, s.namespace)
	}
	s.notify(snap)
}

func (s *Store) load(ctx context.Context) entity.CartState {
	empty := entity.NewCartState(s.now())
	data, err := s.storage.Get(ctx, s.namespace, CartKey)
	if err != nil {
		s.log.Error().Err(err).Msg("leer carrito")
		return empty
	}
	if len(data) == 0 {
		return empty
	}
	var state entity.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Warn().Err(err).Msg("carrito corrupto, se reinicia vacío")
		return empty
	}
	items := make(map[string]entity.CartItem, len(state.Items))
	for key, it := range state.Items {
		if it.Quantity <= 0 {
			continue
		}
		article := entity.NormalizeArticle(key)
		it.Article = article
		items[article] = it
	}
	state.Items = items
	if state.LastUpdated.IsZero() {
		state.LastUpdated = empty.LastUpdated
	}
	return state
}

func (s *Store) notify(snap entity.CartState) {
	s.mu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap.Clone())
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
