package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/price-catalog/internal/application/cart"
	"github.com/jhoicas/price-catalog/internal/domain"
	"github.com/jhoicas/price-catalog/internal/domain/entity"
	"github.com/jhoicas/price-catalog/internal/infrastructure/memory"
)

type recordingNotifier struct {
	mu         sync.Mutex
	namespaces []string
	err        error
}

func (n *recordingNotifier) Publish(_ context.Context, namespace string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.namespaces = append(n.namespaces, namespace)
	return n.err
}

func (n *recordingNotifier) published() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.namespaces...)
}

func TestSessions_Get(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	s := cart.NewSessions(storage, nil, zerolog.Nop(), cart.WithClock(clock()))

	_, err := s.Get(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrMissingUserID)

	a, err := s.Get(ctx, " user-a ")
	require.NoError(t, err)
	again, err := s.Get(ctx, "user-a")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, "user-a", a.Namespace())

	b, err := s.Get(ctx, "user-b")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, s.Len())

	id, err := storage.Get(ctx, "user-a", cart.UserIDKey)
	require.NoError(t, err)
	assert.Equal(t, "user-a", string(id))
}

func TestSessions_EnsureUserID_NoSobrescribe(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	require.NoError(t, storage.Set(ctx, "user-a", cart.UserIDKey, []byte("previo")))
	s := cart.NewSessions(storage, nil, zerolog.Nop())

	s.EnsureUserID(ctx, "user-a")
	id, err := storage.Get(ctx, "user-a", cart.UserIDKey)
	require.NoError(t, err)
	assert.Equal(t, "previo", string(id))
}

func TestSessions_PublicaTrasPersistir(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	n := &recordingNotifier{}
	s := cart.NewSessions(storage, n, zerolog.Nop(), cart.WithClock(clock()))

	st, err := s.Get(ctx, "user-a")
	require.NoError(t, err)
	_, err = st.AddOrSet(ctx, jung(), 2)
	require.NoError(t, err)
	st.Remove(ctx, "ls1520")
	assert.Equal(t, []string{"user-a", "user-a"}, n.published())

	storage.SetFailWrites(errors.New("disco lleno"))
	_, err = st.AddOrSet(ctx, jung(), 2)
	require.NoError(t, err)
	assert.Len(t, n.published(), 2, "sin escritura no se publica")
}

func TestSessions_ErrorDelNotificadorNoAfecta(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{err: errors.New("conexión cerrada")}
	s := cart.NewSessions(memory.NewStorage(), n, zerolog.Nop())

	st, err := s.Get(ctx, "user-a")
	require.NoError(t, err)
	out, err := st.AddOrSet(ctx, jung(), 2)
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
}

func TestSessions_HandleChange_SincronizaReplicas(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	replica1 := cart.NewSessions(storage, nil, zerolog.Nop())
	replica2 := cart.NewSessions(storage, nil, zerolog.Nop())

	st2, err := replica2.Get(ctx, "user-a")
	require.NoError(t, err)
	var seen []entity.CartState
	st2.Subscribe(func(st entity.CartState) { seen = append(seen, st) })

	st1, err := replica1.Get(ctx, "user-a")
	require.NoError(t, err)
	_, err = st1.AddOrSet(ctx, legrand(), 3)
	require.NoError(t, err)

	replica2.HandleChange(ctx, "user-a")
	replica2.HandleChange(ctx, "desconocido")
	assert.Equal(t, 3, st2.Quantity("cd581"))
	require.Len(t, seen, 1)
	assert.Equal(t, 1, replica2.Len(), "no crea carritos por notificaciones")
}

func TestSessions_Sweep(t *testing.T) {
	ctx := context.Background()
	s := cart.NewSessions(memory.NewStorage(), nil, zerolog.Nop(), cart.WithClock(clock()))

	_, err := s.Get(ctx, "inactivo")
	require.NoError(t, err)
	watched, err := s.Get(ctx, "observado")
	require.NoError(t, err)
	unsubscribe := watched.Subscribe(func(entity.CartState) {})

	assert.Equal(t, 0, s.Sweep(fixedNow.Add(time.Minute), time.Hour))
	assert.Equal(t, 1, s.Sweep(fixedNow.Add(2*time.Hour), time.Hour))
	assert.Equal(t, 1, s.Len())

	unsubscribe()
	assert.Equal(t, 1, s.Sweep(fixedNow.Add(2*time.Hour), time.Hour))
	assert.Equal(t, 0, s.Len())
}

func TestSessions_Get_CargaLentaNoBloqueaAOtros(t *testing.T) {
	ctx := context.Background()
	storage := newGatedStorage()
	s := cart.NewSessions(storage, nil, zerolog.Nop())

	cached, err := s.Get(ctx, "user-a")
	require.NoError(t, err)

	reached, release := storage.arm("lento")
	slow := make(chan *cart.Store, 1)
	go func() {
		st, _ := s.Get(ctx, "lento")
		slow <- st
	}()
	<-reached

	got := make(chan *cart.Store, 1)
	go func() {
		st, _ := s.Get(ctx, "user-a")
		s.HandleChange(ctx, "user-a")
		got <- st
	}()
	select {
	case st := <-got:
		assert.Same(t, cached, st)
	case <-time.After(time.Second):
		t.Fatal("Get de un carrito en memoria esperó la carga de otro cliente")
	}

	close(release)
	st := <-slow
	require.NotNil(t, st)
	assert.Equal(t, "lento", st.Namespace())
	assert.Equal(t, 2, s.Len())
}

func TestSessions_Get_ConcurrenteDevuelveElMismoStore(t *testing.T) {
	ctx := context.Background()
	s := cart.NewSessions(memory.NewStorage(), nil, zerolog.Nop())

	const n = 20
	stores := make([]*cart.Store, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i], _ = s.Get(ctx, "user-a")
		}(i)
	}
	wg.Wait()
	for _, st := range stores[1:] {
		assert.Same(t, stores[0], st)
	}
	assert.Equal(t, 1, s.Len())
}
