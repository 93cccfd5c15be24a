package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/automator/pkg/builder"
	"github.com/aretw0/automator/pkg/domain"
	"github.com/aretw0/automator/pkg/observability"
	"github.com/aretw0/automator/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager() *session.Manager {
	return session.NewManager(session.NewFactory(builder.WithIDGenerator(builder.NewCounterGenerator("a"))))
}

func TestManager_OpenIsIdempotent(t *testing.T) {
	m := newManager()

	s1, err := m.Open("alpha")
	require.NoError(t, err)
	s2, err := m.Open("alpha")
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, "alpha", s1.SessionID())
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := newManager()

	a, _ := m.Open("a")
	b, _ := m.Open("b")

	_, err := a.AddFromCatalog(ctx, domain.ActionFiles)
	require.NoError(t, err)

	wa, _ := a.Current()
	wb, _ := b.Current()
	assert.Len(t, wa.Actions, 1)
	assert.Empty(t, wb.Actions)
	assert.Equal(t, []string{"a", "b"}, m.List())
}

func TestManager_EmptyID(t *testing.T) {
	_, err := newManager().Open("")
	assert.Error(t, err)
}

func TestManager_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	m := session.NewManager(func(string) (*builder.Store, error) { return nil, boom })

	_, err := m.Open("x")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.List())
}

func TestManager_Close(t *testing.T) {
	m := newManager()
	_, _ = m.Open("x")

	assert.True(t, m.Close("x"))
	assert.False(t, m.Close("x"))
	_, ok := m.Get("x")
	assert.False(t, ok)
}

func TestManager_WithSessionSerializesTurns(t *testing.T) {
	ctx := context.Background()
	m := newManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithSession(ctx, "shared", func(ctx context.Context, s *builder.Store) error {
				// Read-modify-verify must not interleave with other turns.
				before, _ := s.Current()
				if _, err := s.AddFromCatalog(ctx, domain.ActionDelay); err != nil {
					return err
				}
				after, _ := s.Current()
				if len(after.Actions) != len(before.Actions)+1 {
					return errors.New("turn interleaved")
				}
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, ok := m.Get("shared")
	require.True(t, ok)
	w, _ := s.Current()
	assert.Len(t, w.Actions, 50)
}

func TestManager_WithSessionCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := newManager().WithSession(ctx, "x", func(context.Context, *builder.Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.NotEmpty(t, mf.GetMetric())
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func newMeteredManager(reg *prometheus.Registry) *session.Manager {
	metrics := observability.NewMetrics(reg)
	factory := session.NewFactory(
		builder.WithIDGenerator(builder.NewCounterGenerator("a")),
		builder.WithMetrics(metrics),
	)
	return session.NewManager(factory, session.WithMetrics(metrics))
}

func TestManager_CloseWaitsForRunningTurn(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := newMeteredManager(reg)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	turnDone := make(chan error, 1)
	go func() {
		turnDone <- m.WithSession(ctx, "s", func(ctx context.Context, s *builder.Store) error {
			close(entered)
			<-proceed
			_, err := s.AddFromCatalog(ctx, domain.ActionFiles)
			return err
		})
	}()
	<-entered

	closed := make(chan bool, 1)
	go func() { closed <- m.Close("s") }()

	select {
	case <-closed:
		t.Fatal("Close returned while a turn was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(proceed)
	require.NoError(t, <-turnDone)
	assert.True(t, <-closed)

	assert.Empty(t, m.List())
	assert.Equal(t, 0.0, gaugeValue(t, reg, "automator_actions"))
	assert.Equal(t, 0.0, gaugeValue(t, reg, "automator_sessions"))
}

func TestManager_ReleasedStoreIsNotCounted(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := newMeteredManager(reg)

	s, err := m.Open("s")
	require.NoError(t, err)
	_, err = s.AddFromCatalog(ctx, domain.ActionFiles)
	require.NoError(t, err)
	assert.Equal(t, 1.0, gaugeValue(t, reg, "automator_actions"))

	require.True(t, m.Close("s"))
	assert.Equal(t, 0.0, gaugeValue(t, reg, "automator_actions"))

	// A caller still holding the discarded store must not move the gauge.
	_, err = s.AddFromCatalog(ctx, domain.ActionDelay)
	require.NoError(t, err)
	s.Release()
	assert.Equal(t, 0.0, gaugeValue(t, reg, "automator_actions"))
}

func TestManager_WithSessionAfterCloseGetsFreshStore(t *testing.T) {
	ctx := context.Background()
	m := newManager()

	first, err := m.Open("s")
	require.NoError(t, err)
	_, err = first.AddFromCatalog(ctx, domain.ActionFiles)
	require.NoError(t, err)
	require.True(t, m.Close("s"))

	err = m.WithSession(ctx, "s", func(_ context.Context, s *builder.Store) error {
		assert.NotSame(t, first, s)
		w, _ := s.Current()
		assert.Empty(t, w.Actions)
		return nil
	})
	require.NoError(t, err)
}
