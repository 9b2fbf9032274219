package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInReverseOnce(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	for _, name := range []string{"client", "logger"} {
		name := name
		m.Register(name, func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			order = append(order, name)
			return nil
		})
	}
	m.Register("ignored", nil)

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"logger", "client"}, order)
}

func TestShutdownJoinsErrors(t *testing.T) {
	m := New(0, nil)
	errA := errors.New("a")
	errB := errors.New("b")
	m.Register("a", func(context.Context) error { return errA })
	m.Register("ok", func(context.Context) error { return nil })
	m.Register("b", func(context.Context) error { return errB })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestContextCancelPropagates(t *testing.T) {
	m := New(time.Second, nil)
	ctx, cancel := m.Context(context.Background())
	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
