package service

import (
	"context"
	"sync"
	"testing"

	"github.com/qms/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type greeter interface {
	Greet(ctx context.Context, name string) (string, error)
	Farewell(name string) string
}

type fullGreeter struct{ prefix string }

func (g *fullGreeter) Greet(_ context.Context, name string) (string, error) {
	return g.prefix + name, nil
}

func (g *fullGreeter) Farewell(name string) string { return "bye " + name }

type halfGreeter struct{}

func (halfGreeter) Greet(_ context.Context, name string) (string, error) { return name, nil }

type wrongGreeter struct{}

func (wrongGreeter) Greet(name string) string    { return name }
func (wrongGreeter) Farewell(name string) string { return name }

var _ greeter = (*fullGreeter)(nil)

func TestContractOf(t *testing.T) {
	c := ContractOf[greeter]()
	assert.Equal(t, []string{"Farewell", "Greet"}, c.Methods())
	assert.Contains(t, c.Name(), "greeter")

	assert.Panics(t, func() { ContractOf[fullGreeter]() })
}

func TestContract_Check(t *testing.T) {
	c := ContractOf[greeter]()

	assert.NoError(t, c.Check(&fullGreeter{}))

	var cv *shared.ContractViolationError

	err := c.Check(halfGreeter{})
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, []string{"Farewell"}, cv.Missing)

	err = c.Check(wrongGreeter{})
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, []string{"Greet (signature mismatch)"}, cv.Missing)

	err = c.Check(nil)
	require.ErrorAs(t, err, &cv)
	assert.Len(t, cv.Missing, 2)

	// value receiver methods are not in the method set of fullGreeter value
	err = c.Check(fullGreeter{})
	require.ErrorAs(t, err, &cv)
}

func TestRegistry_RegisterInterface(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	require.NoError(t, r.RegisterInterface("greeter", ContractOf[greeter]()))
	assert.True(t, r.HasContract("greeter"))

	err := r.RegisterInterface("greeter", ContractOf[greeter]())
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	assert.ErrorIs(t, r.RegisterInterface("", ContractOf[greeter]()), shared.ErrInvalidInput)
	assert.ErrorIs(t, r.RegisterInterface("empty", Contract{}), shared.ErrInvalidInput)

	assert.Equal(t, []string{"greeter"}, r.List())
}

func TestRegistry_SetAndGetImplementation(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.RegisterInterface("greeter", ContractOf[greeter]()))

	t.Run("get before set fails with NotConfiguredError", func(t *testing.T) {
		_, err := r.GetImplementation("greeter")
		var nc *shared.NotConfiguredError
		require.ErrorAs(t, err, &nc)
		assert.Equal(t, "greeter", nc.Contract)
	})

	t.Run("non-conforming implementation rejected", func(t *testing.T) {
		err := r.SetImplementation("greeter", halfGreeter{})
		var cv *shared.ContractViolationError
		require.ErrorAs(t, err, &cv)
		assert.Contains(t, cv.Error(), "Farewell")

		_, err = r.GetImplementation("greeter")
		assert.Error(t, err)
	})

	t.Run("unknown contract", func(t *testing.T) {
		err := r.SetImplementation("nope", &fullGreeter{})
		var nc *shared.NotConfiguredError
		assert.ErrorAs(t, err, &nc)
	})

	t.Run("conforming implementation resolves through the interface", func(t *testing.T) {
		require.NoError(t, r.SetImplementation("greeter", &fullGreeter{prefix: "hi "}))

		g, err := Resolve[greeter](r, "greeter")
		require.NoError(t, err)
		msg, err := g.Greet(context.Background(), "ana")
		require.NoError(t, err)
		assert.Equal(t, "hi ana", msg)
	})

	t.Run("resolve to an incompatible type", func(t *testing.T) {
		_, err := Resolve[interface{ Unknown() }](r, "greeter")
		var cv *shared.ContractViolationError
		assert.ErrorAs(t, err, &cv)
	})
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.RegisterInterface("greeter", ContractOf[greeter]()))
	require.NoError(t, r.SetImplementation("greeter", &fullGreeter{}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Resolve[greeter](r, "greeter")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
