package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/primcall/internal/catalog"
	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/dispatch"
	"github.com/specialistvlad/primcall/internal/engine"
	"github.com/specialistvlad/primcall/internal/registry"
	"github.com/stretchr/testify/require"
)

// SafeBuffer collects log output written from several workers at once.
type SafeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewLoggedContext returns a context carrying a debug text logger that
// writes to the returned buffer. Set PRIMCALL_TEST_LOGS=true to print the
// captured output when the test ends.
func NewLoggedContext(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv("PRIMCALL_TEST_LOGS") == "true" {
			t.Logf("--- Log output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), logs
}

// NewRegistry builds a registry from the built-in catalog plus extra.
func NewRegistry(t *testing.T, extra ...registry.Descriptor) *registry.Registry {
	t.Helper()
	reg, err := registry.New(append(catalog.Builtin(), extra...)...)
	require.NoError(t, err)
	return reg
}

// NewDispatcher wires a dispatcher over the built-in catalog and a counting
// engine.
func NewDispatcher(t *testing.T, extra ...registry.Descriptor) (*dispatch.Dispatcher, *CountingEngine) {
	t.Helper()
	eng := NewCountingEngine()
	return dispatch.New(NewRegistry(t, extra...), engine.NewHost(eng)), eng
}

// MustLookup returns the id of a registered function.
func MustLookup(t *testing.T, reg *registry.Registry, name string) registry.ID {
	t.Helper()
	id, err := reg.Lookup(name)
	require.NoError(t, err)
	return id
}
