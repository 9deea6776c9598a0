// Package remote implements engine.Engine over a socket.io connection to an
// external numeric runtime.
//
// Every call emits a `call` event carrying {id, module, symbol, args}. The
// runtime answers with a `result` event carrying {id, value} or
// {id, error, code}. Responses are routed back to the waiting call by id.
package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/engine"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	callEvent   = "call"
	resultEvent = "result"

	defaultConnectTimeout = 15 * time.Second
)

// ErrNotConnected is returned by Call when the socket has dropped.
var ErrNotConnected = errors.New("remote engine is not connected")

// Options configures Dial.
type Options struct {
	// Namespace is the socket.io namespace. Empty means "/".
	Namespace          string
	InsecureSkipVerify bool
	// ConnectTimeout bounds the initial handshake. Zero means 15s.
	ConnectTimeout time.Duration
}

// conn is the part of *socket.Socket the client needs.
type conn interface {
	Emit(ev string, args ...any) error
	Connected() bool
}

// Client is a remote engine. It is safe for concurrent use.
type Client struct {
	conn conn
	sock *socket.Socket

	mu      sync.Mutex
	pending map[string]chan response
}

var _ engine.Engine = (*Client)(nil)

// Dial connects to the runtime at rawURL and waits for the handshake.
func Dial(ctx context.Context, rawURL string, opts Options) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("engine", "remote", "url", rawURL)
	logger.Info("Connecting to remote engine...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("engine URL %q must include a scheme and host", rawURL)
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}
	io := manager.Socket(namespace, sockOpts)

	c := newClient(io)
	c.sock = io
	io.On(types.EventName(resultEvent), func(data ...any) {
		c.deliver(ctx, data)
	})

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("EVENT HANDLER: 'connect' event fired", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("EVENT HANDLER: 'connect_error' event fired", "error", err)
		connectChan <- err
	})

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	io.Connect()
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		logger.Info("Connected to remote engine.", "sid", io.Id())
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}
}

func newClient(c conn) *Client {
	return &Client{conn: c, pending: make(map[string]chan response)}
}

// Call implements engine.Engine. It waits for the matching response until
// ctx is done.
func (c *Client) Call(ctx context.Context, module, symbol string, args []float64) (float64, error) {
	if !c.conn.Connected() {
		return 0, ErrNotConnected
	}

	id := uuid.NewString()
	done := make(chan response, 1)
	c.mu.Lock()
	c.pending[id] = done
	c.mu.Unlock()
	defer c.forget(id)

	ctxlog.FromContext(ctx).Debug("Emitting remote call.", "id", id, "module", module, "symbol", symbol)
	if err := c.conn.Emit(callEvent, encodeRequest(id, module, symbol, args)); err != nil {
		return 0, fmt.Errorf("failed to emit '%s': %w", callEvent, err)
	}

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("waiting for remote result of %s.%s: %w", module, symbol, ctx.Err())
	case res := <-done:
		return res.value, res.err
	}
}

// Close disconnects the socket. Calls still waiting fail with their
// context only.
func (c *Client) Close() error {
	if c.sock != nil {
		c.sock.Disconnect()
	}
	return nil
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// deliver routes one `result` event to its waiting call. Responses nobody
// waits for are dropped.
func (c *Client) deliver(ctx context.Context, data []any) {
	logger := ctxlog.FromContext(ctx)
	res, err := decodeResponse(data)
	if err != nil {
		logger.Warn("Dropping malformed remote result.", "error", err)
		return
	}

	c.mu.Lock()
	done, ok := c.pending[res.id]
	delete(c.pending, res.id)
	c.mu.Unlock()
	if !ok {
		logger.Debug("Dropping remote result with no waiting call.", "id", res.id)
		return
	}
	done <- res
}
