package providers

import (
	"context"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Conn is a raw node connection. *rpc.Client satisfies it.
type Conn interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Provider forwards requests to a node connection unchanged. Every binding
// and client in the repo talks to the node through a Provider, so this is
// the single place to intercept traffic.
type Provider struct {
	conn   Conn
	logger zerolog.Logger
}

// New wraps conn. Requests are logged at debug level on logger.
func New(conn Conn, logger zerolog.Logger) *Provider {
	return &Provider{
		conn:   conn,
		logger: logger.With().Str("component", "provider").Logger(),
	}
}

// Dial connects to a node at url (http, ws or ipc).
func Dial(ctx context.Context, url string, logger zerolog.Logger) (*Provider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing node at %s", url)
	}
	return New(client, logger.With().Str("url", url).Logger()), nil
}

// Send performs one request and blocks until the node answers. The node's
// error, if any, is returned as-is.
func (p *Provider) Send(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	p.logger.Debug().Str("method", method).Int("params", len(args)).Msg("rpc request")
	err := p.conn.CallContext(ctx, result, method, args...)
	if err != nil {
		p.logger.Debug().Str("method", method).Err(err).Msg("rpc error")
	}
	return err
}

// SendAsync performs the request on its own goroutine. The returned channel
// receives exactly one value (nil on success) and is never closed early.
func (p *Provider) SendAsync(ctx context.Context, result interface{}, method string, args ...interface{}) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- p.Send(ctx, result, method, args...)
	}()
	return done
}

// Close releases the underlying connection when it supports closing.
func (p *Provider) Close() {
	if c, ok := p.conn.(interface{ Close() }); ok {
		c.Close()
	}
}
