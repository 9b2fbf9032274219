// Package remote implements the repositories against the HTTP record store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/rentals/domain"
	"github.com/fastygo/rentals/pkg/logger"
)

const (
	resourceProperties   = "/imovel"
	resourceContracts    = "/aluguel"
	resourceInstallments = "/parcelas"
)

// Options configures a Client.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	MaxConns int
	// Dial overrides the connection dialer, e.g. for in-memory listeners in tests.
	Dial   fasthttp.DialFunc
	Logger *zap.Logger
}

// Client performs JSON requests against the store. Every call is bounded by
// the configured timeout and by the context deadline, whichever comes first.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient validates the base URL and prepares the connection pool.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid store base url %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	hc := &fasthttp.Client{
		Name:            "rentalctl",
		MaxConnsPerHost: opts.MaxConns,
		ReadTimeout:     opts.Timeout,
		WriteTimeout:    opts.Timeout,
		Dial:            opts.Dial,
	}

	return &Client{
		http:    hc,
		baseURL: base,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	if c == nil || c.http == nil {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, fasthttp.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, fasthttp.MethodPost, path, in, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, fasthttp.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return &domain.TransportError{Method: method, Path: path, Err: err}
	}

	reqID := logger.RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = logger.ContextWithRequestID(ctx, reqID)
	}
	log := logger.WithRequestID(ctx, c.logger)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return domain.WrapError(domain.KindInternal, domain.ErrCodeInvalidPayload, "encode request", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	started := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		log.Warn("store request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &domain.TransportError{Method: method, Path: path, Err: err}
	}

	status := resp.StatusCode()
	log.Debug("store request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(started)))

	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return &domain.TransportError{
			Method:     method,
			Path:       path,
			StatusCode: status,
			Body:       strings.TrimSpace(string(resp.Body())),
		}
	}

	body := bytes.TrimSpace(resp.Body())
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.TransportError{
			Method:     method,
			Path:       path,
			StatusCode: status,
			Body:       string(body),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

func itemPath(resource string, id domain.ID) string {
	return resource + "/" + id.String()
}

func isNotFound(err error) bool {
	var tErr *domain.TransportError
	return errors.As(err, &tErr) && tErr.StatusCode == fasthttp.StatusNotFound
}
