// Package client is a typed HTTP client for the storefront API. It unwraps
// the {data:...} success envelope and reconstructs typed errors from the
// {error:{code,message}} envelope so callers can branch on error codes the
// same way server code does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// Client talks to the storefront API. The zero value is not usable; build
// one with New. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logg       *logger.Logger

	mu    sync.RWMutex
	token string
}

// Options tunes the API client beyond what ClientConfig carries.
type Options struct {
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// New builds an API client for the configured base URL.
func New(cfg config.ClientConfig, opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("client base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing client base url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logg:       opts.Logger,
	}, nil
}

// SetToken installs the bearer token used on cart requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

// ClearToken drops the bearer token, returning the client to guest mode.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the currently installed bearer token, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Authenticated reports whether a bearer token is installed.
func (c *Client) Authenticated() bool {
	return c.Token() != ""
}

// Register creates an account and installs the returned session token.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Session, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &session, withIdempotencyKey()); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Login authenticates and installs the returned session token.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	body := map[string]string{"username": username, "password": password}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Products fetches the full catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories fetches the distinct category list.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/products/categories/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CartGet fetches the authenticated user's cart.
func (c *Client) CartGet(ctx context.Context) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CartAdd increments a cart line by quantity.
func (c *Client) CartAdd(ctx context.Context, productID uuid.UUID, quantity int) (*Cart, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}
	var out Cart
	if err := c.do(ctx, http.MethodPost, "/api/cart/add", body, &out, withIdempotencyKey()); err != nil {
		return nil, err
	}
	return &out, nil
}

// CartSetQuantity sets a cart line to an absolute quantity in a single
// upsert. Zero removes the line.
func (c *Client) CartSetQuantity(ctx context.Context, productID uuid.UUID, quantity int) (*Cart, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}
	var out Cart
	if err := c.do(ctx, http.MethodPut, "/api/cart/update", body, &out, withIdempotencyKey()); err != nil {
		return nil, err
	}
	return &out, nil
}

// CartRemove drops a cart line.
func (c *Client) CartRemove(ctx context.Context, productID uuid.UUID) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodDelete, "/api/cart/remove/"+productID.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CartClear removes every line from the cart.
func (c *Client) CartClear(ctx context.Context) (*ClearResult, error) {
	var out ClearResult
	if err := c.do(ctx, http.MethodDelete, "/api/cart/clear", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type requestOption func(*http.Request)

// withIdempotencyKey stamps mutating calls so the server can replay instead
// of re-executing when the client retries.
func withIdempotencyKey() requestOption {
	key := uuid.NewString()
	return func(req *http.Request) {
		req.Header.Set("Idempotency-Key", key)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any, opts ...requestOption) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront api unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response envelope")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response payload")
	}
	return nil
}

func decodeAPIError(status int, raw []byte) error {
	var envelope struct {
		Error struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("unexpected status %d", status))
	}

	apiErr := pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
	if len(envelope.Error.Details) > 0 {
		apiErr = apiErr.WithDetails(json.RawMessage(envelope.Error.Details))
	}
	return apiErr
}
