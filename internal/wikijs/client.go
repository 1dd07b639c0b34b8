// Package wikijs is the gateway to a Wiki.js instance's GraphQL API.
//
// The Client composes three concerns that are deliberately kept apart:
// session establishment (bearer token or login mutation), single-call
// execution with error normalization, and a bounded exponential-backoff
// retry wrapper applied to read calls only. Mutations always execute
// exactly once because Wiki.js has no idempotency key and a retried
// write could duplicate a page.
package wikijs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Credentials configures how the client authenticates.
type Credentials struct {
	// Token is a static bearer token; used directly when non-empty.
	Token string

	// Username and Password drive a login mutation when Token is empty.
	Username string
	Password string
}

// Client talks to one Wiki.js instance. It is safe for sequential use by
// one operation at a time; authentication is idempotent and concurrent
// re-establishment converges to the same header value.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	log     *zap.Logger

	authHeader    string
	authenticated bool

	// Retry tuning for read calls. Tests shrink these.
	retryInitial time.Duration
	retryMax     time.Duration
	maxRetries   uint64
}

// NewClient builds a client for the given base URL (no /graphql suffix).
func NewClient(baseURL string, creds Credentials, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:      baseURL,
		creds:        creds,
		http:         &http.Client{Timeout: 30 * time.Second},
		log:          log,
		retryInitial: time.Second,
		retryMax:     10 * time.Second,
		maxRetries:   2, // 3 attempts total
	}
}

// Authenticated reports whether a session has been established.
func (c *Client) Authenticated() bool { return c.authenticated }

// Authenticate establishes the request session. Safe to call before every
// operation: once established it returns immediately.
//
// A configured bearer token is installed without a round trip. Otherwise a
// username/password pair triggers a login mutation and installs the
// returned JWT. With neither form configured, or when the remote rejects
// the credentials, ErrNotAuthenticated is returned and no further remote
// calls should be attempted by the operation.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.authenticated {
		return nil
	}

	if c.creds.Token != "" {
		c.authHeader = "Bearer " + c.creds.Token
		c.authenticated = true
		return nil
	}

	if c.creds.Username == "" || c.creds.Password == "" {
		return ErrNotAuthenticated
	}

	var out struct {
		Authentication struct {
			Login struct {
				Succeeded bool   `json:"succeeded"`
				JWT       string `json:"jwt"`
				Message   string `json:"message"`
			} `json:"login"`
		} `json:"authentication"`
	}

	// Login is a mutation: one attempt, no retry.
	err := c.Mutate(ctx, loginMutation, map[string]any{
		"username": c.creds.Username,
		"password": c.creds.Password,
	}, &out)
	if err != nil {
		c.log.Error("login call failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	login := out.Authentication.Login
	if !login.Succeeded || login.JWT == "" {
		c.log.Error("login rejected", zap.String("message", login.Message))
		return fmt.Errorf("%w: %s", ErrNotAuthenticated, login.Message)
	}

	c.authHeader = "Bearer " + login.JWT
	c.authenticated = true
	return nil
}

// Query executes a read call with bounded exponential-backoff retry and
// decodes the response data into out. The error from the final attempt
// propagates unchanged.
func (c *Client) Query(ctx context.Context, doc string, vars map[string]any, out any) error {
	data, err := c.QueryRaw(ctx, doc, vars)
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

// QueryRaw is Query without decoding; callers interpret the raw data.
func (c *Client) QueryRaw(ctx context.Context, doc string, vars map[string]any) (json.RawMessage, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial
	b.MaxInterval = c.retryMax

	var data json.RawMessage
	op := func() error {
		var err error
		data, err = c.do(ctx, doc, vars)
		return err
	}
	notify := func(err error, next time.Duration) {
		c.log.Warn("query failed, retrying",
			zap.Error(err), zap.Duration("backoff", next))
	}

	err := backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx),
		notify)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Mutate executes a write call exactly once and decodes the response
// data into out. Passing a nil out discards the data.
func (c *Client) Mutate(ctx context.Context, doc string, vars map[string]any, out any) error {
	data, err := c.do(ctx, doc, vars)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeData(data, out)
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// do issues a single GraphQL call and normalizes the outcome: transport
// failures and non-2xx responses become *TransportError, responses with
// a GraphQL error list become *RemoteError, and success returns the raw
// data payload.
func (c *Client) do(ctx context.Context, doc string, vars map[string]any) (json.RawMessage, error) {
	payload := map[string]any{"query": doc}
	if len(vars) > 0 {
		payload["variables"] = vars
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var env graphqlEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(raw), Err: err}
	}

	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &RemoteError{Messages: msgs}
	}

	return env.Data, nil
}

func decodeData(data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return &DecodeError{Field: "data"}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
