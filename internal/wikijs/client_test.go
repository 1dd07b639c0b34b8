package wikijs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient builds a client against a stub server with retry delays
// shrunk so tests run fast.
func newTestClient(t *testing.T, creds Credentials, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, creds, nil)
	c.retryInitial = time.Millisecond
	c.retryMax = 5 * time.Millisecond
	return c
}

func writeData(w http.ResponseWriter, data string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"data":` + data + `}`))
}

func TestAuthenticate_TokenNeedsNoRoundTrip(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, Credentials{Token: "tok"}, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	if err := c.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if !c.Authenticated() {
		t.Error("Authenticated() = false after token auth")
	}
	if calls.Load() != 0 {
		t.Errorf("server called %d times, want 0", calls.Load())
	}
	if c.authHeader != "Bearer tok" {
		t.Errorf("authHeader = %q, want bearer token", c.authHeader)
	}
}

func TestAuthenticate_LoginInstallsJWT(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, Credentials{Username: "u", Password: "p"}, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeData(w, `{"authentication":{"login":{"succeeded":true,"jwt":"jwt-abc","message":""}}}`)
	})

	if err := c.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if c.authHeader != "Bearer jwt-abc" {
		t.Errorf("authHeader = %q, want login JWT", c.authHeader)
	}

	// Second call is a no-op.
	if err := c.Authenticate(context.Background()); err != nil {
		t.Fatalf("second Authenticate() failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("login issued %d times, want 1", calls.Load())
	}
}

func TestAuthenticate_LoginRejected(t *testing.T) {
	c := newTestClient(t, Credentials{Username: "u", Password: "wrong"}, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, `{"authentication":{"login":{"succeeded":false,"jwt":"","message":"Invalid credentials"}}}`)
	})

	err := c.Authenticate(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Authenticate() error = %v, want ErrNotAuthenticated", err)
	}
	if c.Authenticated() {
		t.Error("Authenticated() = true after rejected login")
	}
}

func TestAuthenticate_NoCredentials(t *testing.T) {
	c := newTestClient(t, Credentials{}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	})

	if err := c.Authenticate(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Authenticate() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestQuery_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, Credentials{Token: "t"}, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeData(w, `{"pages":{"list":[]}}`)
	})

	var out struct {
		Pages struct {
			List []PageSummary `json:"list"`
		} `json:"pages"`
	}
	if err := c.Query(context.Background(), listPagesQuery, nil, &out); err != nil {
		t.Fatalf("Query() failed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("stub invoked %d times, want 3", calls.Load())
	}
}

func TestQuery_FinalErrorPropagates(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, Credentials{Token: "t"}, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := c.Query(context.Background(), listPagesQuery, nil, &struct{}{})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Query() error = %v, want *TransportError", err)
	}
	if te.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", te.StatusCode)
	}
	if calls.Load() != 3 {
		t.Errorf("stub invoked %d times, want 3 attempts", calls.Load())
	}
}

func TestMutate_NeverRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, Credentials{Token: "t"}, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	err := c.Mutate(context.Background(), deletePageMutation, map[string]any{"id": 1}, nil)
	if err == nil {
		t.Fatal("Mutate() succeeded, want transport error")
	}
	if calls.Load() != 1 {
		t.Errorf("stub invoked %d times, want exactly 1", calls.Load())
	}
}

func TestDo_GraphQLErrorsBecomeRemoteError(t *testing.T) {
	c := newTestClient(t, Credentials{Token: "t"}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":[{"message":"first"},{"message":"second"}]}`))
	})

	err := c.Mutate(context.Background(), deletePageMutation, nil, nil)
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want *RemoteError", err)
	}
	if len(re.Messages) != 2 || re.Messages[0] != "first" {
		t.Errorf("Messages = %v, want both messages captured", re.Messages)
	}
}

func TestDo_SendsAuthorizationHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, Credentials{Token: "secret"}, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeData(w, `{"pages":{"list":[]}}`)
	})

	if err := c.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	if _, err := c.ListPages(context.Background()); err != nil {
		t.Fatalf("ListPages() failed: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestDo_PostsQueryAndVariables(t *testing.T) {
	var payload map[string]any
	c := newTestClient(t, Credentials{Token: "t"}, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		writeData(w, `{"pages":{"single":null}}`)
	})

	_, err := c.PageByID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("PageByID() error = %v, want ErrNotFound", err)
	}

	if payload["query"] == "" {
		t.Error("request payload missing query document")
	}
	vars, ok := payload["variables"].(map[string]any)
	if !ok {
		t.Fatal("request payload missing variables")
	}
	if vars["id"] != float64(42) {
		t.Errorf("variables.id = %v, want 42", vars["id"])
	}
}
