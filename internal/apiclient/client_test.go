package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := Config{BaseURL: srv.URL}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNoBaseURL) {
		t.Errorf("expected ErrNoBaseURL, got %v", err)
	}
	if _, err := New(Config{BaseURL: "ftp://example.org"}); err == nil {
		t.Error("expected an error for a non-http scheme")
	}
}

func TestPostJSON(t *testing.T) {
	var gotAuth, gotType, gotPath string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"status":"ok","data":{"id":"1"}}`))
	}, func(cfg *Config) {
		cfg.BaseURL += "/"
		cfg.Token = staticToken("tok")
	})

	resp, err := c.PostJSON(context.Background(), "/registerPatient", map[string]string{"fname": "Jane"})
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if !resp.OK() {
		t.Errorf("expected ok, got %q", resp.Status)
	}
	if gotPath != "/registerPatient" {
		t.Errorf("expected path /registerPatient, got %s", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotType)
	}
	if gotBody["fname"] != "Jane" {
		t.Errorf("unexpected body %v", gotBody)
	}
}

func TestPostJSONRejectionIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"status":"error","error":"phone number already exists"}`))
	}, nil)

	resp, err := c.PostJSON(context.Background(), "/registerPatient", struct{}{})
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if resp.OK() {
		t.Error("expected a rejection")
	}
	if resp.Error != "phone number already exists" || resp.HTTPStatus != http.StatusConflict {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestPostJSONMalformed(t *testing.T) {
	for _, body := range []string{`not json`, `{"data":{}}`, `[]`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}, nil)
		if _, err := c.PostJSON(context.Background(), "/x", nil); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("body %q: expected ErrMalformedResponse, got %v", body, err)
		}
	}
}

func TestPostJSONTimeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(cfg *Config) { cfg.Timeout = 20 * time.Millisecond })
	defer close(release)

	if _, err := c.PostJSON(context.Background(), "/slow", nil); !errors.Is(err, ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	reg := prometheus.NewRegistry()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}, func(cfg *Config) {
		cfg.MaxFailures = 3
		cfg.Registerer = reg
	})

	for i := 0; i < 3; i++ {
		if _, err := c.PostJSON(context.Background(), "/x", nil); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("call %d: expected ErrMalformedResponse, got %v", i, err)
		}
	}
	if _, err := c.PostJSON(context.Background(), "/x", nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 requests to reach the server, got %d", hits.Load())
	}
	if got := testutil.ToFloat64(c.metrics.breaker); got != 1 {
		t.Errorf("expected breaker gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(c.metrics.requests.WithLabelValues("/x", "circuit_open")); got != 1 {
		t.Errorf("expected one circuit_open request, got %v", got)
	}
}

func TestRejectionsDoNotTripBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","error":"nope"}`))
	}, func(cfg *Config) { cfg.MaxFailures = 2 })

	for i := 0; i < 5; i++ {
		if _, err := c.PostJSON(context.Background(), "/x", nil); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "a@b.org" || req.Password != "pw" {
			_, _ = w.Write([]byte(`{"status":"error","error":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","data":{"token":"jwt","name":"A","role":"Doctor"}}`))
	}, nil)

	res, err := c.Login(context.Background(), "a@b.org", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "jwt" || res.Role != "Doctor" {
		t.Errorf("unexpected login result %+v", res)
	}
	if _, err := c.Login(context.Background(), "a@b.org", "bad"); err == nil {
		t.Error("expected an error for bad credentials")
	}
}

func TestListPatients(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Query().Get("registry") != "asthma" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
		_, _ = w.Write([]byte(`{"status":"ok","data":[{"id":"1","fname":"Jane","gender":"female","age":35}]}`))
	}, nil)

	patients, err := c.ListPatients(context.Background(), "asthma")
	if err != nil {
		t.Fatalf("ListPatients: %v", err)
	}
	if len(patients) != 1 || patients[0].FirstName != "Jane" || patients[0].Age != 35 {
		t.Errorf("unexpected patients %+v", patients)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Response
		wantErr bool
	}{
		{"ok", `{"status":"ok"}`, Response{Status: "ok"}, false},
		{"error string", `{"status":"error","error":"bad id"}`, Response{Status: "error", Error: "bad id"}, false},
		{"error object", `{"status":"error","error":{"code":1}}`, Response{Status: "error", Error: `{"code":1}`}, false},
		{"null data", `{"status":"ok","data":null}`, Response{Status: "ok"}, false},
		{"missing status", `{"error":"x"}`, Response{}, true},
		{"not json", `oops`, Response{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResponse err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Status != tt.want.Status || got.Error != tt.want.Error || len(got.Data) != 0 {
				t.Errorf("ParseResponse = %+v, want %+v", got, tt.want)
			}
		})
	}
}
