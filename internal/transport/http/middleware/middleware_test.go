package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/paleta/internal/metrics"
	"github.com/pribylovaa/paleta/internal/pkg/log"
	"github.com/pribylovaa/paleta/internal/service"
)

// capHandler — тестовый slog.Handler: копит attrs из Logger.With
// и запоминает последнюю запись.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)

	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) > 0 {
		h.base = append(h.base, attrs...)
	}

	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

type errEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func decodeErr(t *testing.T, rr *httptest.ResponseRecorder) errEnvelope {
	t.Helper()

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

type verifierFunc func(ctx context.Context, token string) (int64, error)

func (f verifierFunc) VerifyBearer(ctx context.Context, token string) (int64, error) {
	return f(ctx, token)
}

func TestChain_Order(t *testing.T) {
	var order []string

	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-in")
				next.ServeHTTP(w, r)
				order = append(order, name+"-out")
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mk("m1"), mk("m2"))

	h.ServeHTTP(httptest.NewRecorder(), makeReq("/"))
	require.Equal(t, []string{"m1-in", "m2-in", "handler", "m2-out", "m1-out"}, order)
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
		require.Equal(t, seen, r.Header.Get(HeaderRequestID))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, makeReq("/"))

	require.Len(t, seen, 36)
	require.Equal(t, seen, rr.Header().Get(HeaderRequestID))
}

func TestRequestID_KeepsClientValue(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	req := makeReq("/")
	req.Header.Set(HeaderRequestID, "client-rid")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, "client-rid", seen)
	require.Equal(t, "client-rid", rr.Header().Get(HeaderRequestID))
}

func TestRequestID_ReplacesOversized(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	req := makeReq("/")
	req.Header.Set(HeaderRequestID, strings.Repeat("x", 500))
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, seen, 36)
}

func TestLogging_WritesRecordWithRequestID(t *testing.T) {
	ch := &capHandler{}
	l := slog.New(ch)

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, log.From(r.Context()))
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}), RequestID(), Logging(l))

	req := makeReq("/api/v1/x")
	req.Header.Set(HeaderRequestID, "rid-7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "http", ch.lastMsg)
	require.Equal(t, slog.LevelInfo, ch.lastLvl)
	require.Equal(t, "rid-7", ch.attrs["request_id"])
	require.Equal(t, int64(http.StatusTeapot), ch.attrs["status"])
	require.Equal(t, int64(2), ch.attrs["bytes"])
	require.Equal(t, "/api/v1/x", ch.attrs["path"])
}

func TestLogging_ServerErrorLevel(t *testing.T) {
	ch := &capHandler{}

	h := Logging(slog.New(ch))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), makeReq("/"))

	require.Equal(t, slog.LevelError, ch.lastLvl)
}

func TestRecover_Returns500Envelope(t *testing.T) {
	ch := &capHandler{}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID(), Logging(slog.New(ch)), Recover())

	req := makeReq("/")
	req.Header.Set(HeaderRequestID, "rid-p")
	rr := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rr, req) })

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	env := decodeErr(t, rr)
	require.False(t, env.Success)
	require.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	require.Equal(t, "rid-p", env.Error.RequestID)
	require.NotContains(t, rr.Body.String(), "boom")
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var has bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, has = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), makeReq("/"))
	require.True(t, has)
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	var has bool
	h := Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, has = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), makeReq("/"))
	require.False(t, has)
}

func TestTimeout_KeepsEarlierDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	want, _ := parent.Deadline()

	var got time.Time
	h := Timeout(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), makeReq("/").WithContext(parent))
	require.Equal(t, want, got)
}

func TestTimeout_SilentHandlerGets504(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	req := makeReq("/")
	req.Header.Set(HeaderRequestID, "rid-t")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusGatewayTimeout, rr.Code)
	env := decodeErr(t, rr)
	require.Equal(t, "TIMEOUT", env.Error.Code)
	require.Equal(t, "rid-t", env.Error.RequestID)
}

func TestTimeout_WrittenResponseUntouched(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		<-r.Context().Done()
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, makeReq("/"))

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Empty(t, rr.Body.String())
}

func TestRequireUser(t *testing.T) {
	v := verifierFunc(func(_ context.Context, token string) (int64, error) {
		switch token {
		case "good":
			return 42, nil
		case "old":
			return 0, service.ErrTokenExpired
		default:
			return 0, service.ErrInvalidToken
		}
	})

	var gotID int64
	h := RequireUser(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFrom(r.Context())
		require.True(t, ok)
		gotID = id
		w.WriteHeader(http.StatusNoContent)
	}))

	tcs := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing", "", http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"invalid", "Bearer nope", http.StatusUnauthorized, "AUTH_INVALID_TOKEN"},
		{"expired", "Bearer old", http.StatusUnauthorized, "AUTH_TOKEN_EXPIRED"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			req := makeReq("/")
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			require.Equal(t, tc.status, rr.Code)
			require.Equal(t, tc.code, decodeErr(t, rr).Error.Code)
		})
	}

	req := makeReq("/")
	req.Header.Set("Authorization", "bearer good")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, int64(42), gotID)
}

func TestRequireUser_VerifierFailure(t *testing.T) {
	v := verifierFunc(func(context.Context, string) (int64, error) {
		return 0, errors.New("db down")
	})

	h := RequireUser(v)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called")
	}))

	req := makeReq("/")
	req.Header.Set("Authorization", "Bearer x")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/palettes/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), makeReq("/palettes/1"))
	r.ServeHTTP(httptest.NewRecorder(), makeReq("/palettes/2"))
	r.ServeHTTP(httptest.NewRecorder(), makeReq("/nowhere"))

	// Две серии: шаблон маршрута и unmatched.
	count, err := testutil.GatherAndCount(reg, "paleta_http_request_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	called := false
	h := Metrics(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), makeReq("/"))
	require.True(t, called)
}
