package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asksql/asksql/internal/auth"
	"github.com/asksql/asksql/internal/config"
	"github.com/asksql/asksql/internal/nl2sql"
	"github.com/asksql/asksql/internal/query"
	"github.com/asksql/asksql/internal/schema"
)

func TestHealthEndpoint(t *testing.T) {
	cfg, err := config.Load("asksql-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}

	h := NewHandler(cfg, Dependencies{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestReadyEndpointReturns503WhenDependencyFails(t *testing.T) {
	cfg, err := config.Load("asksql-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}

	h := NewHandler(cfg, Dependencies{
		Readiness: func(context.Context) error {
			return errors.New("dependency down")
		},
	})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	cfg, err := config.Load("asksql-api", mapLookup(map[string]string{
		"ASKSQL_AUTH_REQUIRED": "true",
	}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	validator, err := auth.NewStaticAPIKeyValidator("k1")
	if err != nil {
		t.Fatalf("validator setup failed: %v", err)
	}

	h := NewHandler(cfg, Dependencies{
		AuthMiddleware: auth.Middleware(nil, validator),
		Schema:         &fakeSchema{},
	})

	unauthResp := httptest.NewRecorder()
	h.ServeHTTP(unauthResp, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))
	if unauthResp.Code != http.StatusUnauthorized {
		t.Fatalf("unauth status = %d", unauthResp.Code)
	}

	authReq := httptest.NewRequest(http.MethodGet, "/v1/schema", nil)
	authReq.Header.Set("X-API-Key", "k1")
	authResp := httptest.NewRecorder()
	h.ServeHTTP(authResp, authReq)
	if authResp.Code != http.StatusOK {
		t.Fatalf("auth status = %d", authResp.Code)
	}
}

func TestCombineReadinessChecksStopsOnFirstFailure(t *testing.T) {
	order := make([]int, 0, 3)
	combined := CombineReadinessChecks(
		func(_ context.Context) error {
			order = append(order, 1)
			return nil
		},
		func(_ context.Context) error {
			order = append(order, 2)
			return errors.New("boom")
		},
		func(_ context.Context) error {
			order = append(order, 3)
			return nil
		},
	)

	err := combined(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("execution order = %#v", order)
	}
}

func TestCheckTranslatorConfig(t *testing.T) {
	cfg, err := config.Load("asksql-api", mapLookup(map[string]string{
		"ASKSQL_AI_TRANSLATE_ENABLED": "true",
	}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	cfg.AI.APIKey = ""
	if err := CheckTranslatorConfig(cfg)(context.Background()); err == nil {
		t.Fatal("expected missing API key to fail readiness")
	}

	cfg.AI.APIKey = "gsk-test"
	if err := CheckTranslatorConfig(cfg)(context.Background()); err != nil {
		t.Fatalf("readiness failed: %v", err)
	}

	cfg.AI.TranslateEnabled = false
	cfg.AI.APIKey = ""
	if err := CheckTranslatorConfig(cfg)(context.Background()); err != nil {
		t.Fatalf("disabled translation should pass readiness: %v", err)
	}
}

func mapLookup(values map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

type fakeSchema struct {
	descriptor schema.Descriptor
	err        error
	text       string
}

func (f *fakeSchema) Describe(context.Context) (schema.Descriptor, error) {
	if f.err != nil {
		return schema.Descriptor{}, f.err
	}
	return f.descriptor, nil
}

func (f *fakeSchema) DescribeText(ctx context.Context) string {
	if f.text != "" {
		return f.text
	}
	descriptor, err := f.Describe(ctx)
	if err != nil {
		return "fallback"
	}
	return descriptor.Text()
}

type fakeTranslator struct {
	result   nl2sql.Result
	err      error
	requests []nl2sql.Request
}

func (f *fakeTranslator) Translate(_ context.Context, req nl2sql.Request) (nl2sql.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nl2sql.Result{}, f.err
	}
	return f.result, nil
}

type fakeEngine struct {
	result   query.Result
	err      error
	requests []query.Request
}

func (f *fakeEngine) Execute(_ context.Context, req query.Request) (query.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return query.Result{}, f.err
	}
	return f.result, nil
}
