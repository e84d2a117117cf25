package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authRequest(h http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBearerAuth_DisabledWhenNoKeys(t *testing.T) {
	h := BearerAuthMiddleware(nil)(okHandler())

	rec := authRequest(h, "/search?search_term=x", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through without keys, got %d", rec.Code)
	}
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"})(okHandler())

	rec := authRequest(h, "/search?search_term=x", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"})(okHandler())

	rec := authRequest(h, "/search?search_term=x", "Basic secret")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuth_InvalidKey(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"})(okHandler())

	rec := authRequest(h, "/search?search_term=x", "Bearer wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuth_ValidKey(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"})(okHandler())

	rec := authRequest(h, "/search?search_term=x", "Bearer secret")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestBearerAuth_ExemptPaths(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"})(okHandler())

	for _, path := range []string{"/health", "/metrics"} {
		rec := authRequest(h, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s should bypass auth, got %d", path, rec.Code)
		}
	}
}

func TestBearerAuth_EmptyKeysIgnored(t *testing.T) {
	// Keys that are empty strings must not disable auth accidentally by
	// matching an empty token.
	h := BearerAuthMiddleware([]string{""})(okHandler())

	rec := authRequest(h, "/search?search_term=x", "Bearer ")
	if rec.Code != http.StatusOK {
		t.Errorf("all-empty key list means auth disabled, got %d", rec.Code)
	}
}
