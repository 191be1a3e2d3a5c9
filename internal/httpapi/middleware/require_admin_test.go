package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serveWith(mw func(http.Handler) http.Handler, header, value string) int {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireAdmin_AllowsAdminKey_BlocksPublicKey(t *testing.T) {
	keys := Keys{
		Public: []string{"pub_key"},
		Admin:  []string{"adm_key"},
	}
	mw := RequireAdmin(keys)

	if code := serveWith(mw, "X-API-Key", "adm_key"); code != http.StatusOK {
		t.Fatalf("admin key should pass; got %d", code)
	}
	if code := serveWith(mw, "Authorization", "Bearer adm_key"); code != http.StatusOK {
		t.Fatalf("admin bearer token should pass; got %d", code)
	}
	if code := serveWith(mw, "X-API-Key", "pub_key"); code != http.StatusForbidden {
		t.Fatalf("public key should be forbidden; got %d", code)
	}
	if code := serveWith(mw, "", ""); code != http.StatusUnauthorized {
		t.Fatalf("missing key should be 401; got %d", code)
	}
}

func TestRequireAny(t *testing.T) {
	mw := RequireAny(Keys{Public: []string{"pub_key"}, Admin: []string{"adm_key"}})

	if code := serveWith(mw, "X-API-Key", "pub_key"); code != http.StatusOK {
		t.Fatalf("public key should pass; got %d", code)
	}
	if code := serveWith(mw, "Authorization", "bearer adm_key"); code != http.StatusOK {
		t.Fatalf("admin key should pass; got %d", code)
	}
	if code := serveWith(mw, "X-API-Key", "nope"); code != http.StatusUnauthorized {
		t.Fatalf("unknown key should be 401; got %d", code)
	}
}

func TestNoKeysConfigured_AllowsAll(t *testing.T) {
	if code := serveWith(RequireAny(Keys{}), "", ""); code != http.StatusOK {
		t.Fatalf("RequireAny without keys: %d", code)
	}
	if code := serveWith(RequireAdmin(Keys{Public: []string{"p"}}), "", ""); code != http.StatusOK {
		t.Fatalf("RequireAdmin without admin keys: %d", code)
	}
}
