package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
)

type stubVerifier struct {
	token *firebaseauth.Token
	err   error
}

func (s *stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	return s.token, s.err
}

func adminToken() *firebaseauth.Token {
	return &firebaseauth.Token{
		UID:    "admin-1",
		Claims: map[string]interface{}{"role": "admin", "email": "back-office@velours.paris"},
	}
}

func TestRequireFirebaseAuth_AllowsAdmin(t *testing.T) {
	a := NewAuthenticator(&stubVerifier{token: adminToken()})

	var captured *Identity
	handler := a.RequireFirebaseAuth(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured == nil || !captured.IsAdmin() {
		t.Fatalf("expected admin identity, got %+v", captured)
	}
}

func TestRequireFirebaseAuth_RejectsWrongRole(t *testing.T) {
	token := &firebaseauth.Token{UID: "u-1", Claims: map[string]interface{}{"role": "customer"}}
	a := NewAuthenticator(&stubVerifier{token: token})

	handler := a.RequireFirebaseAuth(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireFirebaseAuth_MissingHeader(t *testing.T) {
	a := NewAuthenticator(&stubVerifier{token: adminToken()})

	handler := a.RequireFirebaseAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOptionalFirebaseAuth_AnonymousPassesThrough(t *testing.T) {
	a := NewAuthenticator(&stubVerifier{token: adminToken()})

	handler := a.OptionalFirebaseAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); ok {
			t.Fatal("expected anonymous context")
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestOptionalFirebaseAuth_InvalidTokenDegradesToAnonymous(t *testing.T) {
	a := NewAuthenticator(&stubVerifier{err: errors.New("bad token")})

	handler := a.OptionalFirebaseAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); ok {
			t.Fatal("expected anonymous context for invalid token")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestIdentityIsAdmin_RoleClaimOnly(t *testing.T) {
	// Admin status comes from the role claim alone, never from email.
	id := &Identity{UID: "u-2", Email: "ceo@velours.paris", Roles: []string{RoleCustomer}}
	if id.IsAdmin() {
		t.Fatal("customer must not be admin")
	}
	var anon *Identity
	if anon.IsAdmin() {
		t.Fatal("anonymous must not be admin")
	}
	if !(&Identity{Roles: []string{"Admin"}}).IsAdmin() {
		t.Fatal("role match should be case-insensitive")
	}
}

func TestRolesFromClaims_MapShape(t *testing.T) {
	roles := rolesFromClaims(map[string]interface{}{"role": map[string]interface{}{"admin": true, "customer": false}}, "role")
	if len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("unexpected roles %v", roles)
	}
}
