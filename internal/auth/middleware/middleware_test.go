package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testService(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return NewAuthService("test-hmac-key", "admin", string(hash))
}

func TestIssueAndParse(t *testing.T) {
	svc := testService(t)
	tok, err := svc.IssueJWT("admin", "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Sub != "admin" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}

	other := NewAuthService("different-key", "admin", "")
	if _, err := other.Parse(tok); err == nil {
		t.Error("token signed with another key should not parse")
	}
}

func TestLoginHandler(t *testing.T) {
	svc := testService(t)
	h := LoginHandler(svc)

	do := func(user, pass string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"username": user, "password": pass})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
		return rec
	}

	rec := do("admin", "s3cret")
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["access_token"] == "" {
		t.Errorf("token response: %v %v", resp, err)
	}

	if rec := do("admin", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d", rec.Code)
	}
	if rec := do("intruder", "s3cret"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad user = %d", rec.Code)
	}
}

func TestJWTMiddleware(t *testing.T) {
	svc := testService(t)
	protected := JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/grade", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d", rec.Code)
	}

	tok, err := svc.IssueJWT("admin", "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token = %d", rec.Code)
	}
}
