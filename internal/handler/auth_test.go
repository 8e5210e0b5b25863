package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wallfetch/api/internal/auth"
)

func TestLogin_Success(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/login", `{"password":"hunter2"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	expectStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected token in %v", body)
	}
	claims, err := auth.ValidateToken(token, testJWTSecret)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if !claims.Admin {
		t.Error("expected admin claim")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/login", `{"password":"nope"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	expectStatus(t, resp, http.StatusUnauthorized)

	body := parseJSON(t, resp)
	if errorCode(t, body) != "UNAUTHORIZED" {
		t.Errorf("unexpected error code in %v", body)
	}
	if body["message"] != "Wrong password" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestLogin_MissingPassword(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/login", `{}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	ta := setupApp(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/status"},
		{http.MethodPost, "/api/download"},
		{http.MethodPost, "/api/download/cancel"},
		{http.MethodGet, "/api/images"},
		{http.MethodGet, "/api/images/123"},
		{http.MethodDelete, "/api/images/123"},
		{http.MethodGet, "/api/zip"},
		{http.MethodPost, "/api/upload"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			resp, err := doRequest(ta.app, r.method, r.path, "", nil)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			expectStatus(t, resp, http.StatusUnauthorized)
		})
	}
}

func TestAuth_RejectsExpiredToken(t *testing.T) {
	ta := setupApp(t)

	claims := auth.Claims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	resp, err := doRequest(ta.app, http.MethodGet, "/api/status", "", map[string]string{
		"Authorization": "Bearer " + signed,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestAuth_InvalidHeaderFormat(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/status", "", map[string]string{
		"Authorization": "Token abc",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestAuth_TokenQueryParameter(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/status?token="+generateToken(t), "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	expectStatus(t, resp, http.StatusOK)
}
