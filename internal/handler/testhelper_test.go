package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"

	"github.com/wallfetch/api/internal/auth"
	"github.com/wallfetch/api/internal/handler"
	"github.com/wallfetch/api/internal/middleware"
	"github.com/wallfetch/api/internal/model"
	"github.com/wallfetch/api/internal/service"
	"github.com/wallfetch/api/internal/storage"
	ws "github.com/wallfetch/api/internal/websocket"
)

const (
	testJWTSecret     = "test-secret-for-handlers"
	testAdminPassword = "hunter2"
)

// testApp holds all components needed for testing
type testApp struct {
	app       *fiber.App
	fs        afero.Fs
	downloads *service.DownloadService
	// release unblocks the stub job runner
	release chan struct{}
	// lastConfig is the config the stub runner received
	lastConfig chan *model.JobConfig
}

// setupApp creates a Fiber app with the production routes, an in-memory
// filesystem and a stub job runner that waits for release.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	fs := afero.NewMemMapFs()
	store := storage.NewStore(fs, "/downloads")
	if err := store.Init(); err != nil {
		t.Fatalf("store init: %v", err)
	}

	validate := validator.New()
	if err := model.RegisterValidators(validate); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	ta := &testApp{
		fs:         fs,
		release:    make(chan struct{}),
		lastConfig: make(chan *model.JobConfig, 4),
	}

	ta.downloads = service.NewDownloadService(func(ctx context.Context, jobID string, cfg *model.JobConfig, p service.Progress) (int, error) {
		ta.lastConfig <- cfg
		p.SetOutputDirectory("/downloads/1700000000000")
		select {
		case <-ta.release:
			return 0, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})
	t.Cleanup(func() {
		ta.downloads.Cancel()
		ta.downloads.Wait()
	})

	hub := ws.NewHub()
	go hub.Run()

	routes := &handler.Routes{
		Auth:        handler.NewAuthHandler(testAdminPassword, testJWTSecret, time.Hour, validate),
		Download:    handler.NewDownloadHandler(ta.downloads, validate, ""),
		Gallery:     handler.NewGalleryHandler(service.NewGalleryService(store, ta.downloads)),
		Upload:      handler.NewUploadHandler(service.NewUploadService(store), 1),
		AuthMW:      middleware.NewAuthMiddleware(testJWTSecret),
		RateLimiter: middleware.NewRateLimiter(nil),
		Hub:         hub,
		Store:       store,
		LoginPerMin: 10,
	}

	ta.app = fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024,
	})
	routes.Register(ta.app)

	return ta
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	claims := auth.Claims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "wallfetch-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	resp, err := doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + generateToken(t),
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// doUpload posts a multipart form with one "image" part.
func doUpload(t *testing.T, app *fiber.App, fileName, contentType string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, "/api/upload", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+generateToken(t))

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// errorCode returns error.code from an error envelope.
func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	e, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing error envelope in %v", body)
	}
	code, _ := e["code"].(string)
	return code
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected %d, got %d: %s", want, resp.StatusCode, readBody(t, resp))
	}
}
