package handler_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestUpload_Image(t *testing.T) {
	ta := setupApp(t)

	resp := doUpload(t, ta.app, "cat.png", "image/png", []byte("png-bytes"))
	expectStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	file, _ := body["file"].(string)
	if !strings.HasSuffix(file, ".png") {
		t.Errorf("file = %q", file)
	}
	if body["url"] != "/downloads/my-uploads/"+file {
		t.Errorf("url = %v", body["url"])
	}

	data, err := afero.ReadFile(ta.fs, "/downloads/my-uploads/"+file)
	if err != nil || string(data) != "png-bytes" {
		t.Errorf("stored = %q, %v", data, err)
	}
}

func TestUpload_RejectsNonImage(t *testing.T) {
	ta := setupApp(t)

	resp := doUpload(t, ta.app, "notes.txt", "text/plain", []byte("hello"))
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestUpload_TooLarge(t *testing.T) {
	ta := setupApp(t)

	resp := doUpload(t, ta.app, "big.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 1024*1024+1))
	expectStatus(t, resp, http.StatusRequestEntityTooLarge)
}

func TestUpload_MissingFile(t *testing.T) {
	ta := setupApp(t)

	resp := doAuthRequest(t, ta.app, http.MethodPost, "/api/upload", "")
	expectStatus(t, resp, http.StatusBadRequest)
}
