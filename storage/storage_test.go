package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUpload(t *testing.T) {
	var gotPath, gotType, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "https://cdn.test", "secret")
	url, err := c.Upload(context.Background(), "stories/s1/scenes/a.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if url != "https://cdn.test/stories/s1/scenes/a.png" {
		t.Errorf("url = %q", url)
	}
	if gotPath != "/stories/s1/scenes/a.png" {
		t.Errorf("path = %q", gotPath)
	}
	if gotType != "image/png" {
		t.Errorf("content type = %q", gotType)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if string(gotBody) != "png-bytes" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestUploadErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "access denied", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")
	if _, err := c.Upload(context.Background(), "k", "text/plain", []byte("x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestPublicURLDefaultsToBase(t *testing.T) {
	c := NewClient("http://blob.local/bucket/", "", "")
	if c.publicURL != "http://blob.local/bucket" {
		t.Errorf("publicURL = %q", c.publicURL)
	}
}
