package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientSendsFixedHeaders(t *testing.T) {
	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientOptions{
		UserAgent: "test-agent/1.0",
		Referer:   "https://www.177picyy.com/",
	})

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()

	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test-agent/1.0")
	}
	if gotReferer != "https://www.177picyy.com/" {
		t.Errorf("Referer = %q, want %q", gotReferer, "https://www.177picyy.com/")
	}
}

func TestClientKeepsExplicitReferer(t *testing.T) {
	var gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientOptions{Referer: "https://default.example/"})

	req, err := http.NewRequest("GET", srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Referer", "https://explicit.example/")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = resp.Body.Close()

	if gotReferer != "https://explicit.example/" {
		t.Errorf("Referer = %q, want the explicit value", gotReferer)
	}
}

func TestPickUserAgent(t *testing.T) {
	if got := PickUserAgent("custom"); got != "custom" {
		t.Errorf("PickUserAgent(custom) = %q", got)
	}

	def := PickUserAgent("")
	if !strings.HasPrefix(def, "Mozilla/5.0") {
		t.Errorf("default user agent looks wrong: %q", def)
	}
}
