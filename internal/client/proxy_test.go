package client

import (
	"net/http"
	"testing"
)

func TestNewProxyTransport_Empty(t *testing.T) {
	tr, err := NewProxyTransport("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tr == nil {
		t.Fatal("expected a transport")
	}
	if tr.DialContext == nil {
		t.Error("expected default dialer to be kept")
	}
}

func TestNewProxyTransport_HTTP(t *testing.T) {
	tr, err := NewProxyTransport("http://127.0.0.1:7890")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tr.Proxy == nil {
		t.Fatal("expected Proxy func to be set")
	}

	req, _ := http.NewRequest(http.MethodGet, "https://w.wallhaven.cc/full/ab/wallhaven-abc.jpg", nil)
	u, err := tr.Proxy(req)
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if u == nil || u.Host != "127.0.0.1:7890" {
		t.Errorf("expected proxy host 127.0.0.1:7890, got %v", u)
	}
}

func TestNewProxyTransport_NoScheme(t *testing.T) {
	tr, err := NewProxyTransport("127.0.0.1:7890")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, "https://wallhaven.cc/api/v1/search", nil)
	u, _ := tr.Proxy(req)
	if u == nil || u.Scheme != "http" {
		t.Errorf("expected http scheme to be assumed, got %v", u)
	}
}

func TestNewProxyTransport_Socks(t *testing.T) {
	for _, raw := range []string{"socks5://127.0.0.1:1080", "socks5h://127.0.0.1:1080", "socks://127.0.0.1:1080"} {
		tr, err := NewProxyTransport(raw)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", raw, err)
		}
		if tr.Proxy != nil {
			t.Errorf("%s: expected no HTTP proxy func for socks", raw)
		}
		if tr.DialContext == nil {
			t.Errorf("%s: expected socks dialer", raw)
		}
	}
}

func TestNewProxyTransport_Invalid(t *testing.T) {
	if _, err := NewProxyTransport("http://"); err == nil {
		t.Error("expected error for proxy url without host")
	}
}

func TestIsSocksProxy(t *testing.T) {
	cases := map[string]bool{
		"":                        false,
		"http://127.0.0.1:7890":   false,
		"https://proxy:443":       false,
		"socks5://127.0.0.1:1080": true,
		"SOCKS5://host:1":         true,
	}
	for in, want := range cases {
		if got := IsSocksProxy(in); got != want {
			t.Errorf("IsSocksProxy(%q) = %v, want %v", in, got, want)
		}
	}
}
