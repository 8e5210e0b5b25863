package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
)

// NewProxyTransport returns the transport every request of one job goes through.
// An empty proxyURL keeps the default transport behaviour, a socks* scheme dials
// through a SOCKS5 proxy, anything else is used as an HTTP(S) CONNECT proxy.
func NewProxyTransport(proxyURL string) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL == "" {
		return transport, nil
	}

	if !strings.Contains(proxyURL, "://") {
		proxyURL = "http://" + proxyURL
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy url: missing host")
	}

	if strings.HasPrefix(strings.ToLower(u.Scheme), "socks") {
		// x/net/proxy only registers socks5 and socks5h
		if u.Scheme != "socks5h" {
			u.Scheme = "socks5"
		}
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create socks dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = contextDialer(dialer)
		return transport, nil
	}

	transport.Proxy = http.ProxyURL(u)
	return transport, nil
}

func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}
}

// IsSocksProxy reports whether proxyURL selects the SOCKS dialer.
func IsSocksProxy(proxyURL string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(proxyURL)), "socks")
}
