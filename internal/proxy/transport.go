package proxy

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	xproxy "golang.org/x/net/proxy"

	"relay-proxy/internal/config"
)

// NewTransport builds the RoundTripper used for upstream calls. With
// cfg.UpstreamProxy set, outbound connections go through that proxy.
func NewTransport(cfg *config.Config) (*http.Transport, error) {
	direct := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	t := &http.Transport{
		DialContext:           direct.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.UpstreamTimeout,
		ExpectContinueTimeout: time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			ClientSessionCache: tls.NewLRUClientSessionCache(0),
		},
	}

	if cfg.UpstreamProxy == "" {
		return t, nil
	}

	u, err := url.Parse(cfg.UpstreamProxy)
	if err != nil {
		return nil, fmt.Errorf("upstream proxy: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)

	switch u.Scheme {
	case "http", "https":
		t.Proxy = http.ProxyURL(u)
	case "socks5":
		d, err := xproxy.FromURL(u, direct)
		if err != nil {
			return nil, fmt.Errorf("upstream proxy: %w", err)
		}
		cd, ok := d.(xproxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("upstream proxy: %T does not support contexts", d)
		}
		t.DialContext = cd.DialContext
	default:
		return nil, fmt.Errorf("upstream proxy: unsupported scheme %q", u.Scheme)
	}

	return t, nil
}
