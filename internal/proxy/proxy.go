package proxy

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"relay-proxy/internal/auth"
	"relay-proxy/internal/config"
	"relay-proxy/internal/logger"
	"relay-proxy/internal/stats"
)

const (
	// TargetHeader names the upstream URL of a relayed request. It is the only
	// header not passed on to the upstream.
	TargetHeader = "Target-URL"
	AuthHeader   = "Proxy-Authorization"
)

// Server relays each inbound request to the URL named by its Target-URL
// header and records usage in a stats.Store.
type Server struct {
	auth   *auth.Authenticator
	stats  *stats.Store
	client *http.Client
}

func NewServer(cfg *config.Config, a *auth.Authenticator, store *stats.Store, transport http.RoundTripper) *Server {
	return &Server{
		auth:  a,
		stats: store,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.UpstreamTimeout,
			// The upstream's own status is relayed, redirects included.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// upstreamResponse is a fully read upstream reply.
type upstreamResponse struct {
	status int
	header http.Header
	body   []byte
}

// Implement http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	target, resp, rerr := s.relay(r)
	if rerr != nil {
		s.writeError(w, rerr)
		logRequest(r, target, rerr.status(), 0, time.Since(start), rerr)
		return
	}

	for k, v := range resp.header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.status)
	if _, err := w.Write(resp.body); err != nil {
		logger.Debug("Error writing response for %s: %v", target.Host, err)
	}

	logRequest(r, target, resp.status, len(resp.body), time.Since(start), nil)
}

// relay runs the stages in order. The visit is recorded once the target is
// known and before the upstream is contacted.
func (s *Server) relay(r *http.Request) (*url.URL, *upstreamResponse, *relayError) {
	if rerr := s.authenticate(r); rerr != nil {
		return nil, nil, rerr
	}

	target, rerr := resolveTarget(r)
	if rerr != nil {
		return nil, nil, rerr
	}

	s.stats.RecordVisit(destination(target))

	resp, rerr := s.forward(r, target)
	if rerr != nil {
		return target, nil, rerr
	}

	s.stats.AddBytes(uint64(len(resp.body)))
	return target, resp, nil
}

func (s *Server) authenticate(r *http.Request) *relayError {
	if !s.auth.Verify(r.Header.Get(AuthHeader)) {
		return &relayError{kind: errAuthRequired, msg: "Proxy authentication required"}
	}
	return nil
}

func resolveTarget(r *http.Request) (*url.URL, *relayError) {
	raw := r.Header.Get(TargetHeader)
	if raw == "" {
		return nil, &relayError{kind: errTargetMissing, msg: "Target-URL header is required"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, &relayError{kind: errTargetMalformed, msg: "Invalid Target-URL", err: err}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, &relayError{kind: errTargetMalformed, msg: fmt.Sprintf("Invalid Target-URL: unsupported scheme %q", u.Scheme)}
	}
	if u.Hostname() == "" {
		return nil, &relayError{kind: errTargetMalformed, msg: "Invalid Target-URL: missing host"}
	}
	return u, nil
}

// destination is the statistics key for target: its host, with the port when
// the URL names one.
func destination(target *url.URL) string {
	return strings.ToLower(target.Host)
}

// forward sends r to target and reads the whole reply. A reply that cannot be
// read completely is an upstream failure.
func (s *Server) forward(r *http.Request, target *url.URL) (*upstreamResponse, *relayError) {
	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		return nil, upstreamError(err)
	}

	outReq.Header = r.Header.Clone()
	outReq.Header.Del(TargetHeader)
	outReq.ContentLength = r.ContentLength
	if r.ContentLength == 0 {
		outReq.Body = http.NoBody
	}

	resp, err := s.client.Do(outReq)
	if err != nil {
		return nil, upstreamError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstreamError(fmt.Errorf("read response: %w", err))
	}

	return &upstreamResponse{
		status: resp.StatusCode,
		header: resp.Header,
		body:   body,
	}, nil
}

func (s *Server) writeError(w http.ResponseWriter, rerr *relayError) {
	if rerr.kind == errAuthRequired {
		w.Header().Set("Proxy-Authenticate", auth.Challenge)
	}
	http.Error(w, rerr.Error(), rerr.status())
}

func logRequest(r *http.Request, target *url.URL, status, size int, elapsed time.Duration, rerr *relayError) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("remote", r.RemoteAddr),
		zap.Int("status", status),
		zap.Int("bytes", size),
		zap.Duration("duration", elapsed),
	}
	if target != nil {
		fields = append(fields, zap.String("target", target.String()), zap.String("destination", destination(target)))
	}

	if rerr != nil && rerr.kind == errUpstream {
		logger.L().Warn("upstream failure", append(fields, zap.Error(rerr))...)
		return
	}
	logger.L().Debug("relay", fields...)
}
