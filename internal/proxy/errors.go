package proxy

import "net/http"

type errorKind int

const (
	errAuthRequired errorKind = iota + 1
	errTargetMissing
	errTargetMalformed
	errUpstream
)

// relayError is the outcome of a failed relay stage. Its kind alone decides
// the status code sent to the client.
type relayError struct {
	kind errorKind
	msg  string
	err  error
}

func upstreamError(err error) *relayError {
	return &relayError{kind: errUpstream, msg: "Error forwarding request", err: err}
}

func (e *relayError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *relayError) Unwrap() error {
	return e.err
}

func (e *relayError) status() int {
	switch e.kind {
	case errAuthRequired:
		return http.StatusProxyAuthRequired
	case errTargetMissing, errTargetMalformed:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
