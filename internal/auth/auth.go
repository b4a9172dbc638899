package auth

import (
	"encoding/base64"
	"strings"
)

// Challenge is the Proxy-Authenticate value sent with 407 responses.
const Challenge = "Basic"

// Credentials maps user names to plaintext passwords.
type Credentials map[string]string

// Authenticator checks Proxy-Authorization values against a fixed table.
type Authenticator struct {
	creds Credentials
}

func NewAuthenticator(creds Credentials) *Authenticator {
	c := make(Credentials, len(creds))
	for name, pass := range creds {
		c[name] = pass
	}
	return &Authenticator{creds: c}
}

// Verify reports whether header carries known Basic credentials. Every kind
// of malformed input is simply invalid.
func (a *Authenticator) Verify(header string) bool {
	scheme, encoded, ok := splitExactlyOnce(header, " ")
	if !ok || !strings.EqualFold(scheme, "basic") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}

	user, pass, ok := splitExactlyOnce(string(decoded), ":")
	if !ok {
		return false
	}

	want, found := a.creds[user]
	return found && want == pass
}

func splitExactlyOnce(s, sep string) (string, string, bool) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
