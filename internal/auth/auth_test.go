package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func basic(userpass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(userpass))
}

func TestVerify(t *testing.T) {
	a := NewAuthenticator(Credentials{"username": "password", "empty": ""})

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid", basic("username:password"), true},
		{"scheme is case-insensitive", "bAsIc " + base64.StdEncoding.EncodeToString([]byte("username:password")), true},
		{"empty password", basic("empty:"), true},
		{"missing header", "", false},
		{"wrong password", basic("username:nope"), false},
		{"unknown user", basic("nobody:password"), false},
		{"password is case-sensitive", basic("username:Password"), false},
		{"bearer scheme", "Bearer " + base64.StdEncoding.EncodeToString([]byte("username:password")), false},
		{"no credentials part", "Basic", false},
		{"extra space", "Basic  " + base64.StdEncoding.EncodeToString([]byte("username:password")), false},
		{"trailing token", basic("username:password") + " extra", false},
		{"bad base64", "Basic !!!not-base64!!!", false},
		{"missing separator", basic("usernamepassword"), false},
		{"two separators", basic("username:pass:word"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Verify(tt.header))
		})
	}
}

func TestNewAuthenticatorCopiesTable(t *testing.T) {
	creds := Credentials{"username": "password"}
	a := NewAuthenticator(creds)

	creds["username"] = "changed"
	creds["intruder"] = "x"

	assert.True(t, a.Verify(basic("username:password")))
	assert.False(t, a.Verify(basic("intruder:x")))
}
