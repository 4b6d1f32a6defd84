package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

const signatureLength = 16

// sessionTokens issues opaque session tokens of the form
// "<uuid>.<mac>", keyed with the configured session secret, so forged or
// truncated tokens are rejected without a database lookup.
type sessionTokens struct {
	secret []byte
}

func newSessionTokens(secret string) *sessionTokens {
	return &sessionTokens{secret: []byte(secret)}
}

func (t *sessionTokens) Issue() string {
	id := uuid.NewString()
	return id + "." + t.sign(id)
}

func (t *sessionTokens) Valid(token string) bool {
	id, mac, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok {
		return false
	}
	if _, err := uuid.Parse(id); err != nil {
		return false
	}
	return hmac.Equal([]byte(mac), []byte(t.sign(id)))
}

func (t *sessionTokens) sign(id string) string {
	h := hmac.New(sha256.New, t.secret)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)[:signatureLength])
}
