package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired session token")
	ErrMissingSecret = errors.New("session secret is not configured")
)

// Role flags packed into the token payload.
const (
	flagAffiliate = 1 << 0
	flagAdmin     = 1 << 1
)

// TokenSigner mints and validates compact HMAC session tokens so handlers
// never parse tokens themselves.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner returns a signer with the given secret and token lifetime.
func NewTokenSigner(secret []byte, ttl time.Duration) *TokenSigner {
	return &TokenSigner{
		secret: secret,
		ttl:    ttl,
	}
}

// Issue mints a token for the given user with its role flags.
func (s *TokenSigner) Issue(userID string, affiliate, admin bool) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	var flags byte
	if affiliate {
		flags |= flagAffiliate
	}
	if admin {
		flags |= flagAdmin
	}

	payload := make([]byte, 13) // 4 bytes expiry + 1 flag byte + 8 random bytes
	expires := uint32(time.Now().Add(s.ttl).Unix())
	binary.BigEndian.PutUint32(payload[:4], expires)
	payload[4] = flags
	if _, err := rand.Read(payload[5:]); err != nil {
		return "", err
	}

	payloadEnc := base64.RawURLEncoding.EncodeToString(payload)
	signature := s.sign(userID, payload)
	sigEnc := base64.RawURLEncoding.EncodeToString(signature[:16])
	return fmt.Sprintf("%s.%s.%s", base64.RawURLEncoding.EncodeToString([]byte(userID)), payloadEnc, sigEnc), nil
}

// Validate checks signature integrity and TTL, returning the session the
// token encodes.
func (s *TokenSigner) Validate(token string) (*Session, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}

	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	userRaw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(userRaw) == 0 {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	sigProvided, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrInvalidToken
	}
	if len(sigProvided) != 16 {
		return nil, ErrInvalidToken
	}

	expected := s.sign(string(userRaw), payload)
	if !hmac.Equal(sigProvided, expected[:16]) {
		return nil, ErrInvalidToken
	}

	if len(payload) < 5 {
		return nil, ErrInvalidToken
	}
	expires := binary.BigEndian.Uint32(payload[:4])
	if time.Now().Unix() > int64(expires) {
		return nil, ErrInvalidToken
	}

	flags := payload[4]
	return &Session{
		Token:     token,
		UserID:    string(userRaw),
		Affiliate: flags&flagAffiliate != 0,
		Admin:     flags&flagAdmin != 0,
	}, nil
}

// sign MACs the length-prefixed user id followed by the payload, so bytes
// can never shift between the two fields under the same signature.
func (s *TokenSigner) sign(userID string, payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	var idLen [4]byte
	binary.BigEndian.PutUint32(idLen[:], uint32(len(userID)))
	mac.Write(idLen[:])
	mac.Write([]byte(userID))
	mac.Write(payload)
	return mac.Sum(nil)
}
