package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// HeaderAuthToken carries the token in both directions.
	HeaderAuthToken = "X-Auth-Token"
	// DefaultTokenTTLMinutes is the lifetime of tokens minted by the filter (30 days).
	DefaultTokenTTLMinutes = 60 * 24 * 30
)

var (
	// ErrTokenInvalid covers bad signatures, malformed structure and expiry.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenIssuance means a token could not be signed.
	ErrTokenIssuance = errors.New("token issuance failed")
)

// TokenIssuer mints signed tokens.
type TokenIssuer interface {
	Issue(claims []Claim, ttlMinutes int) (string, error)
}

// ExpiringIssuer mints tokens and reports the exact expiry written into them.
type ExpiringIssuer interface {
	IssueWithExpiry(claims []Claim, ttlMinutes int) (string, time.Time, error)
}

// TokenVerifier checks a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) ([]Claim, error)
}

// TokenCodec signs and verifies compact HS256 tokens with a process-wide key.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) CodecOption {
	return func(tc *TokenCodec) {
		if now != nil {
			tc.now = now
		}
	}
}

// NewTokenCodec builds a codec. The key slice is copied.
func NewTokenCodec(secret []byte, opts ...CodecOption) *TokenCodec {
	tc := &TokenCodec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// Issue signs the claims together with a fresh jti and an expiry ttlMinutes from now.
func (tc *TokenCodec) Issue(claims []Claim, ttlMinutes int) (string, error) {
	token, _, err := tc.IssueWithExpiry(claims, ttlMinutes)
	return token, err
}

// IssueWithExpiry is Issue that also returns the exp claim, truncated to whole
// seconds as encoded.
func (tc *TokenCodec) IssueWithExpiry(claims []Claim, ttlMinutes int) (string, time.Time, error) {
	if len(tc.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: signing key is empty", ErrTokenIssuance)
	}
	if ttlMinutes < 0 {
		return "", time.Time{}, fmt.Errorf("%w: negative ttl %d", ErrTokenIssuance, ttlMinutes)
	}

	now := tc.now()
	expiresAt := jwt.NewNumericDate(now.Add(time.Duration(ttlMinutes) * time.Minute))
	payload := jwt.MapClaims{
		"jti": uuid.NewString(),
		"iat": jwt.NewNumericDate(now),
		"exp": expiresAt,
	}
	for _, c := range claims {
		if !c.Name.known() {
			return "", time.Time{}, fmt.Errorf("%w: unsupported claim %q", ErrTokenIssuance, c.Name)
		}
		payload[string(c.Name)] = c.Value
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %w", ErrTokenIssuance, err)
	}
	return signed, expiresAt.Time, nil
}

// Verify checks signature and expiry in one step and returns the embedded claims.
// Tokens without an exp claim are rejected. Segments must be canonical base64url,
// so non-zero trailing bits in the last signature character fail too.
func (tc *TokenCodec) Verify(tokenStr string) ([]Claim, error) {
	parsed, err := jwt.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		if len(tc.secret) == 0 {
			return nil, errors.New("verification key is empty")
		}
		return tc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tc.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unreadable claims", ErrTokenInvalid)
	}

	claims := make([]Claim, 0, len(knownClaims))
	for _, name := range knownClaims {
		if v, ok := payload[string(name)].(string); ok {
			claims = append(claims, NewClaim(name, v))
		}
	}
	return claims, nil
}
