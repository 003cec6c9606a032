package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs, overridable per-service via CodecConfig.
const (
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// bearerPrefix is baked into issued tokens so clients can drop the string
// straight into an Authorization header.
const bearerPrefix = "Bearer "

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
)

// SessionPair is the pair of tokens handed out at login. Both carry the
// "Bearer " prefix already.
type SessionPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CodecConfig configures a Codec. AccessSecret and RefreshSecret must be
// distinct; a refresh token must never verify as an access token.
type CodecConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// Codec signs and verifies HS256 session tokens. It is purely computational:
// no storage, no revocation list. Invalidation happens by letting tokens
// expire or by the account check the auth middleware performs.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewCodec validates the config and builds a Codec.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("jwtx: both access and refresh secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("jwtx: access and refresh secrets must differ")
	}

	c := &Codec{
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           cfg.Now,
	}
	if c.accessTTL <= 0 {
		c.accessTTL = DefaultAccessTokenTTL
	}
	if c.refreshTTL <= 0 {
		c.refreshTTL = DefaultRefreshTokenTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// IssueSession mints an access/refresh pair for the given identity.
func (c *Codec) IssueSession(id Identity) (SessionPair, error) {
	access, err := c.sign(id, c.accessSecret, c.accessTTL)
	if err != nil {
		return SessionPair{}, fmt.Errorf("jwtx: failed to sign access token: %w", err)
	}

	refresh, err := c.sign(id, c.refreshSecret, c.refreshTTL)
	if err != nil {
		return SessionPair{}, fmt.Errorf("jwtx: failed to sign refresh token: %w", err)
	}

	return SessionPair{
		AccessToken:  bearerPrefix + access,
		RefreshToken: bearerPrefix + refresh,
	}, nil
}

// VerifyAccess checks an access token and returns the identity it encodes.
// The "Bearer " prefix is optional.
func (c *Codec) VerifyAccess(token string) (Identity, error) {
	return c.verify(token, c.accessSecret)
}

// VerifyRefresh checks a refresh token and returns the identity it encodes.
func (c *Codec) VerifyRefresh(token string) (Identity, error) {
	return c.verify(token, c.refreshSecret)
}

func (c *Codec) sign(id Identity, secret []byte, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:  id.ID,
		Email:   id.Email,
		Type:    id.Type,
		AdminID: id.AdminID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *Codec) verify(token string, secret []byte) (Identity, error) {
	raw := StripBearer(token)
	if raw == "" {
		return Identity{}, ErrMalformed
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrAlgMismatch
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	switch {
	case err == nil && parsed.Valid:
		return claims.Identity(), nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Identity{}, ErrInvalidSig
	case errors.Is(err, ErrAlgMismatch):
		return Identity{}, ErrAlgMismatch
	default:
		return Identity{}, ErrMalformed
	}
}

// StripBearer removes a leading "Bearer " from a token if present. Clients
// send the header back exactly as issued, prefix included.
func StripBearer(token string) string {
	if rest, ok := strings.CutPrefix(token, bearerPrefix); ok {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(token)
}
