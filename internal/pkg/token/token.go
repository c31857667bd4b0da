package token

import (
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/google/uuid"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	Username string `json:"username"`
	jwtlib.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. The owning user id is
// carried in the registered "sub" claim.
type RefreshClaims struct {
	jwtlib.RegisteredClaims
}

// UserID parses the subject claim. Returns ErrInvalid if it is not a
// numeric user id.
func (c *RefreshClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return id, nil
}

// Codec signs and verifies tokens with a single process-wide HS256 secret.
// Decode only checks structure and signature; expiry is compared by the
// caller so that staleness can trigger its own cleanup path.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

func (c *Codec) EncodeAccess(username string) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		Username: username,
		RegisteredClaims: jwtlib.RegisteredClaims{
			// jti keeps tokens minted within the same second distinct
			ID:        uuid.NewString(),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.accessTTL)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

func (c *Codec) EncodeRefresh(userID int64) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(c.refreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// DecodeAccess verifies the signature and shape of an access token.
// A refresh token presented here fails with ErrInvalid.
func (c *Codec) DecodeAccess(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := c.decode(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.Username == "" || claims.Subject != "" {
		return nil, ErrInvalid
	}
	return &claims, nil
}

// DecodeRefresh verifies the signature and shape of a refresh token.
// An access token presented here fails with ErrInvalid.
func (c *Codec) DecodeRefresh(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := c.decode(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (c *Codec) decode(tokenStr string, claims jwtlib.Claims) error {
	t, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (any, error) {
		return c.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithoutClaimsValidation(),
	)
	if err != nil || !t.Valid {
		return ErrInvalid
	}
	return nil
}

// Expired reports whether the expiry claim has passed. Missing expiry
// counts as expired. Comparison is done in UTC.
func Expired(claims jwtlib.Claims, now time.Time) bool {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !now.UTC().Before(exp.Time.UTC())
}
