package security

import (
	"crypto"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed or invalid.
	ErrInvalidToken = errors.New("invalid token")
)

// AccessClaims holds JWT claims for an access token. Subject is the user ID.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// TokenVerifier validates access JWTs minted by the account service (RS256 or ES256).
// It holds only the public key.
type TokenVerifier struct {
	publicKey crypto.PublicKey
	alg       string
	issuer    string
	audience  string
	nowF      func() time.Time
}

// NewTokenVerifier returns a TokenVerifier for the given public key. Tokens must carry the
// given issuer and audience and be signed with the algorithm matching the key type.
func NewTokenVerifier(publicKey crypto.PublicKey, issuer, audience string) (*TokenVerifier, error) {
	alg := KeyAlg(publicKey)
	if alg == "" {
		return nil, ErrInvalidKey
	}
	return &TokenVerifier{
		publicKey: publicKey,
		alg:       alg,
		issuer:    issuer,
		audience:  audience,
		nowF:      time.Now,
	}, nil
}

// ValidateAccess parses and validates the access token (signature, alg, exp, iss, aud).
// Returns the user ID from the sub claim.
func (v *TokenVerifier) ValidateAccess(tokenString string) (userID string, err error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.publicKey, nil
	},
		jwt.WithValidMethods([]string{v.alg}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.nowF),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
