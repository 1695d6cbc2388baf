package auth

import (
	"errors"

	"github.com/DanteBelNan/sockets-server/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("token not provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired or not valid yet")
)

// Verifier resolves a credential token into an identity. It is consumed
// exactly once per connection, before any chat event is accepted.
type Verifier interface {
	Verify(token string) (domain.User, error)
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// JWTVerifier validates HS256 tokens minted by the auth backend.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewJWTVerifier(secret []byte, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
	}
}

func (v *JWTVerifier) Verify(tokenStr string) (domain.User, error) {
	if tokenStr == "" {
		return domain.User{}, ErrMissingToken
	}

	claims := &accessClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet) {
			return domain.User{}, ErrTokenExpired
		}
		return domain.User{}, ErrInvalidToken
	}
	if !token.Valid {
		return domain.User{}, ErrInvalidToken
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" || claims.Username == "" {
		return domain.User{}, ErrInvalidToken
	}

	return domain.User{ID: userID, Username: claims.Username}, nil
}
