package services

import (
	"context"
	"errors"

	locker_errors "github.com/AssetDocs/legacylocker/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenVerifier validates bearer tokens minted by the external identity
// provider. The service never issues credentials itself; it only checks
// the HMAC signature and extracts the subject.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

func (v *TokenVerifier) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, locker_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, locker_errors.ErrUnauthorized
		}
		return v.secret, nil
	})
	if err != nil {
		return AccessClaims{}, locker_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, locker_errors.ErrUnauthorized
	}

	return *claims, nil
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, locker_errors.ErrInvalidInput), errors.Is(err, locker_errors.ErrDecryption):
		return 400
	case errors.Is(err, locker_errors.ErrUnauthorized):
		return 401
	case errors.Is(err, locker_errors.ErrForbidden):
		return 403
	case errors.Is(err, locker_errors.ErrNotFound):
		return 404
	case errors.Is(err, locker_errors.ErrAlreadyExists):
		return 409
	case errors.Is(err, locker_errors.ErrInvalidState):
		return 409
	case errors.Is(err, locker_errors.ErrRateLimited):
		return 429
	default:
		return 500
	}
}

type ctxKey string

var userIDKey ctxKey = "user_id"

func WithUserContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(userIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
