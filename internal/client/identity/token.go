// Package identity binds the external popup-based sign-in to the rest of the
// application. The provider hands the app a signed identity token; this
// package verifies it and keeps the resulting user in a session.
package identity

import (
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by an identity token: the registered claims plus the stable
// user identifier and email.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Email  string
}

// GenerateIDToken issues a signed identity token. Used by the development
// sign-in flow and by tests; production tokens come from the provider.
func GenerateIDToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Email:  email,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseIDToken verifies the token signature and expiry and returns the user
// it identifies. Any failure is reported as common.ErrInvalidToken.
func ParseIDToken(tokenString string, secretKey []byte) (*models.User, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return &models.User{ID: claims.UserID, Email: claims.Email}, nil
}
