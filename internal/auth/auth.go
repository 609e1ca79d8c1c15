package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("token is invalid or expired")

// UserClaims is the authenticated member identity carried by a bearer token.
type UserClaims struct {
	MemberID int64
	Email    string
}

type VerifierService struct {
	secret []byte
}

func NewVerifier(secret string) *VerifierService {
	return &VerifierService{
		secret: []byte(secret),
	}
}

func (v *VerifierService) Verify(tokenString string) (*UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	memberID, ok := claims["memberid"].(float64)
	email, _ := claims["email"].(string)
	if !ok || email == "" {
		return nil, ErrInvalidToken
	}

	return &UserClaims{
		MemberID: int64(memberID),
		Email:    email,
	}, nil
}

// Sign issues a token for the given member. Registration normally does this,
// here it backs tests and local tooling.
func (v *VerifierService) Sign(claims *UserClaims, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"memberid": claims.MemberID,
		"email":    claims.Email,
		"exp":      time.Now().Add(ttl).Unix(),
		"iss":      "messaging-service",
	})
	return token.SignedString(v.secret)
}
