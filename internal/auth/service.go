package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"room-client/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Service reads the viewer's identity from the session token. With a secret
// the signature is checked as well; without one the server stays the only
// judge and the claims are read as given.
type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret []byte) *Service {
	return &Service{secret: secret, now: time.Now}
}

func (s *Service) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired()}

	if len(s.secret) == 0 {
		if _, _, err := jwt.NewParser(opts...).ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		exp, err := claims.GetExpirationTime()
		if err != nil || exp == nil {
			return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
		}
		if !s.now().Before(exp.Time) {
			return nil, fmt.Errorf("%w: token expired at %v", ErrInvalidToken, exp.Time)
		}
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetUserFromToken returns the user the token was issued to.
func (s *Service) GetUserFromToken(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	var id string
	switch v := claims["user_id"].(type) {
	case string:
		id = v
	case float64:
		id = strconv.FormatInt(int64(v), 10)
	}
	if id == "" {
		if sub, _ := claims.GetSubject(); sub != "" {
			id = sub
		}
	}
	if id == "" {
		return nil, fmt.Errorf("%w: no user ID", ErrInvalidToken)
	}

	user := &models.User{ID: id}
	user.Username, _ = claims["username"].(string)
	if role, ok := claims["role"].(float64); ok {
		user.Role = models.Role(role)
	}
	return user, nil
}
