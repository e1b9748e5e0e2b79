package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ecohub-backend/models"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carries the user's profile so /user/auth needs no database hit.
type Claims struct {
	UserID     uint   `json:"id"`
	UserTypeID uint   `json:"user_type_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	PhoneNo    string `json:"phone_no"`
	Location   string `json:"location"`
	jwt.RegisteredClaims
}

// Profile is the user info returned next to a token and by /user/auth.
type Profile struct {
	ID         uint   `json:"id"`
	UserTypeID uint   `json:"user_type_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	PhoneNo    string `json:"phone_no"`
	Location   string `json:"location"`
}

func (c *Claims) Profile() Profile {
	return Profile{
		ID:         c.UserID,
		UserTypeID: c.UserTypeID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Username:   c.Username,
		PhoneNo:    c.PhoneNo,
		Location:   c.Location,
	}
}

// TokenIssuer signs and validates HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken issues an access token for user.
func (t *TokenIssuer) GenerateToken(user *models.User) (string, *Claims, error) {
	now := t.now()
	claims := &Claims{
		UserID:     user.UserID,
		UserTypeID: user.UserTypeID,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
		Username:   user.Username,
		PhoneNo:    user.PhoneNo,
		Location:   user.Location,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ValidateToken parses tokenString and returns its claims.
func (t *TokenIssuer) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
