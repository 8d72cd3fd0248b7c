package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/retailkit/pos/internal/operator"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	OperatorID int64         `json:"operator_id"`
	Role       operator.Role `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: 12 * time.Hour}
}

func (t *Tokens) Issue(op operator.Operator, now time.Time) (string, error) {
	claims := &Claims{
		OperatorID: op.ID,
		Role:       op.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatInt(op.ID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(t.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tokens) Validate(signed string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(signed, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
