package util

import (
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/projectbureau/bureau-backend/dao/model"
	"github.com/projectbureau/bureau-backend/pkg/config"
)

type (
	JWTClaims struct {
		UserID uint       `json:"ui"`
		Email  string     `json:"em"`
		Name   string     `json:"nm"`
		Role   model.Role `json:"rl"`
		jwt.RegisteredClaims
	}

	// JWTMessage is the decoded identity. The role here is only what was
	// true at issue time; protected handlers must use the live role from
	// the request context instead.
	JWTMessage struct {
		UserID uint       `json:"userID"`
		Email  string     `json:"email"`
		Name   string     `json:"name"`
		Role   model.Role `json:"role"`
	}
)

type TokenManager struct {
	secretKey string
	tokenTTL  time.Duration
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		conf := config.GetConfig()
		tokenMgr = NewTokenManager(conf.Auth.TokenSecret,
			time.Duration(conf.Auth.TokenExpiryHour)*time.Hour)
	})
	return tokenMgr
}

func NewTokenManager(secretKey string, tokenTTL time.Duration) *TokenManager {
	return &TokenManager{
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
	}
}

// CreateToken signs a credential binding the user identity to its role.
func (tm *TokenManager) CreateToken(user *model.User) (string, error) {
	expiresAt := time.Now().Add(tm.tokenTTL)

	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secretKey))
}

// CheckToken verifies signature and expiry and returns the identity.
func (tm *TokenManager) CheckToken(requestToken string) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(tm.secretKey), nil
	})
	return JWTMessage{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}, err
}
