package pkg

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	subjectAccess  = "access"
	subjectRefresh = "refresh"
)

var (
	ErrTokenExpired   = NewError(KindUnauthorized, "TOKEN_EXPIRED", "token expired")
	ErrTokenInvalid   = NewError(KindUnauthorized, "TOKEN_INVALID", "token invalid")
	ErrRefreshExpired = NewError(KindUnauthorized, "REFRESH_EXPIRED", "refresh token expired")
	ErrRefreshInvalid = NewError(KindUnauthorized, "REFRESH_INVALID", "refresh token invalid")
)

type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenIssuer 签发和校验 access/refresh 令牌对
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 30 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 24 * time.Hour
	}
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

func (t *TokenIssuer) GeneratePair(userID uint64) (*Pair, error) {
	now := t.now()

	accessToken, err := t.sign(userID, subjectAccess, now, t.accessTTL, t.accessSecret)
	if err != nil {
		return nil, err
	}
	refreshToken, err := t.sign(userID, subjectRefresh, now, t.refreshTTL, t.refreshSecret)
	if err != nil {
		return nil, err
	}
	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(t.accessTTL / time.Second),
	}, nil
}

// ParseAccess 解析 access，返回用户 id
func (t *TokenIssuer) ParseAccess(tokenStr string) (uint64, error) {
	claims, err := t.parse(tokenStr, subjectAccess, t.accessSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	return claims.UserID, nil
}

// Refresh 用 refresh 换一对新令牌
func (t *TokenIssuer) Refresh(refreshToken string) (*Pair, error) {
	claims, err := t.parse(refreshToken, subjectRefresh, t.refreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrRefreshExpired
		}
		return nil, ErrRefreshInvalid
	}
	return t.GeneratePair(claims.UserID)
}

func (t *TokenIssuer) sign(userID uint64, subject string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   subject,
		},
	})
	return token.SignedString(secret)
}

func (t *TokenIssuer) parse(tokenStr, subject string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(subject),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
