package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid は署名不正・改ざん・期限切れなど、検証に失敗した
// トークン全般を示します。呼び出し側には失敗理由を区別させません。
var ErrTokenInvalid = errors.New("invalid token")

// tokenClaims はベアラートークンに埋め込むクレームです。
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// TokenIssuer は対称鍵によるベアラートークンの発行と検証を行います。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer は TokenIssuer を作成します。
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はユーザーIDと有効期限を埋め込んだ署名付きトークンを発行します。
func (t *TokenIssuer) Issue(userID int64) (string, error) {
	now := t.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify はトークンを検証し、埋め込まれたユーザーIDを返します。
// 署名アルゴリズムは HS256 に固定し、アルゴリズム混同攻撃を防ぎます。
func (t *TokenIssuer) Verify(tokenString string) (int64, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return claims.UserID, nil
}
