// Package auth は認証（ログインとトークン発行・検証）を提供する。
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims はアクセストークンに埋め込むクレームセットを表す。
// 標準クレーム（sub/iat/exp/iss/aud）に加えてusername/role/customerIdを持つ。
type Claims struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	CustomerID string `json:"customerId"`
	jwt.RegisteredClaims
}

// TokenConfig はトークンの署名・検証に使う共有設定。
// プロセス起動時に1回構築し、参照で引き回す。
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// ErrIncompleteClaims は署名は正しいが必須クレームが欠けているトークンを示す。
var ErrIncompleteClaims = fmt.Errorf("token claims are incomplete")

// IssueToken はHS256署名付きの時限アクセストークンを発行する。
func IssueToken(cfg TokenConfig, userID, username, role, customerID string, now time.Time) (string, error) {
	claims := &Claims{
		Username:   username,
		Role:       role,
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken はトークンの署名・有効期限・発行者・オーディエンスを検証し、
// クレームセットを返す。検証失敗はそのままエラーとして返す。
// 署名が正しくても必須クレーム（sub/username/role/customerId/iat/exp/iss/aud）が
// 欠けている場合はErrIncompleteClaimsを返す。
func VerifyToken(cfg TokenConfig, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	if err := validateRequiredClaims(claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// validateRequiredClaims は必須クレームの存在を検証する。
func validateRequiredClaims(claims *Claims) error {
	if claims.Subject == "" ||
		claims.Username == "" ||
		claims.Role == "" ||
		claims.CustomerID == "" ||
		claims.IssuedAt == nil ||
		claims.ExpiresAt == nil ||
		claims.Issuer == "" ||
		len(claims.Audience) == 0 {
		return ErrIncompleteClaims
	}
	return nil
}
