// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/vaultsync/internal/auth"
	"github.com/hitoshi/vaultsync/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// claimsContextKey はリクエストコンテキストに検証済みクレームを格納するためのキー。
var claimsContextKey = contextKey("claims")

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証し、
// 検証済みクレームをリクエストコンテキストに注入するミドルウェアを返す。
// トークンの欠落・不正・期限切れ・署名/発行者/オーディエンス不一致は401、
// 署名は正しいが必須クレームが欠けている場合も401（別コード）を返す。
// ハンドラーロジックに到達する前に短絡する。
func NewAuthMiddleware(tokenCfg auth.TokenConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, model.NewUnauthenticatedError())
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			// 2. トークンを検証
			claims, err := auth.VerifyToken(tokenCfg, raw)
			if err != nil {
				if errors.Is(err, auth.ErrIncompleteClaims) {
					writeAuthError(w, model.NewInvalidTokenClaimsError())
					return
				}
				writeAuthError(w, model.NewUnauthenticatedError())
				return
			}

			// 3. 検証済みクレームをコンテキストに注入
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext はリクエストコンテキストから検証済みクレームを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func ClaimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("claims not found in context")
	}
	return claims, nil
}

// ContextWithClaims はコンテキストにクレームを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// writeAuthError は401レスポンスを統一エラーフォーマットで書き込む。
func writeAuthError(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"code":     apiErr.Code,
		"message":  apiErr.Message,
		"category": apiErr.Category,
		"action":   apiErr.Action,
	})
}
