package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/vaultsync/internal/model"
)

// NewTenantBindingMiddleware はトークンのcustomerIdクレームと
// URLパスの{customerID}の一致を検証するミドルウェアを返す。
// enforce=falseの場合は検証せず素通しする。パス上のテナントを
// そのまま信頼する挙動（元実装のデモ仕様）を既定とし、
// 本番運用では設定で有効化する。
func NewTenantBindingMiddleware(enforce bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enforce {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ClaimsFromContext(r.Context())
			if err != nil {
				writeAuthError(w, model.NewUnauthenticatedError())
				return
			}

			customerID := chi.URLParam(r, "customerID")
			if customerID != "" && claims.CustomerID != customerID {
				apiErr := model.NewTenantMismatchError()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{
					"code":     apiErr.Code,
					"message":  apiErr.Message,
					"category": apiErr.Category,
					"action":   apiErr.Action,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
