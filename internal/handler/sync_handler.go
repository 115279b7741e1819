package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/vaultsync/internal/sync"
)

// SyncServiceInterface は同期ハンドラーが必要とするサービスインターフェース。
type SyncServiceInterface interface {
	// Run は1回の同期を実行し、終端ステータスを記録して結果を返す。
	Run(ctx context.Context, customerID, connectorID string) sync.Result
}

// SyncHandler は同期実行のHTTPハンドラー。
type SyncHandler struct {
	service SyncServiceInterface
}

// NewSyncHandler はSyncHandlerを生成する。
func NewSyncHandler(service SyncServiceInterface) *SyncHandler {
	return &SyncHandler{service: service}
}

// syncResponse は同期実行のレスポンス。
type syncResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RunSync は同期を1回実行する。
// POST /api/customers/:customerID/connectors/:connectorID/sync
// ドメイン上の失敗（コネクタ未検出・GitHub APIエラー等）もHTTPとしては
// 常に200を返し、失敗はボディのstatusフィールドで伝える。
// VaultSync API自体への認証エラーなどは通常のHTTPエラーで返る。
func (h *SyncHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	connectorID := chi.URLParam(r, "connectorID")

	result := h.service.Run(r.Context(), customerID, connectorID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(syncResponse{
		Status:  string(result.Status),
		Message: result.Message,
	})
}
