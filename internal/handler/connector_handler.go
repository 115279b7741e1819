package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/vaultsync/internal/connector"
	"github.com/hitoshi/vaultsync/internal/middleware"
	"github.com/hitoshi/vaultsync/internal/model"
)

// ConnectorServiceInterface はコネクタハンドラーが必要とするサービスインターフェース。
type ConnectorServiceInterface interface {
	// List はテナントのコネクタ一覧を返す。
	List(ctx context.Context, customerID string) ([]*model.Connector, error)
	// Create はコネクタを作成する。
	Create(ctx context.Context, input connector.CreateInput) (*model.Connector, error)
}

// ConnectorHandler はGitHubコネクタ管理のHTTPハンドラー。
type ConnectorHandler struct {
	service ConnectorServiceInterface
}

// NewConnectorHandler はConnectorHandlerを生成する。
func NewConnectorHandler(service ConnectorServiceInterface) *ConnectorHandler {
	return &ConnectorHandler{service: service}
}

// createConnectorRequest はコネクタ作成リクエストのボディ。
type createConnectorRequest struct {
	Type     string `json:"type"`
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Branch   string `json:"branch"`
	BasePath string `json:"basePath"`
	PAT      string `json:"pat"`
}

// connectorResponse はコネクタのAPIレスポンス。
// トークンはマスク表示のみを返し、生トークンは決して含めない。
type connectorResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Owner           string     `json:"owner"`
	Repo            string     `json:"repo"`
	RepoName        string     `json:"repoName"`
	Branch          string     `json:"branch"`
	BasePath        string     `json:"basePath"`
	PATMasked       string     `json:"patMasked"`
	LastSyncStatus  *string    `json:"lastSyncStatus"`
	LastSyncAt      *time.Time `json:"lastSyncAt"`
	LastSyncMessage *string    `json:"lastSyncMessage"`
}

// ListConnectors はテナントのコネクタ一覧を返す。
// GET /api/customers/:customerID/connectors
func (h *ConnectorHandler) ListConnectors(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	connectors, err := h.service.List(r.Context(), customerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]connectorResponse, 0, len(connectors))
	for _, c := range connectors {
		responses = append(responses, toConnectorResponse(c))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// CreateConnector はコネクタ作成を処理する。
// POST /api/customers/:customerID/connectors
func (h *ConnectorHandler) CreateConnector(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req createConnectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	c, err := h.service.Create(r.Context(), connector.CreateInput{
		CustomerID:  customerID,
		OwnerUserID: claims.Subject,
		Type:        req.Type,
		Owner:       req.Owner,
		Repo:        req.Repo,
		Branch:      req.Branch,
		BasePath:    req.BasePath,
		Token:       req.PAT,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toConnectorResponse(c))
}

// toConnectorResponse はコネクタをAPIレスポンスに変換する。
// 同期未実施のコネクタはステータス3フィールドをnullで返す。
func toConnectorResponse(c *model.Connector) connectorResponse {
	resp := connectorResponse{
		ID:        c.ID,
		Name:      c.RepoName(),
		Type:      c.Type,
		Owner:     c.GitHubOwner,
		Repo:      c.GitHubRepo,
		RepoName:  c.RepoName(),
		Branch:    c.GitHubBranch,
		BasePath:  c.BasePath,
		PATMasked: c.TokenMasked,
	}

	if c.LastSyncStatus != model.SyncStatusNone {
		status := string(c.LastSyncStatus)
		resp.LastSyncStatus = &status
	}
	resp.LastSyncAt = c.LastSyncAt
	if c.LastSyncMessage != "" {
		message := c.LastSyncMessage
		resp.LastSyncMessage = &message
	}

	return resp
}
