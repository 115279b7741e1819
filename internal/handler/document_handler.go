package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/vaultsync/internal/model"
)

// DocumentServiceInterface はドキュメントハンドラーが必要とするサービスインターフェース。
type DocumentServiceInterface interface {
	// List はテナントのドキュメント一覧を返す。
	List(ctx context.Context, customerID string) ([]*model.Document, error)
	// Get はID・テナントの組でドキュメントを1件取得する。
	Get(ctx context.Context, customerID, documentID string) (*model.Document, error)
	// Create はドキュメントを作成する。
	Create(ctx context.Context, customerID, title string, content []byte) (*model.Document, error)
}

// DocumentHandler はドキュメント管理のHTTPハンドラー。
type DocumentHandler struct {
	service DocumentServiceInterface
}

// NewDocumentHandler はDocumentHandlerを生成する。
func NewDocumentHandler(service DocumentServiceInterface) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// createDocumentRequest はドキュメント作成リクエストのボディ。
// タイトルはtitleまたはnameのどちらのキーでも受け付ける。
type createDocumentRequest struct {
	Title   string  `json:"title"`
	Name    string  `json:"name"`
	Content *string `json:"content"`
}

// documentSummaryResponse は一覧用のドキュメントレスポンス（コンテンツなし）。
type documentSummaryResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Name         string    `json:"name"`
	CustomerID   string    `json:"customerId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastModified time.Time `json:"lastModified"`
	LastAccessed time.Time `json:"lastAccessed"`
	Size         int       `json:"size"`
	ModifiedBy   string    `json:"modifiedBy"`
	ContentType  string    `json:"contentType"`
}

// documentResponse はコンテンツ込みのドキュメントレスポンス。
type documentResponse struct {
	documentSummaryResponse
	Content string `json:"content"`
}

// documentListResponse はドキュメント一覧レスポンス。
type documentListResponse struct {
	Documents []documentSummaryResponse `json:"documents"`
}

// ListDocuments はテナントのドキュメント一覧を返す（コンテンツなし）。
// GET /api/customers/:customerID/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	docs, err := h.service.List(r.Context(), customerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	summaries := make([]documentSummaryResponse, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, toDocumentSummaryResponse(doc))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(documentListResponse{Documents: summaries})
}

// GetDocument はドキュメントをコンテンツ込みで1件取得する。
// GET /api/customers/:customerID/documents/:documentID
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	documentID := chi.URLParam(r, "documentID")

	doc, err := h.service.Get(r.Context(), customerID, documentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toDocumentResponse(doc))
}

// CreateDocument はドキュメント作成を処理する。
// POST /api/customers/:customerID/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	title := req.Title
	if title == "" {
		title = req.Name
	}
	if title == "" || req.Content == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("titleとcontentは必須です"))
		return
	}

	doc, err := h.service.Create(r.Context(), customerID, title, []byte(*req.Content))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toDocumentResponse(doc))
}

// toDocumentSummaryResponse はドキュメントを一覧用レスポンスに変換する。
func toDocumentSummaryResponse(doc *model.Document) documentSummaryResponse {
	return documentSummaryResponse{
		ID:           doc.ID,
		Title:        doc.Title,
		Name:         doc.Title,
		CustomerID:   doc.CustomerID,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		LastModified: doc.UpdatedAt,
		LastAccessed: doc.UpdatedAt,
		Size:         doc.Size(),
		ModifiedBy:   "System",
		ContentType:  doc.ContentType,
	}
}

// toDocumentResponse はドキュメントをコンテンツ込みレスポンスに変換する。
func toDocumentResponse(doc *model.Document) documentResponse {
	return documentResponse{
		documentSummaryResponse: toDocumentSummaryResponse(doc),
		Content:                 string(doc.Content),
	}
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeUnauthenticated, model.ErrCodeInvalidTokenClaims:
		return http.StatusUnauthorized
	case model.ErrCodeTenantMismatch:
		return http.StatusForbidden
	case model.ErrCodeValidation, model.ErrCodeUnsupportedConnector:
		return http.StatusBadRequest
	case model.ErrCodeCustomerNotFound, model.ErrCodeDocumentNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
