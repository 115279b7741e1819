package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/vaultsync/internal/model"
	"github.com/hitoshi/vaultsync/internal/repository"
)

// CustomerHandler はテナントメタデータのHTTPハンドラー。
// ドメインロジックを持たないため、リポジトリを直接参照する。
type CustomerHandler struct {
	customers repository.CustomerRepository
}

// NewCustomerHandler はCustomerHandlerを生成する。
func NewCustomerHandler(customers repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// customerResponse はテナントメタデータのAPIレスポンス。
type customerResponse struct {
	CustomerID  string `json:"customerId"`
	DisplayName string `json:"displayName"`
	LogoURL     string `json:"logoUrl"`
}

// GetCustomer はテナントメタデータを取得する。
// GET /api/customers/:customerID
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	customer, err := h.customers.FindByCustomerID(r.Context(), customerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if customer == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewCustomerNotFoundError(customerID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customerResponse{
		CustomerID:  customer.CustomerID,
		DisplayName: customer.DisplayName,
		LogoURL:     customer.LogoURL,
	})
}
