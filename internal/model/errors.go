// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, tenant, sync, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated      = "UNAUTHENTICATED"
	ErrCodeInvalidTokenClaims   = "INVALID_TOKEN_CLAIMS"
	ErrCodeTenantMismatch       = "TENANT_MISMATCH"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeUnsupportedConnector = "UNSUPPORTED_CONNECTOR_TYPE"
	ErrCodeCustomerNotFound     = "CUSTOMER_NOT_FOUND"
	ErrCodeDocumentNotFound     = "DOCUMENT_NOT_FOUND"
)

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// ユーザー名不明とパスワード不一致を区別しない（ユーザー名列挙対策）。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUnauthenticatedError は認証失敗エラーを生成する。
// トークンの欠落・不正・期限切れ・署名/発行者/オーディエンス不一致を区別しない。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewInvalidTokenClaimsError は署名は正しいがクレームが不完全なトークンのエラーを生成する。
func NewInvalidTokenClaimsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTokenClaims,
		Message:  "トークンのクレームが不完全です。",
		Category: "auth",
		Action:   "再度ログインしてトークンを取得し直してください。",
	}
}

// NewTenantMismatchError はテナント境界違反エラーを生成する。
// テナントバインディングが有効な場合のみ使用される。
func NewTenantMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeTenantMismatch,
		Message:  "このテナントのリソースへのアクセス権がありません。",
		Category: "auth",
		Action:   "自身のテナントのリソースのみ操作できます。",
	}
}

// NewValidationError は必須フィールド欠落などの入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "必須フィールドを確認して再度お試しください。",
	}
}

// NewUnsupportedConnectorTypeError は未サポートのコネクタ種別エラーを生成する。
func NewUnsupportedConnectorTypeError(connectorType string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedConnector,
		Message:  fmt.Sprintf("サポートされていないコネクタ種別です: %s", connectorType),
		Category: "validation",
		Action:   "コネクタ種別には github を指定してください。",
	}
}

// NewCustomerNotFoundError はテナント未検出エラーを生成する。
func NewCustomerNotFoundError(customerID string) *APIError {
	return &APIError{
		Code:     ErrCodeCustomerNotFound,
		Message:  fmt.Sprintf("指定された顧客が見つかりません: %s", customerID),
		Category: "tenant",
		Action:   "顧客IDを確認してください。",
	}
}

// NewDocumentNotFoundError はドキュメント未検出エラーを生成する。
func NewDocumentNotFoundError(documentID string) *APIError {
	return &APIError{
		Code:     ErrCodeDocumentNotFound,
		Message:  fmt.Sprintf("指定されたドキュメントが見つかりません: %s", documentID),
		Category: "tenant",
		Action:   "ドキュメントIDを確認してください。",
	}
}
