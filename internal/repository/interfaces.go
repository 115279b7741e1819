// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/vaultsync/internal/model"
)

// CustomerRepository はテナントデータの永続化インターフェース。
// テナントはシード時に作成され、このスコープでは読み取り専用。
type CustomerRepository interface {
	// FindByCustomerID は指定customer_idのテナントを取得する。見つからない場合はnilを返す。
	FindByCustomerID(ctx context.Context, customerID string) (*model.Customer, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// DocumentRepository はドキュメントデータの永続化インターフェース。
type DocumentRepository interface {
	// ListByCustomerID はテナントのドキュメント一覧をupdated_at降順で返す。
	ListByCustomerID(ctx context.Context, customerID string) ([]*model.Document, error)

	// ListForSync は同期対象としてテナントの全ドキュメントをcreated_at昇順で返す。
	ListForSync(ctx context.Context, customerID string) ([]*model.Document, error)

	// FindByIDAndCustomerID はID・テナントの組でドキュメントを取得する。
	// 組に一致しない場合はnilを返す。
	FindByIDAndCustomerID(ctx context.Context, id, customerID string) (*model.Document, error)

	// Create はドキュメントを作成する。
	Create(ctx context.Context, doc *model.Document) error
}

// ConnectorRepository はコネクタデータの永続化インターフェース。
type ConnectorRepository interface {
	// ListByCustomerID はテナントのコネクタ一覧をcreated_at降順で返す。
	ListByCustomerID(ctx context.Context, customerID string) ([]*model.Connector, error)

	// FindByID は指定IDのコネクタを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Connector, error)

	// Create はコネクタを作成する。
	Create(ctx context.Context, connector *model.Connector) error

	// UpdateSyncState はコネクタの同期ステータス3フィールド
	// （last_sync_status/last_sync_at/last_sync_message）を単一UPDATEで更新する。
	// 対象行が存在しない場合もエラーにはならない。
	UpdateSyncState(ctx context.Context, id string, status model.SyncStatus, at time.Time, message string) error
}
