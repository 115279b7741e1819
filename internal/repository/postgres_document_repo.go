package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/vaultsync/internal/model"
)

// PostgresDocumentRepo はPostgreSQLを使用したドキュメントリポジトリ。
type PostgresDocumentRepo struct {
	db *sql.DB
}

// NewPostgresDocumentRepo はPostgresDocumentRepoを生成する。
func NewPostgresDocumentRepo(db *sql.DB) *PostgresDocumentRepo {
	return &PostgresDocumentRepo{db: db}
}

// ListByCustomerID はテナントのドキュメント一覧をupdated_at降順で返す。
func (r *PostgresDocumentRepo) ListByCustomerID(ctx context.Context, customerID string) ([]*model.Document, error) {
	return r.list(ctx, customerID, `ORDER BY updated_at DESC`)
}

// ListForSync は同期対象としてテナントの全ドキュメントをcreated_at昇順で返す。
// プッシュ順を決定的にするため作成順で返す。
func (r *PostgresDocumentRepo) ListForSync(ctx context.Context, customerID string) ([]*model.Document, error) {
	return r.list(ctx, customerID, `ORDER BY created_at ASC`)
}

func (r *PostgresDocumentRepo) list(ctx context.Context, customerID, orderBy string) ([]*model.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, title, content, content_type, created_at, updated_at
		 FROM documents WHERE customer_id = $1 `+orderBy,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc := &model.Document{}
		if err := rows.Scan(&doc.ID, &doc.CustomerID, &doc.Title, &doc.Content, &doc.ContentType, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// FindByIDAndCustomerID はID・テナントの組でドキュメントを取得する。
// 組に一致しない場合はnilを返す。
func (r *PostgresDocumentRepo) FindByIDAndCustomerID(ctx context.Context, id, customerID string) (*model.Document, error) {
	doc := &model.Document{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, title, content, content_type, created_at, updated_at
		 FROM documents WHERE id = $1 AND customer_id = $2`,
		id, customerID,
	).Scan(&doc.ID, &doc.CustomerID, &doc.Title, &doc.Content, &doc.ContentType, &doc.CreatedAt, &doc.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return doc, nil
}

// Create はドキュメントを作成する。
func (r *PostgresDocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, customer_id, title, content, content_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.CustomerID, doc.Title, doc.Content, doc.ContentType, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// compile-time interface check
var _ DocumentRepository = (*PostgresDocumentRepo)(nil)
