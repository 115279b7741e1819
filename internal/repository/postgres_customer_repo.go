package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/vaultsync/internal/model"
)

// PostgresCustomerRepo はPostgreSQLを使用したテナントリポジトリ。
type PostgresCustomerRepo struct {
	db *sql.DB
}

// NewPostgresCustomerRepo はPostgresCustomerRepoを生成する。
func NewPostgresCustomerRepo(db *sql.DB) *PostgresCustomerRepo {
	return &PostgresCustomerRepo{db: db}
}

// FindByCustomerID は指定customer_idのテナントを取得する。見つからない場合はnilを返す。
func (r *PostgresCustomerRepo) FindByCustomerID(ctx context.Context, customerID string) (*model.Customer, error) {
	customer := &model.Customer{}
	err := r.db.QueryRowContext(ctx,
		`SELECT customer_id, display_name, logo_url, created_at FROM customers WHERE customer_id = $1`,
		customerID,
	).Scan(&customer.CustomerID, &customer.DisplayName, &customer.LogoURL, &customer.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return customer, nil
}

// compile-time interface check
var _ CustomerRepository = (*PostgresCustomerRepo)(nil)
