package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/vaultsync/internal/model"
)

// PostgresConnectorRepo はPostgreSQLを使用したコネクタリポジトリ。
type PostgresConnectorRepo struct {
	db *sql.DB
}

// NewPostgresConnectorRepo はPostgresConnectorRepoを生成する。
func NewPostgresConnectorRepo(db *sql.DB) *PostgresConnectorRepo {
	return &PostgresConnectorRepo{db: db}
}

const connectorColumns = `id, customer_id, owner_user_id, type, github_owner, github_repo,
	github_branch, base_path, token, token_masked, last_sync_status, last_sync_at,
	last_sync_message, created_at`

// ListByCustomerID はテナントのコネクタ一覧をcreated_at降順で返す。
func (r *PostgresConnectorRepo) ListByCustomerID(ctx context.Context, customerID string) ([]*model.Connector, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+connectorColumns+` FROM connectors WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list connectors: %w", err)
	}
	defer rows.Close()

	var connectors []*model.Connector
	for rows.Next() {
		connector, err := scanConnector(rows)
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, connector)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connectors: %w", err)
	}

	return connectors, nil
}

// FindByID は指定IDのコネクタを取得する。見つからない場合はnilを返す。
func (r *PostgresConnectorRepo) FindByID(ctx context.Context, id string) (*model.Connector, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+connectorColumns+` FROM connectors WHERE id = $1`,
		id,
	)

	connector, err := scanConnector(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find connector: %w", err)
	}

	return connector, nil
}

// Create はコネクタを作成する。
func (r *PostgresConnectorRepo) Create(ctx context.Context, c *model.Connector) error {
	ownerUserID := sql.NullString{String: c.OwnerUserID, Valid: c.OwnerUserID != ""}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO connectors (id, customer_id, owner_user_id, type, github_owner, github_repo,
		 github_branch, base_path, token, token_masked, last_sync_status, last_sync_message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.CustomerID, ownerUserID, c.Type, c.GitHubOwner, c.GitHubRepo,
		c.GitHubBranch, c.BasePath, c.Token, c.TokenMasked, string(c.LastSyncStatus), c.LastSyncMessage, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert connector: %w", err)
	}
	return nil
}

// UpdateSyncState はコネクタの同期ステータス3フィールドを単一UPDATEで更新する。
// 対象行が存在しない場合もエラーにはならない。
func (r *PostgresConnectorRepo) UpdateSyncState(ctx context.Context, id string, status model.SyncStatus, at time.Time, message string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE connectors SET last_sync_status = $1, last_sync_at = $2, last_sync_message = $3 WHERE id = $4`,
		string(status), at, message, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update connector sync state: %w", err)
	}
	return nil
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnector(row rowScanner) (*model.Connector, error) {
	connector := &model.Connector{}
	var ownerUserID sql.NullString
	var status string
	var lastSyncAt sql.NullTime

	err := row.Scan(
		&connector.ID, &connector.CustomerID, &ownerUserID, &connector.Type,
		&connector.GitHubOwner, &connector.GitHubRepo, &connector.GitHubBranch,
		&connector.BasePath, &connector.Token, &connector.TokenMasked,
		&status, &lastSyncAt, &connector.LastSyncMessage, &connector.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan connector: %w", err)
	}

	connector.OwnerUserID = ownerUserID.String
	connector.LastSyncStatus = model.SyncStatus(status)
	if lastSyncAt.Valid {
		t := lastSyncAt.Time
		connector.LastSyncAt = &t
	}

	return connector, nil
}

// compile-time interface check
var _ ConnectorRepository = (*PostgresConnectorRepo)(nil)
