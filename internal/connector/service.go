// Package connector はGitHubコネクタ管理のドメインサービスを提供する。
package connector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/vaultsync/internal/model"
	"github.com/hitoshi/vaultsync/internal/repository"
)

const (
	defaultBranch   = "main"
	defaultBasePath = "vaultsync"
)

// CreateInput はコネクタ作成の入力を表す。
type CreateInput struct {
	CustomerID  string
	OwnerUserID string
	Type        string
	Owner       string
	Repo        string
	Branch      string
	BasePath    string
	Token       string
}

// Service はコネクタのCRUD操作を提供する。
type Service struct {
	connectors repository.ConnectorRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService はServiceを生成する。
func NewService(connectors repository.ConnectorRepository, logger *slog.Logger) *Service {
	return &Service{
		connectors: connectors,
		logger:     logger,
		now:        time.Now,
	}
}

// List はテナントのコネクタ一覧を返す（作成日時降順）。
func (s *Service) List(ctx context.Context, customerID string) ([]*model.Connector, error) {
	connectors, err := s.connectors.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connectors: %w", err)
	}
	return connectors, nil
}

// Create はコネクタを作成する。
// 種別はgithubのみサポートし、owner/repo/tokenは必須。
// branchは省略時main、basePathは省略時vaultsyncになる。
// マスク表示は作成時に同期的に計算し、生トークンとともに永続化する
// （生トークンは後続の同期呼び出しで使用する）。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Connector, error) {
	if input.Type != model.ConnectorTypeGitHub {
		return nil, model.NewUnsupportedConnectorTypeError(input.Type)
	}
	if input.Owner == "" || input.Repo == "" || input.Token == "" {
		return nil, model.NewValidationError("owner、repo、patは必須です")
	}

	branch := input.Branch
	if branch == "" {
		branch = defaultBranch
	}
	basePath := input.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	c := &model.Connector{
		ID:             uuid.NewString(),
		CustomerID:     input.CustomerID,
		OwnerUserID:    input.OwnerUserID,
		Type:           input.Type,
		GitHubOwner:    input.Owner,
		GitHubRepo:     input.Repo,
		GitHubBranch:   branch,
		BasePath:       basePath,
		Token:          input.Token,
		TokenMasked:    MaskToken(input.Token),
		LastSyncStatus: model.SyncStatusNone,
		CreatedAt:      s.now(),
	}

	if err := s.connectors.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	s.logger.Info("connector created",
		slog.String("connector_id", c.ID),
		slog.String("customer_id", c.CustomerID),
		slog.String("repo", c.RepoName()),
		slog.String("branch", c.GitHubBranch),
	)

	return c, nil
}
