// Package sync はテナントドキュメントのGitHubエクスポートを統括する。
// 1回の同期は コネクタ解決 → ドキュメント収集 → ランフォルダ割り当て →
// 逐次プッシュ → 終端ステータス記録 の単一パスで完結する。
package sync

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/vaultsync/internal/github"
	"github.com/hitoshi/vaultsync/internal/metrics"
	"github.com/hitoshi/vaultsync/internal/model"
	"github.com/hitoshi/vaultsync/internal/repository"
)

// connectorNotFoundMessage はコネクタ未検出時に記録される終端メッセージ。
const connectorNotFoundMessage = "Connector not found"

// Result は同期実行の結果を表す。
// ドメイン上の失敗もHTTPエラーではなくこの結果として呼び出し元へ返る。
type Result struct {
	Status  model.SyncStatus
	Message string
}

// Gateway は同期に必要なGitHub操作の最小インターフェース。
type Gateway interface {
	github.PathChecker
	UpsertFile(ctx context.Context, ref github.FileRef, contentBase64, commitMessage string) error
}

// RunFolderAllocator はランフォルダ割り当て関数の型。
// 既定はgithub.NextRunFolder。テストで差し替える。
type RunFolderAllocator func(ctx context.Context, checker github.PathChecker, req github.RunFolderRequest) (string, error)

// Service は同期オーケストレータ。コネクタ1件ずつ、同期的に1パスで実行する。
// リトライは一切行わない。一時的なGitHub APIエラー（レート制限・ネットワーク
// 障害・5xx）も即座に実行を打ち切り、failedステータスとして記録する。
type Service struct {
	connectors repository.ConnectorRepository
	documents  repository.DocumentRepository
	gateway    Gateway
	allocate   RunFolderAllocator
	collector  metrics.MetricsCollector
	logger     *slog.Logger
	now        func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	connectors repository.ConnectorRepository,
	documents repository.DocumentRepository,
	gateway Gateway,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	return &Service{
		connectors: connectors,
		documents:  documents,
		gateway:    gateway,
		allocate:   github.NextRunFolder,
		collector:  collector,
		logger:     logger,
		now:        time.Now,
	}
}

// Run は1回の同期を実行し、終端ステータスをコネクタに記録して結果を返す。
// ステータス3フィールド（status/at/message)は成功・失敗いずれの場合も
// 単一更新で無条件に上書きされる（履歴は保持しない）。
func (s *Service) Run(ctx context.Context, customerID, connectorID string) Result {
	start := s.now()

	s.logger.Info("sync started",
		slog.String("customer_id", customerID),
		slog.String("connector_id", connectorID),
	)

	result := s.run(ctx, customerID, connectorID)

	if err := s.connectors.UpdateSyncState(ctx, connectorID, result.Status, s.now(), result.Message); err != nil {
		s.logger.Error("failed to record sync state",
			slog.String("connector_id", connectorID),
			slog.String("error", err.Error()),
		)
	}

	s.collector.RecordSyncLatency(s.now().Sub(start))
	if result.Status == model.SyncStatusSuccess {
		s.collector.RecordSyncSuccess(connectorID)
	} else {
		s.collector.RecordSyncFailure(connectorID)
	}

	s.logger.Info("sync finished",
		slog.String("connector_id", connectorID),
		slog.String("status", string(result.Status)),
		slog.String("message", result.Message),
	)

	return result
}

// run は同期本体。失敗はResultに変換して返し、エラーとしては伝播させない。
func (s *Service) run(ctx context.Context, customerID, connectorID string) Result {
	// 1. コネクタ解決
	connector, err := s.connectors.FindByID(ctx, connectorID)
	if err != nil {
		return s.failure(err)
	}
	if connector == nil {
		return Result{Status: model.SyncStatusFailed, Message: connectorNotFoundMessage}
	}

	// 2. ドキュメント収集
	// コネクタによるフィルタは行わず、テナントの全ドキュメントが対象になる。
	documents, err := s.documents.ListForSync(ctx, customerID)
	if err != nil {
		return s.failure(err)
	}

	s.logger.Info("sync collected documents",
		slog.String("connector_id", connectorID),
		slog.Int("documents", len(documents)),
	)

	// 3. ランフォルダ割り当て
	runFolder, err := s.allocate(ctx, s.gateway, github.RunFolderRequest{
		Owner:       connector.GitHubOwner,
		Repo:        connector.GitHubRepo,
		BasePath:    connector.BasePath,
		ConnectorID: connector.ID,
		Branch:      connector.GitHubBranch,
		Token:       connector.Token,
	})
	if err != nil {
		return s.failure(err)
	}

	// 4. 逐次プッシュ
	// 収集順のまま1件ずつ書き込む。途中で失敗した場合、残りは
	// プッシュせず中断する。書き込み済みのファイルはロールバックされない。
	pushed := 0
	for _, doc := range documents {
		filePath := github.JoinPath(runFolder, doc.Title)

		s.logger.Info("sync writing document",
			slog.String("connector_id", connectorID),
			slog.String("path", filePath),
		)

		contentBase64 := base64.StdEncoding.EncodeToString(doc.Content)
		commitMessage := fmt.Sprintf("VaultSync sync: %s", doc.Title)

		err := s.gateway.UpsertFile(ctx, github.FileRef{
			Owner:  connector.GitHubOwner,
			Repo:   connector.GitHubRepo,
			Path:   filePath,
			Branch: connector.GitHubBranch,
			Token:  connector.Token,
		}, contentBase64, commitMessage)
		if err != nil {
			s.collector.RecordDocumentsPushed(pushed)
			return s.failure(err)
		}
		pushed++
	}

	s.collector.RecordDocumentsPushed(pushed)

	// 5. 成功の終端メッセージ
	return Result{
		Status:  model.SyncStatusSuccess,
		Message: fmt.Sprintf("Synced %d documents to %s/", len(documents), runFolder),
	}
}

// failure はエラーをfailed結果に変換する。
// RemoteErrorのステータスコードはメトリクスに記録する。
func (s *Service) failure(err error) Result {
	var remoteErr *github.RemoteError
	if errors.As(err, &remoteErr) {
		s.collector.RecordGitHubStatus(remoteErr.StatusCode)
	}

	message := err.Error()
	if errors.Is(err, github.ErrRunFolderExhausted) {
		message = "Unable to find available run folder"
	}

	return Result{Status: model.SyncStatusFailed, Message: message}
}
