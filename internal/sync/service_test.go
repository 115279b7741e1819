package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/vaultsync/internal/github"
	"github.com/hitoshi/vaultsync/internal/model"
)

// --- モック定義 ---

// mockConnectorRepo はrepository.ConnectorRepositoryのモック実装。
type mockConnectorRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Connector, error)

	updatedStatus  model.SyncStatus
	updatedMessage string
	updateCalls    int
}

func (m *mockConnectorRepo) ListByCustomerID(_ context.Context, _ string) ([]*model.Connector, error) {
	return nil, nil
}

func (m *mockConnectorRepo) FindByID(ctx context.Context, id string) (*model.Connector, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockConnectorRepo) Create(_ context.Context, _ *model.Connector) error {
	return nil
}

func (m *mockConnectorRepo) UpdateSyncState(_ context.Context, _ string, status model.SyncStatus, _ time.Time, message string) error {
	m.updateCalls++
	m.updatedStatus = status
	m.updatedMessage = message
	return nil
}

// mockDocumentRepo はrepository.DocumentRepositoryのモック実装。
type mockDocumentRepo struct {
	listForSyncFn func(ctx context.Context, customerID string) ([]*model.Document, error)
}

func (m *mockDocumentRepo) ListByCustomerID(_ context.Context, _ string) ([]*model.Document, error) {
	return nil, nil
}

func (m *mockDocumentRepo) ListForSync(ctx context.Context, customerID string) ([]*model.Document, error) {
	if m.listForSyncFn != nil {
		return m.listForSyncFn(ctx, customerID)
	}
	return nil, nil
}

func (m *mockDocumentRepo) FindByIDAndCustomerID(_ context.Context, _, _ string) (*model.Document, error) {
	return nil, nil
}

func (m *mockDocumentRepo) Create(_ context.Context, _ *model.Document) error {
	return nil
}

// mockGateway はGatewayのモック実装。
type mockGateway struct {
	pathExistsFn func(ctx context.Context, ref github.FileRef) (bool, error)
	upsertFileFn func(ctx context.Context, ref github.FileRef, contentBase64, commitMessage string) error

	upsertedPaths    []string
	upsertedMessages []string
}

func (m *mockGateway) PathExists(ctx context.Context, ref github.FileRef) (bool, error) {
	if m.pathExistsFn != nil {
		return m.pathExistsFn(ctx, ref)
	}
	return false, nil
}

func (m *mockGateway) UpsertFile(ctx context.Context, ref github.FileRef, contentBase64, commitMessage string) error {
	m.upsertedPaths = append(m.upsertedPaths, ref.Path)
	m.upsertedMessages = append(m.upsertedMessages, commitMessage)
	if m.upsertFileFn != nil {
		return m.upsertFileFn(ctx, ref, contentBase64, commitMessage)
	}
	return nil
}

// mockCollector はmetrics.MetricsCollectorのモック実装。
type mockCollector struct {
	successes     int
	failures      int
	pushed        int
	githubStatus  []int
	latencyCalled bool
}

func (m *mockCollector) RecordSyncSuccess(_ string) { m.successes++ }
func (m *mockCollector) RecordSyncFailure(_ string) { m.failures++ }
func (m *mockCollector) RecordSyncLatency(_ time.Duration) {
	m.latencyCalled = true
}
func (m *mockCollector) RecordDocumentsPushed(count int) { m.pushed += count }
func (m *mockCollector) RecordGitHubStatus(statusCode int) {
	m.githubStatus = append(m.githubStatus, statusCode)
}

// --- テストヘルパー ---

func testConnector() *model.Connector {
	return &model.Connector{
		ID:           "conn-1",
		CustomerID:   "ACC-100",
		Type:         model.ConnectorTypeGitHub,
		GitHubOwner:  "octocat",
		GitHubRepo:   "vault-export",
		GitHubBranch: "main",
		BasePath:     "vaultsync",
		Token:        "ghp_token",
	}
}

func testDocuments(n int) []*model.Document {
	docs := make([]*model.Document, 0, n)
	for i := 1; i <= n; i++ {
		docs = append(docs, &model.Document{
			ID:         fmt.Sprintf("doc-%d", i),
			CustomerID: "ACC-100",
			Title:      fmt.Sprintf("doc_%d.md", i),
			Content:    []byte(fmt.Sprintf("content %d", i)),
		})
	}
	return docs
}

func newTestService(connectors *mockConnectorRepo, documents *mockDocumentRepo, gateway *mockGateway, collector *mockCollector) *Service {
	s := NewService(connectors, documents, gateway, collector,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	// ランフォルダ割り当てを固定値に差し替える
	s.allocate = func(_ context.Context, _ github.PathChecker, req github.RunFolderRequest) (string, error) {
		return github.JoinPath(req.BasePath, req.ConnectorID, "run_001"), nil
	}
	return s
}

// TestRun_Success_PushesAllDocuments は全ドキュメントのプッシュと成功記録を検証する。
func TestRun_Success_PushesAllDocuments(t *testing.T) {
	connectors := &mockConnectorRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Connector, error) {
			return testConnector(), nil
		},
	}
	documents := &mockDocumentRepo{
		listForSyncFn: func(_ context.Context, customerID string) ([]*model.Document, error) {
			if customerID != "ACC-100" {
				t.Errorf("customerID = %q, want ACC-100", customerID)
			}
			return testDocuments(3), nil
		},
	}
	gateway := &mockGateway{}
	collector := &mockCollector{}

	service := newTestService(connectors, documents, gateway, collector)

	result := service.Run(context.Background(), "ACC-100", "conn-1")

	if result.Status != model.SyncStatusSuccess {
		t.Errorf("status = %q, want success", result.Status)
	}
	if result.Message != "Synced 3 documents to vaultsync/conn-1/run_001/" {
		t.Errorf("message = %q", result.Message)
	}

	if len(gateway.upsertedPaths) != 3 {
		t.Fatalf("upserted = %d, want 3", len(gateway.upsertedPaths))
	}
	if gateway.upsertedPaths[0] != "vaultsync/conn-1/run_001/doc_1.md" {
		t.Errorf("first path = %q", gateway.upsertedPaths[0])
	}
	if gateway.upsertedMessages[0] != "VaultSync sync: doc_1.md" {
		t.Errorf("first commit message = %q", gateway.upsertedMessages[0])
	}

	if connectors.updateCalls != 1 || connectors.updatedStatus != model.SyncStatusSuccess {
		t.Errorf("update calls = %d, status = %q, want 1 success", connectors.updateCalls, connectors.updatedStatus)
	}
	if collector.successes != 1 || collector.failures != 0 || collector.pushed != 3 {
		t.Errorf("collector = %+v, want 1 success, 3 pushed", collector)
	}
}

// TestRun_ZeroDocuments_StillSucceeds はドキュメント0件でも成功になることを検証する。
func TestRun_ZeroDocuments_StillSucceeds(t *testing.T) {
	connectors := &mockConnectorRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Connector, error) {
			return testConnector(), nil
		},
	}
	documents := &mockDocumentRepo{}
	gateway := &mockGateway{}
	collector := &mockCollector{}

	service := newTestService(connectors, documents, gateway, collector)

	result := service.Run(context.Background(), "ACC-100", "conn-1")

	if result.Status != model.SyncStatusSuccess {
		t.Errorf("status = %q, want success", result.Status)
	}
	if result.Message != "Synced 0 documents to vaultsync/conn-1/run_001/" {
		t.Errorf("message = %q", result.Message)
	}
	if len(gateway.upsertedPaths) != 0 {
		t.Errorf("upserted = %d, want 0", len(gateway.upsertedPaths))
	}
}

// TestRun_ConnectorNotFound_RecordsFailure はコネクタ未検出の終端記録を検証する。
func TestRun_ConnectorNotFound_RecordsFailure(t *testing.T) {
	connectors := &mockConnectorRepo{}
	documents := &mockDocumentRepo{}
	gateway := &mockGateway{}
	collector := &mockCollector{}

	service := newTestService(connectors, documents, gateway, collector)

	result := service.Run(context.Background(), "ACC-100", "conn-missing")

	if result.Status != model.SyncStatusFailed {
		t.Errorf("status = %q, want failed", result.Status)
	}
	if result.Message != "Connector not found" {
		t.Errorf("message = %q, want Connector not found", result.Message)
	}

	// 未検出でも終端ステータスは記録される
	if connectors.updateCalls != 1 || connectors.updatedStatus != model.SyncStatusFailed {
		t.Errorf("update calls = %d, status = %q", connectors.updateCalls, connectors.updatedStatus)
	}
	if connectors.updatedMessage != "Connector not found" {
		t.Errorf("stored message = %q", connectors.updatedMessage)
	}
	if collector.failures != 1 {
		t.Errorf("failures = %d, want 1", collector.failures)
	}
}

// TestRun_PushFailure_AbortsRemaining は途中失敗で残りのプッシュが中断されることを検証する。
func TestRun_PushFailure_AbortsRemaining(t *testing.T) {
	connectors := &mockConnectorRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Connector, error) {
			return testConnector(), nil
		},
	}
	documents := &mockDocumentRepo{
		listForSyncFn: func(_ context.Context, _ string) ([]*model.Document, error) {
			return testDocuments(3), nil
		},
	}

	calls := 0
	gateway := &mockGateway{
		upsertFileFn: func(_ context.Context, _ github.FileRef, _, _ string) error {
			calls++
			if calls == 2 {
				return &github.RemoteError{StatusCode: 403, Message: "Resource not accessible by personal access token"}
			}
			return nil
		},
	}
	collector := &mockCollector{}

	service := newTestService(connectors, documents, gateway, collector)

	result := service.Run(context.Background(), "ACC-100", "conn-1")

	if result.Status != model.SyncStatusFailed {
		t.Errorf("status = %q, want failed", result.Status)
	}
	if result.Message != "Resource not accessible by personal access token" {
		t.Errorf("message = %q", result.Message)
	}

	// 2件目で失敗したら3件目はプッシュされない
	if len(gateway.upsertedPaths) != 2 {
		t.Errorf("upserted = %d, want 2", len(gateway.upsertedPaths))
	}
	// 成功済みは1件のみカウントされる
	if collector.pushed != 1 {
		t.Errorf("pushed = %d, want 1", collector.pushed)
	}
	// RemoteErrorのステータスコードが記録される
	if len(collector.githubStatus) != 1 || collector.githubStatus[0] != 403 {
		t.Errorf("githubStatus = %v, want [403]", collector.githubStatus)
	}
}

// TestRun_AllocatorExhausted_MapsMessage はランフォルダ枯渇時のメッセージ変換を検証する。
func TestRun_AllocatorExhausted_MapsMessage(t *testing.T) {
	connectors := &mockConnectorRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Connector, error) {
			return testConnector(), nil
		},
	}
	documents := &mockDocumentRepo{}
	gateway := &mockGateway{}
	collector := &mockCollector{}

	service := newTestService(connectors, documents, gateway, collector)
	service.allocate = func(_ context.Context, _ github.PathChecker, _ github.RunFolderRequest) (string, error) {
		return "", github.ErrRunFolderExhausted
	}

	result := service.Run(context.Background(), "ACC-100", "conn-1")

	if result.Status != model.SyncStatusFailed {
		t.Errorf("status = %q, want failed", result.Status)
	}
	if result.Message != "Unable to find available run folder" {
		t.Errorf("message = %q", result.Message)
	}
}

// TestRun_ListFailure_RecordsFailure はドキュメント収集失敗の終端記録を検証する。
func TestRun_ListFailure_RecordsFailure(t *testing.T) {
	connectors := &mockConnectorRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Connector, error) {
			return testConnector(), nil
		},
	}
	documents := &mockDocumentRepo{
		listForSyncFn: func(_ context.Context, _ string) ([]*model.Document, error) {
			return nil, errors.New("query timeout")
		},
	}
	gateway := &mockGateway{}
	collector := &mockCollector{}

	service := newTestService(connectors, documents, gateway, collector)

	result := service.Run(context.Background(), "ACC-100", "conn-1")

	if result.Status != model.SyncStatusFailed {
		t.Errorf("status = %q, want failed", result.Status)
	}
	if result.Message != "query timeout" {
		t.Errorf("message = %q", result.Message)
	}
	if !collector.latencyCalled {
		t.Error("latency should be recorded on failure too")
	}
}

// TestRun_StatusOverwrittenUnconditionally は成功→失敗で直近結果のみ残ることを検証する。
func TestRun_StatusOverwrittenUnconditionally(t *testing.T) {
	connector := testConnector()
	connectors := &mockConnectorRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Connector, error) {
			return connector, nil
		},
	}
	documents := &mockDocumentRepo{}
	gateway := &mockGateway{}
	collector := &mockCollector{}

	service := newTestService(connectors, documents, gateway, collector)

	// 1回目: 成功
	if result := service.Run(context.Background(), "ACC-100", "conn-1"); result.Status != model.SyncStatusSuccess {
		t.Fatalf("first run status = %q, want success", result.Status)
	}

	// 2回目: 割り当て失敗
	service.allocate = func(_ context.Context, _ github.PathChecker, _ github.RunFolderRequest) (string, error) {
		return "", github.ErrRunFolderExhausted
	}
	if result := service.Run(context.Background(), "ACC-100", "conn-1"); result.Status != model.SyncStatusFailed {
		t.Fatalf("second run status = %q, want failed", result.Status)
	}

	if connectors.updateCalls != 2 {
		t.Errorf("update calls = %d, want 2", connectors.updateCalls)
	}
	if connectors.updatedStatus != model.SyncStatusFailed {
		t.Errorf("final status = %q, want failed (most recent outcome only)", connectors.updatedStatus)
	}
}
