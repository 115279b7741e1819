// Package model はドメインモデルを定義する。
package model

import "time"

// ConnectorTypeGitHub はサポートされる唯一のコネクタ種別。
const ConnectorTypeGitHub = "github"

// SyncStatus はコネクタの最終同期結果を表す。
type SyncStatus string

const (
	// SyncStatusNone は一度も同期されていない状態。
	SyncStatusNone SyncStatus = ""
	// SyncStatusSuccess は最終同期が成功した状態。
	SyncStatusSuccess SyncStatus = "success"
	// SyncStatusFailed は最終同期が失敗した状態。
	SyncStatusFailed SyncStatus = "failed"
)

// Connector はテナントと外部GitHubリポジトリの接続設定を表す。
// 同期ステータス3フィールド（LastSyncStatus/LastSyncAt/LastSyncMessage）は
// 常に同一UPDATEで一括更新され、直近の結果のみを保持する。
type Connector struct {
	ID              string
	CustomerID      string
	OwnerUserID     string
	Type            string
	GitHubOwner     string
	GitHubRepo      string
	GitHubBranch    string
	BasePath        string
	Token           string
	TokenMasked     string
	LastSyncStatus  SyncStatus
	LastSyncAt      *time.Time
	LastSyncMessage string
	CreatedAt       time.Time
}

// RepoName は "owner/repo" 形式のリポジトリ名を返す。
func (c *Connector) RepoName() string {
	return c.GitHubOwner + "/" + c.GitHubRepo
}
