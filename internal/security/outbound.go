// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// NewOutboundClient はGitHubゲートウェイが使う外向きHTTPクライアントを生成する。
// APIベースURLは設定で差し替え可能なため、safeurlにより
// プライベートIP・ループバック・リンクローカル・メタデータIPへの
// リクエストをDialerレベル（DNS解決後のIP検証込み）でブロックする。
func NewOutboundClient(timeout time.Duration, apiBase string) *http.Client {
	// テスト・ローカル検証用: 明示的にループバックを指す場合のみ素のクライアントを返す。
	if isLoopbackBase(apiBase) {
		return &http.Client{Timeout: timeout}
	}

	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// isLoopbackBase はベースURLがローカルホストを指しているかを判定する。
func isLoopbackBase(apiBase string) bool {
	for _, prefix := range []string{"http://localhost", "http://127.0.0.1", "https://localhost", "https://127.0.0.1"} {
		if strings.HasPrefix(apiBase, prefix) {
			return true
		}
	}
	return false
}
