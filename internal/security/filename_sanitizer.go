// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// FilenameSanitizer はドキュメントタイトルをサニタイズする。
// タイトルは同期時にGitHubリポジトリ内のパスセグメントとして使われるため、
// HTMLタグの除去（bluemonday StrictPolicy）に加えてパス区切りと
// 相対パス表現を無害化する。
// 同一入力に対して常に同一出力を返す（冪等）。
type FilenameSanitizer struct {
	policy *bluemonday.Policy
}

// NewFilenameSanitizer はFilenameSanitizerの新しいインスタンスを生成する。
func NewFilenameSanitizer() *FilenameSanitizer {
	return &FilenameSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタイトルからHTMLタグ・パス区切り・先頭ドットを除去して返す。
// すべて除去された場合は空文字列を返す（呼び出し側で必須検証する）。
func (s *FilenameSanitizer) Sanitize(title string) string {
	cleaned := s.policy.Sanitize(title)

	// bluemondayはHTMLとして出力するため & や ' が実体参照に
	// エスケープされる。タイトルはHTMLではなくファイル名として
	// 保存するので、タグ除去後に実体参照を元の文字へ戻す。
	cleaned = html.UnescapeString(cleaned)

	// パス区切りはアンダースコアに置換し、ディレクトリ脱出を防ぐ
	cleaned = strings.ReplaceAll(cleaned, "/", "_")
	cleaned = strings.ReplaceAll(cleaned, "\\", "_")

	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimLeft(cleaned, ".")

	return cleaned
}
