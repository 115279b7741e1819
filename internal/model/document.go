// Package model はドメインモデルを定義する。
package model

import "time"

// Document はテナントが保管するドキュメントを表す。
// Contentはテキストとして保存される（バイナリは対象外）。
type Document struct {
	ID          string
	CustomerID  string
	Title       string
	Content     []byte
	ContentType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Size はコンテンツのバイト数を返す。
func (d *Document) Size() int {
	return len(d.Content)
}
