// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 1ユーザーはちょうど1つのテナント（CustomerID）に属する。
type User struct {
	ID         string
	Username   string
	Password   string
	Role       string
	CustomerID string
	CreatedAt  time.Time
}
