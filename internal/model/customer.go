// Package model はドメインモデルを定義する。
package model

import "time"

// Customer はテナント（顧客アカウント）を表す。
// 自身のドキュメントとコネクタを排他的に所有する。
type Customer struct {
	CustomerID  string
	DisplayName string
	LogoURL     string
	CreatedAt   time.Time
}
