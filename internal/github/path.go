package github

import "strings"

// JoinPath はパスセグメントを正規化して'/'で連結する。
// 各セグメントの先頭・末尾の'/'を除去し、空セグメントは捨てる。
// 呼び出し側はセグメントを'/'付きでもなしでも渡せる。
func JoinPath(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part == "" {
			continue
		}
		cleaned = append(cleaned, part)
	}
	return strings.Join(cleaned, "/")
}
