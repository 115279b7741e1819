package document

import "strings"

// contentTypes は拡張子からMIMEタイプへの対応表。
var contentTypes = map[string]string{
	".md":   "text/markdown",
	".txt":  "text/plain",
	".json": "application/json",
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pdf":  "application/pdf",
	".pbix": "application/octet-stream",
}

// DetectContentType はタイトルの拡張子からMIMEタイプを判定する純粋関数。
// 大文字小文字を区別せず、未知の拡張子はapplication/octet-streamを返す。
func DetectContentType(title string) string {
	lower := strings.ToLower(title)
	for ext, contentType := range contentTypes {
		if strings.HasSuffix(lower, ext) {
			return contentType
		}
	}
	return "application/octet-stream"
}
