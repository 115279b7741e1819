package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// buildMissingNotice はフロントエンドバンドルが存在しない場合の通知文。
const buildMissingNotice = "Frontend build not found. Run npm run build."

// StaticHandler はビルド済みフロントエンドバンドルを配信するハンドラー。
// 物理ファイルが存在しないパスはクライアントサイドルーティングのために
// index.htmlにフォールバックする。バンドル自体が存在しない場合は404を返す。
type StaticHandler struct {
	staticDir string
}

// NewStaticHandler はStaticHandlerを生成する。
func NewStaticHandler(staticDir string) *StaticHandler {
	return &StaticHandler{staticDir: staticDir}
}

// ServeHTTP はhttp.Handlerを実装する。
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// パストラバーサル対策: 正規化後にルート配下へ収まるパスのみ扱う
	relPath := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if relPath == "." || strings.HasPrefix(relPath, "..") {
		relPath = "index.html"
	}

	filePath := filepath.Join(h.staticDir, relPath)
	if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
		http.ServeFile(w, r, filePath)
		return
	}

	indexPath := filepath.Join(h.staticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(buildMissingNotice))
		return
	}

	http.ServeFile(w, r, indexPath)
}
