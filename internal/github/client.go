// Package github はGitHub Contents APIの薄いクライアントを提供する。
// パスのメタデータ取得・存在判定と、create/updateを区別した
// ファイルアップサートを扱う。
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// defaultAPIBase はGitHub REST APIのベースURL。
const defaultAPIBase = "https://api.github.com"

// ErrNotFound は対象パスがリポジトリに存在しないことを示す。
var ErrNotFound = errors.New("github: path not found")

// RemoteError はGitHub APIからの非2xx応答を表す。
// メッセージは応答ボディのJSON messageフィールド、なければボディ本文、
// それもなければHTTPステータステキストから抽出される。
type RemoteError struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *RemoteError) Error() string {
	return e.Message
}

// Contents はContents API GET応答のうち利用するフィールド。
type Contents struct {
	SHA  string `json:"sha"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// Client はGitHub Contents APIのHTTPクライアント。
// トークンは呼び出しごとに受け取る（コネクタ単位で異なるため）。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiBase    string // GitHub Enterprise用およびテスト用に差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
// apiBaseが空の場合はapi.github.comを使用する。
func NewClient(httpClient *http.Client, logger *slog.Logger, apiBase string) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		apiBase:    strings.TrimRight(apiBase, "/"),
	}
}

// FileRef はContents API呼び出しの対象を特定する。
type FileRef struct {
	Owner  string
	Repo   string
	Path   string
	Branch string
	Token  string
}

// GetContents は対象パスのメタデータを取得する。
// 404の場合はErrNotFound、その他の非2xxは*RemoteErrorを返す。
func (c *Client) GetContents(ctx context.Context, ref FileRef) (*Contents, error) {
	endpoint := c.contentsURL(ref.Owner, ref.Repo, ref.Path) + "?ref=" + url.QueryEscape(ref.Branch)

	body, err := c.do(ctx, http.MethodGet, endpoint, ref.Token, nil)
	if err != nil {
		return nil, err
	}

	contents := &Contents{}
	if err := json.Unmarshal(body, contents); err != nil {
		// ディレクトリはJSON配列で返る。shaを持たないメタデータとして扱う。
		if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
			return &Contents{Path: ref.Path, Type: "dir"}, nil
		}
		return nil, fmt.Errorf("failed to parse contents response: %w", err)
	}

	return contents, nil
}

// PathExists は対象パスの存在を判定する。
// ErrNotFoundはfalseに変換し、その他のエラーはそのまま伝播する。
func (c *Client) PathExists(ctx context.Context, ref FileRef) (bool, error) {
	_, err := c.GetContents(ctx, ref)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FileSHA は対象パスの現在のコンテンツハッシュ（sha）を返す。
// パスが存在しない、またはshaを持たない場合は空文字列を返す（エラーにしない）。
func (c *Client) FileSHA(ctx context.Context, ref FileRef) (string, error) {
	contents, err := c.GetContents(ctx, ref)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return contents.SHA, nil
}

// upsertRequest はContents API PUTのリクエストボディ。
// SHAは既存ファイル更新時のみ必須（省略すると競合、非存在ファイルに付けるとエラー）。
type upsertRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// UpsertFile はファイルを作成または更新する。
// 先にFileSHAで既存リビジョンを調べ、見つかった場合のみshaを付けてPUTする。
// この存在確認→書き込みの2段階はトランザクショナルではない。同一パスへの
// 並行書き込みは競合し、*RemoteErrorとして表面化する（リトライしない）。
func (c *Client) UpsertFile(ctx context.Context, ref FileRef, contentBase64, commitMessage string) error {
	sha, err := c.FileSHA(ctx, ref)
	if err != nil {
		return err
	}

	reqBody, err := json.Marshal(upsertRequest{
		Message: commitMessage,
		Content: contentBase64,
		Branch:  ref.Branch,
		SHA:     sha,
	})
	if err != nil {
		return fmt.Errorf("failed to encode upsert request: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPut, c.contentsURL(ref.Owner, ref.Repo, ref.Path), ref.Token, reqBody); err != nil {
		return err
	}
	return nil
}

// contentsURL はcontentsエンドポイントのURLを構築する。
// パスはセグメント単位でエスケープする（'/'は保持する）。
func (c *Client) contentsURL(owner, repo, path string) string {
	segments := strings.Split(path, "/")
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.apiBase, url.PathEscape(owner), url.PathEscape(repo), strings.Join(escaped, "/"))
}

// do はHTTPリクエストを実行し、2xxの場合のみボディを返す。
// 404はErrNotFound、その他の非2xxは*RemoteErrorに変換する。
func (c *Client) do(ctx context.Context, method, endpoint, token string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("GitHub APIの呼び出しに失敗しました",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(respBody, resp.Status),
		}
		c.logger.Error("GitHub APIがエラーステータスを返しました",
			slog.String("method", method),
			slog.Int("http_status", resp.StatusCode),
			slog.String("message", remoteErr.Message),
		)
		return nil, remoteErr
	}

	return respBody, nil
}

// extractErrorMessage はエラーメッセージを応答ボディから抽出する。
// 優先順位: JSONのmessageフィールド → ボディ本文 → HTTPステータステキスト。
func extractErrorMessage(body []byte, statusText string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return statusText
}
