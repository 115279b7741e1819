package github

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- テストヘルパー ---

func newTestClient(serverURL string) *Client {
	return NewClient(&http.Client{}, slog.New(slog.NewTextHandler(io.Discard, nil)), serverURL)
}

func testFileRef(path string) FileRef {
	return FileRef{
		Owner:  "octocat",
		Repo:   "vault-export",
		Path:   path,
		Branch: "main",
		Token:  "ghp_token",
	}
}

// TestGetContents_ExistingFile_ReturnsMetadata は既存ファイルのメタデータ取得を検証する。
func TestGetContents_ExistingFile_ReturnsMetadata(t *testing.T) {
	var gotPath, gotAuth, gotAccept, gotVersion, gotRef string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRef = r.URL.Query().Get("ref")
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotVersion = r.Header.Get("X-GitHub-Api-Version")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"sha":  "abc123",
			"path": "vaultsync/notes.md",
			"type": "file",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	contents, err := client.GetContents(context.Background(), testFileRef("vaultsync/notes.md"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contents.SHA != "abc123" {
		t.Errorf("sha = %q, want abc123", contents.SHA)
	}
	if gotPath != "/repos/octocat/vault-export/contents/vaultsync/notes.md" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotRef != "main" {
		t.Errorf("ref query = %q, want main", gotRef)
	}
	if gotAuth != "Bearer ghp_token" {
		t.Errorf("Authorization = %q, want Bearer ghp_token", gotAuth)
	}
	if gotAccept != "application/vnd.github+json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotVersion != "2022-11-28" {
		t.Errorf("X-GitHub-Api-Version = %q", gotVersion)
	}
}

// TestGetContents_Directory_ReturnsDirMetadata はディレクトリ応答（JSON配列）の扱いを検証する。
func TestGetContents_Directory_ReturnsDirMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"run_001","type":"dir"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	contents, err := client.GetContents(context.Background(), testFileRef("vaultsync/conn-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contents.Type != "dir" {
		t.Errorf("type = %q, want dir", contents.Type)
	}
	if contents.SHA != "" {
		t.Errorf("sha = %q, want empty", contents.SHA)
	}
}

// TestGetContents_NotFound_ReturnsErrNotFound は404がErrNotFoundに変換されることを検証する。
func TestGetContents_NotFound_ReturnsErrNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetContents(context.Background(), testFileRef("vaultsync/missing.md"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// TestGetContents_RemoteError_ExtractsMessage は非2xx応答のメッセージ抽出順を検証する。
func TestGetContents_RemoteError_ExtractsMessage(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "JSONのmessageフィールドが最優先",
			status:      http.StatusUnauthorized,
			body:        `{"message":"Bad credentials"}`,
			wantMessage: "Bad credentials",
		},
		{
			name:        "JSONでなければボディ本文",
			status:      http.StatusBadGateway,
			body:        "upstream unavailable",
			wantMessage: "upstream unavailable",
		},
		{
			name:        "ボディが空ならステータステキスト",
			status:      http.StatusInternalServerError,
			body:        "",
			wantMessage: "500 Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			_, err := client.GetContents(context.Background(), testFileRef("vaultsync/x.md"))

			var remoteErr *RemoteError
			if !errors.As(err, &remoteErr) {
				t.Fatalf("error = %v, want *RemoteError", err)
			}
			if remoteErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", remoteErr.StatusCode, tt.status)
			}
			if remoteErr.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", remoteErr.Message, tt.wantMessage)
			}
		})
	}
}

// TestPathExists_TranslatesNotFound はErrNotFoundがfalseに変換されることを検証する。
func TestPathExists_TranslatesNotFound(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status == http.StatusOK {
			w.Write([]byte(`{"sha":"abc","path":"p","type":"file"}`))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	exists, err := client.PathExists(context.Background(), testFileRef("vaultsync/x.md"))
	if err != nil || !exists {
		t.Errorf("exists = %v, err = %v, want true, nil", exists, err)
	}

	status = http.StatusNotFound
	exists, err = client.PathExists(context.Background(), testFileRef("vaultsync/x.md"))
	if err != nil || exists {
		t.Errorf("exists = %v, err = %v, want false, nil", exists, err)
	}
}

// TestFileSHA_MissingFile_ReturnsEmpty は非存在ファイルが空shaとして扱われることを検証する。
func TestFileSHA_MissingFile_ReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	sha, err := client.FileSHA(context.Background(), testFileRef("vaultsync/missing.md"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sha != "" {
		t.Errorf("sha = %q, want empty", sha)
	}
}

// TestUpsertFile_NewFile_OmitsSHA は新規ファイルのPUTボディにshaが含まれないことを検証する。
func TestUpsertFile_NewFile_OmitsSHA(t *testing.T) {
	var putBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			json.NewDecoder(r.Body).Decode(&putBody)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.UpsertFile(context.Background(), testFileRef("vaultsync/new.md"), "aGVsbG8=", "VaultSync sync: new.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if putBody["message"] != "VaultSync sync: new.md" {
		t.Errorf("message = %v", putBody["message"])
	}
	if putBody["content"] != "aGVsbG8=" {
		t.Errorf("content = %v", putBody["content"])
	}
	if putBody["branch"] != "main" {
		t.Errorf("branch = %v", putBody["branch"])
	}
	if _, ok := putBody["sha"]; ok {
		t.Errorf("sha should be omitted for new file, got %v", putBody["sha"])
	}
}

// TestUpsertFile_ExistingFile_IncludesSHA は既存ファイルの更新PUTにshaが含まれることを検証する。
func TestUpsertFile_ExistingFile_IncludesSHA(t *testing.T) {
	var putBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"sha":"oldsha42","path":"vaultsync/doc.md","type":"file"}`))
		case http.MethodPut:
			json.NewDecoder(r.Body).Decode(&putBody)
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.UpsertFile(context.Background(), testFileRef("vaultsync/doc.md"), "Y29udGVudA==", "VaultSync sync: doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if putBody["sha"] != "oldsha42" {
		t.Errorf("sha = %v, want oldsha42", putBody["sha"])
	}
}

// TestUpsertFile_ConflictSurfacesAsRemoteError は書き込み競合がRemoteErrorとして返ることを検証する。
func TestUpsertFile_ConflictSurfacesAsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"is at oldsha42 but expected newsha"}`))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.UpsertFile(context.Background(), testFileRef("vaultsync/doc.md"), "Y29udGVudA==", "msg")

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("error = %v, want *RemoteError", err)
	}
	if remoteErr.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", remoteErr.StatusCode)
	}
}

// TestContentsURL_EscapesSegments はパスセグメント単位のエスケープを検証する。
func TestContentsURL_EscapesSegments(t *testing.T) {
	client := newTestClient("https://ghe.example.com")

	got := client.contentsURL("octocat", "vault-export", "vaultsync/file with space.md")
	want := "https://ghe.example.com/repos/octocat/vault-export/contents/vaultsync/file%20with%20space.md"
	if got != want {
		t.Errorf("url = %q, want %q", got, want)
	}
}
