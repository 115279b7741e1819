package github

import (
	"context"
	"errors"
	"fmt"
)

// maxRunSequence はランフォルダの連番上限。
const maxRunSequence = 999

// ErrRunFolderExhausted は全ランフォルダ枠（run_001..run_999）が使用済みであることを示す。
var ErrRunFolderExhausted = errors.New("github: no available run folder")

// PathChecker はランフォルダの存在判定に必要な最小インターフェース。
type PathChecker interface {
	PathExists(ctx context.Context, ref FileRef) (bool, error)
}

// RunFolderRequest はランフォルダ割り当ての対象を特定する。
type RunFolderRequest struct {
	Owner       string
	Repo        string
	BasePath    string
	ConnectorID string
	Branch      string
	Token       string
}

// NextRunFolder は未使用の連番ランフォルダパスを割り当てる。
// {basePath}/{connectorID}/run_NNN を1から昇順に存在確認し、
// 最初に空いている枠を返す。ローカルに前回実行の記録を持たない代わりに、
// 最悪999回のリモート存在確認を行う。
// 999枠すべてが使用済みの場合はErrRunFolderExhaustedを返す。
func NextRunFolder(ctx context.Context, checker PathChecker, req RunFolderRequest) (string, error) {
	for i := 1; i <= maxRunSequence; i++ {
		folderPath := JoinPath(req.BasePath, req.ConnectorID, fmt.Sprintf("run_%03d", i))

		exists, err := checker.PathExists(ctx, FileRef{
			Owner:  req.Owner,
			Repo:   req.Repo,
			Path:   folderPath,
			Branch: req.Branch,
			Token:  req.Token,
		})
		if err != nil {
			return "", err
		}
		if !exists {
			return folderPath, nil
		}
	}
	return "", ErrRunFolderExhausted
}
