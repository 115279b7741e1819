package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/vaultsync/internal/model"
	"github.com/hitoshi/vaultsync/internal/repository"
)

// LoginResult はログイン成功時の応答内容を表す。
type LoginResult struct {
	Token      string
	Username   string
	CustomerID string
}

// Service はログイン処理を提供する。
type Service struct {
	users    repository.UserRepository
	verifier CredentialVerifier
	tokenCfg TokenConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, verifier CredentialVerifier, tokenCfg TokenConfig, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		verifier: verifier,
		tokenCfg: tokenCfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Login はユーザー名とシークレットを検証し、時限アクセストークンを発行する。
// 未知のユーザー名とシークレット不一致は同一のエラーを返す（ユーザー名列挙対策）。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil || !s.verifier.Verify(user.Password, password) {
		s.logger.Warn("login rejected", slog.String("username", username))
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := IssueToken(s.tokenCfg, user.ID, user.Username, user.Role, user.CustomerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("login succeeded",
		slog.String("username", user.Username),
		slog.String("customer_id", user.CustomerID),
	)

	return &LoginResult{
		Token:      token,
		Username:   user.Username,
		CustomerID: user.CustomerID,
	}, nil
}
