// Package document はドキュメント管理のドメインサービスを提供する。
package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/vaultsync/internal/model"
	"github.com/hitoshi/vaultsync/internal/repository"
)

// TitleSanitizer はタイトルの無害化インターフェース。
// security.FilenameSanitizerの部分集合として定義する。
type TitleSanitizer interface {
	Sanitize(title string) string
}

// Service はドキュメントのCRUD操作を提供する。
type Service struct {
	docs      repository.DocumentRepository
	sanitizer TitleSanitizer
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(docs repository.DocumentRepository, sanitizer TitleSanitizer, logger *slog.Logger) *Service {
	return &Service{
		docs:      docs,
		sanitizer: sanitizer,
		logger:    logger,
		now:       time.Now,
	}
}

// List はテナントのドキュメント一覧を返す（更新日時降順）。
func (s *Service) List(ctx context.Context, customerID string) ([]*model.Document, error) {
	docs, err := s.docs.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Get はID・テナントの組でドキュメントを1件取得する。
func (s *Service) Get(ctx context.Context, customerID, documentID string) (*model.Document, error) {
	doc, err := s.docs.FindByIDAndCustomerID(ctx, documentID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	if doc == nil {
		return nil, model.NewDocumentNotFoundError(documentID)
	}
	return doc, nil
}

// Create はドキュメントを作成する。
// タイトルは無害化され、コンテンツタイプは拡張子から判定される。
// コンテンツはテキストとしてそのまま保存する（置き換えによる更新のみ、部分更新なし）。
func (s *Service) Create(ctx context.Context, customerID, title string, content []byte) (*model.Document, error) {
	cleanTitle := s.sanitizer.Sanitize(title)
	if cleanTitle == "" {
		return nil, model.NewValidationError("タイトルが空です")
	}

	now := s.now()
	doc := &model.Document{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		Title:       cleanTitle,
		Content:     content,
		ContentType: DetectContentType(cleanTitle),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Info("document created",
		slog.String("document_id", doc.ID),
		slog.String("customer_id", customerID),
		slog.String("title", cleanTitle),
		slog.Int("size", doc.Size()),
	)

	return doc, nil
}
