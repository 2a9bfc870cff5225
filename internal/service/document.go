package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"team-portal/internal/models"
	"team-portal/internal/repository"
)

type DocumentService struct {
	repo   repository.DocumentRepository
	logger *logrus.Logger
}

func NewDocumentService(repo repository.DocumentRepository, logger *logrus.Logger) *DocumentService {
	return &DocumentService{repo: repo, logger: logger}
}

func (s *DocumentService) Create(ctx context.Context, actor models.Identity, title, content string) (*models.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.ErrTitleRequired
	}

	doc := &models.Document{
		Title:     title,
		Content:   content,
		CreatorID: actor.UserID,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *DocumentService) List(ctx context.Context) ([]*models.Document, error) {
	return s.repo.List(ctx)
}

func (s *DocumentService) Get(ctx context.Context, id uint) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, models.ErrDocumentNotFound
	}
	return doc, nil
}

// Update edits a document. Only its creator and management may do so; the
// editor is recorded on every change.
func (s *DocumentService) Update(ctx context.Context, actor models.Identity, id uint, title, content string) (*models.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.ErrTitleRequired
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.EditableBy(actor) {
		s.logger.WithFields(logrus.Fields{
			"id":       id,
			"actor_id": actor.UserID,
		}).Warn("Document edit denied")
		return nil, models.ErrForbidden
	}

	editor := actor.UserID
	doc.Title = title
	doc.Content = content
	doc.LastEditorID = &editor

	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}
