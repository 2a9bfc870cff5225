package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"team-portal/internal/models"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uint) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
}

type GormDocumentRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormDocumentRepository(db *gorm.DB, logger *logrus.Logger) (*GormDocumentRepository, error) {
	if err := db.AutoMigrate(&models.Document{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate documents table")
		return nil, err
	}

	return &GormDocumentRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	r.logger.WithFields(logrus.Fields{
		"title":      doc.Title,
		"creator_id": doc.CreatorID,
	}).Info("Creating document")

	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create document")
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

func (r *GormDocumentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	result := r.db.WithContext(ctx).First(&doc, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get document")
		return nil, result.Error
	}

	return &doc, nil
}

// List returns documents with the most recently edited first.
func (r *GormDocumentRepository) List(ctx context.Context) ([]*models.Document, error) {
	var docs []*models.Document
	result := r.db.WithContext(ctx).Order("updated_at DESC").Order("id DESC").Find(&docs)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to list documents")
		return nil, result.Error
	}

	return docs, nil
}

func (r *GormDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	r.logger.WithFields(logrus.Fields{
		"id":             doc.ID,
		"last_editor_id": doc.LastEditorID,
	}).Info("Updating document")

	result := r.db.WithContext(ctx).
		Model(doc).
		Select("title", "content", "last_editor_id").
		Updates(doc)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update document")
		return fmt.Errorf("update document: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return models.ErrDocumentNotFound
	}

	return nil
}
