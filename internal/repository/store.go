package repository

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store groups the repositories that share one connection. Inside
// WithinTransaction every repository is bound to the same transaction.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger

	Users     UserRepository
	Entries   TimeEntryRepository
	Orders    ServiceOrderRepository
	Documents DocumentRepository
}

func NewStore(db *gorm.DB, logger *logrus.Logger) (*Store, error) {
	users, err := NewGormUserRepository(db, logger)
	if err != nil {
		return nil, err
	}

	entries, err := NewGormTimeEntryRepository(db, logger)
	if err != nil {
		return nil, err
	}

	orders, err := NewGormServiceOrderRepository(db, logger)
	if err != nil {
		return nil, err
	}

	documents, err := NewGormDocumentRepository(db, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Store initialized")

	return &Store{
		db:        db,
		logger:    logger,
		Users:     users,
		Entries:   entries,
		Orders:    orders,
		Documents: documents,
	}, nil
}

// WithinTransaction runs fn in a transaction. Any error returned by fn rolls
// the whole unit back.
func (s *Store) WithinTransaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.bind(tx))
	})
}

func (s *Store) bind(tx *gorm.DB) *Store {
	return &Store{
		db:        tx,
		logger:    s.logger,
		Users:     &GormUserRepository{db: tx, logger: s.logger},
		Entries:   &GormTimeEntryRepository{db: tx, logger: s.logger},
		Orders:    &GormServiceOrderRepository{db: tx, logger: s.logger},
		Documents: &GormDocumentRepository{db: tx, logger: s.logger},
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}
