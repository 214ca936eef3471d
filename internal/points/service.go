package points

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/pagination"
)

// Service exposes ledger writes and the derived balance. The ledger is
// append-only: entries are never updated or deleted, and the balance is
// always the sum over a user's rows.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.PointTransaction, error)
	RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.PointTransaction, error)
	BalanceOf(ctx context.Context, userID uuid.UUID) (int64, error)
	BalanceOfTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, string, error)
	LastAwardTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.PointTransactionKind, referenceID uuid.UUID) (*models.PointTransaction, error)
}

type service struct {
	repo Repository
}

// RecordInput captures the immutable data a ledger entry requires.
type RecordInput struct {
	UserID      uuid.UUID
	Kind        enums.PointTransactionKind
	Points      int
	Description *string
	ReferenceID *uuid.UUID
}

// NewService wires a points service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("points repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.PointTransaction, error) {
	return s.record(ctx, s.repo, input)
}

// RecordTx appends an entry inside a caller-managed transaction so domain
// workflows can keep the award and its side effects atomic.
func (s *service) RecordTx(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.PointTransaction, error) {
	return s.record(ctx, s.repo.WithTx(tx), input)
}

func (s *service) record(ctx context.Context, repo Repository, input RecordInput) (*models.PointTransaction, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction kind %q", input.Kind))
	}
	if input.Points == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "points must be non-zero")
	}

	entry := &models.PointTransaction{
		UserID:      input.UserID,
		Kind:        input.Kind,
		Points:      input.Points,
		Description: input.Description,
		ReferenceID: input.ReferenceID,
	}

	if err := repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// LastAwardTx returns the most recent positive entry of the given kind for
// (user, reference), or gorm.ErrRecordNotFound when none exists.
func (s *service) LastAwardTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.PointTransactionKind, referenceID uuid.UUID) (*models.PointTransaction, error) {
	if userID == uuid.Nil || referenceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and reference id required")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction kind %q", kind))
	}
	return s.repo.WithTx(tx).LastPositiveByKindAndReference(ctx, userID, string(kind), referenceID)
}

func (s *service) BalanceOf(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.SumByUser(ctx, userID)
}

// BalanceOfTx reads the derived balance inside a caller-managed transaction
// so spend workflows can check funds and append atomically.
func (s *service) BalanceOfTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.WithTx(tx).SumByUser(ctx, userID)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.PointTransaction, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	entries, err := s.repo.ListByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}
