package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

// Service exposes the editorial article feed.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Article, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Article, error)
	List(ctx context.Context) ([]models.Article, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// CreateInput carries the fields accepted on article creation. Articles
// default to published unless the caller says otherwise.
type CreateInput struct {
	Title     string
	Content   string
	Published *bool
	AuthorID  *uuid.UUID
}

// UpdateInput carries the allow-listed mutable fields.
type UpdateInput struct {
	Title     *string
	Content   *string
	Published *bool
}

// NewService wires an article service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("article repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Article, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and content are required")
	}

	published := true
	if input.Published != nil {
		published = *input.Published
	}

	article := &models.Article{
		Title:     title,
		Content:   content,
		Published: published,
		AuthorID:  input.AuthorID,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return nil, err
	}
	return article, nil
}

func (s *service) List(ctx context.Context) ([]models.Article, error) {
	return s.repo.List(ctx)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Article, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "content cannot be empty")
		}
		updates["content"] = content
	}
	if input.Published != nil {
		updates["published"] = *input.Published
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
