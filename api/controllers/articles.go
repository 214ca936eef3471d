package controllers

import (
	"net/http"

	"github.com/reciclaja/reciclaja-backend/api/responses"
	"github.com/reciclaja/reciclaja-backend/api/validators"
	"github.com/reciclaja/reciclaja-backend/internal/articles"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
)

type createArticleRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Published *bool  `json:"published"`
}

type updateArticleRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

// ArticleCreate publishes an article authored by the caller. Admin-only.
func ArticleCreate(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createArticleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		author, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		article, err := svc.Create(r.Context(), articles.CreateInput{
			Title:     body.Title,
			Content:   body.Content,
			Published: body.Published,
			AuthorID:  &author,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "artigo cadastrado", newArticleView(article))
	}
}

// ArticleGet returns a single article.
func ArticleGet(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "articleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		article, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "artigo", newArticleView(article))
	}
}

// ArticleList returns the feed, newest first.
func ArticleList(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "artigos", newArticleViews(list))
	}
}

// ArticleUpdate edits an article. Admin-only.
func ArticleUpdate(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "articleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateArticleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		article, err := svc.Update(r.Context(), id, articles.UpdateInput{
			Title:     body.Title,
			Content:   body.Content,
			Published: body.Published,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "artigo atualizado", newArticleView(article))
	}
}

// ArticleDelete removes an article. Admin-only.
func ArticleDelete(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "articleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "artigo removido", nil)
	}
}
