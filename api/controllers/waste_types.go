package controllers

import (
	"net/http"

	"github.com/reciclaja/reciclaja-backend/api/responses"
	"github.com/reciclaja/reciclaja-backend/api/validators"
	"github.com/reciclaja/reciclaja-backend/internal/wastetypes"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
)

type createWasteTypeRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

type updateWasteTypeRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// WasteTypeCreate registers a waste category. Admin-only.
func WasteTypeCreate(svc wastetypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createWasteTypeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wasteType, err := svc.Create(r.Context(), wastetypes.CreateInput{
			Name:        body.Name,
			Description: body.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "tipo de resíduo cadastrado", newWasteTypeView(wasteType))
	}
}

// WasteTypeGet returns a single waste category.
func WasteTypeGet(svc wastetypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "wasteTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wasteType, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "tipo de resíduo", newWasteTypeView(wasteType))
	}
}

// WasteTypeList returns every waste category.
func WasteTypeList(svc wastetypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "tipos de resíduo", newWasteTypeViews(list))
	}
}

// WasteTypeUpdate edits a waste category. Admin-only.
func WasteTypeUpdate(svc wastetypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "wasteTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateWasteTypeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wasteType, err := svc.Update(r.Context(), id, wastetypes.UpdateInput{
			Name:        body.Name,
			Description: body.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "tipo de resíduo atualizado", newWasteTypeView(wasteType))
	}
}

// WasteTypeDelete removes a waste category. Admin-only.
func WasteTypeDelete(svc wastetypes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "wasteTypeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "tipo de resíduo removido", nil)
	}
}
