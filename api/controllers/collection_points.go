package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/reciclaja/reciclaja-backend/api/responses"
	"github.com/reciclaja/reciclaja-backend/api/validators"
	"github.com/reciclaja/reciclaja-backend/internal/collectionpoints"
	"github.com/reciclaja/reciclaja-backend/internal/companies"
	"github.com/reciclaja/reciclaja-backend/internal/dailycodes"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
)

type collectionPointAddressRequest struct {
	Street     string  `json:"street" validate:"required"`
	Number     string  `json:"number" validate:"required"`
	Complement *string `json:"complement"`
	District   string  `json:"district" validate:"required"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required,len=2"`
	ZipCode    string  `json:"zipCode" validate:"required"`
}

type createCollectionPointRequest struct {
	Name         string                        `json:"name" validate:"required"`
	OpeningHours *string                       `json:"openingHours"`
	Address      collectionPointAddressRequest `json:"address" validate:"required"`
	WasteTypeIDs []string                      `json:"wasteTypeIds" validate:"dive,uuid"`
}

type updateCollectionPointRequest struct {
	Name         *string  `json:"name"`
	OpeningHours *string  `json:"openingHours"`
	IsActive     *bool    `json:"isActive"`
	WasteTypeIDs []string `json:"wasteTypeIds" validate:"dive,uuid"`
}

func parseWasteTypeIDs(raw []string) ([]uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := validators.ParseUUIDString(value, "wasteTypeIds")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CollectionPointCreate registers a drop-off point under a company,
// creating its address in the same transaction.
func CollectionPointCreate(svc collectionpoints.Service, companySvc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company, err := requireCompanyOwnerOrAdmin(r, companySvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createCollectionPointRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		wasteTypeIDs, err := parseWasteTypeIDs(body.WasteTypeIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		point, err := svc.Create(r.Context(), company.ID, collectionpoints.CreateInput{
			Name:         body.Name,
			OpeningHours: body.OpeningHours,
			Address: collectionpoints.AddressInput{
				Street:     body.Address.Street,
				Number:     body.Address.Number,
				Complement: body.Address.Complement,
				District:   body.Address.District,
				City:       body.Address.City,
				State:      body.Address.State,
				ZipCode:    body.Address.ZipCode,
			},
			WasteTypeIDs: wasteTypeIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "ponto de coleta cadastrado", newCollectionPointView(point))
	}
}

// CollectionPointListByCompany lists a company's drop-off points.
func CollectionPointListByCompany(svc collectionpoints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := validators.ParseUUIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByCompany(r.Context(), companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "pontos de coleta", newCollectionPointViews(list))
	}
}

// CollectionPointGet returns a single drop-off point.
func CollectionPointGet(svc collectionpoints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pointID, err := validators.ParseUUIDParam(r, "pointId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		point, err := svc.Get(r.Context(), pointID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "ponto de coleta", newCollectionPointView(point))
	}
}

// CollectionPointUpdate edits a drop-off point. The owning company or an
// admin may call it.
func CollectionPointUpdate(svc collectionpoints.Service, companySvc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pointID, err := validators.ParseUUIDParam(r, "pointId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requirePointOwnerOrAdmin(r, svc, companySvc, pointID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCollectionPointRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		wasteTypeIDs, err := parseWasteTypeIDs(body.WasteTypeIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		point, err := svc.Update(r.Context(), pointID, collectionpoints.UpdateInput{
			Name:         body.Name,
			OpeningHours: body.OpeningHours,
			IsActive:     body.IsActive,
			WasteTypeIDs: wasteTypeIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "ponto de coleta atualizado", newCollectionPointView(point))
	}
}

// CollectionPointDelete removes a drop-off point.
func CollectionPointDelete(svc collectionpoints.Service, companySvc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pointID, err := validators.ParseUUIDParam(r, "pointId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requirePointOwnerOrAdmin(r, svc, companySvc, pointID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), pointID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "ponto de coleta removido", nil)
	}
}

// CollectionPointWasteTypes lists the waste types a point accepts.
func CollectionPointWasteTypes(svc collectionpoints.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pointID, err := validators.ParseUUIDParam(r, "pointId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		types, err := svc.WasteTypes(r.Context(), pointID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "tipos de resíduo aceitos", newWasteTypeViews(types))
	}
}

// CollectionPointDailyCode returns today's code for the point, issuing it
// lazily when the scheduled job has not run yet.
func CollectionPointDailyCode(svc dailycodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pointID, err := validators.ParseUUIDParam(r, "pointId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		code, err := svc.EnsureTodayCode(r.Context(), pointID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "código do dia", newDailyCodeView(code))
	}
}

// requirePointOwnerOrAdmin resolves the point's company and checks the
// actor against its owner.
func requirePointOwnerOrAdmin(r *http.Request, svc collectionpoints.Service, companySvc companies.Service, pointID uuid.UUID) error {
	if isAdmin(r) {
		return nil
	}
	point, err := svc.Get(r.Context(), pointID)
	if err != nil {
		return err
	}
	actor, err := actorID(r)
	if err != nil {
		return err
	}
	company, err := companySvc.Get(r.Context(), point.CompanyID)
	if err != nil {
		return err
	}
	if company.UserID != actor {
		return errAccessDenied()
	}
	return nil
}
