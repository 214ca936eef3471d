package controllers

import (
	"net/http"

	"github.com/reciclaja/reciclaja-backend/api/responses"
	"github.com/reciclaja/reciclaja-backend/api/validators"
	"github.com/reciclaja/reciclaja-backend/internal/companies"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
)

type createCompanyRequest struct {
	UserID    string  `json:"userId" validate:"required,uuid"`
	LegalName string  `json:"legalName" validate:"required"`
	TradeName string  `json:"tradeName"`
	CNPJ      string  `json:"cnpj" validate:"required"`
	Phone     *string `json:"phone"`
}

type updateCompanyRequest struct {
	LegalName *string `json:"legalName"`
	TradeName *string `json:"tradeName"`
	Phone     *string `json:"phone"`
}

// requireCompanyOwnerOrAdmin loads the company and checks the actor owns it.
func requireCompanyOwnerOrAdmin(r *http.Request, svc companies.Service) (*models.Company, error) {
	companyID, err := validators.ParseUUIDParam(r, "companyId")
	if err != nil {
		return nil, err
	}
	company, err := svc.Get(r.Context(), companyID)
	if err != nil {
		return nil, err
	}
	if !isAdmin(r) {
		actor, err := actorID(r)
		if err != nil {
			return nil, err
		}
		if company.UserID != actor {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
		}
	}
	return company, nil
}

// CompanyCreate registers a company for an existing account. Most
// companies are created during registration; this path is admin-only.
func CompanyCreate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createCompanyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseUUIDString(body.UserID, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Create(r.Context(), companies.CreateInput{
			UserID:    userID,
			LegalName: body.LegalName,
			TradeName: body.TradeName,
			CNPJ:      body.CNPJ,
			Phone:     body.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "empresa cadastrada", newCompanyView(company))
	}
}

// CompanyGet returns a single company.
func CompanyGet(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := validators.ParseUUIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Get(r.Context(), companyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "empresa", newCompanyView(company))
	}
}

// CompanyList returns the registered companies.
func CompanyList(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "empresas", newCompanyViews(list))
	}
}

// CompanyUpdate edits a company. Only the owning account or an admin may
// call it.
func CompanyUpdate(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owned, err := requireCompanyOwnerOrAdmin(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCompanyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		company, err := svc.Update(r.Context(), owned.ID, companies.UpdateInput{
			LegalName: body.LegalName,
			TradeName: body.TradeName,
			Phone:     body.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "empresa atualizada", newCompanyView(company))
	}
}

// CompanyDelete removes a company. Admin-only.
func CompanyDelete(svc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, err := validators.ParseUUIDParam(r, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), companyID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "empresa removida", nil)
	}
}
