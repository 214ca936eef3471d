package controllers

import (
	"net/http"
	"time"

	"github.com/reciclaja/reciclaja-backend/api/responses"
	"github.com/reciclaja/reciclaja-backend/api/validators"
	"github.com/reciclaja/reciclaja-backend/internal/campaigns"
	"github.com/reciclaja/reciclaja-backend/internal/collectionpoints"
	"github.com/reciclaja/reciclaja-backend/internal/companies"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
)

const campaignDateLayout = "2006-01-02"

type createCampaignRequest struct {
	Title             string  `json:"title" validate:"required"`
	Description       *string `json:"description"`
	StartsOn          string  `json:"startsOn" validate:"required"`
	EndsOn            string  `json:"endsOn" validate:"required"`
	PointsPerAdhesion int     `json:"pointsPerAdhesion" validate:"gte=0"`
}

type attachCompanyRequest struct {
	CompanyID string `json:"companyId" validate:"required,uuid"`
}

type attachCollectionPointRequest struct {
	CollectionPointID string `json:"collectionPointId" validate:"required,uuid"`
}

type updateCampaignRequest struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	StartsOn          *string `json:"startsOn"`
	EndsOn            *string `json:"endsOn"`
	IsActive          *bool   `json:"isActive"`
	PointsPerAdhesion *int    `json:"pointsPerAdhesion" validate:"omitempty,gte=0"`
}

func parseCampaignDate(raw, field string) (time.Time, error) {
	parsed, err := time.Parse(campaignDateLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid date, expected YYYY-MM-DD").WithDetails(map[string]any{"field": field})
	}
	return parsed, nil
}

// CampaignCreate registers a campaign. Admin-only.
func CampaignCreate(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createCampaignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		startsOn, err := parseCampaignDate(body.StartsOn, "startsOn")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		endsOn, err := parseCampaignDate(body.EndsOn, "endsOn")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaign, err := svc.Create(r.Context(), campaigns.CreateInput{
			Title:             body.Title,
			Description:       body.Description,
			StartsOn:          startsOn,
			EndsOn:            endsOn,
			PointsPerAdhesion: body.PointsPerAdhesion,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "campanha cadastrada", newCampaignView(campaign))
	}
}

// CampaignGet returns a single campaign with its engagement counters.
func CampaignGet(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaign, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.Stats(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "campanha", campaignDetailView{
			campaignView:          newCampaignView(campaign),
			TotalSupporters:       stats.Supporters,
			TotalPartnerCompanies: stats.PartnerCompanies,
		})
	}
}

// CampaignList returns every campaign.
func CampaignList(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "campanhas", newCampaignViews(list))
	}
}

// CampaignUpdate edits a campaign. Admin-only.
func CampaignUpdate(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCampaignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := campaigns.UpdateInput{
			Title:             body.Title,
			Description:       body.Description,
			IsActive:          body.IsActive,
			PointsPerAdhesion: body.PointsPerAdhesion,
		}
		if body.StartsOn != nil {
			startsOn, err := parseCampaignDate(*body.StartsOn, "startsOn")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.StartsOn = &startsOn
		}
		if body.EndsOn != nil {
			endsOn, err := parseCampaignDate(*body.EndsOn, "endsOn")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.EndsOn = &endsOn
		}

		campaign, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "campanha atualizada", newCampaignView(campaign))
	}
}

// CampaignAttachCompany records a company as a campaign partner. The
// caller must own the company or be an admin.
func CampaignAttachCompany(svc campaigns.Service, companySvc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body attachCompanyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		companyID, err := validators.ParseUUIDString(body.CompanyID, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !isAdmin(r) {
			actor, err := actorID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			company, err := companySvc.Get(r.Context(), companyID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if company.UserID != actor {
				responses.WriteError(r.Context(), logg, w, errAccessDenied())
				return
			}
		}

		if err := svc.AttachCompany(r.Context(), campaignID, companyID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "empresa associada à campanha", nil)
	}
}

// CampaignAttachCollectionPoint links a drop-off point to a campaign. The
// caller must own the point's company or be an admin.
func CampaignAttachCollectionPoint(svc campaigns.Service, pointSvc collectionpoints.Service, companySvc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body attachCollectionPointRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pointID, err := validators.ParseUUIDString(body.CollectionPointID, "collectionPointId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := requirePointOwnerOrAdmin(r, pointSvc, companySvc, pointID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AttachCollectionPoint(r.Context(), campaignID, pointID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "ponto de coleta associado à campanha", nil)
	}
}

// CampaignPartnerCompanies lists the companies backing a campaign.
func CampaignPartnerCompanies(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListPartnerCompanies(r.Context(), campaignID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "empresas parceiras", newCompanyViews(list))
	}
}

// CampaignCollectionPoints lists the drop-off points linked to a campaign.
func CampaignCollectionPoints(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaignID, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCollectionPoints(r.Context(), campaignID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "pontos de coleta associados", newCollectionPointViews(list))
	}
}

// CampaignDelete removes a campaign. Admin-only.
func CampaignDelete(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "campanha removida", nil)
	}
}
