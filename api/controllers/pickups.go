package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reciclaja/reciclaja-backend/api/responses"
	"github.com/reciclaja/reciclaja-backend/api/validators"
	"github.com/reciclaja/reciclaja-backend/internal/companies"
	"github.com/reciclaja/reciclaja-backend/internal/pickups"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
)

type pickupItemRequest struct {
	WasteTypeID string          `json:"wasteTypeId" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	Unit        *string         `json:"unit"`
}

type createPickupRequest struct {
	CompanyID         string              `json:"companyId" validate:"required,uuid"`
	AddressID         string              `json:"addressId" validate:"required,uuid"`
	ScheduledFor      *time.Time          `json:"scheduledFor"`
	EstimatedVolumeM3 *decimal.Decimal    `json:"estimatedVolumeM3"`
	EstimatedWeightKg *decimal.Decimal    `json:"estimatedWeightKg"`
	UserNotes         *string             `json:"userNotes"`
	Items             []pickupItemRequest `json:"items" validate:"required,min=1,dive"`
}

type updatePickupRequest struct {
	ScheduledFor      *time.Time       `json:"scheduledFor"`
	EstimatedVolumeM3 *decimal.Decimal `json:"estimatedVolumeM3"`
	EstimatedWeightKg *decimal.Decimal `json:"estimatedWeightKg"`
	UserNotes         *string          `json:"userNotes"`
}

type pickupStatusRequest struct {
	Status          string  `json:"status" validate:"required,oneof=REQUESTED CONFIRMED REJECTED CANCELLED COMPLETED"`
	RejectionReason *string `json:"rejectionReason"`
}

// PickupCreate schedules a pickup for the authenticated user.
func PickupCreate(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createPickupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		companyID, err := validators.ParseUUIDString(body.CompanyID, "companyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := validators.ParseUUIDString(body.AddressID, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]pickups.ItemInput, 0, len(body.Items))
		for _, item := range body.Items {
			wasteTypeID, err := validators.ParseUUIDString(item.WasteTypeID, "wasteTypeId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			items = append(items, pickups.ItemInput{
				WasteTypeID: wasteTypeID,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
			})
		}

		pickup, err := svc.Create(r.Context(), pickups.CreateInput{
			UserID:            actor,
			CompanyID:         companyID,
			AddressID:         addressID,
			ScheduledFor:      body.ScheduledFor,
			EstimatedVolumeM3: body.EstimatedVolumeM3,
			EstimatedWeightKg: body.EstimatedWeightKg,
			UserNotes:         body.UserNotes,
			Items:             items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "agendamento criado", newPickupView(pickup))
	}
}

// PickupGet returns a pickup. Only the requesting user, the target
// company's owner, or an admin may read it.
func PickupGet(svc pickups.Service, companySvc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickupID, err := validators.ParseUUIDParam(r, "pickupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickup, err := svc.Get(r.Context(), pickupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requirePickupParty(r, companySvc, pickup); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "agendamento", newPickupView(pickup))
	}
}

// PickupListByUser lists a user's pickups.
func PickupListByUser(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireSelfOrAdmin(r, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "agendamentos", newPickupViews(list))
	}
}

// PickupListByCompany lists the pickups directed at a company.
func PickupListByCompany(svc pickups.Service, companySvc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company, err := requireCompanyOwnerOrAdmin(r, companySvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByCompany(r.Context(), company.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "agendamentos", newPickupViews(list))
	}
}

// PickupUpdate edits a pickup while it is still awaiting confirmation.
// Only the requesting user may edit it.
func PickupUpdate(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickupID, err := validators.ParseUUIDParam(r, "pickupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickup, err := svc.Get(r.Context(), pickupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireSelfOrAdmin(r, pickup.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePickupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), pickupID, pickups.UpdateInput{
			ScheduledFor:      body.ScheduledFor,
			EstimatedVolumeM3: body.EstimatedVolumeM3,
			EstimatedWeightKg: body.EstimatedWeightKg,
			UserNotes:         body.UserNotes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "agendamento atualizado", newPickupView(updated))
	}
}

// PickupUpdateStatus moves a pickup through its lifecycle. Only the
// target company's owner or an admin may call it.
func PickupUpdateStatus(svc pickups.Service, companySvc companies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickupID, err := validators.ParseUUIDParam(r, "pickupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickup, err := svc.Get(r.Context(), pickupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requirePickupCompany(r, companySvc, pickup); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body pickupStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateStatus(r.Context(), pickupID, pickups.StatusInput{
			Status:          enums.PickupStatus(body.Status),
			RejectionReason: body.RejectionReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "status do agendamento atualizado", newPickupView(updated))
	}
}

// PickupCancel lets the requesting user cancel their own pickup.
func PickupCancel(svc pickups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickupID, err := validators.ParseUUIDParam(r, "pickupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Cancel(r.Context(), pickupID, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "agendamento cancelado", nil)
	}
}

// requirePickupParty admits the requesting user, the company owner, or an
// admin.
func requirePickupParty(r *http.Request, companySvc companies.Service, pickup *models.PickupSchedule) error {
	if isAdmin(r) {
		return nil
	}
	actor, err := actorID(r)
	if err != nil {
		return err
	}
	if pickup.UserID == actor {
		return nil
	}
	company, err := companySvc.Get(r.Context(), pickup.CompanyID)
	if err != nil {
		return err
	}
	if company.UserID == actor {
		return nil
	}
	return errAccessDenied()
}

// requirePickupCompany admits only the target company's owner or an admin.
func requirePickupCompany(r *http.Request, companySvc companies.Service, pickup *models.PickupSchedule) error {
	if isAdmin(r) {
		return nil
	}
	actor, err := actorID(r)
	if err != nil {
		return err
	}
	company, err := companySvc.Get(r.Context(), pickup.CompanyID)
	if err != nil {
		return err
	}
	if company.UserID != actor {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned company can change the pickup status")
	}
	return nil
}
