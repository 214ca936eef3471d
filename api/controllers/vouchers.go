package controllers

import (
	"net/http"
	"time"

	"github.com/reciclaja/reciclaja-backend/api/responses"
	"github.com/reciclaja/reciclaja-backend/api/validators"
	"github.com/reciclaja/reciclaja-backend/internal/vouchers"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
)

type createVoucherRequest struct {
	PartnerName    string  `json:"partnerName" validate:"required"`
	Title          string  `json:"title" validate:"required"`
	Description    *string `json:"description"`
	PointCost      int     `json:"pointCost" validate:"required,gt=0"`
	ExpiresOn      *string `json:"expiresOn"`
	RemainingStock *int    `json:"remainingStock" validate:"omitempty,gte=0"`
	ImageURL       *string `json:"imageUrl"`
}

type updateVoucherRequest struct {
	PartnerName    *string `json:"partnerName"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	PointCost      *int    `json:"pointCost" validate:"omitempty,gt=0"`
	ExpiresOn      *string `json:"expiresOn"`
	RemainingStock *int    `json:"remainingStock" validate:"omitempty,gte=0"`
	ImageURL       *string `json:"imageUrl"`
}

func parseVoucherExpiry(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid date, expected YYYY-MM-DD").WithDetails(map[string]any{"field": "expiresOn"})
	}
	return &parsed, nil
}

// VoucherCreate registers a partner voucher. Admin-only.
func VoucherCreate(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createVoucherRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expiresOn, err := parseVoucherExpiry(body.ExpiresOn)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := vouchers.CreateInput{
			PartnerName:    body.PartnerName,
			Title:          body.Title,
			Description:    body.Description,
			PointCost:      body.PointCost,
			ExpiresOn:      expiresOn,
			RemainingStock: body.RemainingStock,
			ImageURL:       body.ImageURL,
		}
		if creator, idErr := actorID(r); idErr == nil {
			input.CreatedBy = &creator
		}

		voucher, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "voucher cadastrado", newVoucherView(voucher))
	}
}

// VoucherGet returns a single voucher.
func VoucherGet(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "voucher", newVoucherView(voucher))
	}
}

// VoucherList returns the voucher catalog.
func VoucherList(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "vouchers", newVoucherViews(list))
	}
}

// VoucherUpdate edits a voucher. Admin-only.
func VoucherUpdate(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateVoucherRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expiresOn, err := parseVoucherExpiry(body.ExpiresOn)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voucher, err := svc.Update(r.Context(), id, vouchers.UpdateInput{
			PartnerName:    body.PartnerName,
			Title:          body.Title,
			Description:    body.Description,
			PointCost:      body.PointCost,
			ExpiresOn:      expiresOn,
			RemainingStock: body.RemainingStock,
			ImageURL:       body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "voucher atualizado", newVoucherView(voucher))
	}
}

// VoucherDelete removes a voucher from the catalog. Admin-only.
func VoucherDelete(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "voucher removido", nil)
	}
}
