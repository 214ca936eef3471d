package controllers

import (
	"net/http"

	"github.com/reciclaja/reciclaja-backend/api/responses"
	"github.com/reciclaja/reciclaja-backend/api/validators"
	"github.com/reciclaja/reciclaja-backend/internal/addresses"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
)

type createAddressRequest struct {
	Street     string  `json:"street" validate:"required"`
	Number     string  `json:"number" validate:"required"`
	Complement *string `json:"complement"`
	District   string  `json:"district" validate:"required"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required,len=2"`
	ZipCode    string  `json:"zipCode" validate:"required"`
	Label      *string `json:"label"`
	IsPrimary  bool    `json:"isPrimary"`
}

type updateAddressRequest struct {
	Street     *string `json:"street"`
	Number     *string `json:"number"`
	Complement *string `json:"complement"`
	District   *string `json:"district"`
	City       *string `json:"city"`
	State      *string `json:"state" validate:"omitempty,len=2"`
	ZipCode    *string `json:"zipCode"`
}

// AddressCreate links a new address to the user.
func AddressCreate(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body createAddressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		address, err := svc.CreateForUser(r.Context(), userID, addresses.CreateInput{
			Street:     body.Street,
			Number:     body.Number,
			Complement: body.Complement,
			District:   body.District,
			City:       body.City,
			State:      body.State,
			ZipCode:    body.ZipCode,
			Label:      body.Label,
			IsPrimary:  body.IsPrimary,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "endereço cadastrado", newAddressView(address))
	}
}

// AddressList returns the user's linked addresses.
func AddressList(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "endereços", newAddressViews(list))
	}
}

// AddressUpdate edits an address through the user's link to it.
func AddressUpdate(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
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
		addressID, err := validators.ParseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAddressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		address, err := svc.UpdateForUser(r.Context(), userID, addressID, addresses.UpdateInput{
			Street:     body.Street,
			Number:     body.Number,
			Complement: body.Complement,
			District:   body.District,
			City:       body.City,
			State:      body.State,
			ZipCode:    body.ZipCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "endereço atualizado", newAddressView(address))
	}
}

// AddressDelete unlinks the address from the user.
func AddressDelete(svc addresses.Service, logg *logger.Logger) http.HandlerFunc {
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
		addressID, err := validators.ParseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveFromUser(r.Context(), userID, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "endereço removido", nil)
	}
}
