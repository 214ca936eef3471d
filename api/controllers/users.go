package controllers

import (
	"net/http"
	"strconv"

	"github.com/reciclaja/reciclaja-backend/api/responses"
	"github.com/reciclaja/reciclaja-backend/api/validators"
	"github.com/reciclaja/reciclaja-backend/internal/campaigns"
	"github.com/reciclaja/reciclaja-backend/internal/dailycodes"
	"github.com/reciclaja/reciclaja-backend/internal/points"
	"github.com/reciclaja/reciclaja-backend/internal/users"
	"github.com/reciclaja/reciclaja-backend/internal/vouchers"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
	"github.com/reciclaja/reciclaja-backend/pkg/pagination"
)

type registerCompanyRequest struct {
	LegalName string `json:"legalName" validate:"required"`
	TradeName string `json:"tradeName"`
	CNPJ      string `json:"cnpj" validate:"required"`
}

type registerUserRequest struct {
	Name     string                  `json:"name" validate:"required"`
	Email    string                  `json:"email" validate:"required,email"`
	Password string                  `json:"password" validate:"required,min=8"`
	Phone    *string                 `json:"phone"`
	Role     string                  `json:"role" validate:"required,oneof=INDIVIDUAL COMPANY"`
	CPF      *string                 `json:"cpf"`
	Company  *registerCompanyRequest `json:"company"`
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	CPF   *string `json:"cpf"`
}

type redeemVoucherRequest struct {
	VoucherID string `json:"voucherId" validate:"required,uuid"`
}

type redeemDailyCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type joinCampaignRequest struct {
	CampaignID string `json:"campaignId" validate:"required,uuid"`
}

// UserRegister creates an account. Company details ride along when the
// role is COMPANY.
func UserRegister(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := users.RegisterInput{
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
			Phone:    body.Phone,
			Role:     enums.UserRole(body.Role),
			CPF:      body.CPF,
		}
		if body.Company != nil {
			input.Company = &users.CompanyInput{
				LegalName: body.Company.LegalName,
				TradeName: body.Company.TradeName,
				CNPJ:      body.Company.CNPJ,
			}
		}

		user, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "usuário cadastrado", newUserView(user))
	}
}

// UserProfile returns the user together with the derived points balance.
func UserProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
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

		profile, err := svc.Profile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "perfil do usuário", profileView{
			userView: newUserView(profile.User),
			Balance:  profile.Balance,
		})
	}
}

// UserList is admin-only and returns every account.
func UserList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "usuários", newUserViews(list))
	}
}

// UserUpdate applies the allow-listed profile mutations.
func UserUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body updateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), userID, users.UpdateInput{
			Name:  body.Name,
			Phone: body.Phone,
			CPF:   body.CPF,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "usuário atualizado", newUserView(user))
	}
}

// UserDeactivate flips the account off without deleting rows, keeping the
// ledger and redemption history readable.
func UserDeactivate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Deactivate(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "usuário desativado", nil)
	}
}

// UserBalance returns the derived points balance.
func UserBalance(svc points.Service, logg *logger.Logger) http.HandlerFunc {
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

		balance, err := svc.BalanceOf(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "saldo de pontos", map[string]int64{"balance": balance})
	}
}

// UserTransactions pages through the user's ledger, newest first.
func UserTransactions(svc points.Service, logg *logger.Logger) http.HandlerFunc {
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

		params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, convErr := strconv.Atoi(raw)
			if convErr == nil {
				params.Limit = limit
			}
		}

		entries, next, err := svc.ListByUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "transações de pontos", map[string]any{
			"transactions": newTransactionViews(entries),
			"nextCursor":   next,
		})
	}
}

// UserRedeemVoucher spends points on a voucher and returns the generated
// redemption code.
func UserRedeemVoucher(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body redeemVoucherRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		voucherID, err := validators.ParseUUIDString(body.VoucherID, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Redeem(r.Context(), userID, voucherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "voucher resgatado", map[string]any{
			"code":             result.Code,
			"remainingBalance": result.RemainingBalance,
			"redemption":       newRedemptionView(result.Redemption),
		})
	}
}

// UserRedeemDailyCode exchanges a collection point's daily code for points.
func UserRedeemDailyCode(svc dailycodes.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body redeemDailyCodeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Redeem(r.Context(), userID, body.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "código resgatado", map[string]any{
			"pointsAwarded": result.PointsAwarded,
		})
	}
}

// UserJoinCampaign enrolls the user and awards the campaign's adhesion points.
func UserJoinCampaign(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body joinCampaignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		campaignID, err := validators.ParseUUIDString(body.CampaignID, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Join(r.Context(), userID, campaignID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, "campanha apoiada", nil)
	}
}

// UserLeaveCampaign removes the membership and appends the offsetting
// ledger entry.
func UserLeaveCampaign(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
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
		campaignID, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Leave(r.Context(), userID, campaignID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "campanha deixada", nil)
	}
}

// UserVouchersRedeemed lists the user's voucher redemption history.
func UserVouchersRedeemed(svc vouchers.Service, logg *logger.Logger) http.HandlerFunc {
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

		redemptions, err := svc.ListRedemptionsByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "vouchers resgatados", newRedemptionViews(redemptions))
	}
}

// UserCampaignsSupported lists the campaigns the user currently supports.
func UserCampaignsSupported(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
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

		responses.WriteSuccess(w, "campanhas apoiadas", newCampaignViews(list))
	}
}
