package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reciclaja/reciclaja-backend/api/controllers"
	"github.com/reciclaja/reciclaja-backend/api/middleware"
	"github.com/reciclaja/reciclaja-backend/internal/addresses"
	"github.com/reciclaja/reciclaja-backend/internal/articles"
	"github.com/reciclaja/reciclaja-backend/internal/auth"
	"github.com/reciclaja/reciclaja-backend/internal/campaigns"
	"github.com/reciclaja/reciclaja-backend/internal/collectionpoints"
	"github.com/reciclaja/reciclaja-backend/internal/companies"
	"github.com/reciclaja/reciclaja-backend/internal/dailycodes"
	"github.com/reciclaja/reciclaja-backend/internal/pickups"
	"github.com/reciclaja/reciclaja-backend/internal/points"
	"github.com/reciclaja/reciclaja-backend/internal/users"
	"github.com/reciclaja/reciclaja-backend/internal/vouchers"
	"github.com/reciclaja/reciclaja-backend/internal/wastetypes"
	"github.com/reciclaja/reciclaja-backend/pkg/auth/session"
	"github.com/reciclaja/reciclaja-backend/pkg/config"
	"github.com/reciclaja/reciclaja-backend/pkg/db"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
	"github.com/reciclaja/reciclaja-backend/pkg/redis"
)

// Services groups everything the router wires into handlers.
type Services struct {
	Auth             auth.Service
	Users            users.Service
	Points           points.Service
	Companies        companies.Service
	CollectionPoints collectionpoints.Service
	WasteTypes       wastetypes.Service
	Campaigns        campaigns.Service
	Vouchers         vouchers.Service
	DailyCodes       dailycodes.Service
	Addresses        addresses.Service
	Pickups          pickups.Service
	Articles         articles.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/recuperar-senha", controllers.AuthRecoverPassword(svcs.Auth, logg))
		r.Post("/redefinir-senha", controllers.AuthResetPassword(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	// Registration is the only unauthenticated resource route.
	r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
		Post("/api/v1/usuarios", controllers.UserRegister(svcs.Users, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/usuarios", func(r chi.Router) {
			r.With(middleware.RequireAdmin(logg)).Get("/", controllers.UserList(svcs.Users, logg))

			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", controllers.UserProfile(svcs.Users, logg))
				r.Put("/", controllers.UserUpdate(svcs.Users, logg))
				r.Delete("/", controllers.UserDeactivate(svcs.Users, logg))

				r.Get("/saldo", controllers.UserBalance(svcs.Points, logg))
				r.Get("/transacoes-pontos", controllers.UserTransactions(svcs.Points, logg))

				r.Post("/resgatar-voucher", controllers.UserRedeemVoucher(svcs.Vouchers, logg))
				r.Post("/resgatar-codigo", controllers.UserRedeemDailyCode(svcs.DailyCodes, logg))
				r.Get("/vouchers-resgatados", controllers.UserVouchersRedeemed(svcs.Vouchers, logg))

				r.Post("/apoiar-campanha", controllers.UserJoinCampaign(svcs.Campaigns, logg))
				r.Delete("/deixar-campanha/{campaignId}", controllers.UserLeaveCampaign(svcs.Campaigns, logg))
				r.Get("/campanhas-apoiadas", controllers.UserCampaignsSupported(svcs.Campaigns, logg))

				r.Route("/enderecos", func(r chi.Router) {
					r.Post("/", controllers.AddressCreate(svcs.Addresses, logg))
					r.Get("/", controllers.AddressList(svcs.Addresses, logg))
					r.Put("/{addressId}", controllers.AddressUpdate(svcs.Addresses, logg))
					r.Delete("/{addressId}", controllers.AddressDelete(svcs.Addresses, logg))
				})

				r.Get("/agendamentos", controllers.PickupListByUser(svcs.Pickups, logg))
			})
		})

		r.Route("/empresas", func(r chi.Router) {
			r.Get("/", controllers.CompanyList(svcs.Companies, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/", controllers.CompanyCreate(svcs.Companies, logg))

			r.Route("/{companyId}", func(r chi.Router) {
				r.Get("/", controllers.CompanyGet(svcs.Companies, logg))
				r.Put("/", controllers.CompanyUpdate(svcs.Companies, logg))
				r.With(middleware.RequireAdmin(logg)).Delete("/", controllers.CompanyDelete(svcs.Companies, logg))

				r.Route("/pontos-coleta", func(r chi.Router) {
					r.Post("/", controllers.CollectionPointCreate(svcs.CollectionPoints, svcs.Companies, logg))
					r.Get("/", controllers.CollectionPointListByCompany(svcs.CollectionPoints, logg))
				})

				r.Get("/agendamentos", controllers.PickupListByCompany(svcs.Pickups, svcs.Companies, logg))
			})
		})

		r.Route("/pontos-coleta/{pointId}", func(r chi.Router) {
			r.Get("/", controllers.CollectionPointGet(svcs.CollectionPoints, logg))
			r.Put("/", controllers.CollectionPointUpdate(svcs.CollectionPoints, svcs.Companies, logg))
			r.Delete("/", controllers.CollectionPointDelete(svcs.CollectionPoints, svcs.Companies, logg))
			r.Get("/tipos-residuo", controllers.CollectionPointWasteTypes(svcs.CollectionPoints, logg))
			r.Get("/codigo-diario", controllers.CollectionPointDailyCode(svcs.DailyCodes, logg))
		})

		r.Route("/tipos-residuo", func(r chi.Router) {
			r.Get("/", controllers.WasteTypeList(svcs.WasteTypes, logg))
			r.Get("/{wasteTypeId}", controllers.WasteTypeGet(svcs.WasteTypes, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.WasteTypeCreate(svcs.WasteTypes, logg))
				r.Put("/{wasteTypeId}", controllers.WasteTypeUpdate(svcs.WasteTypes, logg))
				r.Delete("/{wasteTypeId}", controllers.WasteTypeDelete(svcs.WasteTypes, logg))
			})
		})

		r.Route("/campanhas", func(r chi.Router) {
			r.Get("/", controllers.CampaignList(svcs.Campaigns, logg))
			r.Route("/{campaignId}", func(r chi.Router) {
				r.Get("/", controllers.CampaignGet(svcs.Campaigns, logg))
				r.Get("/empresas-parceiras", controllers.CampaignPartnerCompanies(svcs.Campaigns, logg))
				r.Get("/pontos-coleta", controllers.CampaignCollectionPoints(svcs.Campaigns, logg))
				r.Post("/associar-empresa", controllers.CampaignAttachCompany(svcs.Campaigns, svcs.Companies, logg))
				r.Post("/associar-ponto-coleta", controllers.CampaignAttachCollectionPoint(svcs.Campaigns, svcs.CollectionPoints, svcs.Companies, logg))
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.CampaignCreate(svcs.Campaigns, logg))
				r.Put("/{campaignId}", controllers.CampaignUpdate(svcs.Campaigns, logg))
				r.Delete("/{campaignId}", controllers.CampaignDelete(svcs.Campaigns, logg))
			})
		})

		r.Route("/artigos", func(r chi.Router) {
			r.Get("/", controllers.ArticleList(svcs.Articles, logg))
			r.Get("/{articleId}", controllers.ArticleGet(svcs.Articles, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.ArticleCreate(svcs.Articles, logg))
				r.Put("/{articleId}", controllers.ArticleUpdate(svcs.Articles, logg))
				r.Delete("/{articleId}", controllers.ArticleDelete(svcs.Articles, logg))
			})
		})

		r.Route("/vouchers", func(r chi.Router) {
			r.Get("/", controllers.VoucherList(svcs.Vouchers, logg))
			r.Get("/{voucherId}", controllers.VoucherGet(svcs.Vouchers, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.VoucherCreate(svcs.Vouchers, logg))
				r.Put("/{voucherId}", controllers.VoucherUpdate(svcs.Vouchers, logg))
				r.Delete("/{voucherId}", controllers.VoucherDelete(svcs.Vouchers, logg))
			})
		})

		r.Route("/agendamentos", func(r chi.Router) {
			r.Post("/", controllers.PickupCreate(svcs.Pickups, logg))
			r.Route("/{pickupId}", func(r chi.Router) {
				r.Get("/", controllers.PickupGet(svcs.Pickups, svcs.Companies, logg))
				r.Put("/", controllers.PickupUpdate(svcs.Pickups, logg))
				r.Patch("/status", controllers.PickupUpdateStatus(svcs.Pickups, svcs.Companies, logg))
				r.Delete("/", controllers.PickupCancel(svcs.Pickups, logg))
			})
		})
	})

	return r
}
