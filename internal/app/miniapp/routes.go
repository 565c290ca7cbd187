// Package miniapp собирает HTTP-приложение мини-аппа: маршруты,
// middleware и жизненный цикл сервера.
package miniapp

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	authhandler "github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/auth/auth"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/auth/redeem"
	configslist "github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/configs/list"
	tariffslist "github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/tariffs/list"

	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/admin/configadd"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/admin/configlist"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/admin/configremove"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/admin/configupdate"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/admin/invitecreate"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/admin/setbalance"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/admin/settariff"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/handlers/admin/userremove"

	"github.com/magabrotheeeer/vpn-miniapp/internal/http/middlewarectx"
	adminservice "github.com/magabrotheeeer/vpn-miniapp/internal/services/admin"
	profileservice "github.com/magabrotheeeer/vpn-miniapp/internal/services/profile"
)

// RegisterRoutes регистрирует все маршруты приложения. Все конечные
// точки API — POST с initData в теле; подпись проверяет middleware,
// административная группа дополнительно требует роль admin в базе.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	verifier middlewarectx.Verifier,
	resolver middlewarectx.UserResolver,
	profileService *profileservice.Service,
	adminService *adminservice.Service,
) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, rate.Limit(20), 40))
		r.Use(middlewarectx.InitDataMiddleware(verifier, logger))

		r.Post("/auth", authhandler.New(logger, profileService).ServeHTTP)
		r.Post("/redeem", redeem.New(logger, profileService).ServeHTTP)
		r.Post("/configs/list", configslist.New(logger, profileService).ServeHTTP)
		r.Post("/tariffs/list", tariffslist.New(logger, profileService).ServeHTTP)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.AdminMiddleware(resolver, logger))

			r.Post("/users/list", userlist.New(logger, adminService).ServeHTTP)
			r.Post("/users/delete", userremove.New(logger, adminService).ServeHTTP)
			r.Post("/invite", invitecreate.New(logger, adminService).ServeHTTP)
			r.Post("/balance", setbalance.New(logger, adminService).ServeHTTP)
			r.Post("/tariff", settariff.New(logger, adminService).ServeHTTP)
			r.Post("/configs/list", configlist.New(logger, adminService).ServeHTTP)
			r.Post("/configs/add", configadd.New(logger, adminService).ServeHTTP)
			r.Post("/configs/update", configupdate.New(logger, adminService).ServeHTTP)
			r.Post("/configs/delete", configremove.New(logger, adminService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
