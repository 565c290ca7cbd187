package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/vpn-miniapp/internal/http/response"
	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// UserResolver возвращает запись пользователя по Telegram ID.
type UserResolver interface {
	GetUserByTgID(ctx context.Context, tgUserID int64) (*models.User, error)
}

// AdminMiddleware пропускает только пользователей с ролью admin.
// Роль читается из базы на каждый запрос: клиентскому состоянию
// сервер не доверяет.
func AdminMiddleware(resolver UserResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tgUser, ok := TgUserFromContext(r.Context())
			if !ok {
				log.Error("tg user not found in context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			user, err := resolver.GetUserByTgID(r.Context(), tgUser.ID)
			if err != nil {
				log.Error("failed to resolve user role", sl.Err(err))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}
			if user.Role != models.RoleAdmin {
				log.Warn("non-admin tried to access admin endpoint",
					slog.Int64("tg_user_id", tgUser.ID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
