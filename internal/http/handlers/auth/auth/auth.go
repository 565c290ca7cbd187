// Package auth реализует HTTP-обработчик аутентификации мини-аппа.
//
// Подпись initData уже проверена в middleware; обработчик сверяет
// пользователя Telegram с базой и возвращает его профиль. Пользователь
// без записи в базе получает 403 — клиент уводит его на экран ввода
// кода приглашения.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/vpn-miniapp/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/response"
	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
	profileservice "github.com/magabrotheeeer/vpn-miniapp/internal/services/profile"
)

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Auth(ctx context.Context, tg *models.TgUser) (*models.Profile, error)
}

// Handler управляет HTTP-запросами аутентификации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.auth"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tgUser, ok := middlewarectx.TgUserFromContext(r.Context())
	if !ok {
		log.Error("tg user not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	profile, err := h.service.Auth(r.Context(), tgUser)
	if errors.Is(err, profileservice.ErrNotAllowed) {
		log.Warn("user is not allowed", slog.Int64("tg_user_id", tgUser.ID))
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.Error("not allowed"))
		return
	}
	if err != nil {
		log.Error("failed to authenticate user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not authenticate"))
		return
	}

	log.Info("user authenticated",
		slog.Int64("tg_user_id", profile.TgUserID),
		slog.String("role", profile.Role))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"profile": profile,
	}))
}
