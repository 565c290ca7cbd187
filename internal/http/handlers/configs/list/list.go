// Package list реализует HTTP-обработчик списка конфигураций
// вызывающего пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/vpn-miniapp/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/response"
	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// Service описывает интерфейс выдачи конфигураций пользователя.
type Service interface {
	ListOwnConfigs(ctx context.Context, tgUserID int64) ([]*models.StoredConfig, error)
}

// Handler управляет HTTP-запросами списка собственных конфигураций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.configs.list"
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

	configs, err := h.service.ListOwnConfigs(r.Context(), tgUser.ID)
	if err != nil {
		log.Error("failed to list configs", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list configs"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"configs": configs,
	}))
}
