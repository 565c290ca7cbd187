// Package list реализует HTTP-обработчик каталога тарифов.
package list

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

// Service описывает интерфейс выдачи каталога тарифов.
type Service interface {
	ListTariffs(ctx context.Context) ([]*models.Tariff, error)
}

// Handler управляет HTTP-запросами каталога тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tariffs.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tariffs, err := h.service.ListTariffs(r.Context())
	if err != nil {
		log.Error("failed to list tariffs", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tariffs"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tariffs": tariffs,
	}))
}
