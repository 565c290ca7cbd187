// Package settariff реализует HTTP-обработчик назначения тарифа пользователю.
package settariff

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/vpn-miniapp/internal/http/response"
	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	adminservice "github.com/magabrotheeeer/vpn-miniapp/internal/services/admin"
)

// Request тело запроса назначения тарифа.
type Request struct {
	TargetUserID int64 `json:"target_user_id" validate:"required"`
	TariffID     int64 `json:"tariff_id" validate:"required"`
}

// Service описывает интерфейс назначения тарифа.
type Service interface {
	SetTariff(ctx context.Context, targetTgID, tariffID int64) error
}

// Handler управляет HTTP-запросами на назначение тарифа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.settariff"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.SetTariff(r.Context(), req.TargetUserID, req.TariffID)
	switch {
	case errors.Is(err, adminservice.ErrUserNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, adminservice.ErrTariffNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("tariff not found"))
		return
	case err != nil:
		log.Error("failed to set tariff", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set tariff"))
		return
	}

	log.Info("tariff updated",
		slog.Int64("target_user_id", req.TargetUserID),
		slog.Int64("tariff_id", req.TariffID))
	render.JSON(w, r, response.OK())
}
