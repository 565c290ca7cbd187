// Package configremove реализует HTTP-обработчик удаления конфигурации.
package configremove

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

// Request тело запроса удаления конфигурации.
type Request struct {
	ConfigID     int64 `json:"config_id" validate:"required"`
	TargetUserID int64 `json:"target_user_id" validate:"required"`
}

// Service описывает интерфейс удаления конфигураций.
type Service interface {
	DeleteConfig(ctx context.Context, configID, targetTgID int64) error
}

// Handler управляет HTTP-запросами на удаление конфигураций.
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
	const op = "handlers.admin.configremove"
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

	err := h.service.DeleteConfig(r.Context(), req.ConfigID, req.TargetUserID)
	if errors.Is(err, adminservice.ErrConfigNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("config not found"))
		return
	}
	if err != nil {
		log.Error("failed to delete config", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete config"))
		return
	}

	render.JSON(w, r, response.OK())
}
