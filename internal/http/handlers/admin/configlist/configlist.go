// Package configlist реализует HTTP-обработчик списка конфигураций
// целевого пользователя для админ-консоли.
package configlist

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/vpn-miniapp/internal/http/response"
	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// Request тело запроса списка конфигураций.
type Request struct {
	TargetUserID int64 `json:"target_user_id" validate:"required"`
}

// Service описывает интерфейс выдачи конфигураций целевого пользователя.
type Service interface {
	ListConfigs(ctx context.Context, targetTgID int64) ([]*models.StoredConfig, error)
}

// Handler управляет HTTP-запросами списка конфигураций.
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
	const op = "handlers.admin.configlist"
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

	configs, err := h.service.ListConfigs(r.Context(), req.TargetUserID)
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
