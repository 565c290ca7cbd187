// Package configupdate реализует HTTP-обработчик обновления конфигурации.
//
// Обновление — полная замена записи: заголовок, текст и флаг активности
// передаются всегда, даже если меняется только флаг.
package configupdate

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

// Request тело запроса обновления конфигурации. IsActive — указатель,
// чтобы отличать пропущенное поле от явного false.
type Request struct {
	ConfigID     int64  `json:"config_id" validate:"required"`
	TargetUserID int64  `json:"target_user_id" validate:"required"`
	Title        string `json:"title" validate:"required"`
	ConfigText   string `json:"config_text" validate:"required"`
	IsActive     *bool  `json:"is_active" validate:"required"`
}

// Service описывает интерфейс обновления конфигураций.
type Service interface {
	UpdateConfig(ctx context.Context, configID, targetTgID int64, title, configText string, isActive bool) error
}

// Handler управляет HTTP-запросами на обновление конфигураций.
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
	const op = "handlers.admin.configupdate"
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

	err := h.service.UpdateConfig(r.Context(), req.ConfigID, req.TargetUserID,
		req.Title, req.ConfigText, *req.IsActive)
	if errors.Is(err, adminservice.ErrConfigNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("config not found"))
		return
	}
	if err != nil {
		log.Error("failed to update config", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update config"))
		return
	}

	log.Info("config updated",
		slog.Int64("config_id", req.ConfigID),
		slog.Bool("is_active", *req.IsActive))
	render.JSON(w, r, response.OK())
}
