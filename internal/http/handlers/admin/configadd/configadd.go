// Package configadd реализует HTTP-обработчик добавления конфигурации
// целевому пользователю.
package configadd

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
)

// Request тело запроса добавления конфигурации. Заголовок опционален,
// пустой заменяется сервисом на значение по умолчанию.
type Request struct {
	TargetUserID int64  `json:"target_user_id" validate:"required"`
	Title        string `json:"title"`
	ConfigText   string `json:"config_text" validate:"required"`
}

// Service описывает интерфейс добавления конфигураций.
type Service interface {
	AddConfig(ctx context.Context, targetTgID int64, title, configText string) (int64, error)
}

// Handler управляет HTTP-запросами на добавление конфигураций.
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
	const op = "handlers.admin.configadd"
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

	id, err := h.service.AddConfig(r.Context(), req.TargetUserID, req.Title, req.ConfigText)
	if err != nil {
		log.Error("failed to add config", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not add config"))
		return
	}

	log.Info("config added",
		slog.Int64("target_user_id", req.TargetUserID),
		slog.Int64("config_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
