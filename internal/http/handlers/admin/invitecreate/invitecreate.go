// Package invitecreate реализует HTTP-обработчик выпуска кода приглашения.
package invitecreate

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

// Request тело запроса на выпуск кода приглашения.
type Request struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// Service описывает интерфейс выпуска кодов приглашений.
type Service interface {
	CreateInvite(ctx context.Context, role string) (string, error)
}

// Handler управляет HTTP-запросами на выпуск кодов приглашений.
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
	const op = "handlers.admin.invitecreate"
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

	code, err := h.service.CreateInvite(r.Context(), req.Role)
	if err != nil {
		log.Error("failed to create invite", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create invite"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"code": code,
	}))
}
