// Package redeem реализует HTTP-обработчик погашения кода приглашения.
//
// Код одноразовый: первое погашение создаёт пользователя с ролью кода,
// повторное возвращает 404.
package redeem

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/vpn-miniapp/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-miniapp/internal/http/response"
	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
	profileservice "github.com/magabrotheeeer/vpn-miniapp/internal/services/profile"
)

// Request тело запроса на погашение кода.
type Request struct {
	Code string `json:"code" validate:"required"`
}

// Service описывает интерфейс бизнес-логики погашения приглашений.
type Service interface {
	Redeem(ctx context.Context, tg *models.TgUser, code string) (*models.Profile, error)
}

// Handler управляет HTTP-запросами на погашение кодов приглашений.
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
	const op = "handlers.auth.redeem"
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

	tgUser, ok := middlewarectx.TgUserFromContext(r.Context())
	if !ok {
		log.Error("tg user not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	profile, err := h.service.Redeem(r.Context(), tgUser, req.Code)
	if errors.Is(err, profileservice.ErrInviteInvalid) {
		log.Warn("invalid invite code", sl.Masked("code", req.Code, 4))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("invite code is invalid or already used"))
		return
	}
	if err != nil {
		log.Error("failed to redeem invite", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not redeem invite"))
		return
	}

	log.Info("invite redeemed", slog.Int64("tg_user_id", profile.TgUserID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"profile": profile,
	}))
}
