// Package middlewarectx содержит HTTP middleware мини-аппа.
//
// InitDataMiddleware извлекает initData из JSON-тела запроса, проверяет
// подпись Telegram и кладёт пользователя в контекст. AdminMiddleware
// дополнительно требует роль admin у записи пользователя в базе —
// клиентская проверка роли удобство, а не граница безопасности.
package middlewarectx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/vpn-miniapp/internal/http/response"
	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// TgUserKey — ключ для пользователя Telegram в контексте.
const TgUserKey Key = "tg_user"

// Verifier описывает проверку подписи initData.
type Verifier interface {
	Verify(initData string) (*models.TgUser, error)
}

// maxBodySize ограничивает тело запроса; конфигурации — это текст в
// несколько килобайт, мегабайта хватает с запасом.
const maxBodySize = 1 << 20

// TgUserFromContext возвращает пользователя Telegram из контекста запроса.
func TgUserFromContext(ctx context.Context) (*models.TgUser, bool) {
	user, ok := ctx.Value(TgUserKey).(*models.TgUser)
	return user, ok
}

// InitDataMiddleware возвращает middleware, который проверяет initData
// из тела запроса. Тело восстанавливается для последующего чтения
// обработчиком. При любой ошибке проверки возвращается 401.
func InitDataMiddleware(verifier Verifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.InitDataMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
			if err != nil {
				log.Error("failed to read request body", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid request body"))
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			var envelope struct {
				InitData string `json:"initData"`
			}
			if err := json.Unmarshal(body, &envelope); err != nil {
				log.Error("failed to decode request envelope", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid request body"))
				return
			}

			tgUser, err := verifier.Verify(envelope.InitData)
			if err != nil {
				log.Error("init data rejected", sl.Err(err),
					sl.Masked("init_data", envelope.InitData, 16))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			ctx := context.WithValue(r.Context(), TgUserKey, tgUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
