// Package session реализует бутстрап сессии мини-аппа: проверку
// identity proof, обмен его на профиль и ветвление на главный экран,
// экран ввода кода приглашения или фатальный экран. Бутстрап
// перезапускаем: успешное погашение кода вызывает его повторно на месте,
// без перезагрузки приложения.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/vpn-miniapp/internal/client/router"
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/transport"
	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// Outcome результат одного прогона бутстрапа.
type Outcome int

const (
	// OutcomeHome успешная аутентификация, показан главный экран
	OutcomeHome Outcome = iota
	// OutcomeInvite доступа нет, показан экран ввода кода приглашения
	OutcomeInvite
	// OutcomeNoHost identity proof отсутствует, работа вне Telegram невозможна
	OutcomeNoHost
	// OutcomeFailed неустранимая ошибка аутентификации
	OutcomeFailed
)

// Backend описывает вызовы бекенда, нужные бутстрапу.
type Backend interface {
	HasIdentity() bool
	Auth(ctx context.Context) (*models.Profile, error)
	Redeem(ctx context.Context, code string) (*models.Profile, error)
	ListOwnConfigs(ctx context.Context) ([]*models.StoredConfig, error)
}

// View отображает результаты бутстрапа. Реализация — терминальный или
// иной рендерер; вся логика остаётся здесь.
type View interface {
	// RenderHome показывает баланс, тариф и срок следующего платежа
	RenderHome(profile *models.Profile)
	// RenderOwnConfigs показывает список конфигураций пользователя
	RenderOwnConfigs(configs []*models.StoredConfig)
	// RenderOwnConfigsError показывает заглушку вместо списка
	RenderOwnConfigsError()
	// AttachAdminEntry добавляет пункт админ-консоли в меню
	AttachAdminEntry()
	// RenderInviteError показывает ошибку у поля ввода кода, сохраняя ввод
	RenderInviteError(msg string)
	// SetInviteBusy блокирует и разблокирует кнопку отправки кода
	SetInviteBusy(busy bool)
	// RenderFatal показывает блокирующий экран с текстом ошибки
	RenderFatal(msg string)
}

// State переносимое состояние клиента: профиль и список конфигураций.
// Перезаписывается целиком при каждом прогоне бутстрапа.
type State struct {
	Profile *models.Profile
	Configs []*models.StoredConfig
}

// Bootstrapper запускает и перезапускает сессию.
type Bootstrapper struct {
	backend Backend
	router  *router.Router
	view    View
	log     *slog.Logger

	state      State
	redeemBusy bool
}

// New создает Bootstrapper.
func New(backend Backend, r *router.Router, view View, log *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		backend: backend,
		router:  r,
		view:    view,
		log:     log,
	}
}

// State возвращает состояние последнего прогона.
func (b *Bootstrapper) State() *State {
	return &b.state
}

// Run выполняет бутстрап от начала до конца. Повторный вызов полностью
// перезаписывает состояние.
func (b *Bootstrapper) Run(ctx context.Context) Outcome {
	const op = "session.Run"
	log := b.log.With(slog.String("op", op))

	if !b.backend.HasIdentity() {
		log.Error("no identity proof, not running inside the host")
		b.router.Show(router.PageNoHost)
		return OutcomeNoHost
	}

	profile, err := b.backend.Auth(ctx)
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) && terr.StatusCode == 403 {
			log.Info("user is not allowed, switching to invite redemption")
			b.router.Show(router.PageInvite)
			return OutcomeInvite
		}
		log.Error("authentication failed", sl.Err(err))
		b.view.RenderFatal("Не удалось загрузить профиль. Попробуйте позже.")
		b.router.Show(router.PageFatal)
		return OutcomeFailed
	}

	b.state = State{Profile: profile}
	b.view.RenderHome(profile)

	// отказ списка не валит бутстрап, деградируем до заглушки
	configs, err := b.backend.ListOwnConfigs(ctx)
	if err != nil {
		log.Warn("failed to load own configs", sl.Err(err))
		b.view.RenderOwnConfigsError()
	} else {
		b.state.Configs = configs
		b.view.RenderOwnConfigs(configs)
	}

	if profile.IsAdmin() {
		b.view.AttachAdminEntry()
	}

	b.router.Show(router.PageHome)
	return OutcomeHome
}

// Redeem отправляет код приглашения. Пустой код отклоняется локально
// без сетевого вызова; успешное погашение перезапускает бутстрап.
func (b *Bootstrapper) Redeem(ctx context.Context, code string) Outcome {
	const op = "session.Redeem"
	log := b.log.With(slog.String("op", op))

	code = strings.TrimSpace(code)
	if code == "" {
		b.view.RenderInviteError("Введите код приглашения")
		return OutcomeInvite
	}
	if b.redeemBusy {
		return OutcomeInvite
	}
	b.redeemBusy = true
	b.view.SetInviteBusy(true)
	defer func() {
		b.redeemBusy = false
		b.view.SetInviteBusy(false)
	}()

	if _, err := b.backend.Redeem(ctx, code); err != nil {
		log.Warn("invite redemption failed", sl.Err(err))
		b.view.RenderInviteError("Код не подошёл. Проверьте и попробуйте ещё раз.")
		return OutcomeInvite
	}

	return b.Run(ctx)
}

// FormatBalance форматирует баланс для главного экрана: два знака
// после запятой и рублёвый суффикс.
func FormatBalance(balance float64) string {
	return fmt.Sprintf("%.2f ₽", balance)
}
