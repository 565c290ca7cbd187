// Package admin реализует клиентскую админ-консоль: список пользователей,
// карточку пользователя с балансом и тарифом, выпуск приглашений и
// управление сохранёнными конфигурациями. Каждая мутация защищена от
// повторной отправки, пока предыдущая не завершилась.
package admin

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/vpn-miniapp/internal/client/router"
	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// fallbackTariffs встроенный каталог на случай недоступности бекенда.
// Отправляется всё равно только tariff_id, поэтому расхождение цен с
// сервером безопасно, но пользователю показывается пометка устаревания.
var fallbackTariffs = []*models.Tariff{
	{ID: 1, Name: "1 месяц", Price: 150, PeriodMonths: 1},
	{ID: 2, Name: "6 месяцев", Price: 700, PeriodMonths: 6},
	{ID: 3, Name: "12 месяцев", Price: 1200, PeriodMonths: 12},
}

// Backend описывает вызовы бекенда, нужные консоли.
type Backend interface {
	ListUsers(ctx context.Context) ([]*UserRow, error)
	CreateInvite(ctx context.Context, role string) (string, error)
	SetBalance(ctx context.Context, targetTgID int64, balance float64) error
	SetTariff(ctx context.Context, targetTgID, tariffID int64) error
	DeleteUser(ctx context.Context, targetTgID int64) error
	ListConfigs(ctx context.Context, targetTgID int64) ([]*models.StoredConfig, error)
	AddConfig(ctx context.Context, targetTgID int64, title, configText string) (int64, error)
	UpdateConfig(ctx context.Context, configID, targetTgID int64, title, configText string, isActive bool) error
	DeleteConfig(ctx context.Context, configID, targetTgID int64) error
	ListTariffs(ctx context.Context) ([]*models.Tariff, error)
}

// View отображает экраны консоли.
type View interface {
	// RenderUsers показывает список пользователей
	RenderUsers(rows []*UserRow)
	// RenderUserDetail показывает карточку пользователя
	RenderUserDetail(row *UserRow)
	// RenderConfigs показывает конфигурации пользователя, включая отключённые
	RenderConfigs(row *UserRow, configs []*models.StoredConfig)
	// RenderTariffPicker показывает выбор тарифа; stale сообщает, что
	// каталог встроенный и может расходиться с сервером
	RenderTariffPicker(tariffs []*models.Tariff, stale bool)
	// RenderInviteCode показывает выпущенный код приглашения
	RenderInviteCode(code string)
	// RenderFieldError показывает ошибку у поля ввода, сохраняя ввод
	RenderFieldError(msg string)
	// RenderError показывает неблокирующее сообщение об ошибке
	RenderError(msg string)
	// ClearComposer очищает форму добавления конфигурации
	ClearComposer()
}

// Confirmer запрашивает у пользователя явное подтверждение
// необратимого действия.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Opener открывает конфигурацию в просмотровом листе: текст плюс
// сканируемая форма. Ему соответствует *sheet.Sheet.
type Opener interface {
	Open(title, configText string)
}

// Console админ-консоль. Не потокобезопасна: предполагается вызов из
// одного цикла интерфейса.
type Console struct {
	backend   Backend
	router    *router.Router
	view      View
	confirmer Confirmer
	opener    Opener
	log       *slog.Logger

	// selfTgID нужен, чтобы правка собственного баланса сразу
	// отразилась на главном экране
	selfTgID      int64
	onSelfBalance func(balance float64)

	users    []*UserRow
	current  *UserRow
	configs  []*models.StoredConfig
	catalog  []*models.Tariff
	stale    bool
	inFlight map[string]bool
}

// New создает консоль. onSelfBalance вызывается после успешной правки
// баланса самого администратора; nil допустим.
func New(backend Backend, r *router.Router, view View, confirmer Confirmer, opener Opener, selfTgID int64, onSelfBalance func(balance float64), log *slog.Logger) *Console {
	return &Console{
		backend:       backend,
		router:        r,
		view:          view,
		confirmer:     confirmer,
		opener:        opener,
		selfTgID:      selfTgID,
		onSelfBalance: onSelfBalance,
		log:           log,
		inFlight:      map[string]bool{},
	}
}

// acquire помечает действие выполняющимся. Повторный клик по той же
// кнопке до завершения запроса игнорируется.
func (c *Console) acquire(action string) bool {
	if c.inFlight[action] {
		return false
	}
	c.inFlight[action] = true
	return true
}

func (c *Console) release(action string) {
	delete(c.inFlight, action)
}

// Open загружает список пользователей и открывает консоль.
func (c *Console) Open(ctx context.Context) {
	const op = "admin.Open"
	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	rows, err := c.backend.ListUsers(ctx)
	if err != nil {
		c.log.Error("failed to list users", slog.String("op", op), sl.Err(err))
		c.view.RenderError("Не удалось загрузить пользователей")
		return
	}
	c.users = rows
	c.view.RenderUsers(rows)
	c.router.Show(router.PageAdminUsers)
}

// OpenUser открывает карточку пользователя из загруженного списка.
func (c *Console) OpenUser(tgUserID int64) {
	row := c.findUser(tgUserID)
	if row == nil {
		c.view.RenderError("Пользователь не найден")
		return
	}
	c.current = row
	c.view.RenderUserDetail(row)
	c.router.Show(router.PageAdminUserDetail)
}

// Current возвращает пользователя открытой карточки.
func (c *Console) Current() *UserRow {
	return c.current
}

// CreateInvite выпускает код приглашения для роли и показывает его.
func (c *Console) CreateInvite(ctx context.Context, role string) {
	const op = "admin.CreateInvite"
	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	code, err := c.backend.CreateInvite(ctx, role)
	if err != nil {
		c.log.Error("failed to create invite", slog.String("op", op), sl.Err(err))
		c.view.RenderError("Не удалось создать приглашение")
		return
	}
	c.view.RenderInviteCode(code)
}

// SetBalance разбирает введённую сумму и отправляет её на сервер.
// Нечисловой ввод отклоняется локально, без сетевого запроса.
func (c *Console) SetBalance(ctx context.Context, raw string) {
	const op = "admin.SetBalance"
	if c.current == nil {
		return
	}

	balance, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		c.view.RenderFieldError("Введите число")
		return
	}

	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	if err := c.backend.SetBalance(ctx, c.current.TgUserID, balance); err != nil {
		c.log.Error("failed to set balance", slog.String("op", op), sl.Err(err))
		c.view.RenderError("Не удалось обновить баланс")
		return
	}

	c.current.Balance = balance
	c.view.RenderUserDetail(c.current)
	if c.current.TgUserID == c.selfTgID && c.onSelfBalance != nil {
		c.onSelfBalance(balance)
	}
}

// OpenTariffPicker загружает каталог тарифов. При отказе бекенда
// подставляется встроенный каталог с видимой пометкой устаревания.
func (c *Console) OpenTariffPicker(ctx context.Context) {
	const op = "admin.OpenTariffPicker"
	if c.current == nil {
		return
	}
	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	tariffs, err := c.backend.ListTariffs(ctx)
	if err != nil || len(tariffs) == 0 {
		if err != nil {
			c.log.Warn("tariff catalog unavailable, using builtin fallback", slog.String("op", op), sl.Err(err))
		}
		tariffs = fallbackTariffs
		c.stale = true
	} else {
		c.stale = false
	}
	c.catalog = tariffs
	c.view.RenderTariffPicker(tariffs, c.stale)
}

// CatalogStale сообщает, что показан встроенный каталог.
func (c *Console) CatalogStale() bool {
	return c.stale
}

// SetTariff назначает тариф пользователю открытой карточки. На сервер
// уходит только идентификатор тарифа.
func (c *Console) SetTariff(ctx context.Context, tariffID int64) {
	const op = "admin.SetTariff"
	if c.current == nil {
		return
	}
	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	if err := c.backend.SetTariff(ctx, c.current.TgUserID, tariffID); err != nil {
		c.log.Error("failed to set tariff", slog.String("op", op), sl.Err(err))
		c.view.RenderError("Не удалось назначить тариф")
		return
	}

	for _, t := range c.catalog {
		if t.ID == tariffID {
			c.current.TariffName = t.Name
			break
		}
	}
	c.view.RenderUserDetail(c.current)
}

// DeleteUser удаляет пользователя открытой карточки после явного
// подтверждения и возвращает консоль к обновлённому списку.
func (c *Console) DeleteUser(ctx context.Context) {
	const op = "admin.DeleteUser"
	if c.current == nil {
		return
	}
	if !c.confirmer.Confirm("Удалить пользователя вместе с конфигурациями?") {
		return
	}
	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	if err := c.backend.DeleteUser(ctx, c.current.TgUserID); err != nil {
		c.log.Error("failed to delete user", slog.String("op", op), sl.Err(err))
		c.view.RenderError("Не удалось удалить пользователя")
		return
	}

	c.current = nil
	c.Open(ctx)
}

// OpenConfigs загружает конфигурации пользователя открытой карточки.
// Показываются все записи, включая отключённые.
func (c *Console) OpenConfigs(ctx context.Context) {
	const op = "admin.OpenConfigs"
	if c.current == nil {
		return
	}
	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	if !c.reloadConfigs(ctx, op) {
		return
	}
	c.view.RenderConfigs(c.current, c.configs)
	c.router.Show(router.PageAdminConfigs)
}

// OpenConfig открывает конфигурацию из загруженного списка в
// просмотровом листе. Администратору доступны и отключённые записи.
func (c *Console) OpenConfig(configID int64) {
	cfg := c.findConfig(configID)
	if cfg == nil {
		c.view.RenderError("Конфигурация не найдена")
		return
	}
	c.opener.Open(cfg.Title, cfg.ConfigText)
}

// AddConfig сохраняет новую конфигурацию. Пустой текст отклоняется
// локально; после успеха форма очищается, а список перечитывается.
func (c *Console) AddConfig(ctx context.Context, title, configText string) {
	const op = "admin.AddConfig"
	if c.current == nil {
		return
	}
	if strings.TrimSpace(configText) == "" {
		c.view.RenderFieldError("Текст конфигурации не может быть пустым")
		return
	}
	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	if _, err := c.backend.AddConfig(ctx, c.current.TgUserID, title, configText); err != nil {
		c.log.Error("failed to add config", slog.String("op", op), sl.Err(err))
		c.view.RenderError("Не удалось сохранить конфигурацию")
		return
	}

	c.view.ClearComposer()
	if c.reloadConfigs(ctx, op) {
		c.view.RenderConfigs(c.current, c.configs)
	}
}

// ToggleConfig переключает флаг активности. Запись заменяется целиком:
// заголовок и текст пересылаются без изменений, меняется только флаг.
// После успеха список перечитывается с сервера.
func (c *Console) ToggleConfig(ctx context.Context, configID int64) {
	const op = "admin.ToggleConfig"
	if c.current == nil {
		return
	}
	cfg := c.findConfig(configID)
	if cfg == nil {
		c.view.RenderError("Конфигурация не найдена")
		return
	}
	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	err := c.backend.UpdateConfig(ctx, cfg.ID, c.current.TgUserID, cfg.Title, cfg.ConfigText, !cfg.IsActive)
	if err != nil {
		c.log.Error("failed to toggle config", slog.String("op", op), sl.Err(err))
		c.view.RenderError("Не удалось обновить конфигурацию")
		return
	}

	if c.reloadConfigs(ctx, op) {
		c.view.RenderConfigs(c.current, c.configs)
	}
}

// DeleteConfig удаляет конфигурацию после явного подтверждения и
// перечитывает список.
func (c *Console) DeleteConfig(ctx context.Context, configID int64) {
	const op = "admin.DeleteConfig"
	if c.current == nil {
		return
	}
	if !c.confirmer.Confirm("Удалить конфигурацию?") {
		return
	}
	if !c.acquire(op) {
		return
	}
	defer c.release(op)

	if err := c.backend.DeleteConfig(ctx, configID, c.current.TgUserID); err != nil {
		c.log.Error("failed to delete config", slog.String("op", op), sl.Err(err))
		c.view.RenderError("Не удалось удалить конфигурацию")
		return
	}

	if c.reloadConfigs(ctx, op) {
		c.view.RenderConfigs(c.current, c.configs)
	}
}

func (c *Console) reloadConfigs(ctx context.Context, op string) bool {
	configs, err := c.backend.ListConfigs(ctx, c.current.TgUserID)
	if err != nil {
		c.log.Error("failed to list configs", slog.String("op", op), sl.Err(err))
		c.view.RenderError("Не удалось загрузить конфигурации")
		return false
	}
	c.configs = configs
	return true
}

func (c *Console) findUser(tgUserID int64) *UserRow {
	for _, row := range c.users {
		if row.TgUserID == tgUserID {
			return row
		}
	}
	return nil
}

func (c *Console) findConfig(configID int64) *models.StoredConfig {
	for _, cfg := range c.configs {
		if cfg.ID == configID {
			return cfg
		}
	}
	return nil
}
