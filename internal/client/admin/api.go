package admin

import (
	"context"

	"github.com/magabrotheeeer/vpn-miniapp/internal/client/transport"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// UserRow строка списка пользователей, как её отдаёт бекенд.
type UserRow struct {
	TgUserID   int64   `json:"tg_user_id"`
	FirstName  string  `json:"first_name"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	Balance    float64 `json:"balance"`
	TariffName string  `json:"tariff_name,omitempty"`
}

// API типизированная обёртка над транспортом для административных
// конечных точек.
type API struct {
	t *transport.Client
}

// NewAPI создает API поверх транспортного клиента.
func NewAPI(t *transport.Client) *API {
	return &API{t: t}
}

// ListUsers возвращает всех пользователей.
func (a *API) ListUsers(ctx context.Context) ([]*UserRow, error) {
	var out struct {
		Users []*UserRow `json:"users"`
	}
	if err := a.t.CallInto(ctx, "/api/admin/users/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// CreateInvite создаёт одноразовый код приглашения.
func (a *API) CreateInvite(ctx context.Context, role string) (string, error) {
	var out struct {
		Code string `json:"code"`
	}
	payload := map[string]any{"role": role}
	if err := a.t.CallInto(ctx, "/api/admin/invite", payload, &out); err != nil {
		return "", err
	}
	return out.Code, nil
}

// SetBalance устанавливает баланс целевого пользователя.
func (a *API) SetBalance(ctx context.Context, targetTgID int64, balance float64) error {
	payload := map[string]any{"target_user_id": targetTgID, "balance": balance}
	return a.t.CallInto(ctx, "/api/admin/balance", payload, nil)
}

// SetTariff назначает тариф целевому пользователю.
func (a *API) SetTariff(ctx context.Context, targetTgID, tariffID int64) error {
	payload := map[string]any{"target_user_id": targetTgID, "tariff_id": tariffID}
	return a.t.CallInto(ctx, "/api/admin/tariff", payload, nil)
}

// DeleteUser удаляет пользователя вместе с его конфигурациями.
func (a *API) DeleteUser(ctx context.Context, targetTgID int64) error {
	payload := map[string]any{"target_user_id": targetTgID}
	return a.t.CallInto(ctx, "/api/admin/users/delete", payload, nil)
}

// ListConfigs возвращает конфигурации целевого пользователя.
func (a *API) ListConfigs(ctx context.Context, targetTgID int64) ([]*models.StoredConfig, error) {
	var out struct {
		Configs []*models.StoredConfig `json:"configs"`
	}
	payload := map[string]any{"target_user_id": targetTgID}
	if err := a.t.CallInto(ctx, "/api/admin/configs/list", payload, &out); err != nil {
		return nil, err
	}
	return out.Configs, nil
}

// AddConfig сохраняет новую конфигурацию и возвращает её идентификатор.
func (a *API) AddConfig(ctx context.Context, targetTgID int64, title, configText string) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	payload := map[string]any{
		"target_user_id": targetTgID,
		"title":          title,
		"config_text":    configText,
	}
	if err := a.t.CallInto(ctx, "/api/admin/configs/add", payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdateConfig полностью заменяет запись конфигурации.
func (a *API) UpdateConfig(ctx context.Context, configID, targetTgID int64, title, configText string, isActive bool) error {
	payload := map[string]any{
		"config_id":      configID,
		"target_user_id": targetTgID,
		"title":          title,
		"config_text":    configText,
		"is_active":      isActive,
	}
	return a.t.CallInto(ctx, "/api/admin/configs/update", payload, nil)
}

// DeleteConfig удаляет конфигурацию целевого пользователя.
func (a *API) DeleteConfig(ctx context.Context, configID, targetTgID int64) error {
	payload := map[string]any{"config_id": configID, "target_user_id": targetTgID}
	return a.t.CallInto(ctx, "/api/admin/configs/delete", payload, nil)
}

// ListTariffs возвращает каталог тарифов для выбора.
func (a *API) ListTariffs(ctx context.Context) ([]*models.Tariff, error) {
	var out struct {
		Tariffs []*models.Tariff `json:"tariffs"`
	}
	if err := a.t.CallInto(ctx, "/api/tariffs/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Tariffs, nil
}
