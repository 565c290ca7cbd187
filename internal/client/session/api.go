package session

import (
	"context"

	"github.com/magabrotheeeer/vpn-miniapp/internal/client/transport"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// API типизированная обёртка над транспортом для пользовательских
// конечных точек.
type API struct {
	t *transport.Client
}

// NewAPI создает API поверх транспортного клиента.
func NewAPI(t *transport.Client) *API {
	return &API{t: t}
}

// HasIdentity сообщает, передан ли identity proof.
func (a *API) HasIdentity() bool {
	return a.t.HasIdentity()
}

// Auth обменивает initData на профиль.
func (a *API) Auth(ctx context.Context) (*models.Profile, error) {
	var out struct {
		Profile *models.Profile `json:"profile"`
	}
	if err := a.t.CallInto(ctx, "/api/auth", nil, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

// Redeem погашает код приглашения и возвращает созданный профиль.
func (a *API) Redeem(ctx context.Context, code string) (*models.Profile, error) {
	var out struct {
		Profile *models.Profile `json:"profile"`
	}
	payload := map[string]any{"code": code}
	if err := a.t.CallInto(ctx, "/api/redeem", payload, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

// ListOwnConfigs возвращает конфигурации вызывающего пользователя.
func (a *API) ListOwnConfigs(ctx context.Context) ([]*models.StoredConfig, error) {
	var out struct {
		Configs []*models.StoredConfig `json:"configs"`
	}
	if err := a.t.CallInto(ctx, "/api/configs/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Configs, nil
}

// ListTariffs возвращает каталог тарифов.
func (a *API) ListTariffs(ctx context.Context) ([]*models.Tariff, error) {
	var out struct {
		Tariffs []*models.Tariff `json:"tariffs"`
	}
	if err := a.t.CallInto(ctx, "/api/tariffs/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Tariffs, nil
}
