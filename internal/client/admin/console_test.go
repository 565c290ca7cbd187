package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/vpn-miniapp/internal/client/router"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// Мок бекенда админ-консоли
type BackendMock struct {
	mock.Mock
}

func (m *BackendMock) ListUsers(ctx context.Context) ([]*UserRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]*UserRow)
	return rows, args.Error(1)
}

func (m *BackendMock) CreateInvite(ctx context.Context, role string) (string, error) {
	args := m.Called(ctx, role)
	return args.String(0), args.Error(1)
}

func (m *BackendMock) SetBalance(ctx context.Context, targetTgID int64, balance float64) error {
	return m.Called(ctx, targetTgID, balance).Error(0)
}

func (m *BackendMock) SetTariff(ctx context.Context, targetTgID, tariffID int64) error {
	return m.Called(ctx, targetTgID, tariffID).Error(0)
}

func (m *BackendMock) DeleteUser(ctx context.Context, targetTgID int64) error {
	return m.Called(ctx, targetTgID).Error(0)
}

func (m *BackendMock) ListConfigs(ctx context.Context, targetTgID int64) ([]*models.StoredConfig, error) {
	args := m.Called(ctx, targetTgID)
	configs, _ := args.Get(0).([]*models.StoredConfig)
	return configs, args.Error(1)
}

func (m *BackendMock) AddConfig(ctx context.Context, targetTgID int64, title, configText string) (int64, error) {
	args := m.Called(ctx, targetTgID, title, configText)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BackendMock) UpdateConfig(ctx context.Context, configID, targetTgID int64, title, configText string, isActive bool) error {
	return m.Called(ctx, configID, targetTgID, title, configText, isActive).Error(0)
}

func (m *BackendMock) DeleteConfig(ctx context.Context, configID, targetTgID int64) error {
	return m.Called(ctx, configID, targetTgID).Error(0)
}

func (m *BackendMock) ListTariffs(ctx context.Context) ([]*models.Tariff, error) {
	args := m.Called(ctx)
	tariffs, _ := args.Get(0).([]*models.Tariff)
	return tariffs, args.Error(1)
}

// viewStub записывает вызовы отображения.
type viewStub struct {
	users       []*UserRow
	detail      *UserRow
	configs     []*models.StoredConfig
	tariffs     []*models.Tariff
	stale       bool
	inviteCode  string
	fieldErrors []string
	errors      []string
	cleared     int

	openedTitle string
	openedText  string
}

// Open записывает открытие конфигурации в просмотровом листе.
func (v *viewStub) Open(title, configText string) {
	v.openedTitle = title
	v.openedText = configText
}

func (v *viewStub) RenderUsers(rows []*UserRow) {
	v.users = rows
}

func (v *viewStub) RenderUserDetail(row *UserRow) {
	v.detail = row
}

func (v *viewStub) RenderConfigs(row *UserRow, configs []*models.StoredConfig) {
	v.configs = configs
}

func (v *viewStub) RenderTariffPicker(tariffs []*models.Tariff, stale bool) {
	v.tariffs = tariffs
	v.stale = stale
}

func (v *viewStub) RenderInviteCode(code string) {
	v.inviteCode = code
}

func (v *viewStub) RenderFieldError(msg string) {
	v.fieldErrors = append(v.fieldErrors, msg)
}

func (v *viewStub) RenderError(msg string) {
	v.errors = append(v.errors, msg)
}

func (v *viewStub) ClearComposer() {
	v.cleared++
}

// confirmStub отвечает заранее заданным решением.
type confirmStub struct {
	answer  bool
	prompts []string
}

func (c *confirmStub) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

type rendererStub struct{}

func (rendererStub) RenderPage(_ router.Page) {}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newConsole(backend Backend, confirm *confirmStub, onSelfBalance func(float64)) (*Console, *viewStub, *router.Router) {
	view := &viewStub{}
	r := router.New(rendererStub{})
	return New(backend, r, view, confirm, view, 1, onSelfBalance, newNoopLogger()), view, r
}

// openWithUsers открывает консоль с загруженным списком и карточкой
// пользователя 42.
func openWithUsers(t *testing.T, backend *BackendMock, confirm *confirmStub, onSelfBalance func(float64)) (*Console, *viewStub, *router.Router) {
	t.Helper()

	rows := []*UserRow{
		{TgUserID: 1, FirstName: "Admin", Role: models.RoleAdmin, Balance: 500},
		{TgUserID: 42, FirstName: "Ivan", Role: models.RoleUser, Balance: 150},
	}
	backend.On("ListUsers", mock.Anything).Return(rows, nil)

	c, view, r := newConsole(backend, confirm, onSelfBalance)
	c.Open(context.Background())
	require.Len(t, view.users, 2)
	c.OpenUser(42)
	require.NotNil(t, c.Current())
	return c, view, r
}

func TestConsole_Open(t *testing.T) {
	backend := new(BackendMock)
	_, _, r := openWithUsers(t, backend, &confirmStub{}, nil)

	assert.Equal(t, router.PageAdminUserDetail, r.Active())
}

func TestConsole_Open_ListFailure(t *testing.T) {
	backend := new(BackendMock)
	backend.On("ListUsers", mock.Anything).Return(nil, errors.New("timeout"))

	c, view, r := newConsole(backend, &confirmStub{}, nil)
	c.Open(context.Background())

	assert.NotEmpty(t, view.errors)
	assert.NotEqual(t, router.PageAdminUsers, r.Active())
}

func TestConsole_SetBalance_NotANumber(t *testing.T) {
	backend := new(BackendMock)
	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)

	c.SetBalance(context.Background(), "abc")

	// нечисловой ввод отклоняется локально, без сетевого запроса
	require.Len(t, view.fieldErrors, 1)
	backend.AssertNotCalled(t, "SetBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsole_SetBalance(t *testing.T) {
	backend := new(BackendMock)
	backend.On("SetBalance", mock.Anything, int64(42), 200.5).Return(nil)

	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)
	c.SetBalance(context.Background(), " 200.5 ")

	assert.Equal(t, 200.5, c.Current().Balance)
	assert.Equal(t, c.Current(), view.detail)
	backend.AssertExpectations(t)
}

func TestConsole_SetBalance_SelfUpdatesHome(t *testing.T) {
	backend := new(BackendMock)
	backend.On("SetBalance", mock.Anything, int64(1), 999.0).Return(nil)

	var homeBalance float64
	c, _, _ := openWithUsers(t, backend, &confirmStub{}, func(b float64) { homeBalance = b })

	// правка собственного баланса сразу отражается на главном экране
	c.OpenUser(1)
	c.SetBalance(context.Background(), "999")

	assert.Equal(t, 999.0, homeBalance)
}

func TestConsole_OpenTariffPicker_Fallback(t *testing.T) {
	backend := new(BackendMock)
	backend.On("ListTariffs", mock.Anything).Return(nil, errors.New("timeout"))

	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)
	c.OpenTariffPicker(context.Background())

	// при отказе каталога подставляется встроенный с пометкой устаревания
	assert.True(t, c.CatalogStale())
	assert.True(t, view.stale)
	require.Len(t, view.tariffs, len(fallbackTariffs))
}

func TestConsole_SetTariff(t *testing.T) {
	backend := new(BackendMock)
	tariffs := []*models.Tariff{{ID: 2, Name: "6 месяцев", Price: 700, PeriodMonths: 6}}
	backend.On("ListTariffs", mock.Anything).Return(tariffs, nil)
	backend.On("SetTariff", mock.Anything, int64(42), int64(2)).Return(nil)

	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)
	c.OpenTariffPicker(context.Background())
	assert.False(t, c.CatalogStale())

	c.SetTariff(context.Background(), 2)

	assert.Equal(t, "6 месяцев", c.Current().TariffName)
	assert.Equal(t, c.Current(), view.detail)
	backend.AssertExpectations(t)
}

func TestConsole_CreateInvite(t *testing.T) {
	backend := new(BackendMock)
	backend.On("CreateInvite", mock.Anything, "user").Return("ABCDEF123456", nil)

	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)
	c.CreateInvite(context.Background(), "user")

	assert.Equal(t, "ABCDEF123456", view.inviteCode)
}

func TestConsole_DeleteUser_Declined(t *testing.T) {
	backend := new(BackendMock)
	confirm := &confirmStub{answer: false}

	c, _, _ := openWithUsers(t, backend, confirm, nil)
	c.DeleteUser(context.Background())

	// без подтверждения запрос не отправляется
	require.Len(t, confirm.prompts, 1)
	backend.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestConsole_DeleteUser(t *testing.T) {
	backend := new(BackendMock)
	confirm := &confirmStub{answer: true}

	c, _, r := openWithUsers(t, backend, confirm, nil)
	backend.On("DeleteUser", mock.Anything, int64(42)).Return(nil)

	c.DeleteUser(context.Background())

	// после удаления консоль возвращается к обновлённому списку
	assert.Nil(t, c.Current())
	assert.Equal(t, router.PageAdminUsers, r.Active())
	backend.AssertExpectations(t)
}

func TestConsole_OpenConfigs(t *testing.T) {
	backend := new(BackendMock)
	configs := []*models.StoredConfig{
		{ID: 10, Title: "Amsterdam", ConfigText: "vless://a", IsActive: true},
		{ID: 11, Title: "Frankfurt", ConfigText: "vless://b", IsActive: false},
	}
	backend.On("ListConfigs", mock.Anything, int64(42)).Return(configs, nil)

	c, view, r := openWithUsers(t, backend, &confirmStub{}, nil)
	c.OpenConfigs(context.Background())

	// отключённые записи тоже показываются
	require.Len(t, view.configs, 2)
	assert.Equal(t, router.PageAdminConfigs, r.Active())
}

func TestConsole_AddConfig_EmptyText(t *testing.T) {
	backend := new(BackendMock)
	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)

	c.AddConfig(context.Background(), "Amsterdam", "   ")

	// пустой текст отклоняется локально
	require.Len(t, view.fieldErrors, 1)
	backend.AssertNotCalled(t, "AddConfig", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConsole_AddConfig(t *testing.T) {
	backend := new(BackendMock)
	backend.On("AddConfig", mock.Anything, int64(42), "Amsterdam", "vless://a").Return(int64(10), nil)
	backend.On("ListConfigs", mock.Anything, int64(42)).
		Return([]*models.StoredConfig{{ID: 10, Title: "Amsterdam", ConfigText: "vless://a", IsActive: true}}, nil)

	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)
	c.AddConfig(context.Background(), "Amsterdam", "vless://a")

	// форма очищается, список перечитывается
	assert.Equal(t, 1, view.cleared)
	require.Len(t, view.configs, 1)
	backend.AssertExpectations(t)
}

func TestConsole_ToggleConfig(t *testing.T) {
	active := func(isActive bool) []*models.StoredConfig {
		return []*models.StoredConfig{{ID: 10, Title: "Amsterdam", ConfigText: "vless://a", IsActive: isActive}}
	}

	backend := new(BackendMock)
	// после каждого переключения список перечитывается с сервера
	backend.On("ListConfigs", mock.Anything, int64(42)).Return(active(true), nil).Once()
	backend.On("UpdateConfig", mock.Anything, int64(10), int64(42), "Amsterdam", "vless://a", false).Return(nil).Once()
	backend.On("ListConfigs", mock.Anything, int64(42)).Return(active(false), nil).Once()
	backend.On("UpdateConfig", mock.Anything, int64(10), int64(42), "Amsterdam", "vless://a", true).Return(nil).Once()
	backend.On("ListConfigs", mock.Anything, int64(42)).Return(active(true), nil).Once()

	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)
	c.OpenConfigs(context.Background())

	c.ToggleConfig(context.Background(), 10)
	require.Len(t, view.configs, 1)
	assert.False(t, view.configs[0].IsActive)

	c.ToggleConfig(context.Background(), 10)
	assert.True(t, view.configs[0].IsActive)

	backend.AssertExpectations(t)
}

func TestConsole_OpenConfig(t *testing.T) {
	backend := new(BackendMock)
	configs := []*models.StoredConfig{
		{ID: 5, Title: "Frankfurt", ConfigText: "vless://secret", IsActive: false},
	}
	backend.On("ListConfigs", mock.Anything, int64(42)).Return(configs, nil)

	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)
	c.OpenConfigs(context.Background())

	// администратору открывается и отключённая запись
	c.OpenConfig(5)

	assert.Equal(t, "Frankfurt", view.openedTitle)
	assert.Equal(t, "vless://secret", view.openedText)
	assert.Empty(t, view.errors)
}

func TestConsole_OpenConfig_Unknown(t *testing.T) {
	backend := new(BackendMock)
	backend.On("ListConfigs", mock.Anything, int64(42)).Return([]*models.StoredConfig{}, nil)

	c, view, _ := openWithUsers(t, backend, &confirmStub{}, nil)
	c.OpenConfigs(context.Background())
	c.OpenConfig(5)

	assert.Empty(t, view.openedText)
	require.Len(t, view.errors, 1)
}

func TestConsole_DeleteConfig(t *testing.T) {
	backend := new(BackendMock)
	confirm := &confirmStub{answer: true}
	backend.On("ListConfigs", mock.Anything, int64(42)).
		Return([]*models.StoredConfig{{ID: 10, Title: "Amsterdam", ConfigText: "vless://a", IsActive: true}}, nil).Once()
	backend.On("DeleteConfig", mock.Anything, int64(10), int64(42)).Return(nil)
	backend.On("ListConfigs", mock.Anything, int64(42)).Return([]*models.StoredConfig{}, nil).Once()

	c, view, _ := openWithUsers(t, backend, confirm, nil)
	c.OpenConfigs(context.Background())
	c.DeleteConfig(context.Background(), 10)

	assert.Empty(t, view.configs)
	backend.AssertExpectations(t)
}
