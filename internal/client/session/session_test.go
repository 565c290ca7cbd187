package session

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
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/transport"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// Мок бекенда сессии
type BackendMock struct {
	mock.Mock
}

func (m *BackendMock) HasIdentity() bool {
	return m.Called().Bool(0)
}

func (m *BackendMock) Auth(ctx context.Context) (*models.Profile, error) {
	args := m.Called(ctx)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

func (m *BackendMock) Redeem(ctx context.Context, code string) (*models.Profile, error) {
	args := m.Called(ctx, code)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Error(1)
}

func (m *BackendMock) ListOwnConfigs(ctx context.Context) ([]*models.StoredConfig, error) {
	args := m.Called(ctx)
	configs, _ := args.Get(0).([]*models.StoredConfig)
	return configs, args.Error(1)
}

// viewStub записывает вызовы отображения.
type viewStub struct {
	home         *models.Profile
	configs      []*models.StoredConfig
	configsError bool
	adminEntry   bool
	inviteErrors []string
	busyStates   []bool
	fatal        string
}

func (v *viewStub) RenderHome(profile *models.Profile) {
	v.home = profile
}

func (v *viewStub) RenderOwnConfigs(configs []*models.StoredConfig) {
	v.configs = configs
}

func (v *viewStub) RenderOwnConfigsError() {
	v.configsError = true
}

func (v *viewStub) AttachAdminEntry() {
	v.adminEntry = true
}

func (v *viewStub) RenderInviteError(msg string) {
	v.inviteErrors = append(v.inviteErrors, msg)
}

func (v *viewStub) SetInviteBusy(busy bool) {
	v.busyStates = append(v.busyStates, busy)
}

func (v *viewStub) RenderFatal(msg string) {
	v.fatal = msg
}

type rendererStub struct {
	pages []router.Page
}

func (r *rendererStub) RenderPage(page router.Page) { r.pages = append(r.pages, page) }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newBootstrapper(backend Backend) (*Bootstrapper, *viewStub, *router.Router) {
	view := &viewStub{}
	r := router.New(&rendererStub{})
	return New(backend, r, view, newNoopLogger()), view, r
}

func TestBootstrapper_Run_NoIdentity(t *testing.T) {
	backend := new(BackendMock)
	backend.On("HasIdentity").Return(false)

	b, _, r := newBootstrapper(backend)

	assert.Equal(t, OutcomeNoHost, b.Run(context.Background()))
	assert.Equal(t, router.PageNoHost, r.Active())
	backend.AssertNotCalled(t, "Auth", mock.Anything)
}

func TestBootstrapper_Run_NotAllowed(t *testing.T) {
	backend := new(BackendMock)
	backend.On("HasIdentity").Return(true)
	backend.On("Auth", mock.Anything).Return(nil, &transport.Error{StatusCode: 403})

	b, _, r := newBootstrapper(backend)

	assert.Equal(t, OutcomeInvite, b.Run(context.Background()))
	assert.Equal(t, router.PageInvite, r.Active())
}

func TestBootstrapper_Run_AuthFailed(t *testing.T) {
	backend := new(BackendMock)
	backend.On("HasIdentity").Return(true)
	backend.On("Auth", mock.Anything).Return(nil, errors.New("network down"))

	b, view, r := newBootstrapper(backend)

	assert.Equal(t, OutcomeFailed, b.Run(context.Background()))
	assert.Equal(t, router.PageFatal, r.Active())
	assert.NotEmpty(t, view.fatal)
}

func TestBootstrapper_Run_Success(t *testing.T) {
	profile := &models.Profile{TgUserID: 7, FirstName: "Ivan", Role: models.RoleUser, Balance: 150}
	configs := []*models.StoredConfig{{ID: 1, Title: "Config"}}

	backend := new(BackendMock)
	backend.On("HasIdentity").Return(true)
	backend.On("Auth", mock.Anything).Return(profile, nil)
	backend.On("ListOwnConfigs", mock.Anything).Return(configs, nil)

	b, view, r := newBootstrapper(backend)

	assert.Equal(t, OutcomeHome, b.Run(context.Background()))
	assert.Equal(t, router.PageHome, r.Active())
	assert.Equal(t, profile, view.home)
	assert.Equal(t, configs, view.configs)
	assert.False(t, view.adminEntry)
	assert.Equal(t, profile, b.State().Profile)
}

func TestBootstrapper_Run_AdminWithConfigsError(t *testing.T) {
	profile := &models.Profile{TgUserID: 1, Role: models.RoleAdmin}

	backend := new(BackendMock)
	backend.On("HasIdentity").Return(true)
	backend.On("Auth", mock.Anything).Return(profile, nil)
	backend.On("ListOwnConfigs", mock.Anything).Return(nil, errors.New("timeout"))

	b, view, r := newBootstrapper(backend)

	// отказ списка не валит бутстрап
	assert.Equal(t, OutcomeHome, b.Run(context.Background()))
	assert.Equal(t, router.PageHome, r.Active())
	assert.True(t, view.configsError)
	assert.True(t, view.adminEntry)
}

func TestBootstrapper_Redeem_EmptyCode(t *testing.T) {
	backend := new(BackendMock)
	b, view, _ := newBootstrapper(backend)

	assert.Equal(t, OutcomeInvite, b.Redeem(context.Background(), "   "))
	require.Len(t, view.inviteErrors, 1)
	backend.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything)
}

func TestBootstrapper_Redeem_InvalidCode(t *testing.T) {
	backend := new(BackendMock)
	backend.On("Redeem", mock.Anything, "BADCODE").Return(nil, &transport.Error{StatusCode: 404})

	b, view, _ := newBootstrapper(backend)

	assert.Equal(t, OutcomeInvite, b.Redeem(context.Background(), "BADCODE"))
	require.Len(t, view.inviteErrors, 1)
	// кнопка блокируется на время запроса и разблокируется после
	assert.Equal(t, []bool{true, false}, view.busyStates)
}

func TestBootstrapper_Redeem_Success(t *testing.T) {
	profile := &models.Profile{TgUserID: 7, Role: models.RoleUser}

	backend := new(BackendMock)
	backend.On("Redeem", mock.Anything, "GOODCODE").Return(profile, nil)
	backend.On("HasIdentity").Return(true)
	backend.On("Auth", mock.Anything).Return(profile, nil)
	backend.On("ListOwnConfigs", mock.Anything).Return(nil, nil)

	b, _, r := newBootstrapper(backend)

	// успешное погашение перезапускает бутстрап на месте
	assert.Equal(t, OutcomeHome, b.Redeem(context.Background(), "GOODCODE"))
	assert.Equal(t, router.PageHome, r.Active())
	backend.AssertExpectations(t)
}

func TestFormatBalance(t *testing.T) {
	assert.Equal(t, "150.00 ₽", FormatBalance(150))
	assert.Equal(t, "99.90 ₽", FormatBalance(99.9))
	assert.Equal(t, "0.00 ₽", FormatBalance(0))
}
