// Package profile содержит бизнес-логику аутентификации по initData,
// погашения кодов приглашений и выдачи пользовательских данных.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
	"github.com/magabrotheeeer/vpn-miniapp/internal/storage/repository"
)

// Ошибки уровня бизнес-логики, по которым обработчики выбирают статус.
var (
	// ErrNotAllowed пользователь не заведён в системе, доступ только по приглашению
	ErrNotAllowed = errors.New("profile: user is not allowed")
	// ErrInviteInvalid код приглашения не существует или уже погашен
	ErrInviteInvalid = errors.New("profile: invite code is invalid or used")
)

const tariffsCacheKey = "tariffs:catalog"

// Repository описывает методы хранилища, нужные профильному сервису.
type Repository interface {
	GetUserByTgID(ctx context.Context, tgUserID int64) (*models.User, error)
	UpdateTgIdentity(ctx context.Context, tg *models.TgUser) error
	CreateUser(ctx context.Context, tg *models.TgUser, role string) error
	RedeemInvite(ctx context.Context, code string, usedByTgID int64) (string, error)
	ListConfigs(ctx context.Context, tgUserID int64) ([]*models.StoredConfig, error)
	ListTariffs(ctx context.Context) ([]*models.Tariff, error)
	GetTariff(ctx context.Context, id int64) (*models.Tariff, error)
}

// Cache описывает методы кеширования каталога и блокировку погашения.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Service реализует аутентификацию и чтение данных пользователя.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	now   func() time.Time
}

// New создает профильный сервис.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// Auth сверяет пользователя Telegram с базой. Незаведённый пользователь
// получает ErrNotAllowed; заведённому обновляются имя и username.
func (s *Service) Auth(ctx context.Context, tg *models.TgUser) (*models.Profile, error) {
	user, err := s.repo.GetUserByTgID(ctx, tg.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotAllowed
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTgIdentity(ctx, tg); err != nil {
		// не фатально: профиль отдаём, имя обновится на следующем входе
		s.log.Warn("failed to refresh tg identity", sl.Err(err))
	}
	user.FirstName = tg.FirstName
	user.Username = tg.Username

	return s.buildProfile(ctx, user), nil
}

// Redeem погашает код приглашения и создаёт пользователя с ролью кода.
// Код одноразовый: повторное погашение возвращает ErrInviteInvalid.
func (s *Service) Redeem(ctx context.Context, tg *models.TgUser, code string) (*models.Profile, error) {
	lockKey := "invite:lock:" + code
	locked, err := s.cache.TryLock(ctx, lockKey, 10*time.Second)
	if err != nil {
		// кеш недоступен — условие в базе всё равно одноразовое
		s.log.Warn("invite lock unavailable", sl.Err(err))
	} else if !locked {
		return nil, ErrInviteInvalid
	} else {
		defer func() {
			if err := s.cache.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
				s.log.Warn("failed to unlock invite", sl.Err(err))
			}
		}()
	}

	role, err := s.repo.RedeemInvite(ctx, code, tg.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInviteInvalid
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateUser(ctx, tg, role); err != nil {
		return nil, fmt.Errorf("redeemed invite but failed to create user: %w", err)
	}
	s.log.Info("invite redeemed",
		slog.Int64("tg_user_id", tg.ID),
		slog.String("role", role),
		sl.Masked("code", code, 4))

	user, err := s.repo.GetUserByTgID(ctx, tg.ID)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, user), nil
}

// ListOwnConfigs возвращает конфигурации вызывающего пользователя.
func (s *Service) ListOwnConfigs(ctx context.Context, tgUserID int64) ([]*models.StoredConfig, error) {
	return s.repo.ListConfigs(ctx, tgUserID)
}

// ListTariffs возвращает каталог тарифов, используя кеш на час.
func (s *Service) ListTariffs(ctx context.Context) ([]*models.Tariff, error) {
	var cached []*models.Tariff
	found, err := s.cache.Get(ctx, tariffsCacheKey, &cached)
	if err != nil {
		s.log.Warn("tariffs cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	tariffs, err := s.repo.ListTariffs(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, tariffsCacheKey, tariffs, time.Hour); err != nil {
		s.log.Warn("tariffs cache write failed", sl.Err(err))
	}
	return tariffs, nil
}

// buildProfile собирает снимок профиля со снимком тарифа. Дата истечения
// справочная: назначение тарифа не датируется, показываем следующий
// платёж от текущего момента.
func (s *Service) buildProfile(ctx context.Context, user *models.User) *models.Profile {
	p := &models.Profile{
		TgUserID:  user.TgUserID,
		FirstName: user.FirstName,
		Username:  user.Username,
		Role:      user.Role,
		Balance:   user.Balance,
	}
	if user.TariffID == nil {
		return p
	}
	tariff, err := s.repo.GetTariff(ctx, *user.TariffID)
	if err != nil {
		s.log.Warn("failed to resolve tariff for profile",
			slog.Int64("tariff_id", *user.TariffID), sl.Err(err))
		return p
	}
	p.Tariff = &models.TariffSnapshot{
		Name:         tariff.Name,
		Price:        tariff.Price,
		PeriodMonths: tariff.PeriodMonths,
		ExpiresAt:    s.now().AddDate(0, tariff.PeriodMonths, 0),
	}
	return p
}
