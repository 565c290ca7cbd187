// Package admin содержит бизнес-логику административных операций:
// управление пользователями, балансами, тарифами, приглашениями и
// сохранёнными конфигурациями.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
	"github.com/magabrotheeeer/vpn-miniapp/internal/storage/repository"
)

// Ошибки, по которым обработчики выбирают HTTP-статус.
var (
	// ErrUserNotFound целевой пользователь отсутствует
	ErrUserNotFound = errors.New("admin: target user not found")
	// ErrTariffNotFound тариф отсутствует в каталоге
	ErrTariffNotFound = errors.New("admin: tariff not found")
	// ErrConfigNotFound конфигурация отсутствует у целевого пользователя
	ErrConfigNotFound = errors.New("admin: config not found")
)

// defaultConfigTitle подставляется, когда админ не указал заголовок.
const defaultConfigTitle = "Config"

// Repository описывает методы хранилища для административных операций.
type Repository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	SetBalance(ctx context.Context, tgUserID int64, balance float64) error
	SetTariff(ctx context.Context, tgUserID, tariffID int64) error
	DeleteUser(ctx context.Context, tgUserID int64) error
	GetTariff(ctx context.Context, id int64) (*models.Tariff, error)
	CreateInvite(ctx context.Context, code, role string) error
	ListConfigs(ctx context.Context, tgUserID int64) ([]*models.StoredConfig, error)
	AddConfig(ctx context.Context, tgUserID int64, title, configText string) (int64, error)
	UpdateConfig(ctx context.Context, configID, tgUserID int64, title, configText string, isActive bool) error
	DeleteConfig(ctx context.Context, configID, tgUserID int64) error
}

// UserRow строка админского списка пользователей.
type UserRow struct {
	TgUserID   int64   `json:"tg_user_id"`
	FirstName  string  `json:"first_name"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	Balance    float64 `json:"balance"`
	TariffName string  `json:"tariff_name,omitempty"`
}

// Service реализует административные операции.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает административный сервис.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListUsers возвращает всех пользователей с именами их тарифов.
func (s *Service) ListUsers(ctx context.Context) ([]*UserRow, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	// имена тарифов резолвим по одному разу
	names := map[int64]string{}
	rows := make([]*UserRow, 0, len(users))
	for _, u := range users {
		row := &UserRow{
			TgUserID:  u.TgUserID,
			FirstName: u.FirstName,
			Username:  u.Username,
			Role:      u.Role,
			Balance:   u.Balance,
		}
		if u.TariffID != nil {
			name, ok := names[*u.TariffID]
			if !ok {
				tariff, err := s.repo.GetTariff(ctx, *u.TariffID)
				if err != nil {
					s.log.Warn("failed to resolve tariff name", sl.Err(err))
				} else {
					name = tariff.Name
				}
				names[*u.TariffID] = name
			}
			row.TariffName = name
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CreateInvite создаёт одноразовый код приглашения для роли.
func (s *Service) CreateInvite(ctx context.Context, role string) (string, error) {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	if err := s.repo.CreateInvite(ctx, code, role); err != nil {
		return "", err
	}
	s.log.Info("invite created", slog.String("role", role), sl.Masked("code", code, 4))
	return code, nil
}

// SetBalance устанавливает баланс целевого пользователя.
func (s *Service) SetBalance(ctx context.Context, targetTgID int64, balance float64) error {
	err := s.repo.SetBalance(ctx, targetTgID, balance)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// SetTariff назначает тариф из каталога целевому пользователю.
func (s *Service) SetTariff(ctx context.Context, targetTgID, tariffID int64) error {
	if _, err := s.repo.GetTariff(ctx, tariffID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTariffNotFound
		}
		return err
	}
	err := s.repo.SetTariff(ctx, targetTgID, tariffID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// DeleteUser удаляет пользователя вместе с конфигурациями.
func (s *Service) DeleteUser(ctx context.Context, targetTgID int64) error {
	err := s.repo.DeleteUser(ctx, targetTgID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err == nil {
		s.log.Info("user deleted", slog.Int64("tg_user_id", targetTgID))
	}
	return err
}

// ListConfigs возвращает конфигурации целевого пользователя.
func (s *Service) ListConfigs(ctx context.Context, targetTgID int64) ([]*models.StoredConfig, error) {
	return s.repo.ListConfigs(ctx, targetTgID)
}

// AddConfig сохраняет новую конфигурацию. Пустой заголовок заменяется
// на заголовок по умолчанию; новая запись всегда активна.
func (s *Service) AddConfig(ctx context.Context, targetTgID int64, title, configText string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultConfigTitle
	}
	return s.repo.AddConfig(ctx, targetTgID, title, configText)
}

// UpdateConfig полностью заменяет запись конфигурации. Вызывающая
// сторона обязана прислать заголовок и текст даже при смене одного флага.
func (s *Service) UpdateConfig(ctx context.Context, configID, targetTgID int64, title, configText string, isActive bool) error {
	err := s.repo.UpdateConfig(ctx, configID, targetTgID, title, configText, isActive)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrConfigNotFound
	}
	return err
}

// DeleteConfig удаляет конфигурацию целевого пользователя.
func (s *Service) DeleteConfig(ctx context.Context, configID, targetTgID int64) error {
	err := s.repo.DeleteConfig(ctx, configID, targetTgID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrConfigNotFound
	}
	return err
}
