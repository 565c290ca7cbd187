package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// GetUserByTgID возвращает пользователя по его Telegram ID.
func (s *Storage) GetUserByTgID(ctx context.Context, tgUserID int64) (*models.User, error) {
	const op = "repository.GetUserByTgID"

	query := `SELECT id, tg_user_id, first_name, username, role, balance, tariff_id, created_at
			  FROM users
			  WHERE tg_user_id = $1`
	u := &models.User{}
	var tariffID sql.NullInt64
	row := s.DB.QueryRowContext(ctx, query, tgUserID)
	if err := row.Scan(&u.ID, &u.TgUserID, &u.FirstName, &u.Username,
		&u.Role, &u.Balance, &tariffID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if tariffID.Valid {
		u.TariffID = &tariffID.Int64
	}
	return u, nil
}

// UpdateTgIdentity обновляет имя и username по данным из initData.
// Новых пользователей не создаёт: доступ выдают только приглашения.
func (s *Storage) UpdateTgIdentity(ctx context.Context, tg *models.TgUser) error {
	const op = "repository.UpdateTgIdentity"

	query := `UPDATE users
			  SET first_name = $1, username = $2
			  WHERE tg_user_id = $3`
	if _, err := s.DB.ExecContext(ctx, query, tg.FirstName, tg.Username, tg.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreateUser создаёт пользователя с заданной ролью. Используется при
// погашении кода приглашения.
func (s *Storage) CreateUser(ctx context.Context, tg *models.TgUser, role string) error {
	const op = "repository.CreateUser"

	query := `INSERT INTO users (tg_user_id, first_name, username, role, balance, created_at)
			  VALUES ($1, $2, $3, $4, 0, now())
			  ON CONFLICT (tg_user_id) DO UPDATE SET
			      first_name = excluded.first_name,
			      username = excluded.username`
	if _, err := s.DB.ExecContext(ctx, query, tg.ID, tg.FirstName, tg.Username, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUsers возвращает всех пользователей, администраторы первыми.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "repository.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tg_user_id, first_name, username, role, balance, tariff_id, created_at
			  FROM users
			  ORDER BY role DESC, tg_user_id ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		var tariffID sql.NullInt64
		if err = rows.Scan(&u.ID, &u.TgUserID, &u.FirstName, &u.Username,
			&u.Role, &u.Balance, &tariffID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if tariffID.Valid {
			u.TariffID = &tariffID.Int64
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetBalance устанавливает баланс пользователя.
func (s *Storage) SetBalance(ctx context.Context, tgUserID int64, balance float64) error {
	const op = "repository.SetBalance"

	query := `UPDATE users SET balance = $1 WHERE tg_user_id = $2`
	res, err := s.DB.ExecContext(ctx, query, balance, tgUserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTariff назначает пользователю тариф из каталога.
func (s *Storage) SetTariff(ctx context.Context, tgUserID, tariffID int64) error {
	const op = "repository.SetTariff"

	query := `UPDATE users SET tariff_id = $1 WHERE tg_user_id = $2`
	res, err := s.DB.ExecContext(ctx, query, tariffID, tgUserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser удаляет пользователя вместе с его конфигурациями.
func (s *Storage) DeleteUser(ctx context.Context, tgUserID int64) error {
	const op = "repository.DeleteUser"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM user_configs WHERE tg_user_id = $1`, tgUserID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE tg_user_id = $1`, tgUserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
