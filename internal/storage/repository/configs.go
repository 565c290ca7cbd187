package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// ListConfigs возвращает конфигурации пользователя, новые первыми.
func (s *Storage) ListConfigs(ctx context.Context, tgUserID int64) ([]*models.StoredConfig, error) {
	const op = "repository.ListConfigs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tg_user_id, title, config_text, is_active, created_at
			  FROM user_configs
			  WHERE tg_user_id = $1
			  ORDER BY id DESC`
	rows, err := s.DB.QueryContext(ctx, query, tgUserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.StoredConfig
	for rows.Next() {
		var c models.StoredConfig
		if err = rows.Scan(&c.ID, &c.TgUserID, &c.Title, &c.ConfigText,
			&c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AddConfig сохраняет новую конфигурацию и возвращает её ID.
// Новая конфигурация всегда активна.
func (s *Storage) AddConfig(ctx context.Context, tgUserID int64, title, configText string) (int64, error) {
	const op = "repository.AddConfig"

	var id int64
	query := `INSERT INTO user_configs (tg_user_id, title, config_text, is_active, created_at)
			  VALUES ($1, $2, $3, true, now())
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, tgUserID, title, configText).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateConfig полностью заменяет запись конфигурации: заголовок, текст
// и флаг активности передаются всегда, частичного обновления нет.
func (s *Storage) UpdateConfig(ctx context.Context, configID, tgUserID int64, title, configText string, isActive bool) error {
	const op = "repository.UpdateConfig"

	query := `UPDATE user_configs
			  SET title = $1, config_text = $2, is_active = $3
			  WHERE id = $4 AND tg_user_id = $5`
	res, err := s.DB.ExecContext(ctx, query, title, configText, isActive, configID, tgUserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteConfig удаляет конфигурацию пользователя.
func (s *Storage) DeleteConfig(ctx context.Context, configID, tgUserID int64) error {
	const op = "repository.DeleteConfig"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM user_configs WHERE id = $1 AND tg_user_id = $2`, configID, tgUserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
