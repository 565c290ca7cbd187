package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateInvite сохраняет новый код приглашения с целевой ролью.
func (s *Storage) CreateInvite(ctx context.Context, code, role string) error {
	const op = "repository.CreateInvite"

	query := `INSERT INTO invites (code, role, is_used) VALUES ($1, $2, false)`
	if _, err := s.DB.ExecContext(ctx, query, code, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RedeemInvite помечает код использованным и возвращает его роль.
// Условие is_used = false делает погашение одноразовым даже при
// конкурентных запросах: второй UPDATE не затронет ни одной строки.
func (s *Storage) RedeemInvite(ctx context.Context, code string, usedByTgID int64) (string, error) {
	const op = "repository.RedeemInvite"

	query := `UPDATE invites
			  SET is_used = true, used_by_tg_id = $1, used_at = now()
			  WHERE code = $2 AND is_used = false
			  RETURNING role`
	var role string
	err := s.DB.QueryRowContext(ctx, query, usedByTgID, code).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return role, nil
}
