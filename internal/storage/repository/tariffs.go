package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// ListTariffs возвращает каталог тарифов по возрастанию периода.
func (s *Storage) ListTariffs(ctx context.Context) ([]*models.Tariff, error) {
	const op = "repository.ListTariffs"

	query := `SELECT id, name, price, period_months
			  FROM tariffs
			  ORDER BY period_months ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Tariff
	for rows.Next() {
		var t models.Tariff
		if err = rows.Scan(&t.ID, &t.Name, &t.Price, &t.PeriodMonths); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTariff возвращает тариф по ID.
func (s *Storage) GetTariff(ctx context.Context, id int64) (*models.Tariff, error) {
	const op = "repository.GetTariff"

	query := `SELECT id, name, price, period_months FROM tariffs WHERE id = $1`
	var t models.Tariff
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Price, &t.PeriodMonths)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}
