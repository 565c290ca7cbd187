package models

import "time"

// Tariff запись каталога тарифов.
type Tariff struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	PeriodMonths int     `json:"period_months"`
}

// TariffSnapshot тариф пользователя в составе профиля. ExpiresAt
// вычисляется от назначения тарифа и носит справочный характер.
type TariffSnapshot struct {
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	PeriodMonths int       `json:"period_months"`
	ExpiresAt    time.Time `json:"expires_at"`
}
