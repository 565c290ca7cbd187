// Package models содержит доменные структуры мини-аппа: пользователей,
// тарифы, сохранённые конфигурации и коды приглашений, а также DTO для
// JSON-запросов и ответов.
package models

import "time"

// Роли пользователей. Роль авторитетна только в том виде, в котором её
// вернул бекенд при текущем бутстрапе.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// TgUser данные пользователя Telegram, извлечённые из initData.
type TgUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// User запись пользователя в базе данных.
type User struct {
	ID        int64
	TgUserID  int64
	FirstName string
	Username  string
	Role      string
	Balance   float64
	TariffID  *int64
	CreatedAt time.Time
}

// Profile серверный снимок пользователя, отдаваемый клиенту при
// аутентификации и в админском списке.
type Profile struct {
	TgUserID  int64           `json:"tg_user_id"`
	FirstName string          `json:"first_name"`
	Username  string          `json:"username"`
	Role      string          `json:"role"`
	Balance   float64         `json:"balance"`
	Tariff    *TariffSnapshot `json:"tariff,omitempty"`
}

// IsAdmin сообщает, является ли профиль административным.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
