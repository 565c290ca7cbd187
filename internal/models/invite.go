package models

import "time"

// Invite одноразовый код приглашения. Создаётся администратором,
// погашается неаутентифицированным пользователем для получения профиля.
type Invite struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	Role       string     `json:"role"`
	IsUsed     bool       `json:"is_used"`
	UsedByTgID *int64     `json:"used_by_tg_id,omitempty"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}
