package models

import "time"

// StoredConfig сохранённая конфигурация подключения. Принадлежит ровно
// одному пользователю; текст конфигурации непрозрачен для сервера.
type StoredConfig struct {
	ID         int64     `json:"id"`
	TgUserID   int64     `json:"tg_user_id"`
	Title      string    `json:"title"`
	ConfigText string    `json:"config_text"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}
