// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — упростить формирование структурированных полей лога
// и не допустить попадания чувствительных значений (initData) в вывод.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to load profile", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Masked возвращает атрибут с усечённым значением: первые n символов и
// длина. Используется для initData и кодов приглашений — целиком их
// логировать нельзя.
func Masked(key, value string, n int) slog.Attr {
	if len(value) <= n {
		return slog.String(key, value)
	}
	return slog.Group(key,
		slog.String("prefix", value[:n]),
		slog.Int("len", len(value)),
	)
}
