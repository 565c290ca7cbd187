// Package sheet реализует модальную карточку конфигурации: текст
// подключения, его сканируемое представление и копирование в буфер
// обмена с резервным путём.
package sheet

import (
	"log/slog"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/magabrotheeeer/vpn-miniapp/internal/lib/sl"
)

// qrUnavailableNotice показывается вместо пустой области, когда
// сканируемое представление собрать не удалось.
const qrUnavailableNotice = "QR недоступен, скопируйте текст вручную"

// Clipboard записывает текст в системный буфер обмена.
type Clipboard interface {
	WriteText(text string) error
}

// Presenter отрисовывает карточку.
type Presenter interface {
	ShowSheet(title, configText, scannable string)
	HideSheet()
	Toast(msg string)
}

// Encoder строит сканируемое представление текста.
type Encoder func(text string) (string, error)

// TerminalQR кодирует текст в QR для моноширинного вывода.
func TerminalQR(text string) (string, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return qr.ToSmallString(false), nil
}

// Sheet карточка одной конфигурации.
type Sheet struct {
	presenter Presenter
	encode    Encoder
	primary   Clipboard
	fallback  Clipboard
	log       *slog.Logger

	open    bool
	current string
}

// New создает карточку. fallback может быть nil, если резервного пути нет.
func New(presenter Presenter, encode Encoder, primary, fallback Clipboard, log *slog.Logger) *Sheet {
	return &Sheet{
		presenter: presenter,
		encode:    encode,
		primary:   primary,
		fallback:  fallback,
		log:       log,
	}
}

// Open показывает карточку: текст дословно, рядом сканируемое
// представление. Ошибка кодирования не прячется — вместо QR выводится
// текстовое уведомление.
func (s *Sheet) Open(title, configText string) {
	scannable, err := s.encode(configText)
	if err != nil {
		s.log.Warn("failed to encode scannable form", sl.Err(err))
		scannable = qrUnavailableNotice
	}
	s.open = true
	s.current = configText
	s.presenter.ShowSheet(title, configText, scannable)
}

// Close скрывает карточку. Повторный вызов безопасен.
func (s *Sheet) Close() {
	if !s.open {
		return
	}
	s.open = false
	s.current = ""
	s.presenter.HideSheet()
}

// IsOpen сообщает, открыта ли карточка.
func (s *Sheet) IsOpen() bool {
	return s.open
}

// Copy копирует текст открытой карточки в буфер обмена. Сначала
// основной путь, при отказе резервный; наружу ошибка не выходит,
// результат отражается только тостом.
func (s *Sheet) Copy() {
	if !s.open || s.current == "" {
		return
	}
	err := s.primary.WriteText(s.current)
	if err == nil {
		s.presenter.Toast("Скопировано")
		return
	}
	s.log.Warn("primary clipboard failed", sl.Err(err))

	if s.fallback != nil {
		err = s.fallback.WriteText(s.current)
		if err == nil {
			s.presenter.Toast("Скопировано")
			return
		}
		s.log.Warn("fallback clipboard failed", sl.Err(err))
	}
	s.presenter.Toast("Не удалось скопировать")
}
