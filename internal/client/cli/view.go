package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	adminclient "github.com/magabrotheeeer/vpn-miniapp/internal/client/admin"
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/router"
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/session"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

// TermView терминальная реализация всех экранов мини-аппа. Вся логика
// живёт в session, admin и sheet; здесь только вывод и подтверждения.
type TermView struct {
	out io.Writer
	in  *bufio.Scanner

	adminEntry bool
}

// NewTermView создает терминальный рендерер.
func NewTermView(out io.Writer, in *bufio.Scanner) *TermView {
	return &TermView{out: out, in: in}
}

func (v *TermView) printf(format string, args ...any) {
	fmt.Fprintf(v.out, format+"\n", args...)
}

// RenderPage реализует router.Renderer.
func (v *TermView) RenderPage(page router.Page) {
	v.printf("--- %s ---", page)
}

// RenderHome показывает баланс, тариф и срок следующего платежа.
func (v *TermView) RenderHome(profile *models.Profile) {
	v.printf("Привет, %s!", profile.FirstName)
	v.printf("Баланс: %s", session.FormatBalance(profile.Balance))
	if profile.Tariff != nil {
		v.printf("Тариф: %s — %s, следующий платёж %s",
			profile.Tariff.Name,
			session.FormatBalance(profile.Tariff.Price),
			profile.Tariff.ExpiresAt.Format("02.01.2006"))
	} else {
		v.printf("Тариф не выбран")
	}
}

// RenderOwnConfigs показывает список конфигураций пользователя.
func (v *TermView) RenderOwnConfigs(configs []*models.StoredConfig) {
	if len(configs) == 0 {
		v.printf("Конфигураций пока нет")
		return
	}
	v.printf("Конфигурации:")
	for _, cfg := range configs {
		// отключённые показываются серыми и не открываются
		if cfg.IsActive {
			v.printf("  [%d] %s", cfg.ID, cfg.Title)
		} else {
			v.printf("  [%d] %s (отключена)", cfg.ID, cfg.Title)
		}
	}
}

// RenderOwnConfigsError показывает заглушку вместо списка.
func (v *TermView) RenderOwnConfigsError() {
	v.printf("Не удалось загрузить конфигурации")
}

// AttachAdminEntry добавляет пункт админ-консоли в меню.
func (v *TermView) AttachAdminEntry() {
	v.adminEntry = true
	v.printf("Доступна админ-консоль: команда admin")
}

// HasAdminEntry сообщает, добавлен ли пункт админ-консоли.
func (v *TermView) HasAdminEntry() bool {
	return v.adminEntry
}

// RenderInviteError показывает ошибку у поля ввода кода.
func (v *TermView) RenderInviteError(msg string) {
	v.printf("Ошибка: %s", msg)
}

// SetInviteBusy блокирует кнопку отправки кода; в терминале только
// сообщает о состоянии.
func (v *TermView) SetInviteBusy(busy bool) {
	if busy {
		v.printf("Проверяем код...")
	}
}

// RenderFatal показывает блокирующий экран с текстом ошибки.
func (v *TermView) RenderFatal(msg string) {
	v.printf("Фатальная ошибка: %s", msg)
}

// RenderUsers показывает админский список пользователей.
func (v *TermView) RenderUsers(rows []*adminclient.UserRow) {
	v.printf("Пользователи:")
	for _, row := range rows {
		name := row.FirstName
		if row.Username != "" {
			name += " @" + row.Username
		}
		v.printf("  [%d] %s (%s) %s %s", row.TgUserID, name, row.Role, session.FormatBalance(row.Balance), row.TariffName)
	}
}

// RenderUserDetail показывает карточку пользователя.
func (v *TermView) RenderUserDetail(row *adminclient.UserRow) {
	v.printf("Пользователь %d: %s", row.TgUserID, row.FirstName)
	v.printf("  Роль: %s", row.Role)
	v.printf("  Баланс: %s", session.FormatBalance(row.Balance))
	if row.TariffName != "" {
		v.printf("  Тариф: %s", row.TariffName)
	}
}

// RenderConfigs показывает конфигурации пользователя, включая отключённые.
// Текст конфигурации обрезается до короткого превью.
func (v *TermView) RenderConfigs(row *adminclient.UserRow, configs []*models.StoredConfig) {
	v.printf("Конфигурации пользователя %d:", row.TgUserID)
	for _, cfg := range configs {
		state := "активна"
		if !cfg.IsActive {
			state = "отключена"
		}
		v.printf("  [%d] %s (%s) %s", cfg.ID, cfg.Title, state, previewText(cfg.ConfigText))
	}
}

// previewRunes длина превью текста конфигурации в списке.
const previewRunes = 24

func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "…"
}

// RenderTariffPicker показывает выбор тарифа.
func (v *TermView) RenderTariffPicker(tariffs []*models.Tariff, stale bool) {
	if stale {
		v.printf("! Каталог мог устареть, показаны встроенные тарифы")
	}
	v.printf("Тарифы:")
	for _, t := range tariffs {
		v.printf("  [%d] %s — %s", t.ID, t.Name, session.FormatBalance(t.Price))
	}
}

// RenderInviteCode показывает выпущенный код приглашения.
func (v *TermView) RenderInviteCode(code string) {
	v.printf("Код приглашения: %s", code)
}

// RenderFieldError показывает ошибку у поля ввода.
func (v *TermView) RenderFieldError(msg string) {
	v.printf("Ошибка: %s", msg)
}

// RenderError показывает неблокирующее сообщение об ошибке.
func (v *TermView) RenderError(msg string) {
	v.printf("Ошибка: %s", msg)
}

// ClearComposer очищает форму добавления конфигурации; в терминале
// форма не сохраняется между командами.
func (v *TermView) ClearComposer() {}

// ShowSheet реализует sheet.Presenter.
func (v *TermView) ShowSheet(title, configText, scannable string) {
	v.printf("=== %s ===", title)
	v.printf("%s", configText)
	v.printf("%s", scannable)
}

// HideSheet скрывает карточку.
func (v *TermView) HideSheet() {
	v.printf("=== карточка закрыта ===")
}

// Toast показывает короткое всплывающее сообщение.
func (v *TermView) Toast(msg string) {
	v.printf("* %s", msg)
}

// Confirm запрашивает явное подтверждение необратимого действия.
func (v *TermView) Confirm(prompt string) bool {
	v.printf("%s [y/N]", prompt)
	if !v.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(v.in.Text()))
	return answer == "y" || answer == "yes" || answer == "д" || answer == "да"
}
