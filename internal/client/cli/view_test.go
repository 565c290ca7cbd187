package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	adminclient "github.com/magabrotheeeer/vpn-miniapp/internal/client/admin"
	"github.com/magabrotheeeer/vpn-miniapp/internal/models"
)

func newTestView(input string) (*TermView, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewTermView(out, bufio.NewScanner(strings.NewReader(input))), out
}

func TestTermView_RenderHome(t *testing.T) {
	view, out := newTestView("")
	view.RenderHome(&models.Profile{
		FirstName: "Ivan",
		Balance:   150,
		Tariff: &models.TariffSnapshot{
			Name:      "1 месяц",
			ExpiresAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		},
	})

	assert.Contains(t, out.String(), "150.00 ₽")
	assert.Contains(t, out.String(), "1 месяц")
	assert.Contains(t, out.String(), "01.10.2026")
}

func TestTermView_RenderHome_NoTariff(t *testing.T) {
	view, out := newTestView("")
	view.RenderHome(&models.Profile{FirstName: "Ivan"})

	assert.Contains(t, out.String(), "Тариф не выбран")
}

func TestTermView_AttachAdminEntry(t *testing.T) {
	view, _ := newTestView("")
	assert.False(t, view.HasAdminEntry())
	view.AttachAdminEntry()
	assert.True(t, view.HasAdminEntry())
}

func TestTermView_RenderConfigs_ShowsInactive(t *testing.T) {
	view, out := newTestView("")
	view.RenderConfigs(&adminclient.UserRow{TgUserID: 42}, []*models.StoredConfig{
		{ID: 1, Title: "Amsterdam", ConfigText: "vless://a", IsActive: true},
		{ID: 2, Title: "Frankfurt", ConfigText: "vless://b", IsActive: false},
	})

	assert.Contains(t, out.String(), "активна")
	assert.Contains(t, out.String(), "отключена")
	// рядом с заголовком показывается превью текста
	assert.Contains(t, out.String(), "vless://a")
}

func TestTermView_RenderConfigs_TruncatesPreview(t *testing.T) {
	long := "vless://0123456789abcdef0123456789abcdef@example.com:443"

	view, out := newTestView("")
	view.RenderConfigs(&adminclient.UserRow{TgUserID: 42}, []*models.StoredConfig{
		{ID: 1, Title: "Amsterdam", ConfigText: long, IsActive: true},
	})

	assert.NotContains(t, out.String(), long)
	assert.Contains(t, out.String(), string([]rune(long)[:previewRunes])+"…")
}

func TestTermView_RenderTariffPicker_Stale(t *testing.T) {
	view, out := newTestView("")
	view.RenderTariffPicker([]*models.Tariff{{ID: 1, Name: "1 месяц", Price: 150}}, true)

	assert.Contains(t, out.String(), "устареть")
}

func TestTermView_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "russian yes", input: "да\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty defaults to no", input: "\n", want: false},
		{name: "eof defaults to no", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, _ := newTestView(tt.input)
			assert.Equal(t, tt.want, view.Confirm("Удалить?"))
		})
	}
}

func TestOSC52Clipboard(t *testing.T) {
	out := &bytes.Buffer{}
	clipboard := NewOSC52Clipboard(out)

	assert.NoError(t, clipboard.WriteText("vless://a"))
	assert.Contains(t, out.String(), "\x1b]52;c;")
}

func TestEchoClipboard(t *testing.T) {
	out := &bytes.Buffer{}
	clipboard := NewEchoClipboard(out)

	assert.NoError(t, clipboard.WriteText("vless://a"))
	assert.Contains(t, out.String(), "vless://a")
}
