package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/vpn-miniapp/internal/client/transport"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// newBackendStub поднимает httptest-сервер с минимальным набором
// конечных точек для прогона цикла команд.
func newBackendStub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","data":{"profile":{"tg_user_id":1,"first_name":"Admin","role":"admin","balance":150}}}`))
	})
	mux.HandleFunc("/api/configs/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","data":{"configs":[{"id":1,"title":"Amsterdam","config_text":"vless://a","is_active":true},{"id":2,"title":"Frankfurt","config_text":"vless://b","is_active":false}]}}`))
	})
	mux.HandleFunc("/api/tariffs/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","data":{"tariffs":[{"id":1,"name":"1 месяц","price":150,"period_months":1}]}}`))
	})
	mux.HandleFunc("/api/admin/users/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","data":{"users":[{"tg_user_id":1,"first_name":"Admin","role":"admin","balance":150},{"tg_user_id":42,"first_name":"Ivan","role":"user","balance":0}]}}`))
	})
	mux.HandleFunc("/api/admin/balance", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK"}`))
	})
	mux.HandleFunc("/api/admin/configs/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","data":{"configs":[{"id":5,"title":"Frankfurt","config_text":"vless://secret","is_active":false}]}}`))
	})
	return httptest.NewServer(mux)
}

func runScript(t *testing.T, srv *httptest.Server, script string) string {
	t.Helper()

	out := &bytes.Buffer{}
	oldPrintln := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(out, a...) }
	defer func() { printlnFn = oldPrintln }()

	scanner := bufio.NewScanner(strings.NewReader(script))
	view := NewTermView(out, scanner)
	app := New(transport.New(srv.URL, "query_id=abc", time.Second), view, scanner, newNoopLogger())
	app.Run(context.Background())
	return out.String()
}

func TestApp_Run_HomeAndSheet(t *testing.T) {
	srv := newBackendStub()
	defer srv.Close()

	out := runScript(t, srv, "open 1\ncopy\nclose\nexit\n")

	assert.Contains(t, out, "150.00 ₽")
	assert.Contains(t, out, "Amsterdam")
	assert.Contains(t, out, "vless://a")
	assert.Contains(t, out, "Скопировано")
	assert.Contains(t, out, "карточка закрыта")
}

func TestApp_Run_AdminBalance(t *testing.T) {
	srv := newBackendStub()
	defer srv.Close()

	out := runScript(t, srv, "admin\nuser 42\nbalance abc\nbalance 300\nexit\n")

	// нечисловой ввод отклонён локально, числовой применён
	assert.Contains(t, out, "Введите число")
	assert.Contains(t, out, "300.00 ₽")
}

func TestApp_Run_InactiveConfigNotOpenable(t *testing.T) {
	srv := newBackendStub()
	defer srv.Close()

	out := runScript(t, srv, "open 2\nexit\n")

	assert.Contains(t, out, "Конфигурация отключена")
	assert.NotContains(t, out, "vless://b")
}

func TestApp_Run_AdminOpensInactiveConfig(t *testing.T) {
	srv := newBackendStub()
	defer srv.Close()

	out := runScript(t, srv, "admin\nuser 42\nconfigs\nopen 5\nexit\n")

	// на экране конфигураций админ-консоли открывается и отключённая запись
	assert.Contains(t, out, "=== Frankfurt ===")
	assert.Contains(t, out, "vless://secret")
	assert.NotContains(t, out, "Конфигурация не найдена")
	assert.NotContains(t, out, "Конфигурация отключена")
}

func TestApp_Run_Plans(t *testing.T) {
	srv := newBackendStub()
	defer srv.Close()

	out := runScript(t, srv, "plans\nexit\n")

	assert.Contains(t, out, "1 месяц")
}

func TestApp_Run_UnknownCommand(t *testing.T) {
	srv := newBackendStub()
	defer srv.Close()

	out := runScript(t, srv, "frobnicate\nexit\n")

	assert.Contains(t, out, "Неизвестная команда")
}
