// Package cli терминальная оболочка мини-аппа: цикл команд поверх
// бутстрапа сессии, карточки конфигурации и админ-консоли. Логика
// экранов живёт в пакетах session, sheet и admin; здесь только разбор
// команд и ввод-вывод.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	adminclient "github.com/magabrotheeeer/vpn-miniapp/internal/client/admin"
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/qrcapture"
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/router"
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/session"
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/sheet"
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/transport"
)

// printlnFn шов для тестов пользовательского вывода.
var printlnFn = fmt.Println

// App связывает транспорт, сессию, карточку и админ-консоль в один
// терминальный интерфейс.
type App struct {
	log     *slog.Logger
	view    *TermView
	router  *router.Router
	boot    *session.Bootstrapper
	sheet   *sheet.Sheet
	api     *session.API
	adapter *adminclient.API
	console *adminclient.Console

	scanner *bufio.Scanner
	scanned string
}

// New собирает приложение поверх транспортного клиента.
func New(t *transport.Client, view *TermView, scanner *bufio.Scanner, log *slog.Logger) *App {
	r := router.New(view)
	api := session.NewAPI(t)
	boot := session.New(api, r, view, log)
	sh := sheet.New(view, sheet.TerminalQR, NewOSC52Clipboard(view.out), NewEchoClipboard(view.out), log)

	return &App{
		log:     log,
		view:    view,
		router:  r,
		boot:    boot,
		sheet:   sh,
		api:     api,
		adapter: adminclient.NewAPI(t),
		scanner: scanner,
	}
}

// Run выполняет бутстрап и крутит цикл команд до EOF или exit.
func (a *App) Run(ctx context.Context) {
	outcome := a.boot.Run(ctx)
	if outcome == session.OutcomeNoHost || outcome == session.OutcomeFailed {
		return
	}

	for {
		printlnFn(fmt.Sprintf("vpn [%s] > ", a.router.Active()))
		if !a.scanner.Scan() {
			return
		}
		parts := strings.Fields(a.scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			a.printHelp()

		case "redeem":
			a.cmdRedeem(ctx, args)

		case "home":
			a.showHome()

		case "plans":
			a.cmdPlans(ctx)

		case "topup":
			a.cmdTopup()

		case "open":
			a.cmdOpen(args)

		case "copy":
			a.sheet.Copy()

		case "close":
			a.sheet.Close()

		case "scan":
			a.cmdScan(ctx, args)

		case "admin":
			a.cmdAdmin(ctx)

		case "user":
			a.cmdUser(args)

		case "balance":
			a.cmdBalance(ctx, args)

		case "tariffs":
			a.withConsole(func(c *adminclient.Console) { c.OpenTariffPicker(ctx) })

		case "settariff":
			a.cmdSetTariff(ctx, args)

		case "invite":
			a.cmdInvite(ctx, args)

		case "deluser":
			a.withConsole(func(c *adminclient.Console) { c.DeleteUser(ctx) })

		case "configs":
			a.withConsole(func(c *adminclient.Console) { c.OpenConfigs(ctx) })

		case "addcfg":
			a.cmdAddConfig(ctx, args)

		case "toggle":
			a.cmdToggle(ctx, args)

		case "delcfg":
			a.cmdDeleteConfig(ctx, args)

		case "back":
			a.cmdBack(ctx)

		case "exit", "quit":
			return

		default:
			printlnFn("Неизвестная команда:", cmd)
		}
	}
}

func (a *App) printHelp() {
	if a.router.Active() == router.PageInvite {
		printlnFn("Команды: redeem <код>, exit")
		return
	}
	printlnFn("Команды: home, plans, topup, open <id>, copy, close, scan <файл>, back, exit")
	if a.view.HasAdminEntry() {
		printlnFn("Админ: admin, user <id>, balance <сумма>, tariffs, settariff <id>, invite <роль>, deluser, configs, addcfg <заголовок> [текст], toggle <id>, delcfg <id>")
	}
}

func (a *App) cmdRedeem(ctx context.Context, args []string) {
	code := ""
	if len(args) > 0 {
		code = args[0]
	}
	a.boot.Redeem(ctx, code)
}

// showHome перерисовывает главный экран из сохранённого состояния.
func (a *App) showHome() {
	state := a.boot.State()
	if state.Profile == nil {
		return
	}
	a.view.RenderHome(state.Profile)
	a.view.RenderOwnConfigs(state.Configs)
	a.router.Show(router.PageHome)
}

// cmdPlans показывает каталог тарифов.
func (a *App) cmdPlans(ctx context.Context) {
	tariffs, err := a.api.ListTariffs(ctx)
	if err != nil {
		a.view.RenderError("Не удалось загрузить тарифы")
		return
	}
	a.view.RenderTariffPicker(tariffs, false)
	a.router.Show(router.PageTariffs)
}

// cmdTopup показывает экран пополнения. Платежи не подключены, кнопки
// остаются заглушками.
func (a *App) cmdTopup() {
	a.view.Toast("Пополнение пока недоступно")
	a.router.Show(router.PageTopup)
}

// cmdOpen открывает карточку конфигурации. На экране конфигураций
// админ-консоли открывается запись выбранного пользователя, в том
// числе отключённая; иначе ищется собственная активная.
func (a *App) cmdOpen(args []string) {
	if len(args) == 0 {
		a.view.RenderError("Укажите номер конфигурации")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		a.view.RenderError("Номер конфигурации должен быть числом")
		return
	}
	if a.router.Active() == router.PageAdminConfigs && a.console != nil {
		a.console.OpenConfig(id)
		return
	}
	for _, cfg := range a.boot.State().Configs {
		if cfg.ID != id {
			continue
		}
		// отключённая конфигурация для владельца не открывается
		if !cfg.IsActive {
			a.view.RenderError("Конфигурация отключена")
			return
		}
		a.sheet.Open(cfg.Title, cfg.ConfigText)
		return
	}
	a.view.RenderError("Конфигурация не найдена")
}

// cmdScan распознаёт QR-код из файла изображения и запоминает текст
// для последующего addcfg.
func (a *App) cmdScan(ctx context.Context, args []string) {
	if len(args) == 0 {
		a.view.RenderError("Укажите файл с QR-кодом")
		return
	}

	capture := qrcapture.New(NewFileSource(args[0]), qrcapture.NewZXingDecoder(), 10*time.Millisecond)
	scanCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	text, err := capture.Run(scanCtx)
	if err != nil {
		a.view.RenderError("Не удалось открыть источник")
		return
	}
	if text == "" {
		a.view.RenderError("QR-код не распознан")
		return
	}
	a.scanned = text
	a.view.Toast("QR-код распознан, текст подставлен в форму")
}

func (a *App) cmdAdmin(ctx context.Context) {
	profile := a.boot.State().Profile
	if profile == nil || !profile.IsAdmin() {
		a.view.RenderError("Админ-консоль недоступна")
		return
	}
	if a.console == nil {
		a.console = adminclient.New(a.adapter, a.router, a.view, a.view, a.sheet, profile.TgUserID, func(balance float64) {
			if p := a.boot.State().Profile; p != nil {
				p.Balance = balance
			}
		}, a.log)
	}
	a.console.Open(ctx)
}

// withConsole выполняет действие, если консоль открыта.
func (a *App) withConsole(fn func(c *adminclient.Console)) {
	if a.console == nil {
		a.view.RenderError("Сначала откройте админ-консоль: admin")
		return
	}
	fn(a.console)
}

func (a *App) cmdUser(args []string) {
	a.withConsole(func(c *adminclient.Console) {
		id, err := parseID(args)
		if err != nil {
			a.view.RenderError("Укажите идентификатор пользователя")
			return
		}
		c.OpenUser(id)
	})
}

func (a *App) cmdBalance(ctx context.Context, args []string) {
	a.withConsole(func(c *adminclient.Console) {
		c.SetBalance(ctx, strings.Join(args, " "))
	})
}

func (a *App) cmdSetTariff(ctx context.Context, args []string) {
	a.withConsole(func(c *adminclient.Console) {
		id, err := parseID(args)
		if err != nil {
			a.view.RenderError("Укажите идентификатор тарифа")
			return
		}
		c.SetTariff(ctx, id)
	})
}

func (a *App) cmdInvite(ctx context.Context, args []string) {
	a.withConsole(func(c *adminclient.Console) {
		role := "user"
		if len(args) > 0 {
			role = args[0]
		}
		c.CreateInvite(ctx, role)
	})
}

// cmdAddConfig добавляет конфигурацию. Текст берётся из аргументов или
// из последнего распознанного QR-кода.
func (a *App) cmdAddConfig(ctx context.Context, args []string) {
	a.withConsole(func(c *adminclient.Console) {
		title := ""
		text := ""
		if len(args) > 0 {
			title = args[0]
		}
		if len(args) > 1 {
			text = strings.Join(args[1:], " ")
		}
		if text == "" {
			text = a.scanned
		}
		c.AddConfig(ctx, title, text)
		a.scanned = ""
	})
}

func (a *App) cmdToggle(ctx context.Context, args []string) {
	a.withConsole(func(c *adminclient.Console) {
		id, err := parseID(args)
		if err != nil {
			a.view.RenderError("Укажите идентификатор конфигурации")
			return
		}
		c.ToggleConfig(ctx, id)
	})
}

func (a *App) cmdDeleteConfig(ctx context.Context, args []string) {
	a.withConsole(func(c *adminclient.Console) {
		id, err := parseID(args)
		if err != nil {
			a.view.RenderError("Укажите идентификатор конфигурации")
			return
		}
		c.DeleteConfig(ctx, id)
	})
}

// cmdBack возвращает на жёстко заданную цель возврата; возврат на
// главную перерисовывает её из состояния.
func (a *App) cmdBack(ctx context.Context) {
	a.router.Back()
	if a.router.Active() == router.PageHome {
		a.showHome()
	} else if a.console != nil {
		switch a.router.Active() {
		case router.PageAdminUsers:
			a.console.Open(ctx)
		case router.PageAdminUserDetail:
			if row := a.console.Current(); row != nil {
				a.view.RenderUserDetail(row)
			}
		}
	}
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("cli: missing identifier")
	}
	return strconv.ParseInt(args[0], 10, 64)
}
