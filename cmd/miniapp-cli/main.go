package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/magabrotheeeer/vpn-miniapp/internal/client/cli"
	"github.com/magabrotheeeer/vpn-miniapp/internal/client/transport"
)

// Config настройки терминального клиента. initData выдаёт хост-платформа;
// без него клиент останавливается до первого запроса.
type Config struct {
	BaseURL  string        `env:"MINIAPP_BASE_URL" env-default:"http://localhost:8080"`
	InitData string        `env:"TG_INIT_DATA"`
	Timeout  time.Duration `env:"MINIAPP_TIMEOUT" env-default:"10s"`
}

func main() {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("cannot read environment", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logFile, err := os.OpenFile("miniapp-cli.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("cannot open log file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close()
	}()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := bufio.NewScanner(os.Stdin)
	view := cli.NewTermView(os.Stdout, scanner)
	client := transport.New(cfg.BaseURL, cfg.InitData, cfg.Timeout)

	app := cli.New(client, view, scanner, logger)
	app.Run(ctx)
}
