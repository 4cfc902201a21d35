package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"example.com/orderdesk/internal/infra/apiclient"
	"example.com/orderdesk/internal/infra/logging"
	"example.com/orderdesk/internal/interface/tui"
	"example.com/orderdesk/internal/usecase/desk"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", getenv("ORDERDESK_API", "http://localhost:8080"), "order API base URL")
	email := flag.String("email", os.Getenv("ORDERDESK_EMAIL"), "operator email")
	password := flag.String("password", os.Getenv("ORDERDESK_PASSWORD"), "operator password")
	logPath := flag.String("log", getenv("ORDERDESK_LOG", "ordersdesk.log"), "log file")
	logLevel := flag.String("log-level", getenv("LOG_LEVEL", "info"), "debug, info, warn or error")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	if err := run(*apiURL, *email, *password, *logPath, *logLevel, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "ordersdesk:", err)
		os.Exit(1)
	}
}

func run(apiURL, email, password, logPath, logLevel string, timeout time.Duration) error {
	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.New(logFile, logLevel, "text")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if email == "" || password == "" {
		return fmt.Errorf("email and password are required (-email/-password or ORDERDESK_EMAIL/ORDERDESK_PASSWORD)")
	}

	client := apiclient.New(apiURL, timeout)
	loginCtx, cancel := context.WithTimeout(ctx, timeout)
	session, err := client.Login(loginCtx, email, password)
	cancel()
	if err != nil {
		logger.Error("login failed", slog.String("api", apiURL), slog.Any("error", err))
		return fmt.Errorf("login: %w", err)
	}
	logger.Info("logged in", slog.String("email", session.Email), slog.String("role", session.Role))

	bridge := tui.NewBridge()
	defer bridge.Close()
	d := desk.New(client, desk.WithNotifier(bridge), desk.WithLogger(logger))

	model := tui.New(ctx, d, bridge, tui.WithOperator(session.Name))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
