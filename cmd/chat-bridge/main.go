// ABOUTME: Entry point for the chat-bridge server
// ABOUTME: Mediates a remote customer-chat backend for host applications

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/visitlink/chat-bridge/internal/auth"
	"github.com/visitlink/chat-bridge/internal/chat"
	"github.com/visitlink/chat-bridge/internal/config"
	"github.com/visitlink/chat-bridge/internal/events"
	"github.com/visitlink/chat-bridge/internal/gateway"
	"github.com/visitlink/chat-bridge/internal/server"
	"github.com/visitlink/chat-bridge/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
      _           _        _          _     _
  ___| |__   __ _| |_     | |__  _ __(_) __| | __ _  ___
 / __| '_ \ / _' | __|____| '_ \| '__| |/ _' |/ _' |/ _ \
| (__| | | | (_| | ||_____| |_) | |  | | (_| | (_| |  __/
 \___|_| |_|\__,_|\__|    |_.__/|_|  |_|\__,_|\__, |\___|
                                              |___/
`

// getConfigPath returns the path to the chat-bridge config file.
// Priority: CHAT_BRIDGE_CONFIG env var > XDG_CONFIG_HOME/chat-bridge/config.yaml > ~/.config/chat-bridge/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("CHAT_BRIDGE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "chat-bridge", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: chat-bridge <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                Start the bridge server")
		fmt.Println("  health               Check bridge health")
		fmt.Println("  token --sub SUBJECT  Issue a host JWT")
		fmt.Println("  version              Print the version")
		os.Exit(1)
	}

	// A .env next to the binary is a development convenience; absence is fine.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	case "token":
		err = runToken()
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Ledger:  %s\n", cfg.Database.Path)
	if cfg.Auth.JWTSecret == "" {
		yellow := color.New(color.FgYellow)
		yellow.Print("    ▶ ")
		fmt.Println("Auth:    disabled (no jwt_secret configured)")
	}
	fmt.Println()

	ledger, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer ledger.Close()

	broadcaster := events.NewBroadcaster(logger)
	defer broadcaster.Close()

	backend := newBackend(logger)
	g := gateway.New(backend, broadcaster, logger)
	defer g.Close()

	// Credentials in config mean the host doesn't have to issue init.
	if cfg.Backend.AccountKey != "" {
		if err := g.Initialize(cfg.Backend.AccountKey, cfg.Backend.AppID); err != nil {
			return fmt.Errorf("initializing backend session: %w", err)
		}
	}

	var verifier auth.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	}

	srv := server.New(server.Options{
		Addr:        cfg.Server.HTTPAddr,
		Gateway:     g,
		Ledger:      ledger,
		Broadcaster: broadcaster,
		Verifier:    verifier,
		Logger:      logger,
	})

	return srv.Start(ctx, cfg.Server.ShutdownGrace)
}

// newBackend constructs the chat backend. The in-memory backend stands in
// until a real SDK transport is configured.
func newBackend(logger *slog.Logger) chat.Backend {
	logger.Info("using in-memory chat backend")
	return chat.NewMemoryBackend()
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Server.HTTPAddr
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	url := fmt.Sprintf("http://%s/health", addr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// runToken issues a host JWT signed with the configured secret.
func runToken() error {
	subject := ""
	expiry := 24 * time.Hour
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--sub":
			if i+1 >= len(args) {
				return fmt.Errorf("--sub requires a value")
			}
			i++
			subject = args[i]
		case "--expires":
			if i+1 >= len(args) {
				return fmt.Errorf("--expires requires a value")
			}
			i++
			parsed, err := time.ParseDuration(args[i])
			if err != nil {
				return fmt.Errorf("parsing --expires: %w", err)
			}
			expiry = parsed
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}
	if subject == "" {
		return fmt.Errorf("--sub is required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured")
	}

	token, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret)).Generate(subject, expiry)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
