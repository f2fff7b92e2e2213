// ABOUTME: Command line client for a running chat-bridge server
// ABOUTME: Issues commands, tails the event feed, and inspects the ledger

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
)

// getConfigPath returns the path to the bridgectl config file.
// Priority: BRIDGECTL_CONFIG env var > XDG_CONFIG_HOME/chat-bridge/bridgectl.toml > ~/.config/chat-bridge/bridgectl.toml
func getConfigPath() string {
	if envPath := os.Getenv("BRIDGECTL_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "bridgectl.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "chat-bridge", "bridgectl.toml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: bridgectl <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  health               Check bridge health")
		fmt.Println("  call <name> [json]   Run a command with an optional JSON argument object")
		fmt.Println("  watch                Tail the live event feed")
		fmt.Println("  ledger               Show recent command outcomes")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := Load(getConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := &client{cfg: cfg}

	switch os.Args[1] {
	case "health":
		err = client.health(ctx)
	case "call":
		if len(os.Args) < 3 {
			err = fmt.Errorf("call requires a command name")
			break
		}
		body := ""
		if len(os.Args) > 3 {
			body = os.Args[3]
		}
		err = client.call(ctx, os.Args[2], body)
	case "watch":
		err = client.watch(ctx)
	case "ledger":
		err = client.ledger(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type client struct {
	cfg *Config
}

func (c *client) request(ctx context.Context, method, path, body string) (*http.Response, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Bridge.URL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Bridge.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Bridge.Token)
	}
	return http.DefaultClient.Do(req)
}

func (c *client) health(ctx context.Context) error {
	resp, err := c.request(ctx, http.MethodGet, "/health", "")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	color.Green("healthy")
	return nil
}

func (c *client) call(ctx context.Context, name, body string) error {
	if body != "" && !json.Valid([]byte(body)) {
		return fmt.Errorf("argument is not valid JSON")
	}

	resp, err := c.request(ctx, http.MethodPost, "/api/commands/"+name, body)
	if err != nil {
		return fmt.Errorf("calling %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	pretty, err := prettyJSON(data)
	if err != nil {
		pretty = string(data)
	}

	if resp.StatusCode == http.StatusOK {
		color.Green("resolved")
	} else {
		color.Red("rejected (%d)", resp.StatusCode)
	}
	fmt.Println(pretty)
	return nil
}

// watch tails the SSE feed, printing one line per event until interrupted.
func (c *client) watch(ctx context.Context) error {
	resp, err := c.request(ctx, http.MethodGet, "/api/events", "")
	if err != nil {
		return fmt.Errorf("connecting to event feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event feed refused: status %d", resp.StatusCode)
	}

	cyan := color.New(color.FgCyan)
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cyan.Printf("%s ", event)
			fmt.Println(strings.TrimPrefix(line, "data: "))
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading event feed: %w", err)
	}
	return nil
}

func (c *client) ledger(ctx context.Context) error {
	resp, err := c.request(ctx, http.MethodGet, "/api/ledger", "")
	if err != nil {
		return fmt.Errorf("fetching ledger: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger request failed: status %d", resp.StatusCode)
	}

	var body struct {
		Commands []struct {
			Operation string `json:"operation"`
			Status    string `json:"status"`
			Detail    string `json:"detail"`
			CreatedAt string `json:"created_at"`
		} `json:"commands"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding ledger: %w", err)
	}

	for _, cmd := range body.Commands {
		status := color.GreenString(cmd.Status)
		if cmd.Status != "resolved" {
			status = color.RedString(cmd.Status)
		}
		fmt.Printf("%s  %-24s %s", cmd.CreatedAt, cmd.Operation, status)
		if cmd.Detail != "" {
			fmt.Printf("  %s", color.HiBlackString(cmd.Detail))
		}
		fmt.Println()
	}
	return nil
}

func prettyJSON(data []byte) (string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
