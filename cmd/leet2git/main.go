// Package main provides the leet2git command line: the page watcher and a
// control surface for the background server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"leet2git/internal/api/client"
	"leet2git/internal/app"
	"leet2git/internal/common/format"
	"leet2git/internal/common/security"
	"leet2git/internal/domain/model"
	"leet2git/internal/platform/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	serverURL   string
	clientToken string

	tokenClient string
	tokenRole   string
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "leet2git",
		Short:         "Sync accepted LeetCode solutions to GitHub",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultClientConfigPath(), "path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", config.FromEnv().ServerURL(), "leet2git server base URL")
	rootCmd.PersistentFlags().StringVar(&clientToken, "token", "", "client token issued by 'leet2git token'")

	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newSelectRepoCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newStorageCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadFileConfig(configPath)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &serverURL, fileCfg.Client.Server)
	applyStringConfig(cmd, "token", &clientToken, fileCfg.Client.Token)
	return fileCfg, nil
}

func newClient(cmd *cobra.Command) (*client.Client, error) {
	if _, err := loadFileConfig(cmd); err != nil {
		return nil, err
	}
	if clientToken == "" {
		return nil, fmt.Errorf("no client token, run 'leet2git token' and pass --token or set [client] token")
	}
	return client.New(serverURL, clientToken, nil), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send KIND [PAYLOAD-JSON]",
		Short: "Send one message to the server and print the response",
		Long:  "Send one message to the server. KIND is one of: " + kindList(),
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runSendCmd,
	}
}

func kindList() string {
	kinds := make([]string, 0, len(model.MessageKinds))
	for _, k := range model.MessageKinds {
		kinds = append(kinds, string(k))
	}
	return strings.Join(kinds, ", ")
}

func runSendCmd(cmd *cobra.Command, args []string) error {
	kind := model.MessageKind(strings.ToUpper(args[0]))
	msg := model.Message{Kind: kind}
	if len(args) == 2 {
		if !json.Valid([]byte(args[1])) {
			return fmt.Errorf("payload is not valid JSON")
		}
		msg.Payload = json.RawMessage(args[1])
	}

	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	resp, err := c.Send(ctx, msg)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s failed: %s", kind, resp.Error)
	}
	if len(resp.Data) == 0 {
		fmt.Println(successStyle.Render("ok"))
		return nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, resp.Data, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	fmt.Println(out.String())
	return nil
}

func newSelectRepoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select-repo OWNER/NAME",
		Short: "Select the repository solutions are committed to",
		Args:  cobra.ExactArgs(1),
		RunE:  runSelectRepoCmd,
	}
}

// runSelectRepoCmd writes straight to the server's storage; there is no
// message kind for selecting a repository.
func runSelectRepoCmd(_ *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	application, err := app.New(ctx, config.Load())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer application.Close()
	repo, err := application.SelectRepository(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to select repository: %w", err)
	}
	fmt.Printf("Selected %s\n", repo.FullName)
	return nil
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete settings, credentials, submissions and history",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			application, err := app.New(ctx, config.Load())
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer application.Close()
			if err := application.ClearStorage(ctx); err != nil {
				return fmt.Errorf("failed to clear storage: %w", err)
			}
			fmt.Println(successStyle.Render("Storage cleared"))
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a client token for the message channel",
		Args:  cobra.NoArgs,
		RunE:  runTokenCmd,
	}
	cmd.Flags().StringVar(&tokenClient, "client", "cli", "client name recorded in the token")
	cmd.Flags().StringVar(&tokenRole, "role", model.RolePopup, "client role: popup or watcher")
	return cmd
}

func runTokenCmd(_ *cobra.Command, _ []string) error {
	if tokenRole != model.RolePopup && tokenRole != model.RoleWatcher {
		return fmt.Errorf("role must be %q or %q", model.RolePopup, model.RoleWatcher)
	}
	cfg := config.Load()
	token, err := security.NewTokenIssuer(cfg.ClientJWTKey, cfg.ClientJWTExp).GenerateToken(tokenClient, tokenRole)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	fmt.Println(token)
	return nil
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show captured submissions and sync attempts",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	var submissions []model.Submission
	if err := fetch(ctx, c, model.KindGetSubmissions, &submissions); err != nil {
		return err
	}
	var history []model.SyncRecord
	if err := fetch(ctx, c, model.KindGetSyncHistory, &history); err != nil {
		return err
	}

	titles := make(map[string]string, len(submissions))
	fmt.Println(headerStyle.Render(fmt.Sprintf("Submissions (%d)", len(submissions))))
	for i := len(submissions) - 1; i >= 0; i-- {
		s := submissions[i]
		titles[s.ID] = fmt.Sprintf("%d. %s", s.Problem.ID, s.Problem.Title)
		fmt.Printf("  %s  %-40s %-10s %-8s %s\n", format.DateTime(s.Timestamp), titles[s.ID], s.Language, s.Problem.Difficulty, s.ID)
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Sync history (%d)", len(history))))
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		status := successStyle.Render(string(r.Status))
		detail := r.CommitURL
		if r.Status == model.SyncStatusFailed {
			status = failedStyle.Render(string(r.Status))
			detail = r.Error
		}
		title := titles[r.SubmissionID]
		if title == "" {
			title = r.SubmissionID
		}
		fmt.Printf("  %s  %-7s %-40s %s\n", format.DateTime(r.Timestamp), status, title, detail)
	}
	return nil
}

func fetch(ctx context.Context, c *client.Client, kind model.MessageKind, out any) error {
	resp, err := c.Send(ctx, model.Message{Kind: kind})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s failed: %s", kind, resp.Error)
	}
	return resp.DecodeData(out)
}

func newStorageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "storage",
		Short: "Show storage usage per tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			info, err := c.StorageInfo(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("sync:  %d / %d bytes\n", info.Sync.BytesInUse, info.Sync.Quota)
			fmt.Printf("local: %d / %d bytes\n", info.Local.BytesInUse, info.Local.Quota)
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create the config file if missing and print its path",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(configPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(defaultConfigTemplate()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	fmt.Println(configPath)
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`[client]
# server = "http://localhost:8787"
# token = ""

[watch]
# source = "capture.json"
# url = "https://leetcode.com/problems/two-sum/"
# interval-ms = %d
# render-delay-ms = %d
# cooldown-ms = %d
`, defaultIntervalMs, time.Second.Milliseconds(), (3 * time.Second).Milliseconds())
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
