// Package initcmder provides the init command for initializing a local
// .novostroy directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/novostroy/pkg/cliui"
	"github.com/papercomputeco/novostroy/pkg/config"
	"github.com/papercomputeco/novostroy/pkg/dotdir"
)

const initLongDesc string = `Initialize a new .novostroy/ directory in the current working directory.

Creates a local .novostroy/ directory that takes precedence over the default
~/.novostroy/ directory for configuration and the saved "ask" conversation.
A config.toml with default values is written into it.

Use --preset to start from a gateway preset or from a remote config.toml:
  lovable       Lovable AI gateway (default)
  openrouter    OpenRouter
  local         A local Ollama with a SQLite store

Examples:
  novostroy init
  novostroy init --preset openrouter
  novostroy init --preset https://example.com/novostroy.toml`

const initShortDesc string = "Initialize a local .novostroy/ directory"

const fetchTimeout = 30 * time.Second

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Gateway preset name or URL of a config.toml")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, preset string) error {
	cfg, err := resolvePreset(ctx, preset)
	if err != nil {
		return err
	}

	dir, err := dotdir.NewManager().LocalDir()
	if err != nil {
		return err
	}

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		fmt.Fprintf(out, "  %s %s\n", cliui.DimStyle.Render("Already initialized:"), dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .novostroy directory: %w", err)
		}
		fmt.Fprintf(out, "  %s Initialized %s\n", cliui.SuccessMark, dir)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// A bare re-init keeps an existing config untouched.
	if preset == "" {
		if _, err := os.Stat(cfger.GetTarget()); err == nil {
			return nil
		}
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s Wrote %s\n", cliui.SuccessMark, cfger.GetTarget())
	return nil
}

// resolvePreset returns the default config, a named preset, or a config
// fetched from an http(s) URL.
func resolvePreset(ctx context.Context, preset string) (*config.Config, error) {
	switch {
	case preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(preset, "http://"), strings.HasPrefix(preset, "https://"):
		return fetchConfig(ctx, preset)
	default:
		return config.PresetConfig(preset)
	}
}

func fetchConfig(ctx context.Context, url string) (*config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
