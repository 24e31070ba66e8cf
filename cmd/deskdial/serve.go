package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deskdial/deskdial/internal/automation"
	"github.com/deskdial/deskdial/internal/bridge"
	"github.com/deskdial/deskdial/internal/config"
	"github.com/deskdial/deskdial/internal/history"
	"github.com/deskdial/deskdial/internal/logging"
	"github.com/deskdial/deskdial/internal/notify"
	"github.com/deskdial/deskdial/internal/page"
	"github.com/deskdial/deskdial/internal/theme"
)

// ServeCmd creates the serve command. Identical to running the bare binary;
// kept as an explicit subcommand for scripts and service files.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bridge and a headless page session",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
	cmd.Flags().BoolVar(&visible, "visible", false, "run the browser with a visible window")
	return cmd
}

func runServe() {
	cfg, cfgPath := loadConfig()
	if cfg.Quiet && !verbose {
		logging.Quiet()
	}
	if verbose {
		logging.Verbose()
	}

	dir, err := ensureDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize data directory: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal: %v - shutting down...\n", sig)
		cancel()
	}()

	headless, err := page.NewHeadless(page.HeadlessOptions{
		Visible:     visible,
		UserDataDir: filepath.Join(dir, "profile"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to launch browser: %v\n", err)
		os.Exit(1)
	}
	defer headless.Close()

	auto := automation.New(headless, cfg.Page.BaseURL)

	store, err := history.Open(filepath.Join(dir, "data", "deskdial.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open history database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	poller := notify.NewPoller(notify.DefaultInterval)
	collector := page.NewCallbackCollector()

	br := bridge.New(cfg.Bridge.Port, bridge.Options{
		Automator: auto,
		Poller:    poller,
		History:   store,
		Collector: collector,
		OnThemeChange: func(t theme.Name) {
			applyCtx, applyCancel := context.WithTimeout(ctx, 10*time.Second)
			defer applyCancel()
			if err := auto.ApplyTheme(applyCtx, theme.CSS(t)); err != nil {
				logging.Warnf("apply theme %s: %v", t, err)
			}
		},
	})
	if err := br.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer br.Stop()

	// Initial navigation. Login state is the user's problem: with a
	// persistent profile the session survives restarts.
	navCtx, navCancel := context.WithTimeout(ctx, 60*time.Second)
	if err := auto.ReloadBase(navCtx); err != nil {
		logging.Warnf("initial navigation: %v", err)
	}
	navCancel()

	if err := br.SetTheme(cfg.Theme); err != nil {
		logging.Warnf("configured theme: %v", err)
	}

	poller.Start(auto, func(count int) {
		br.Hub().Broadcast(bridge.NotificationCountEvent(count))
	})
	defer poller.Stop()

	if cfgPath != "" {
		go watchConfig(ctx, cfgPath, br)
	}

	fmt.Printf("\n  deskdial is running\n\n")
	fmt.Printf("  Bridge:  http://%s\n", br.Addr())
	fmt.Printf("  Page:    %s\n", cfg.Page.BaseURL)
	fmt.Printf("  Data:    %s\n\n", dir)
	fmt.Println("  Press Ctrl+C to stop")

	<-ctx.Done()
	fmt.Println("deskdial stopped.")
}

// loadConfig overlays the config file (if any) on the embedded defaults.
// Returns the path actually in use so the watcher can follow it, empty when
// running purely on defaults.
func loadConfig() (config.Config, string) {
	path := cfgFile
	if path == "" {
		if dir, err := defaultDataDir(); err == nil {
			candidate := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path == "" {
		return *AppConfig, ""
	}
	c, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return c, path
}

// watchConfig applies config file edits at runtime: port rebinds and theme
// switches. Everything else needs a restart.
func watchConfig(ctx context.Context, path string, br *bridge.Bridge) {
	err := config.Watch(ctx, path, func(c config.Config) {
		if c.Bridge.Port != br.Port() {
			if err := br.UpdatePort(c.Bridge.Port); err != nil {
				logging.Errorf("port update: %v", err)
			} else {
				logging.Infof("bridge rebound to port %d", c.Bridge.Port)
			}
		}
		if string(br.Theme()) != c.Theme {
			if err := br.SetTheme(c.Theme); err != nil {
				logging.Warnf("theme update: %v", err)
			}
		}
	})
	if err != nil && ctx.Err() == nil {
		logging.Errorf("config watch: %v", err)
	}
}

func defaultDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".deskdial"), nil
}

func ensureDataDir() (string, error) {
	dir, err := defaultDataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
