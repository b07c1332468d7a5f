package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ayusman/flinch/internal/app"
	"github.com/ayusman/flinch/internal/choreo"
	"github.com/ayusman/flinch/internal/config"
	"github.com/ayusman/flinch/internal/log"
	"github.com/ayusman/flinch/internal/server"
	"github.com/ayusman/flinch/internal/store"
	"github.com/ayusman/flinch/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON tuning file")
	dbPath := flag.String("db", "", "SQLite database path (default ~/.flinch/flinch.db)")
	addr := flag.String("addr", "localhost:8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "Camera device index")
	videoPath := flag.String("video", "", "Play frames from a video file instead of the camera")
	pluginDir := flag.String("plugins", "", "Plugin directory (default ~/.flinch/plugins)")
	challengeDir := flag.String("challenges", "", "Directory of extra challenge JSON files")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	withTray := flag.Bool("tray", false, "Show the system tray menu")
	flag.Parse()

	log.Init(*logLevel)

	if err := run(options{
		configPath:   *configPath,
		dbPath:       *dbPath,
		addr:         *addr,
		cameraID:     *cameraID,
		videoPath:    *videoPath,
		pluginDir:    *pluginDir,
		challengeDir: *challengeDir,
		tray:         *withTray,
	}); err != nil {
		log.Error("flinch failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	dbPath       string
	addr         string
	cameraID     int
	videoPath    string
	pluginDir    string
	challengeDir string
	tray         bool
}

func run(opts options) error {
	dataDir, err := dataDir()
	if err != nil {
		return err
	}
	if opts.dbPath == "" {
		opts.dbPath = filepath.Join(dataDir, "flinch.db")
	}
	if opts.pluginDir == "" {
		opts.pluginDir = filepath.Join(dataDir, "plugins")
	}

	tuning := config.EmptyTuningConfig()
	if opts.configPath != "" {
		tuning, err = config.LoadTuningConfig(opts.configPath)
		if err != nil {
			return err
		}
		log.Info("loaded tuning", "path", opts.configPath)
	}

	registry := choreo.DefaultRegistry()
	if opts.challengeDir != "" {
		if err := loadChallenges(registry, opts.challengeDir); err != nil {
			return err
		}
	}

	st, err := store.New(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:     st,
		Registry:  registry,
		PluginDir: opts.pluginDir,
		CameraID:  opts.cameraID,
		VideoPath: opts.videoPath,
		Tuning:    tuning,
	})
	if err := a.DiscoverPlugins(); err != nil {
		log.Warn("plugin discovery failed", "dir", opts.pluginDir, "error", err)
	}

	events := server.NewEventHub()
	a.Subscribe(events)

	webDir := findWebDir()
	if webDir != "" {
		log.Info("serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
		Events:    events,
	})

	if err := a.Start(); err != nil {
		return fmt.Errorf("failed to start frame pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe(opts.addr)
	}()

	if opts.tray {
		t := tray.New()
		a.Subscribe(t)
		t.OnPause(func(paused bool) error {
			var err error
			if paused {
				_, err = a.PauseSession()
			} else {
				_, err = a.ResumeSession()
			}
			return err
		})
		t.OnOpen(func() { openBrowser("http://" + opts.addr) })
		t.OnQuit(stop)
		go func() {
			select {
			case <-ctx.Done():
			case <-serverErr:
				stop()
			}
			t.Quit()
		}()
		// The tray owns the main goroutine until it quits.
		t.Run()
	} else {
		select {
		case <-ctx.Done():
		case err := <-serverErr:
			if err != nil {
				a.Stop()
				return fmt.Errorf("server failed: %w", err)
			}
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown error", "error", err)
	}
	a.Stop()
	return nil
}

func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".flinch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// loadChallenges registers every *.json challenge in dir, replacing built-ins
// with the same id.
func loadChallenges(registry *choreo.Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read challenge directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := loadChallenge(registry, path); err != nil {
			return err
		}
	}
	return nil
}

func loadChallenge(registry *choreo.Registry, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	c, err := choreo.LoadJSON(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := registry.Register(c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Info("loaded challenge", "id", c.ID, "path", path)
	return nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.flinch/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".flinch", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn("failed to open browser", "url", url, "error", err)
	}
}
