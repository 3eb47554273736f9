package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/user"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"taskdeck/internal/auth"
	"taskdeck/internal/config"
	"taskdeck/internal/reconcile"
	"taskdeck/internal/realtime"
	"taskdeck/internal/session"
	"taskdeck/internal/storage"
	"taskdeck/internal/store"
	"taskdeck/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	backend := flag.String("backend", "", "override backend (local or sqlite)")
	seedDemo := flag.Bool("seed", false, "populate demo data and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("taskdeck %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	hub := realtime.NewHub(logger)
	identity := auth.NewMemory()

	factory, err := storage.NewFactory(storage.Backend(cfg.Backend), cfg.DataDir, hub, identity, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing storage: %v\n", err)
		os.Exit(1)
	}
	defer factory.Close()

	tasks := store.NewTasks(factory.Tasks(), logger)
	projects := store.NewProjects(factory.Projects(), tasks, logger)
	reconciler := reconcile.New(hub, projects, tasks, logger)
	controller := session.NewController(identity, projects, tasks, reconciler, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go controller.Run(ctx)

	// Both backends run against a local identity; a hosted deployment
	// would plug a real provider in here instead.
	identity.SignIn(auth.Identity{UserID: localUserID()})
	controller.Activate(ctx)
	defer controller.Deactivate()

	if *seedDemo {
		if err := seed(ctx, projects, tasks); err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding demo data: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Demo data created.")
		return
	}

	app := ui.NewApp(projects, tasks, factory.Settings())
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Store notifications arrive on any goroutine; funnel them through
	// a coalescing channel so a burst of changes becomes one repaint.
	notify := make(chan struct{}, 1)
	onChange := func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
	projects.Subscribe(onChange)
	tasks.Subscribe(onChange)
	go func() {
		for range notify {
			p.Send(ui.StoreChangedMsg{})
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func buildLogger(cfg config.Logging) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	// The terminal belongs to the UI; logs go to a file.
	zc.OutputPaths = []string{cfg.File}
	zc.ErrorOutputPaths = []string{cfg.File}
	return zc.Build()
}

func localUserID() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
