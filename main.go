package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"idacast/api"
	"idacast/config"
	"idacast/handlers"
	"idacast/internal/dashboard"
	"idacast/internal/locale"
	"idacast/internal/render"
	"idacast/models"
	"idacast/services/cache"
	"idacast/services/refresh"
	"idacast/services/scheduler"
	"idacast/services/splatoon"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"
)

const usage = `usage: idacast [flags] <command>

commands:
  show         fetch once and print the current schedules
  watch        live terminal dashboard (keys: r j k h l 0 q, then Enter)
  serve        run the HTTP API (default)
  clear-cache  drop every cached snapshot

flags:
`

func main() {
	localeFlag := flag.String("locale", "", "override the presentation locale (e.g. ja-JP, default)")
	portOverride := flag.Int("port", 0, "override server port from config")
	cachedFlag := flag.Bool("cached", true, "show: allow a cached snapshot")
	screenFlag := flag.String("screen", "battles", "show: battles, work or challenges")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "serve"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	configPath := os.Getenv("IDACAST_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	if *localeFlag != "" {
		settings.Locale = *localeFlag
	}
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// The terminal belongs to the dashboard in watch mode.
	setupLogging(settings.Log, command != "watch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "show":
		err = runShow(ctx, settings, *cachedFlag, *screenFlag)
	case "watch":
		err = runWatch(ctx, settings)
	case "serve":
		err = runServe(ctx, settings)
	case "clear-cache":
		err = runClearCache(ctx, settings)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "idacast %s: %v\n", command, err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.LogConfig, console bool) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.File == "" {
		if !console {
			log.SetOutput(io.Discard)
		}
		return
	}

	logDir := filepath.Dir(cfg.File)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		if !console {
			log.SetOutput(io.Discard)
		}
		return
	}
	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	if console {
		log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
		log.Printf("Logging to file: %s", cfg.File)
		return
	}
	log.SetOutput(fileWriter)
}

func openCache(ctx context.Context, s config.Settings) (cache.Store, error) {
	return cache.Open(ctx, cache.Config{
		Backend:    s.Cache.Backend,
		Directory:  s.Cache.Directory,
		RedisURL:   s.Cache.RedisURL,
		MemorySize: s.Cache.MemorySize,
		Options:    cache.Options{TTL: s.CacheTTL()},
	})
}

func newClient(s config.Settings) (*splatoon.Client, error) {
	return splatoon.NewClient(splatoon.ClientConfig{
		BaseURL:   s.Source.BaseURL,
		Timeout:   s.SourceTimeout(),
		Proxy:     s.Source.Proxy,
		UserAgent: s.Source.UserAgent,
	})
}

// core wires the network client, cache, orchestrator and dashboard loop.
type core struct {
	store cache.Store
	orch  *refresh.Orchestrator
	app   *dashboard.App
}

func newCore(ctx context.Context, s config.Settings) (*core, error) {
	client, err := newClient(s)
	if err != nil {
		return nil, err
	}
	store, err := openCache(ctx, s)
	if err != nil {
		// Refreshes still work without a cache, they just always hit the network.
		log.Printf("[main] cache backend %q unavailable, continuing without it: %v", s.Cache.Backend, err)
		store = nil
	}

	events := dashboard.NewEventChannel()
	c := &core{store: store}
	c.orch = refresh.New(client, store, events, refresh.Options{Coalesce: s.Refresh.Coalesce})
	c.app = dashboard.New(c.orch, events, s.Locale)
	return c, nil
}

func (c *core) close() {
	c.orch.Wait()
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			log.Printf("[main] cache close: %v", err)
		}
	}
}

func runShow(ctx context.Context, s config.Settings, cacheAllowed bool, screenName string) error {
	pager := render.NewPager(s.Display.Capacity)
	for range render.Screens() {
		if strings.EqualFold(pager.Screen().String(), screenName) {
			break
		}
		pager.Next()
	}
	if !strings.EqualFold(pager.Screen().String(), screenName) {
		return fmt.Errorf("unknown screen %q", screenName)
	}

	c, err := newCore(ctx, s)
	if err != nil {
		return err
	}
	defer c.close()

	snapshot, fromCache, err := c.orch.Load(ctx, s.Locale, cacheAllowed)
	if err != nil {
		return err
	}
	status := models.DashboardStatus{
		Locale:  locale.Normalize(s.Locale),
		Refresh: models.CompletedState(time.Now(), fromCache),
		Counts:  snapshot.Counts(),
	}
	if !fromCache && c.store != nil {
		if err := c.orch.Persist(ctx, s.Locale, snapshot); err != nil {
			status.CacheError = err.Error()
		}
	}
	return render.Text(os.Stdout, snapshot, status, pager, time.Now())
}

func runWatch(ctx context.Context, s config.Settings) error {
	c, err := newCore(ctx, s)
	if err != nil {
		return err
	}
	defer c.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopDone := make(chan struct{})
	go func() {
		c.app.Run(ctx)
		close(loopDone)
	}()
	defer func() {
		cancel()
		<-loopDone
	}()

	sched := scheduler.NewService(c.orch, s.RefreshInterval(), c.app.Locale)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop(context.Background())

	keys := make(chan string)
	go func() {
		defer close(keys)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			keys <- strings.TrimSpace(scanner.Text())
		}
	}()

	views, unsubscribe := c.app.Subscribe()
	defer unsubscribe()

	pager := render.NewPager(s.Display.Capacity)
	view := c.app.View()
	draw := func() {
		fmt.Print("\033[H\033[2J")
		if err := render.Text(os.Stdout, view.Schedules, view.Status, pager, time.Now()); err != nil {
			log.Printf("[watch] render: %v", err)
		}
	}
	draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-views:
			if !ok {
				return nil
			}
			view = v
			draw()
		case line, ok := <-keys:
			if !ok {
				return nil
			}
			for _, k := range line {
				switch k {
				case 'q':
					return nil
				case 'r':
					c.app.RequestRefresh(false)
				case 'j':
					pager.Scroll(1, &view.Schedules, time.Now())
				case 'k':
					pager.Scroll(-1, &view.Schedules, time.Now())
				case 'l':
					pager.Next()
				case 'h':
					pager.Prev()
				case '0':
					pager.Reset()
				}
			}
			draw()
		}
	}
}

func runServe(ctx context.Context, s config.Settings) error {
	fmt.Println("🚀 idacast starting...")

	c, err := newCore(ctx, s)
	if err != nil {
		return err
	}
	defer c.close()

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		c.app.Run(loopCtx)
		close(loopDone)
	}()

	sched := scheduler.NewService(c.orch, s.RefreshInterval(), c.app.Locale)
	if err := sched.Start(loopCtx); err != nil {
		cancelLoop()
		return err
	}

	r := mux.NewRouter()
	api.Register(r,
		handlers.NewSchedulesHandler(c.app, s.Display.Capacity),
		handlers.NewEventsHandler(c.app),
	)

	addr := fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Println("🛑 Shutdown signal received, cleaning up...")
	case err = <-serveErr:
		log.Printf("Server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	// Closing the loop ends open event streams before the server drains.
	cancelLoop()
	<-loopDone
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
	return err
}

func runClearCache(ctx context.Context, s config.Settings) error {
	store, err := openCache(ctx, s)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(ctx); err != nil {
		return err
	}
	fmt.Printf("Cleared %s cache\n", s.Cache.Backend)
	return nil
}
