package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sharingd/internal/common/fsutil"
	"sharingd/internal/config"
	"sharingd/internal/httpapi"
	"sharingd/internal/luabind"
	"sharingd/internal/native"
	"sharingd/internal/scripts"
	"sharingd/internal/sharing"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr        string
		scriptsDir  string
		corsEnabled bool
		corsOrigins string
		eventBuffer int
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the sharing HTTP API and run scripts",
		Example: "  sharingd serve --addr :8080 --scripts-dir ~/.sharingd/scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("scripts-dir") {
				cfg.ScriptsDir = scriptsDir
			}
			if flags.Changed("cors-origins") {
				cfg.CORSOrigins = splitCSV(corsOrigins)
			}
			if flags.Changed("event-buffer") {
				cfg.EventBuffer = eventBuffer
			}
			if corsEnabled && len(cfg.CORSOrigins) == 0 {
				cfg.CORSOrigins = []string{"*"}
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address, e.g. :8080")
	cmd.Flags().StringVar(&scriptsDir, "scripts-dir", "", "Directory of *.lua scripts to run")
	cmd.Flags().BoolVar(&corsEnabled, "cors-enabled", false, "Enable CORS (all origins unless --cors-origins is set)")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma separated allowed CORS origins")
	cmd.Flags().IntVar(&eventBuffer, "event-buffer", 64, "Queued events per stream client or script")
	return cmd
}

func serve(cfg config.Config) error {
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	simCfg, err := cfg.Simulator.NativeConfig()
	if err != nil {
		return err
	}
	client := sharing.New(native.NewSimulator(simCfg), sharing.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(httpLogLevel(cfg.LogLevel))
	httpapi.SetStreamBuffer(cfg.EventBuffer)
	httpapi.SetCORSOptions(len(cfg.CORSOrigins) > 0, cfg.CORSOrigins, nil, nil)
	httpapi.SetBaseContext(ctx)

	var wg sync.WaitGroup
	if err := startScripts(ctx, &wg, client, cfg, log); err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(client), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("scripts_dir", cfg.ScriptsDir).Msg("sharingd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			stop()
			wg.Wait()
			_ = client.Close()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	wg.Wait()
	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("closing sharing client")
		return err
	}
	log.Info().Msg("sharingd stopped")
	return nil
}

// startScripts runs every script of cfg.ScriptsDir on its own goroutine.
// Each goroutine owns its Lua runtime until ctx is done.
func startScripts(ctx context.Context, wg *sync.WaitGroup, client *sharing.Client, cfg config.Config, log zerolog.Logger) error {
	if cfg.ScriptsDir == "" {
		return nil
	}
	dir, err := fsutil.ResolveDir(cfg.ScriptsDir)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("scripts_dir", dir).Msg("scripts dir not found, no scripts loaded")
		return nil
	}
	if err != nil {
		return err
	}
	list, err := scripts.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, s := range list {
		wg.Add(1)
		go func(s scripts.Script) {
			defer wg.Done()
			rt := luabind.New(client,
				luabind.WithName(s.Name),
				luabind.WithLogger(log),
				luabind.WithQueueSize(cfg.EventBuffer))
			defer func() {
				if err := rt.Close(); err != nil {
					log.Error().Err(err).Str("script", s.Name).Msg("closing script runtime")
				}
			}()
			if err := rt.DoFile(s.Path); err != nil {
				log.Error().Err(err).Str("script", s.Name).Msg("script failed")
				return
			}
			log.Info().Str("script", s.Name).Msg("script loaded")
			_ = rt.Serve(ctx)
		}(s)
	}
	return nil
}
