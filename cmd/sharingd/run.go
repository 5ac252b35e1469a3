package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sharingd/internal/luabind"
	"sharingd/internal/native"
	"sharingd/internal/sharing"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:     "run <script.lua>",
		Short:   "Run one script against the simulated service",
		Example: "  sharingd run watch.lua --duration 30s",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			simCfg, err := cfg.Simulator.NativeConfig()
			if err != nil {
				return err
			}
			client := sharing.New(native.NewSimulator(simCfg), sharing.WithLogger(log))
			defer client.Close()

			rt := luabind.New(client, luabind.WithLogger(log), luabind.WithQueueSize(cfg.EventBuffer), luabind.WithName(args[0]))
			defer rt.Close()
			if err := rt.DoFile(args[0]); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if duration <= 0 {
				rt.Pump()
				return nil
			}
			ctx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()
			if err := rt.Serve(ctx); err != nil {
				return fmt.Errorf("serve %s: %w", args[0], err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 0, "Keep delivering events for this long after the script ran (0 drains once)")
	return cmd
}
