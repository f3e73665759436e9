package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"parley/internal/daemon"
	"parley/internal/logging"
	"parley/internal/scenario"
	"parley/internal/store"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the parley daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logPath := filepath.Join(cfg.Paths.LogDir, "parley.log")
			logger, err := logging.New(logging.Options{
				Level:            cfg.Logging.Level,
				Format:           cfg.Logging.Format,
				OutputPaths:      []string{"stdout", logPath},
				ErrorOutputPaths: []string{"stderr", logPath},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			pidPath := filepath.Join(cfg.Paths.LogDir, "parley.pid")
			if err := writePIDFile(pidPath); err != nil {
				return fmt.Errorf("write pid file: %w", err)
			}
			defer os.Remove(pidPath)

			st, err := store.Open(cfg)
			if err != nil {
				logger.Error("open session store", logging.Error(err))
				return err
			}

			catalog, err := scenario.LoadCatalog(cfg.Paths.ScenarioDir)
			if err != nil {
				logger.Error("load scenario catalog", logging.Error(err))
				_ = st.Close()
				return err
			}

			d, err := daemon.New(cfg, st, catalog, logger)
			if err != nil {
				_ = st.Close()
				return err
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}

			logger.Info("serving",
				logging.String("address", d.Addr()),
				logging.Int("scenarios", catalog.Len()))

			<-signalCtx.Done()
			logger.Info("shutdown signal received")
			d.Stop()
			return nil
		},
	}
}

func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}
