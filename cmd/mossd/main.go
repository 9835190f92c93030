package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mossd/internal/config"
	"mossd/internal/configstore"
	"mossd/internal/device"
	"mossd/internal/devicemgr"
	"mossd/internal/history"
	"mossd/internal/ipc"
	"mossd/internal/logger"
	"mossd/internal/pid"
	"mossd/internal/statemgr"
)

const errSinkCapacity = 64

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}

	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to acquire pid file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove pid file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}

	logger.Info().Msg("Exiting...")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// run wires every actor together and blocks until ctx is canceled.
// Each actor's Run is given its own goroutine; this function waits for
// all of them to finish shutting down before returning.
func run(ctx context.Context, cfg *config.Config) error {
	errSink := make(chan error, errSinkCapacity)

	cfgMgr, err := configstore.New(cfg.ConfigPath, errSink)
	if err != nil {
		return fmt.Errorf("failed to load configuration document: %w", err)
	}

	hist, err := history.New(history.Config{
		Enabled:      cfg.HistoryEnabled,
		DBPath:       cfg.HistoryDBPath,
		BatchSize:    100,
		BatchTimeout: 5,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize history journal: %w", err)
	}
	defer func() {
		if err := hist.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close history journal")
		}
	}()

	devMgr := devicemgr.New([]device.Driver{device.NewNvidiaDriver()}, hist, errSink)

	sm := statemgr.New(cfgMgr.Client(), devMgr.Client(), errSink)
	svc := ipc.New(sm)

	done := make(chan struct{}, 3)

	go func() {
		cfgMgr.Run(ctx)
		done <- struct{}{}
	}()
	go func() {
		devMgr.Run(ctx)
		done <- struct{}{}
	}()
	go func() {
		sm.Run(ctx)
		done <- struct{}{}
	}()

	if err := svc.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("IPC service stopped")
	}

	<-ctx.Done()
	<-done
	<-done
	<-done

	return nil
}
