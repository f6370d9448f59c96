package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"runicworld/internal/config"
	"runicworld/internal/environment"
	"runicworld/internal/persistence/snapshot"
	"runicworld/internal/server"
	"runicworld/internal/terrain"
	"runicworld/internal/world"
)

func main() {
	var cfgPath string
	var seedFlag int64
	var seedSet bool
	flag.StringVar(&cfgPath, "config", "", "path to world server configuration file (json or yaml)")
	flag.Int64Var(&seedFlag, "seed", 0, "world seed (random if omitted)")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var seed *int64
	if seedSet {
		seed = &seedFlag
	}

	var sink world.SnapshotSink
	if cfg.Snapshot.Enabled && cfg.Snapshot.Dir != "" {
		// The writer needs the final seed; resolve it up front so the
		// snapshot file name matches the world.
		if seed == nil {
			s := time.Now().UnixNano() % 1_000_000
			seed = &s
		}
		writer, err := snapshot.NewChunkWriter(cfg.Snapshot.Dir, *seed)
		if err != nil {
			log.Fatalf("open snapshot writer: %v", err)
		}
		defer writer.Close()
		sink = writer
	}

	mgr := terrain.NewWorldManager(cfg, seed, sink)
	log.Printf("world ready with seed %d", mgr.Seed())

	env := environment.New(cfg.Environment, mgr.Seed())

	ctx, cancel := signalContext()
	defer cancel()

	srv := server.New(cfg, mgr, env)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}

		// Ensure the process terminates if shutdown stalls.
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
