package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oarkflow/log"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/rabbit"
	"github.com/oarkflow/rabbit/pkg/config"
	"github.com/oarkflow/rabbit/pkg/server"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:  "rabbit-server",
		Usage: "HTTP service exposing the rabbit front end",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a configuration file (BCL, YAML, or JSON)",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides the config file",
			},
		},
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		log.DefaultLogger.Fatal().Err(err).Msg("rabbit-server failed")
	}
}

func serve(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	log.DefaultLogger.Level = logLevel(cfg.Logging.Level)
	applyRuntime(cfg)

	addr := cfg.Server.Addr
	if override := c.String("addr"); override != "" {
		addr = override
	}

	srv, err := server.New(server.Config{
		Version:      version,
		CacheEntries: cfg.Runtime.CacheEntries,
	})
	if err != nil {
		return err
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		if err := srv.Shutdown(); err != nil {
			log.DefaultLogger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	return srv.Start(addr)
}

func applyRuntime(cfg *config.Config) {
	rc := rabbit.GetRuntimeConfig()
	if cfg.Runtime.MaxSourceBytes > 0 {
		rc.MaxSourceBytes = cfg.Runtime.MaxSourceBytes
	}
	if cfg.Runtime.MaxExpressionDepth > 0 {
		rc.MaxExpressionDepth = cfg.Runtime.MaxExpressionDepth
	}
	if cfg.Runtime.CacheEntries > 0 {
		rc.CacheEntries = cfg.Runtime.CacheEntries
	}
	if cfg.Runtime.LogRunExecution != nil {
		rc.LogRunExecution = *cfg.Runtime.LogRunExecution
	}
	rabbit.SetRuntimeConfig(rc)
}

func logLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}
