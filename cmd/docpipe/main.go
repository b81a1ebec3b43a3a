package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpipe/internal/builtin"
	"git.home.luguber.info/inful/docpipe/internal/config"
	"git.home.luguber.info/inful/docpipe/internal/daemon"
	"git.home.luguber.info/inful/docpipe/internal/pipeline"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docpipe.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory (overrides configuration)"`
	} `cmd:"" help:"Run the pipeline once and write the rendered output"`

	Plain struct {
		Document string `arg:"" help:"Name of the document to render"`
	} `cmd:"" help:"Render a single document to stdout"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Daemon struct{} `cmd:"" help:"Run continuously: rebuild on changes and on a schedule"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	registry := plugin.DefaultRegistry()
	if err := builtin.Register(registry); err != nil {
		slog.Error("Plugin registration failed", "error", err)
		os.Exit(1)
	}

	switch ctx.Command() {
	case "build":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runBuild(cfg, registry, CLI.Build.Output); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "plain <document>":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runPlain(cfg, registry, CLI.Plain.Document); err != nil {
			slog.Error("Render failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration written", "path", CLI.Config)
	case "daemon":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runDaemon(cfg, registry); err != nil {
			slog.Error("Daemon failed", "error", err)
			os.Exit(1)
		}
	}
}

func runBuild(cfg *config.Config, registry *plugin.Registry, outputOverride string) error {
	outDir := cfg.Output.Directory
	if outputOverride != "" {
		outDir = outputOverride
	}
	if cfg.Output.Clean {
		if err := os.RemoveAll(outDir); err != nil {
			return err
		}
	}

	p, err := pipeline.FromConfig(cfg, registry)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			slog.Warn("Pipeline cleanup failed", "error", err)
		}
	}()

	report, err := p.Run(context.Background(), outDir)
	if err != nil {
		return err
	}
	slog.Info("Output written",
		"directory", outDir,
		"documents", len(report.Documents))
	return nil
}

func runPlain(cfg *config.Config, registry *plugin.Registry, document string) error {
	p, err := pipeline.FromConfig(cfg, registry)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			slog.Warn("Pipeline cleanup failed", "error", err)
		}
	}()
	return p.RenderPlain(context.Background(), os.Stdout, document)
}

func runDaemon(cfg *config.Config, registry *plugin.Registry) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg, registry)
	if err != nil {
		return err
	}
	slog.Info("Daemon started, waiting for shutdown signal...")
	return d.Run(ctx)
}
