// Package main provides the CLI entry point for ogstory.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/ogstory/pkg/adapters/logger"
	"github.com/user/ogstory/pkg/adapters/osfilesystem"
	"github.com/user/ogstory/pkg/config"
	"github.com/user/ogstory/pkg/metrics"
	"github.com/user/ogstory/pkg/ogstory"
	"github.com/user/ogstory/pkg/ports"
	"github.com/user/ogstory/pkg/server"
	"github.com/user/ogstory/pkg/summarizer"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "ogstory",
		Usage:   l10n.T("Generate story images from Open Graph metadata"),
		Version: version,
		Commands: []*cli.Command{
			generateCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commonFlags are shared by generate and serve.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Configuration")},
		&cli.StringFlag{Name: "engine", Usage: l10n.T("Rasterizer engine (gg, browser)"), Category: l10n.T("Rendering")},
		&cli.StringFlag{Name: "sampler", Usage: l10n.T("Dominant color sampler (histogram, kmeans)"), Category: l10n.T("Rendering")},
		&cli.StringFlag{Name: "chrome-path", Usage: l10n.T("Path to Chrome executable"), Category: l10n.T("Rendering")},
		&cli.BoolFlag{Name: "no-sandbox", Usage: l10n.T("Disable the Chrome sandbox"), Category: l10n.T("Rendering")},
		&cli.StringFlag{Name: "font-fallback", Usage: l10n.T("Font fallback when the CDN fails (none, local, bundled)"), Category: l10n.T("Fonts")},
		&cli.StringFlag{Name: "font-dir", Usage: l10n.T("Directory of font files for the local fallback"), Category: l10n.T("Fonts")},
		&cli.IntFlag{Name: "timeout", Usage: l10n.T("Fetch timeout in milliseconds"), Category: l10n.T("Network")},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T("Debug")},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output (serve writes one subdirectory per request)"), Category: l10n.T("Debug")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     l10n.T("Generate a story image for a URL"),
		ArgsUsage: "<url>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output PNG file path"), Category: l10n.T("Output")},
			&cli.BoolFlag{Name: "data-uri", Usage: l10n.T("Print the image as a data URI"), Category: l10n.T("Output")},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T("Output")},
		}, commonFlags()...),
		Action: runGenerate,
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: l10n.T("Serve story images over HTTP"),
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: l10n.T("Listen address (default: :8080)"), Category: l10n.T("Server")},
			&cli.Float64Flag{Name: "rate-limit", Usage: l10n.T("Requests per second per client (0 = unlimited)"), Category: l10n.T("Server")},
			&cli.IntFlag{Name: "burst", Usage: l10n.T("Rate limiter burst size"), Category: l10n.T("Server")},
		}, commonFlags()...),
		Action: runServe,
	}
}

// loadConfig reads the optional config file and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("engine") {
		cfg.Rasterizer.Engine = c.String("engine")
	}
	if c.IsSet("sampler") {
		cfg.Sampler.Method = c.String("sampler")
	}
	if c.IsSet("chrome-path") {
		cfg.Rasterizer.ChromePath = c.String("chrome-path")
	}
	if c.IsSet("font-fallback") {
		cfg.Fonts.Fallback = c.String("font-fallback")
	}
	if c.IsSet("font-dir") {
		cfg.Fonts.LocalDir = c.String("font-dir")
	}
	if c.IsSet("timeout") {
		cfg.HTTP.TimeoutMs = c.Int("timeout")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("rate-limit") {
		cfg.Server.RateLimit = c.Float64("rate-limit")
	}
	if c.IsSet("burst") {
		cfg.Server.Burst = c.Int("burst")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func runGenerate(c *cli.Context) error {
	pageURL := c.Args().First()
	if pageURL == "" {
		return cli.Exit(l10n.T("URL argument is required"), 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	genConfig := ogstory.FromFileConfig(cfg)
	genConfig.NoSandbox = c.Bool("no-sandbox")
	gen := ogstory.New(genConfig, ogstory.WithLogger(log), ogstory.WithFileSystem(fs))

	output := c.String("output")
	result, err := gen.Run(ctx, pageURL, output)
	if err != nil {
		return err
	}

	if output != "" {
		log.Info("Output saved to %s", output)
	}
	if c.Bool("data-uri") || output == "" {
		fmt.Println(result.Image.DataURI)
	}

	if path := c.String("summary"); path != "" {
		summary := summarizer.NewBuilder().
			WithSettings(summarizer.Settings{
				Engine:       string(genConfig.Engine),
				Sampler:      string(genConfig.Sampler),
				FontFallback: string(genConfig.FontFallback),
			}).
			WithRunResult(result).
			Build()
		summary.Output.Path = output

		formatter := summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		)
		if err := summarizer.NewWriter(formatter, fs).Write(path, summary); err != nil {
			log.Error("Failed to write summary: %s", err.Error())
		} else {
			log.Info("Summary saved to %s", path)
		}
	}

	return nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	genConfig := ogstory.FromFileConfig(cfg)
	genConfig.NoSandbox = c.Bool("no-sandbox")
	genConfig.DebugPerRun = true
	gen := ogstory.New(genConfig, ogstory.WithLogger(log))

	srv := server.New(gen, server.Options{
		RateLimit: cfg.Server.RateLimit,
		Burst:     cfg.Server.Burst,
		BodyLimit: cfg.Server.BodyLimit,
	}, metrics.New(), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errCh
}
