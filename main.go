package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/toqueteos/webbrowser"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func run() error {
	var args cliArgs
	cliCtx := kong.Parse(
		&args,
		kong.Name("croptastic"),
		kong.Description("Crop pictures with a draggable, resizable viewport."),
		kong.UsageOnError(),
	)
	return cliCtx.Run()
}

type cliArgs struct {
	Serve  serveCmd  `cmd:"" default:"withargs" help:"Serve the crop widget for the pictures under a directory"`
	Replay replayCmd `cmd:"" help:"Replay recorded pointer events against a picture without a browser"`
}

func setupLogging(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(level)
	zerolog.DefaultContextLogger = &log.Logger
}

type serveCmd struct {
	RootDir   string `arg:"" help:"Root directory to serve files from" type:"existingdir"`
	OutputDir string `help:"Where crops and picks are written, defaults to ROOT/output"`
	Open      bool   `help:"Open the browser automatically when the server starts" default:"true" negatable:""`
	JSON      bool   `help:"Output operations in JSON format without executing"`
	Once      bool   `help:"Run the server once and exit after save" default:"true" negatable:""`
	Verbose   bool   `help:"Enable verbose logging" default:"false"`
}

func (cmd *serveCmd) Run() error {
	setupLogging(cmd.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ctx = log.Logger.WithContext(ctx)

	outputDir := cmd.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(cmd.RootDir, "output")
	}
	executor := &OperationExecutor{
		BaseDir:   cmd.RootDir,
		OutputDir: outputDir,
		Cropper:   NewImagingCropper(),
	}

	app := NewWebApp(Config{
		RootDir:   cmd.RootDir,
		OutputDir: outputDir,
		OnBeforeShutdown: func() {
			log.Ctx(ctx).Info().Msg("Shutting down web application...")
		},
		OnReady: func(addr string) {
			log.Ctx(ctx).Info().Msgf("Server started at %s", addr)
			if cmd.Open {
				if err := webbrowser.Open(addr); err != nil {
					log.Ctx(ctx).Error().Err(err).Msg("Failed to open browser")
				}
			}
		},
		OnSave: func(ops Operations) {
			if cmd.JSON {
				printJSONL(ops)
			} else if err := executor.Exec(ctx, ops); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("Failed to execute operations")
			}

			if cmd.Once {
				cancel()
			}
		},
	})

	return app.Run(ctx)
}

func printJSONL[T any](data []T) {
	enc := json.NewEncoder(os.Stdout)
	for _, item := range data {
		if err := enc.Encode(item); err != nil {
			log.Error().Err(err).Msg("Failed to encode item to JSON")
			continue
		}
	}
}
