// scandesk-station is a terminal scanning station. Plug a keyboard-wedge
// barcode scanner into the machine, run this in the focused terminal and
// scans show up as previews while ordinary typing is left alone.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"scandesk/internal/core/provider"
	"scandesk/internal/core/version"
	"scandesk/internal/platform/config"
	"scandesk/internal/platform/logger"
	stationmod "scandesk/internal/services/station/module"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		path      string
		debug     bool
		foldWidth bool
		logFile   string
	)

	// tunables come from SCAN_*, flags override
	scanOpts, routerOpts := stationmod.ScanFromConfig(config.New())

	fs := pflag.NewFlagSet("scandesk-station", pflag.ContinueOnError)
	fs.StringVar(&path, "path", "/", "route path the station starts on")
	fs.BoolVar(&debug, "debug", scanOpts.DebugMode, "treat every burst as a scan and show classifier events")
	fs.BoolVar(&foldWidth, "fold-width", routerOpts.FoldWidth, "fold full width characters before classifying")
	fs.StringVar(&logFile, "log-file", "", "write JSON logs to this file")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		bi := version.Info()
		fmt.Printf("scandesk-station %s (%s, %s)\n", bi.Version, bi.Commit, bi.Date)
		return nil
	}
	if rest := fs.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	// the alt screen owns stdout, logs go to a file or nowhere
	var w io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	opt := logger.FromEnv()
	opt.Format = "json"
	opt.Writer = w
	opt.Service = "scandesk-station"
	logger.Init(opt)

	scanOpts.DebugMode = debug
	routerOpts.FoldWidth = foldWidth

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newModel(ctx, provider.Options{
		Scan:   scanOpts,
		Router: routerOpts,
		Path:   path,
	}, debug)
	defer m.p.Close()

	logger.Named("station").Info().
		Str("path", path).
		Bool("debug", debug).
		Dur("speed_threshold", scanOpts.SpeedThreshold).
		Msg("station starting")

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
