// Package main provides fixprep - TIPC benchmark fixture preparation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/tipc-tools/fixprep/pkg/config"
	"github.com/tipc-tools/fixprep/pkg/fixture"
	"github.com/tipc-tools/fixprep/pkg/installer"
	"github.com/tipc-tools/fixprep/pkg/notify"
	"github.com/tipc-tools/fixprep/pkg/progress"
	"github.com/tipc-tools/fixprep/pkg/tipc"
)

// opts holds all command-line options.
type opts struct {
	DataDir  string `long:"data-dir" default:"." description:"directory fixtures are fetched and extracted into"`
	Manifest string `long:"manifest" description:"fixture rules file (default: built-in rules)"`
	DryRun   bool   `long:"dry-run" description:"log planned side effects without performing them"`
	Debug    bool   `short:"d" long:"debug" description:"enable debug logging"`
	NoColor  bool   `long:"no-color" description:"disable color output"`
	Version  bool   `short:"v" long:"version" description:"print version and exit"`

	Args struct {
		ConfigFile string `positional-arg-name:"config-file" description:"TIPC config file"`
		Mode       string `positional-arg-name:"mode" description:"preparation mode (e.g. benchmark_train)"`
	} `positional-args:"yes"`
}

var revision = "unknown"

func main() {
	fmt.Printf("fixprep %s\n", revision)

	var o opts
	parser := flags.NewParser(&o, flags.Default)
	parser.Usage = "[OPTIONS] config-file mode"

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if o.Version {
		os.Exit(0)
	}

	if o.Args.ConfigFile == "" || o.Args.Mode == "" {
		fmt.Fprintln(os.Stderr, "error: config-file and mode arguments are required")
		os.Exit(1)
	}

	// setup context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, o); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts) error {
	cfg, err := config.Load("") // empty string uses the current directory
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	mode := tipc.ParseMode(o.Args.Mode)

	// the progress file is written only when benchmark work actually runs,
	// every other mode stays side-effect free after parsing
	progressPath := ""
	if mode == tipc.ModeBenchmarkTrain {
		progressPath = filepath.Join(o.DataDir, cfg.ProgressFile)
	}

	log, err := progress.NewLogger(progress.Config{
		Path:       progressPath,
		ConfigFile: o.Args.ConfigFile,
		Mode:       o.Args.Mode,
		NoColor:    o.NoColor,
	})
	if err != nil {
		return fmt.Errorf("create progress logger: %w", err)
	}
	defer log.Close() //nolint:errcheck // progress file close on exit

	// parsing always happens, whatever the mode
	rec, err := parseConfig(o.Args.ConfigFile, o.Debug, log)
	if err != nil {
		return err
	}

	if !mode.Known() {
		log.Warn("unrecognized mode %q, nothing to prepare", o.Args.Mode)
		return nil
	}
	if mode != tipc.ModeBenchmarkTrain {
		log.Print("mode %s needs no fixture preparation", mode)
		return nil
	}

	notifier, err := notify.New(notify.Params{
		Channels:      cfg.NotifyChannels,
		OnError:       cfg.NotifyOnError,
		OnComplete:    cfg.NotifyOnComplete,
		TimeoutMs:     cfg.NotifyTimeoutMs,
		WebhookURLs:   cfg.NotifyWebhookURLs,
		TelegramToken: cfg.NotifyTelegramToken,
		TelegramChat:  cfg.NotifyTelegramChat,
		SlackToken:    cfg.NotifySlackToken,
		SlackChannel:  cfg.NotifySlackChannel,
	}, log)
	if err != nil {
		return fmt.Errorf("create notification service: %w", err)
	}

	if prepErr := prepare(ctx, o, cfg, rec, log); prepErr != nil {
		notifier.Send(ctx, notify.Result{
			Status: "failure", ConfigFile: o.Args.ConfigFile, Mode: o.Args.Mode,
			ModelName: rec.ModelName, Duration: log.Elapsed(), Error: prepErr.Error(),
		})
		return prepErr
	}

	notifier.Send(ctx, notify.Result{
		Status: "success", ConfigFile: o.Args.ConfigFile, Mode: o.Args.Mode,
		ModelName: rec.ModelName, Duration: log.Elapsed(),
	})

	log.Print("completed in %s", log.Elapsed())
	return nil
}

// parseConfig loads the TIPC config and extracts the typed record.
func parseConfig(path string, debug bool, log *progress.Logger) (tipc.Record, error) {
	log.SetPhase(progress.PhaseParse)

	file, err := tipc.Load(path)
	if err != nil {
		return tipc.Record{}, err
	}

	rec, err := file.Record()
	if err != nil {
		return tipc.Record{}, fmt.Errorf("parse %s: %w", path, err)
	}

	log.Print("model name: %s", rec.ModelName)
	if debug {
		log.Print("config %s: %d lines", file.Path(), file.Len())
		// trainer list is extracted for config-contract parity, nothing consumes it
		log.Print("trainer list: %s", rec.TrainerList)
	}
	return rec, nil
}

// prepare runs fixture ensure cycles and the dependency installation.
func prepare(ctx context.Context, o opts, cfg *config.Config, rec tipc.Record, log *progress.Logger) error {
	manifest, err := fixture.LoadManifest(o.Manifest)
	if err != nil {
		return err
	}

	log.SetPhase(progress.PhaseFixture)
	preparer := fixture.NewPreparer(fixture.Params{
		Manifest: manifest,
		DataDir:  o.DataDir,
		DryRun:   o.DryRun,
	}, log)
	if err := preparer.Prepare(ctx, rec.ModelName); err != nil {
		return err
	}

	log.SetPhase(progress.PhaseInstall)
	projectDir, err := projectRoot(o.DataDir)
	if err != nil {
		return err
	}
	inst := installer.New(cfg.PythonCommand, o.DataDir, projectDir, log)
	inst.DryRun = o.DryRun
	if err := inst.Install(ctx); err != nil {
		return fmt.Errorf("install dependencies: %w", err)
	}

	return nil
}

// projectRoot returns the parent of the data dir, where the enclosing
// project's setup lives for the editable install.
func projectRoot(dataDir string) (string, error) {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Dir(abs), nil
}
