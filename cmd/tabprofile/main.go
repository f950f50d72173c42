// Command tabprofile profiles a CSV or Excel file: it normalizes the column
// headers and prints per-column descriptive statistics.
//
// Usage:
//
//	tabprofile [flags] [path]
//
// Without a path the file is asked for on standard input.
package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/tabprofile/config"
	"github.com/kbukum/tabprofile/eda"
	"github.com/kbukum/tabprofile/logger"
	"github.com/kbukum/tabprofile/observability"
	"github.com/kbukum/tabprofile/report"
	"github.com/kbukum/tabprofile/table"
	"github.com/kbukum/tabprofile/version"

	_ "github.com/kbukum/tabprofile/storage/local"
	_ "github.com/kbukum/tabprofile/storage/memory"
	_ "github.com/kbukum/tabprofile/storage/s3"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configFile  string
	envFile     string
	json        bool
	diagram     string
	output      string
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, *pflag.FlagSet, error) {
	var f flags
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&f.configFile, "config", "c", "", "config file (default: ./cmd/tabprofile/config.yml or ./config.yml)")
	fs.StringVar(&f.envFile, "env-file", "", ".env file loaded before the environment is read")
	fs.BoolVar(&f.json, "json", false, "print the JSON report instead of the text report")
	fs.StringVar(&f.diagram, "diagram", "", "write the Mermaid pipeline diagram to a file, s3:// or mem:// object")
	fs.StringVarP(&f.output, "output", "o", "", "publish the JSON report to a directory, s3://bucket/prefix or mem://name/prefix")
	fs.BoolVarP(&f.showVersion, "version", "v", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [path]\n\nFlags:\n", serviceName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return &f, fs, nil
}

func loadConfig(f *flags, fs *pflag.FlagSet) (*AppConfig, error) {
	var opts []config.LoaderOption
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.envFile != "" {
		opts = append(opts, config.WithEnvFile(f.envFile))
	}

	var cfg AppConfig
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}

	// Flags override the file and the environment.
	if fs.Changed("json") {
		cfg.Output.JSON = f.json
	}
	if fs.Changed("diagram") {
		cfg.Output.Diagram = f.diagram
	}
	if fs.Changed("output") {
		cfg.Output.Location = f.output
	}
	if err := cfg.Output.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, fs, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if f.showVersion {
		fmt.Fprintf(stdout, "%s %s\n", serviceName, version.Get())
		return 0
	}

	cfg, err := loadConfig(f, fs)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return 1
	}

	logger.Init(&cfg.Logging)
	logger.RegisterDefaults()
	log := logger.GetGlobalLogger()

	shutdown, err := observability.Init(ctx, cfg.Observability, cfg.Name, version.Short(), cfg.Environment)
	if err != nil {
		log.Error("observability init failed", logger.ErrorFields("observability.init", err))
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("observability shutdown failed", logger.ErrorFields("observability.shutdown", err))
		}
	}()

	opts := []eda.Option{
		eda.WithLoader(table.NewLoader(cfg.Pipeline.Table, cfg.Storage, logger.Get(logger.ComponentTable))),
		eda.WithLogger(logger.Get(logger.ComponentEDA)),
		eda.WithServiceName(cfg.Name),
	}
	if cfg.Observability.Enabled {
		metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
		if err != nil {
			log.Error("metrics init failed", logger.ErrorFields("observability.metrics", err))
			return 1
		}
		opts = append(opts, eda.WithMetrics(metrics))
	}

	profiler, err := eda.New(cfg.Pipeline, opts...)
	if err != nil {
		log.Error("pipeline setup failed", logger.ErrorFields("eda.new", err))
		return 1
	}

	if cfg.Output.Diagram != "" {
		if err := exportDiagram(ctx, cfg.Storage, profiler.Graph(), cfg.Output.Diagram); err != nil {
			log.Warn("could not export the pipeline diagram; profiling continues", logger.Fields("target", cfg.Output.Diagram, "error", err.Error()))
		} else {
			log.Info("pipeline diagram saved", logger.Fields("target", cfg.Output.Diagram))
		}
	}

	ref := fs.Arg(0)
	if ref == "" {
		if !cfg.Output.JSON {
			printIntro(stdout)
		}
		if ref, err = prompt(stdin, stdout); err != nil {
			log.Error("reading input path failed", logger.ErrorFields("prompt", err))
			return 1
		}
	}

	out, err := profiler.Run(ctx, ref)
	if err != nil {
		log.Error("profiling aborted", logger.ErrorFields("eda.run", err))
		return 1
	}

	if cfg.Output.JSON {
		err = report.JSON(stdout, out)
	} else {
		err = report.Text(stdout, out)
	}
	if err != nil {
		log.Error("writing report failed", logger.ErrorFields("report", err))
		return 1
	}

	if cfg.Output.Location != "" {
		key, err := publishReport(ctx, cfg.Storage, cfg.Output.Location, out)
		if err != nil {
			log.Error("publishing report failed", logger.Fields("location", cfg.Output.Location, "error", err.Error()))
			return 1
		}
		log.Info("report published", logger.Fields("location", cfg.Output.Location, "key", key))
	}

	if out.Failed() {
		return 1
	}
	return 0
}

func printIntro(w io.Writer) {
	fmt.Fprintln(w, "\n🚀 Tabular profiling pipeline")
	fmt.Fprintln(w, "This pipeline processes CSV/Excel files through the following steps:")
	fmt.Fprintln(w, "  1. Load file (CSV or Excel)")
	fmt.Fprintln(w, "  2. Identify headers")
	fmt.Fprintln(w, "  3. Normalize headers")
	fmt.Fprintln(w, "  4. Analyze each column in parallel ⚡")
	fmt.Fprintln(w, "  5. Aggregate statistics")
}

// prompt asks for the input path and returns the trimmed answer.
func prompt(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "\nEnter the path to your CSV or Excel file: ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !stderrors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
