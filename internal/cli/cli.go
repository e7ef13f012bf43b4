package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/trainbuild/internal/app"
	"github.com/vk/trainbuild/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// fieldFlags maps flags that mirror configuration keys to those keys. Only
// flags set explicitly end up in config.Args.Fields.
var fieldFlags = map[string]string{
	"model":      "model",
	"datasets":   "datasets",
	"seed":       "seed",
	"batch-size": "batch_size",
	"run-type":   "run_type",
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("trainbuild", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
trainbuild - Builds and runs a training job from a configuration file.

Usage:
  trainbuild [options] -config PATH [--] [OPTS...]

Arguments:
  OPTS
    Configuration overrides, either "dotted.key=value" or "dotted.key value".
    Every key must already exist in the configuration.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration file or directory (.hcl, .yaml, .toml, .json).")
	cFlag := flagSet.String("c", "", "Path to the configuration file or directory (shorthand).")
	overrideFlag := flagSet.String("config-override", "", "Configuration merged over the file, as a JSON object or HCL attributes.")
	flagSet.String("model", "", "Model to train; replaces every 'model' key in the configuration.")
	flagSet.String("datasets", "", "Datasets to use; replaces every 'datasets' key in the configuration.")
	flagSet.Int("seed", 0, "Random seed; replaces every 'seed' key in the configuration.")
	flagSet.Int("batch-size", 0, "Batch size; replaces every 'batch_size' key in the configuration.")
	flagSet.String("run-type", "", "Run type (train, val, inference, train+val); replaces every 'run_type' key.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *configFlag
	if path == "" {
		path = *cFlag
	}
	if path == "" {
		slog.Debug("No configuration path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	fields := make(map[string]any)
	flagSet.Visit(func(f *flag.Flag) {
		key, ok := fieldFlags[f.Name]
		if !ok {
			return
		}
		if getter, ok := f.Value.(flag.Getter); ok {
			fields[key] = getter.Get()
			return
		}
		fields[key] = f.Value.String()
	})

	opts := flagSet.Args()
	slog.Debug("CLI parameter validation complete.", "fields", len(fields), "opts", len(opts))

	cfg, err := app.NewConfig(app.Config{
		Args: &config.Args{
			ConfigPath:     path,
			ConfigOverride: *overrideFlag,
			Opts:           opts,
			Fields:         fields,
		},
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return cfg, false, nil
}
