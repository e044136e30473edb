package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vk/rockiq/internal/app"
	"github.com/vk/rockiq/internal/config"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("rockiq", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
rockiq - a sequence graph editor for module pipeline documents.

Usage:
  rockiq [options] [DOCUMENT_PATH]

Arguments:
  DOCUMENT_PATH
    Path to the multi-document YAML file carrying the SequenceConfig section.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the backing document.")
	cFlag := flagSet.String("c", "", "Path to the backing document (shorthand).")
	listenFlag := flagSet.String("listen", "", "Listen address for the HTTP API. Default ':5000'.")
	serverConfigFlag := flagSet.String("server-config", "", "Path to an optional HCL server config file.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	watchFlag := flagSet.Bool("watch", true, "Enable the document change watcher.")
	noWatchFlag := flagSet.Bool("no-watch", false, "Disable the document change watcher.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *configFlag != "" {
		path = *configFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	listen := *listenFlag
	logFormat := strings.ToLower(*logFormatFlag)
	logLevel := strings.ToLower(*logLevelFlag)
	watchDebounce := time.Duration(0)

	// The server config file fills in whatever the flags left unset.
	if *serverConfigFlag != "" {
		file, err := config.Load(*serverConfigFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		if path == "" {
			path = file.Document
		}
		if listen == "" {
			listen = file.Listen
		}
		if file.LogFormat != "" && !flagWasSet(flagSet, "log-format") {
			logFormat = strings.ToLower(file.LogFormat)
		}
		if file.LogLevel != "" && !flagWasSet(flagSet, "log-level") {
			logLevel = strings.ToLower(file.LogLevel)
		}
		if file.WatchDebounceMS > 0 {
			watchDebounce = time.Duration(file.WatchDebounceMS) * time.Millisecond
		}
		slog.Debug("Server config file merged.", "path", *serverConfigFlag)
	}

	if path == "" {
		slog.Debug("No document path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if logFormat != app.LogFormatText && logFormat != app.LogFormatJSON {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	appConfig, err := app.NewConfig(app.Config{
		DocumentPath:  path,
		Listen:        listen,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		Watch:         *watchFlag && !*noWatchFlag,
		WatchDebounce: watchDebounce,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", appConfig)
	return appConfig, false, nil
}

// flagWasSet reports whether the user passed a flag explicitly, as opposed
// to it holding its default value.
func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
