package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

// ExitError is an error that carries a process exit code
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Options holds the parsed command line
type Options struct {
	Template    string
	Data        string
	Output      string
	Validate    bool
	Watch       time.Duration
	HTTPTimeout time.Duration
	LogLevel    string
}

// Parse processes command-line arguments. It returns the options, whether the
// program should exit cleanly (help or usage), or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("render", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
render - Render a template against a JSON or YAML data context.

Usage:
  render [options] [TEMPLATE]

Arguments:
  TEMPLATE
    Template file, or @<url> to fetch it.

Options:
`)
		flagSet.PrintDefaults()
	}

	templateFlag := flagSet.String("template", "", "Template file, or @<url> to fetch it.")
	dataFlag := flagSet.String("data", "", "Data file (.json, .yaml, .yml), or @<url> returning JSON.")
	outputFlag := flagSet.String("o", "", "Output file, replaced atomically. Defaults to stdout.")
	validateFlag := flagSet.Bool("validate", false, "Check the template without rendering it.")
	watchFlag := flagSet.Duration("watch", 0, "Reload the data and re-render at this interval. 0 renders once.")
	timeoutFlag := flagSet.Duration("http-timeout", 10*time.Second, "Timeout for @<url> fetches.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	tmpl := *templateFlag
	if tmpl == "" && flagSet.NArg() > 0 {
		tmpl = flagSet.Arg(0)
	}
	if tmpl == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *watchFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid watch: must not be negative"}
	}
	if *watchFlag > 0 && *dataFlag == "" {
		return nil, false, &ExitError{Code: 2, Message: "watch requires -data"}
	}
	if *watchFlag > 0 && *validateFlag {
		return nil, false, &ExitError{Code: 2, Message: "validate and watch are mutually exclusive"}
	}
	if *timeoutFlag <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid http-timeout: must be positive"}
	}

	return &Options{
		Template:    tmpl,
		Data:        *dataFlag,
		Output:      *outputFlag,
		Validate:    *validateFlag,
		Watch:       *watchFlag,
		HTTPTimeout: *timeoutFlag,
		LogLevel:    logLevel,
	}, false, nil
}
