package command

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/0823nobuo-png/System-Validator/internal/cli/output"
	"github.com/0823nobuo-png/System-Validator/internal/infra/buildinfo"
	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
	"github.com/0823nobuo-png/System-Validator/internal/telemetry/logger"
)

// Exit codes.
const (
	ExitError      = 1
	ExitParse      = 2
	ExitValidation = 3
)

// metadataLogger is the App.Metadata key holding the *slog.Logger.
const metadataLogger = "logger"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    buildinfo.Name,
		Usage:   "Load and validate System Validator configuration",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ShowCommand(),
			CheckCommand(),
			WatchCommand(),
			ServeCommand(),
			RemoteCommand(),
			VersionCommand(),
		},
		Before: setupLogger,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Directory holding " + confloader.EnvFileName + " and " + confloader.DocumentFileName,
			EnvVars: []string{"SYSTEM_VALIDATOR_BASE_DIR"},
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:  "process-env",
			Usage: "Overlay " + confloader.DefaultEnvPrefix + "* process environment variables",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn, error",
			EnvVars: []string{"SYSTEM_VALIDATOR_LOG_LEVEL"},
			Value:   "warn",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
			Value: "text",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Dir        string
	Output     string // table, json, yaml
	Wide       bool
	ProcessEnv bool
	LogLevel   string
	LogFormat  string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Dir:        c.String("dir"),
		Output:     c.String("output"),
		Wide:       c.Bool("wide"),
		ProcessEnv: c.Bool("process-env"),
		LogLevel:   c.String("log-level"),
		LogFormat:  c.String("log-format"),
	}
}

// setupLogger builds the process logger from the global flags. Logs go
// to the error writer so they never mix with command output.
func setupLogger(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	l, err := logger.New(logger.Config{
		Level:  flags.LogLevel,
		Format: flags.LogFormat,
		Output: errWriter(c),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(l)
	slog.SetDefault(l.Slog())

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[metadataLogger] = l.Slog()
	return nil
}

// getLogger returns the logger set up by Before, or slog.Default.
func getLogger(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[metadataLogger].(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// newLoader builds a Loader from the global flags.
func newLoader(c *cli.Context, opts ...confloader.Option) *confloader.Loader {
	all := []confloader.Option{confloader.WithLogger(getLogger(c))}
	if c.Bool("process-env") {
		all = append(all, confloader.WithProcessEnv(""))
	}
	return confloader.NewLoader(append(all, opts...)...)
}

// formatter returns the formatter selected by --output.
func formatter(c *cli.Context) (output.Formatter, error) {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return nil, cli.Exit(err.Error(), ExitError)
	}
	return output.NewFormatter(format, flags.Wide), nil
}

// loadError turns a load failure into a cli exit error with a
// distinct message and exit code per failure kind.
func loadError(dir string, err error) error {
	var pe *confloader.ParseError
	switch {
	case errors.As(err, &pe):
		return cli.Exit(fmt.Sprintf("invalid configuration document %s: %v", pe.Path, pe.Err), ExitParse)
	case errors.Is(err, confloader.ErrInvalidDSN):
		return cli.Exit(fmt.Sprintf("invalid configuration in %s: %v", dir, err), ExitValidation)
	default:
		return cli.Exit(fmt.Sprintf("load configuration from %s: %v", dir, err), ExitError)
	}
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// PrintError prints an error message to the error writer.
func PrintError(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(errWriter(c), "error: "+format+"\n", args...)
}
