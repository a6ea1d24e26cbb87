package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/0823nobuo-png/System-Validator/internal/cli/config"
	"github.com/0823nobuo-png/System-Validator/internal/cli/connection"
	"github.com/0823nobuo-png/System-Validator/internal/cli/output"
	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
	"github.com/0823nobuo-png/System-Validator/internal/infra/pgprobe"
	"github.com/0823nobuo-png/System-Validator/internal/infra/tlsroots"
	"github.com/0823nobuo-png/System-Validator/internal/server/httpserver/handler"
)

// RemoteCommand returns the remote command group, which talks to a
// running status panel.
func RemoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "Query a running status panel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Panel address (host:port or URL), overrides the profile",
				EnvVars: []string{"SYSTEM_VALIDATOR_SERVER"},
			},
			&cli.StringFlag{
				Name:  "ca-file",
				Usage: "PEM file with CA certificates to trust for https:// servers",
			},
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "Saved panel profile to use",
				EnvVars: []string{"SYSTEM_VALIDATOR_PROFILE"},
			},
			&cli.StringFlag{
				Name:    "cli-config",
				Usage:   "CLI config file holding profiles",
				EnvVars: []string{"SYSTEM_VALIDATOR_CLI_CONFIG"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: connection.DefaultTimeout,
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the panel's current load result",
				Action: remoteStatusAction,
			},
			{
				Name:   "ready",
				Usage:  "Report whether the panel holds a valid configuration",
				Action: remoteReady,
			},
			{
				Name:   "reload",
				Usage:  "Ask the panel to reload its configuration",
				Action: remoteReload,
			},
			profileCommand(),
		},
	}
}

// remoteStatus is the client view of GET /status. Config values are
// decoded as plain data.
type remoteStatus struct {
	BaseDir    string             `json:"base_dir" yaml:"base_dir"`
	Generation uint64             `json:"generation" yaml:"generation"`
	LoadedAt   *time.Time         `json:"loaded_at,omitempty" yaml:"loaded_at,omitempty"`
	OK         bool               `json:"ok" yaml:"ok"`
	Error      *handler.LoadError `json:"error,omitempty" yaml:"error,omitempty"`
	Keys       int                `json:"keys" yaml:"keys"`
	Config     map[string]any     `json:"config,omitempty" yaml:"config,omitempty"`
	Target     *pgprobe.Target    `json:"target,omitempty" yaml:"target,omitempty"`
	Uptime     string             `json:"uptime" yaml:"uptime"`
}

// Table implements output.Tabler.
func (s remoteStatus) Table(wide bool) *output.Table {
	t := &output.Table{}
	t.SetHeaders("FIELD", "VALUE")
	t.AddRow("base_dir", s.BaseDir)
	t.AddRow("generation", strconv.FormatUint(s.Generation, 10))
	if s.LoadedAt != nil {
		t.AddRow("loaded_at", s.LoadedAt.Format(time.RFC3339))
	}
	t.AddRow("ok", strconv.FormatBool(s.OK))
	if s.Error != nil {
		t.AddRow("error", fmt.Sprintf("[%s] %s", s.Error.Code, s.Error.Message))
	}
	t.AddRow("keys", strconv.Itoa(s.Keys))
	if s.Target != nil {
		t.AddRow("target", s.Target.Addr())
		t.AddRow("database", s.Target.Database)
		t.AddRow("user", s.Target.User)
	}
	t.AddRow("uptime", s.Uptime)

	if wide {
		cfg, _ := confloader.ValueOf(s.Config).Map()
		for _, row := range output.MappingTable(cfg, false).Rows {
			t.AddRow("config."+row[0], row[1])
		}
	}
	return t
}

// resolveProfile picks the panel to talk to. Explicit --server and
// --ca-file values override the selected profile.
func resolveProfile(c *cli.Context) (cliconfig.Profile, error) {
	cfg, err := cliconfig.Load(c.String("cli-config"))
	if err != nil {
		return cliconfig.Profile{}, cli.Exit(err.Error(), ExitError)
	}
	p, err := cfg.Resolve(c.String("profile"))
	if err != nil {
		return cliconfig.Profile{}, cli.Exit(err.Error(), ExitError)
	}
	if c.IsSet("server") {
		p.Server = c.String("server")
	}
	if c.IsSet("ca-file") {
		p.CAFile = c.String("ca-file")
	}
	return p, nil
}

// newClient builds a panel client from the remote flags.
func newClient(c *cli.Context) (*connection.Client, error) {
	p, err := resolveProfile(c)
	if err != nil {
		return nil, err
	}
	tlsCfg, err := tlsroots.LoadClientTLSConfig(p.CAFile)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("load CA file: %v", err), ExitError)
	}
	return connection.NewClient(p.Server,
		connection.WithTLSConfig(tlsCfg),
		connection.WithTimeout(c.Duration("timeout")),
	), nil
}

func remoteStatusAction(c *cli.Context) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	resp, err := client.Get(c.Context, "/status")
	if err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	var status remoteStatus
	if err := connection.ParseResponse(resp, &status); err != nil {
		return remoteError(err)
	}
	return f.Format(writer(c), status)
}

func remoteReady(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	resp, err := client.Get(c.Context, "/ready")
	if err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	var health handler.HealthResponse
	if err := connection.ParseResponse(resp, &health); err != nil {
		return remoteError(err)
	}
	fmt.Fprintf(writer(c), "✓ %s is %s\n", client.Target(), health.Status)
	return nil
}

func remoteReload(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	resp, err := client.Post(c.Context, "/reload")
	if err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	var status remoteStatus
	if err := connection.ParseResponse(resp, &status); err != nil {
		return remoteError(err)
	}
	fmt.Fprintf(writer(c), "✓ configuration reloaded (generation %d, %d keys)\n", status.Generation, status.Keys)
	return nil
}

// remoteError maps a panel error envelope onto the local exit codes.
func remoteError(err error) error {
	apiErr, ok := connection.AsAPIError(err)
	if !ok {
		return cli.Exit(err.Error(), ExitError)
	}
	switch apiErr.Code {
	case handler.CodeParseError:
		return cli.Exit(apiErr.Error(), ExitParse)
	case handler.CodeValidationError:
		return cli.Exit(apiErr.Error(), ExitValidation)
	default:
		return cli.Exit(apiErr.Error(), ExitError)
	}
}
