package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/0823nobuo-png/System-Validator/internal/cli/config"
	"github.com/0823nobuo-png/System-Validator/internal/cli/output"
)

// profileCommand manages saved panel profiles.
func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage saved panel profiles",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved profiles",
				Action: listProfiles,
			},
			{
				Name:      "add",
				Usage:     "Save a profile",
				ArgsUsage: "NAME SERVER",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "ca",
						Usage: "PEM file with CA certificates for this panel",
					},
					&cli.BoolFlag{
						Name:  "use",
						Usage: "Also make it the current profile",
					},
				},
				Action: profileAdd,
			},
			{
				Name:      "use",
				Usage:     "Set the current profile",
				ArgsUsage: "NAME",
				Action:    profileUse,
			},
		},
	}
}

// profileRow is one line of profile list output.
type profileRow struct {
	Current bool   `json:"current" yaml:"current"`
	Name    string `json:"name" yaml:"name"`
	Server  string `json:"server" yaml:"server"`
	CAFile  string `json:"ca_file,omitempty" yaml:"ca_file,omitempty"`
}

// profileList is the result of profile list.
type profileList []profileRow

// Table implements output.Tabler.
func (l profileList) Table(wide bool) *output.Table {
	t := &output.Table{}
	if wide {
		t.SetHeaders("CURRENT", "NAME", "SERVER", "CA FILE")
	} else {
		t.SetHeaders("CURRENT", "NAME", "SERVER")
	}
	for _, row := range l {
		mark := ""
		if row.Current {
			mark = "*"
		}
		if wide {
			t.AddRow(mark, row.Name, row.Server, row.CAFile)
		} else {
			t.AddRow(mark, row.Name, row.Server)
		}
	}
	return t
}

func listProfiles(c *cli.Context) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}
	cfg, err := cliconfig.Load(c.String("cli-config"))
	if err != nil {
		return cli.Exit(err.Error(), ExitError)
	}

	rows := make(profileList, 0, len(cfg.Profiles))
	for _, name := range cfg.Names() {
		p := cfg.Profiles[name]
		rows = append(rows, profileRow{
			Current: name == cfg.CurrentProfile,
			Name:    name,
			Server:  p.Server,
			CAFile:  p.CAFile,
		})
	}
	return f.Format(writer(c), rows)
}

func profileAdd(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: profile add NAME SERVER", ExitError)
	}
	name, server := c.Args().Get(0), c.Args().Get(1)

	path := c.String("cli-config")
	cfg, err := cliconfig.Load(path)
	if err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	cfg.Set(name, cliconfig.Profile{Server: server, CAFile: c.String("ca")})
	if c.Bool("use") {
		cfg.CurrentProfile = name
	}
	if err := cliconfig.Save(cfg, path); err != nil {
		return cli.Exit(fmt.Sprintf("save cli config: %v", err), ExitError)
	}
	fmt.Fprintf(writer(c), "✓ profile %q saved\n", name)
	return nil
}

func profileUse(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: profile use NAME", ExitError)
	}
	name := c.Args().First()

	path := c.String("cli-config")
	cfg, err := cliconfig.Load(path)
	if err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	if err := cfg.Use(name); err != nil {
		return cli.Exit(err.Error(), ExitError)
	}
	if err := cliconfig.Save(cfg, path); err != nil {
		return cli.Exit(fmt.Sprintf("save cli config: %v", err), ExitError)
	}
	fmt.Fprintf(writer(c), "✓ now using profile %q\n", name)
	return nil
}
