package command

import (
	"encoding/json"

	"github.com/urfave/cli/v2"

	"github.com/0823nobuo-png/System-Validator/internal/cli/output"
	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
)

// ShowCommand returns the show command.
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Load the configuration directory and print the merged mapping",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reveal",
				Usage: "Print secrets unmasked",
			},
		},
		Action: showConfig,
	}
}

// ShowResult is a merged mapping ready for output.
type ShowResult struct {
	Config confloader.Mapping
}

// Table implements output.Tabler.
func (r ShowResult) Table(wide bool) *output.Table {
	return output.MappingTable(r.Config, wide)
}

// MarshalJSON implements json.Marshaler.
func (r ShowResult) MarshalJSON() ([]byte, error) {
	if r.Config == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Config)
}

// MarshalYAML implements yaml.Marshaler.
func (r ShowResult) MarshalYAML() (any, error) {
	if r.Config == nil {
		return map[string]any{}, nil
	}
	return r.Config.Interface(), nil
}

func showConfig(c *cli.Context) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}

	dir := c.String("dir")
	m, err := newLoader(c).Load(c.Context, dir)
	if err != nil {
		return loadError(dir, err)
	}

	if !c.Bool("reveal") {
		m = confloader.Sanitize(m)
	}
	return f.Format(writer(c), ShowResult{Config: m})
}
