package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/0823nobuo-png/System-Validator/internal/cli/output"
	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
	"github.com/0823nobuo-png/System-Validator/internal/infra/pgprobe"
)

// CheckCommand returns the check command.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate the configuration directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ping",
				Usage: "Also connect to the database named by " + confloader.DSNKey,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Ping timeout",
				Value: pgprobe.DefaultTimeout,
			},
		},
		Action: checkConfig,
	}
}

func checkConfig(c *cli.Context) error {
	dir := c.String("dir")
	m, err := newLoader(c).Load(c.Context, dir)
	if err != nil {
		return loadError(dir, err)
	}

	dsn, _ := m.GetString(confloader.DSNKey)
	target, describeErr := pgprobe.Describe(dsn)

	w := writer(c)
	fmt.Fprintln(w, "✓ configuration is valid")
	if describeErr != nil {
		// The prefix check passed but pgx cannot read the rest.
		fmt.Fprintf(errWriter(c), "warning: %s is not a usable connection string: %v\n", confloader.DSNKey, describeErr)
		if c.Bool("ping") {
			return cli.Exit("cannot ping: "+describeErr.Error(), ExitError)
		}
		return nil
	}
	fmt.Fprintf(w, "  target:   %s\n", target.Addr())
	fmt.Fprintf(w, "  database: %s\n", target.Database)
	fmt.Fprintf(w, "  user:     %s\n", target.User)

	if !c.Bool("ping") {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	spinner := output.NewSpinner(errWriter(c), "connecting to "+target.Addr())
	spinner.Start()
	start := time.Now()
	if err := pgprobe.Ping(ctx, dsn); err != nil {
		spinner.Fail("database unreachable")
		return cli.Exit(err.Error(), ExitError)
	}
	spinner.Success(fmt.Sprintf("database reachable (%s)", time.Since(start).Round(time.Millisecond)))
	return nil
}
