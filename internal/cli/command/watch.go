package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/0823nobuo-png/System-Validator/internal/infra/confloader"
	"github.com/0823nobuo-png/System-Validator/internal/infra/shutdown"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print the configuration and reprint it on every change until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "reveal",
				Usage: "Print secrets unmasked",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period after a file event before reloading",
				Value: confloader.DefaultDebounce,
			},
		},
		Action: watchConfig,
	}
}

func watchConfig(c *cli.Context) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}

	log := getLogger(c)
	reveal := c.Bool("reveal")
	w := writer(c)

	reloader := confloader.NewReloader(newLoader(c), c.String("dir"),
		confloader.WithReloaderLogger(log),
		confloader.WithDebounce(c.Duration("debounce")),
	)

	// Reloads are serialized, so listener calls never overlap.
	reloader.OnReload(func(snap confloader.Snapshot) {
		fmt.Fprintf(w, "# generation %d, %s\n", snap.Generation, snap.LoadedAt.Format(time.RFC3339))
		if snap.Err != nil {
			PrintError(c, "%v", snap.Err)
			return
		}
		m := snap.Config
		if !reveal {
			m = confloader.Sanitize(m)
		}
		if err := f.Format(w, ShowResult{Config: m}); err != nil {
			log.Error("failed to print configuration", "error", err)
		}
	})

	ctx, stop := shutdown.NewHandler(time.Second, shutdown.WithLogger(log)).Context(c.Context)
	defer stop()

	reloader.Reload(ctx)
	if err := reloader.Watch(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("watch %s: %v", reloader.BaseDir(), err), ExitError)
	}
	return nil
}
