package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/recordgen/generator"
	"github.com/teranos/recordgen/watch"
)

// WatchCmd regenerates targets when their inputs change
var WatchCmd = &cobra.Command{
	Use:   "watch [target...]",
	Short: "Regenerate when descriptors or marked sources change",
	Long: `Generate the targets, then watch their descriptor directories and source
packages and regenerate after each change. Generated files never trigger a
run. [watch] exec in recordgen.toml names a command run after every
successful regeneration, e.g. exec = "go test ./model/...".

Stop with Ctrl-C.`,
	ValidArgsFunction: targetNames,
	RunE:              runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	targets, err := selectTargets(cfg, args)
	if err != nil {
		return err
	}

	w, err := watch.New(cfg, generator.New(cfg), targets,
		watch.WithInitialRun(),
		watch.WithOutput(cmd.ErrOrStderr()),
		watch.WithOnRun(func(outputs []*generator.Output, err error) {
			if err != nil {
				pterm.Error.Println(err.Error())
				return
			}
			pterm.Success.Printfln("Regenerated %d target(s)", len(outputs))
		}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pterm.Info.Printfln("Watching %d director(ies), Ctrl-C to stop", len(w.Dirs()))
	return w.Run(ctx)
}
