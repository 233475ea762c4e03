package regress

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"texsvg/state"
)

// Run is the "check" subcommand: compare two rendered documents under the
// tolerances of a fixture file.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("check")

	if cmd.Args().Len() < 3 {
		return errors.New("check needs a fixture file and two rendered documents")
	}
	if cmd.Args().Len() > 3 {
		log.Warn("Malformed command line, extra arguments", zap.Strings("ignoring", cmd.Args().Slice()[3:]))
	}

	fix, err := LoadFixture(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	res, err := fix.CompareFiles(cmd.Args().Get(1), cmd.Args().Get(2))
	if err != nil {
		return err
	}
	if !res.Same {
		return fmt.Errorf("documents differ: %s", res.Reason)
	}
	log.Info("Documents match", zap.Int("diff_pixels", res.DiffPixels))
	return nil
}
