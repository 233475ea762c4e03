package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"texsvg/config"
	"texsvg/document"
	"texsvg/geom"
	"texsvg/state"
)

// Run is the "render" subcommand: one edit action against a host document.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("cli")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no source document has been specified")
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		// no destination means edit in place
		dst = src
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	doc, err := document.LoadFile(src)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	id, err := Render(ctx, doc, req)
	if err != nil {
		return err
	}
	log.Info("Node rendered", zap.String("id", id))

	if err := doc.WriteToFile(dst); err != nil {
		return fmt.Errorf("unable to write result document: %w", err)
	}
	if env.Rpt != nil {
		if data, err := os.ReadFile(dst); err == nil {
			env.Rpt.StoreData("result.svg", data)
		}
	}
	return nil
}

// requestFromFlags validates the flag combination and builds the pipeline
// request. Only flags the user actually set become overrides, everything
// else inherits from node metadata or configured defaults.
func requestFromFlags(cmd *cli.Command) (Request, error) {
	req := Request{
		TargetID: cmd.String("id"),
		ParentID: cmd.String("parent-id"),
		InsertX:  cmd.Float("insert-x"),
		InsertY:  cmd.Float("insert-y"),
	}

	if cmd.IsSet("text") && cmd.IsSet("text-file") {
		return Request{}, errors.New("only one of --text and --text-file may be given")
	}
	req.Text = cmd.String("text")
	if file := cmd.String("text-file"); len(file) > 0 {
		data, err := os.ReadFile(file)
		if err != nil {
			return Request{}, fmt.Errorf("unable to read text file: %w", err)
		}
		req.Text = string(data)
	}
	req.PreambleFile = cmd.String("preamble-file")

	if cmd.IsSet("scale-factor") && cmd.IsSet("font-size-pt") {
		return Request{}, errors.New("only one of --scale-factor and --font-size-pt may be given")
	}
	if cmd.IsSet("scale-factor") {
		v := cmd.Float("scale-factor")
		if v <= 0 {
			return Request{}, errors.New("scale factor must be positive")
		}
		req.ScaleFactor = &v
	}
	if cmd.IsSet("font-size-pt") {
		v := cmd.Float("font-size-pt")
		if v <= 0 {
			return Request{}, errors.New("font size must be positive")
		}
		req.FontSizePt = &v
	}

	if cmd.IsSet("tex-command") {
		tc, err := config.ParseTexCommand(cmd.String("tex-command"))
		if err != nil {
			return Request{}, err
		}
		req.TexCommand = &tc
	}
	if cmd.IsSet("converter") {
		c, err := config.ParseConverter(cmd.String("converter"))
		if err != nil {
			return Request{}, err
		}
		req.Converter = &c
	}
	if cmd.IsSet("alignment") {
		a, err := geom.ParseAnchor(cmd.String("alignment"))
		if err != nil {
			return Request{}, err
		}
		req.Alignment = &a
	}
	if cmd.IsSet("stroke-to-path") {
		v := cmd.Bool("stroke-to-path")
		req.StrokeToPath = &v
	}
	return req, nil
}
