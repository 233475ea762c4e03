package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/beevik/etree"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"texsvg/config"
	"texsvg/convert"
	"texsvg/document"
	"texsvg/misc"
	"texsvg/regress"
	"texsvg/state"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// save complete processed configuration if external configuration was provided
		if len(configFile) > 0 {
			// we do not want any of your secrets!
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 && env.Log != nil {
		env.Log.Info("Using defaults (no configuration file)")
	}

	if len(env.Cfg.Render.PreamblePath) > 0 {
		data, err := os.ReadFile(env.Cfg.Render.PreamblePath)
		if err != nil {
			return ctx, fmt.Errorf("unable to read preamble from %q: %w", env.Cfg.Render.PreamblePath, err)
		}
		env.DefaultPreamble = data
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Ignore urfave/cli default error handling - for me cli.Exit() looks
// non-transparent and unnesessary. I will return regular errors from
// subcommands.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// do nothing special, error is reported either by exitErrHandler or on
	// exit directly to stderr.
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {

	// allow graceful shutdown on interrupt so external tools are reaped and
	// the debug report gets finalized
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "compiles TeX snippets into editable SVG nodes",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Compiles TeX text and splices the result into an SVG document",
				OnUsageError: usageErrorHandler,
				Action:       convert.Run,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "`ID` of an existing node to recompile in place"},
					&cli.StringFlag{Name: "parent-id", Usage: "insertion parent `ID` for a fresh node (document root when absent)"},
					&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "TeX `CODE` to compile"},
					&cli.StringFlag{Name: "text-file", Usage: "read TeX code from `FILE`"},
					&cli.StringFlag{Name: "preamble-file", Usage: "preamble `FILE` prepended to the code"},
					&cli.StringFlag{Name: "tex-command",
						Usage: "TeX engine `NAME` (supported: " + strings.Join(config.TexCommandNames(), ", ") + ")"},
					&cli.StringFlag{Name: "converter",
						Usage: "pdf to svg converter `NAME` (supported: " + strings.Join(config.ConverterNames(), ", ") + ")"},
					&cli.FloatFlag{Name: "scale-factor", Usage: "scale relative to the compiled point size"},
					&cli.FloatFlag{Name: "font-size-pt", Usage: "target font size in `POINTS`, alternative to --scale-factor"},
					&cli.StringFlag{Name: "alignment", Usage: "anchor `LABEL` kept in place on recompile (e.g. \"middle center\")"},
					&cli.FloatFlag{Name: "insert-x", Usage: "insertion point `X` for fresh nodes, in document units"},
					&cli.FloatFlag{Name: "insert-y", Usage: "insertion point `Y` for fresh nodes, in document units"},
					&cli.BoolFlag{Name: "stroke-to-path", Usage: "convert remaining strokes in the result to filled paths"},
				},
				ArgsUsage: "SOURCE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to the SVG document to edit

DESTINATION:
    path for the edited document, SOURCE is overwritten when absent
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "extract",
				Usage:        "Dumps stored TeX metadata of rendered nodes (YAML)",
				OnUsageError: usageErrorHandler,
				Action:       extractMetadata,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "only the node carrying `ID`"},
				},
				ArgsUsage: "SOURCE",
			},
			{
				Name:         "check",
				Usage:        "Compares two rendered documents under fixture tolerances",
				OnUsageError: usageErrorHandler,
				Action:       regress.Run,
				ArgsUsage:    "FIXTURE RENDERED1 RENDERED2",
				CustomHelpTemplate: fmt.Sprintf(`%s
FIXTURE:
    YAML (or JSON) fixture describing render settings and compare tolerances

RENDERED1, RENDERED2:
    the two SVG documents to rasterize and compare
`, cli.CommandHelpTemplate),
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values wich is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()

	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}

func extractMetadata(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return fmt.Errorf("no source document has been specified")
	}
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	doc, err := document.LoadFile(src)
	if err != nil {
		return err
	}

	nodes := doc.MetadataNodes()
	if id := cmd.String("id"); len(id) > 0 {
		el := doc.FindByID(id)
		if el == nil {
			return &document.PatchError{TargetID: id}
		}
		nodes = []*etree.Element{el}
	}

	dump := make(map[string]map[string]any, len(nodes))
	for _, el := range nodes {
		meta, found, err := document.Decode(el)
		if err != nil {
			return err
		}
		if !found {
			continue
		}

		entry := map[string]any{
			"text":           meta.Text,
			"tex-command":    meta.TexCommand.String(),
			"converter":      meta.Converter.String(),
			"alignment":      string(meta.Alignment),
			"jacobian-sqrt":  meta.Jacobian,
			"stroke-to-path": meta.Stroke2Path,
			"version":        meta.Version,
		}
		if len(meta.Preamble) > 0 {
			entry["preamble-file"] = meta.Preamble
		}
		if meta.UseFontSize {
			entry["font-size-pt"] = meta.FontSizePt
		} else {
			entry["scale-factor"] = meta.Scale
		}
		dump[el.SelectAttrValue("id", "")] = entry
	}
	if len(dump) == 0 {
		return fmt.Errorf("document carries no rendered nodes")
	}

	data, err := yaml.Marshal(dump)
	if err != nil {
		return fmt.Errorf("unable to marshal node metadata: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
