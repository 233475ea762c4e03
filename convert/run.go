package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"texsvg/config"
	"texsvg/document"
	"texsvg/geom"
	"texsvg/misc"
	"texsvg/preamble"
	"texsvg/state"
	"texsvg/utils/debug"
)

// Request describes one edit action against the host document. TargetID
// selects an existing node to recompile in place, empty TargetID inserts a
// fresh node under ParentID (document root when empty) at the insertion
// point. Nil optional fields inherit from the target node's metadata, or
// from configured defaults when there is none.
type Request struct {
	TargetID string
	ParentID string
	InsertX  float64
	InsertY  float64

	Text         string
	PreambleFile string

	TexCommand   *config.TexCommand
	Converter    *config.Converter
	ScaleFactor  *float64
	FontSizePt   *float64
	Alignment    *geom.Anchor
	StrokeToPath *bool
}

// Render compiles the requested text and splices the result into doc.
// Returns the id of the produced node.
func Render(ctx context.Context, doc *document.Document, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	log.Info("Render starting", zap.String("target", req.TargetID))
	defer func(start time.Time) {
		log.Info("Render completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	replace := len(req.TargetID) > 0

	meta := document.DefaultMetadata(&env.Cfg.Render)
	var prior geom.Prior
	if replace {
		var err error
		if meta, prior, err = resolvePrior(doc, req.TargetID, &env.Cfg.Render, log); err != nil {
			return "", err
		}
	}
	oldScale := meta.EffectiveScale()

	applyOverrides(&meta, req)
	if len(meta.Text) == 0 {
		return "", errors.New("nothing to compile, no text given and none stored on the node")
	}

	// Resolve all executables before any temp file exists.
	texExe, err := LookupTool(env.Cfg.Tools.TexPath(meta.TexCommand))
	if err != nil {
		return "", err
	}
	convExe, err := LookupTool(env.Cfg.Tools.ConverterPath(meta.Converter))
	if err != nil {
		return "", err
	}
	var inkscapeExe string
	if meta.Stroke2Path {
		if inkscapeExe, err = LookupTool(env.Cfg.Tools.Inkscape); err != nil {
			return "", err
		}
	}

	texSource, err := buildSource(env, meta, log)
	if err != nil {
		return "", err
	}

	wd, err := os.MkdirTemp("", misc.GetAppName()+"-*")
	if err != nil {
		return "", fmt.Errorf("unable to create work directory: %w", err)
	}
	defer os.RemoveAll(wd)

	if err := os.WriteFile(filepath.Join(wd, "content.tex"), []byte(texSource), 0600); err != nil {
		return "", fmt.Errorf("unable to write tex source: %w", err)
	}
	if env.Rpt != nil {
		env.Rpt.StoreData("content.tex", []byte(texSource))
	}

	pdfPath, err := compile(ctx, env, texExe, wd, log)
	if err != nil {
		return "", err
	}

	backend := NewBackend(meta.Converter, convExe)
	log.Debug("Converting pdf", zap.Stringer("backend", backend))
	svgPath, err := backend.Convert(ctx, pdfPath, wd)
	if err != nil {
		return "", err
	}
	if meta.Stroke2Path {
		strokeToPath(ctx, inkscapeExe, svgPath, log)
	}
	if env.Rpt != nil {
		if data, err := os.ReadFile(svgPath); err == nil {
			env.Rpt.StoreData("content.svg", data)
		}
	}

	frag, err := document.LoadFragment(svgPath)
	if err != nil {
		return "", &MalformedOutputError{Path: svgPath, Err: err}
	}

	meta.Version = document.SchemaVersion
	var id string
	if replace {
		rel := 1.0
		if newScale := meta.EffectiveScale(); oldScale > 0 {
			rel = newScale / oldScale
		}
		prior.FlipY = meta.Converter.FlipsY()
		tr := geom.ComputeTransform(prior, frag.BBox, meta.Alignment, rel)
		id, err = doc.Replace(req.TargetID, frag, tr, meta)
	} else {
		id, err = insert(doc, req, frag, meta)
	}
	if err != nil {
		return "", err
	}

	if env.Rpt != nil {
		if el := doc.FindByID(id); el != nil {
			env.Rpt.StoreData("node-tree.txt", []byte(debug.DumpElement(el)))
		}
	}
	return id, nil
}

// resolvePrior reads back the target node's metadata and geometry. Corrupt
// metadata is recoverable: configured defaults take over with a warning, the
// node's transform and extent are still honored.
func resolvePrior(doc *document.Document, targetID string, rc *config.RenderConfig, log *zap.Logger) (document.Metadata, geom.Prior, error) {
	el := doc.FindByID(targetID)
	if el == nil {
		return document.Metadata{}, geom.Prior{}, &document.PatchError{TargetID: targetID}
	}

	meta := document.DefaultMetadata(rc)
	pm, found, err := document.Decode(el)
	switch {
	case err != nil:
		log.Warn("Node metadata is unreadable, using configured defaults", zap.String("id", targetID), zap.Error(err))
	case found:
		meta = pm
	default:
		log.Debug("Node carries no metadata, using configured defaults", zap.String("id", targetID))
	}

	var prior geom.Prior
	prior.Transform = geom.Identity()
	if ts := el.SelectAttrValue("transform", ""); len(ts) > 0 {
		if prior.Transform, err = geom.ParseTransform(ts); err != nil {
			return document.Metadata{}, geom.Prior{}, fmt.Errorf("unable to parse transform of node %q: %w", targetID, err)
		}
	}

	// Scaling done in the host editor after creation shows up in the
	// transform determinant. Fold it into the stored size so the node keeps
	// its current visual size through the recompile.
	if meta.Jacobian > 0 && meta.Jacobian != 1.0 {
		adj := prior.Transform.JacobianSqrt() / meta.Jacobian
		if meta.UseFontSize {
			meta.FontSizePt *= adj
		} else {
			meta.Scale *= adj
		}
	}

	if prior.BBox, err = doc.NodeExtent(el); err != nil {
		return document.Metadata{}, geom.Prior{}, fmt.Errorf("unable to measure node %q: %w", targetID, err)
	}
	return meta, prior, nil
}

func applyOverrides(meta *document.Metadata, req Request) {
	if len(req.Text) > 0 {
		meta.Text = req.Text
	}
	if len(req.PreambleFile) > 0 {
		meta.Preamble = req.PreambleFile
	}
	if req.TexCommand != nil {
		meta.TexCommand = *req.TexCommand
	}
	if req.Converter != nil {
		meta.Converter = *req.Converter
	}
	if req.ScaleFactor != nil {
		meta.Scale, meta.UseFontSize = *req.ScaleFactor, false
	}
	if req.FontSizePt != nil {
		meta.FontSizePt, meta.UseFontSize = *req.FontSizePt, true
	}
	if req.Alignment != nil {
		meta.Alignment = *req.Alignment
	}
	if req.StrokeToPath != nil {
		meta.Stroke2Path = *req.StrokeToPath
	}
}

// buildSource assembles the complete TeX document from the preamble and the
// node text.
func buildSource(env *state.LocalEnv, meta document.Metadata, log *zap.Logger) (string, error) {
	pre := string(env.DefaultPreamble)
	if len(meta.Preamble) > 0 {
		data, err := os.ReadFile(meta.Preamble)
		if err != nil {
			log.Warn("Preamble file is not readable, using default preamble", zap.String("file", meta.Preamble), zap.Error(err))
		} else {
			pre = string(data)
		}
	}

	normalized, err := preamble.Normalize(pre)
	if err != nil {
		return "", err
	}
	return preamble.Wrap(normalized, meta.Text), nil
}

// compile runs the TeX engine and validates that it produced a PDF.
func compile(ctx context.Context, env *state.LocalEnv, texExe, wd string, log *zap.Logger) (string, error) {
	log.Debug("Compiling tex source", zap.String("tex", texExe))

	_, _, err := runTool(ctx, wd, texExe, "content.tex", "-interaction=nonstopmode", "-halt-on-error")

	logPath := filepath.Join(wd, "content.log")
	logData, lerr := os.ReadFile(logPath)
	if env.Rpt != nil && lerr == nil {
		env.Rpt.StoreData("content.log", logData)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		excerpt := ""
		if lerr == nil {
			excerpt = FirstLogError(bytes.NewReader(logData))
		}
		return "", &CompilerError{LogExcerpt: excerpt, Err: err}
	}

	pdfPath := filepath.Join(wd, "content.pdf")
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", &CompilerError{Err: fmt.Errorf("compiler produced no output: %w", err)}
	}
	if !filetype.Is(data, "pdf") {
		return "", &MalformedOutputError{Path: pdfPath, Err: errors.New("compiler output is not a pdf")}
	}
	return pdfPath, nil
}

// strokeToPath converts remaining stroked primitives (fraction bars, square
// roots) into filled paths so later colorization in the host editor does not
// embolden them. Failure of this cosmetic step is not fatal.
func strokeToPath(ctx context.Context, inkscapeExe, svgPath string, log *zap.Logger) {
	_, _, err := runTool(ctx, filepath.Dir(svgPath), inkscapeExe,
		"-g",
		"--batch-process",
		"--actions=EditSelectAll;StrokeToPath;export-filename:"+svgPath+";export-do;EditUndo;FileClose",
		svgPath)
	if err != nil {
		log.Warn("Stroke to path conversion failed, keeping strokes", zap.Error(err))
	}
}

// insert splices a fragment that has no prior node. The fragment arrives in
// converter points, the trailing unit scale brings it into document units
// before the requested scale and anchor placement apply.
func insert(doc *document.Document, req Request, frag *document.Fragment, meta document.Metadata) (string, error) {
	unit := geom.Scale(doc.PtFactor())
	if meta.Converter.FlipsY() {
		unit = unit.Mul(geom.FlipY())
	}
	scaledBB := frag.BBox.Transformed(unit, geom.SpaceDocument)

	ins := geom.Insertion{X: req.InsertX, Y: req.InsertY, Context: geom.Identity()}
	if len(req.ParentID) > 0 {
		parent := doc.FindByID(req.ParentID)
		if parent == nil {
			return "", &document.PatchError{TargetID: req.ParentID}
		}
		ctxTr, err := doc.ContextTransform(parent)
		if err != nil {
			return "", err
		}
		ins.Context = ctxTr
	}

	tr, err := geom.ComputeInsertTransform(ins, scaledBB, meta.Alignment, meta.EffectiveScale())
	if err != nil {
		return "", fmt.Errorf("unable to place node: %w", err)
	}
	return doc.Insert(req.ParentID, frag, tr.Mul(unit), meta)
}
