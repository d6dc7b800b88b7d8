// Package generator runs generation targets: it loads a target's records,
// plans and synthesizes their members against the output package and
// renders one file per target.
package generator

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/recordgen/config"
	"github.com/teranos/recordgen/descriptor"
	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/logger"
	"github.com/teranos/recordgen/record"
	"github.com/teranos/recordgen/render"
	"github.com/teranos/recordgen/scan"
	"github.com/teranos/recordgen/synth"
)

// Output is the generated file of one target.
type Output struct {
	Target  string
	Path    string // absolute path of the generated file
	Package string
	Content []byte
	Plans   []*synth.Plan
}

// Generated counts the members generated across the output's records
func (o *Output) Generated() int {
	n := 0
	for _, p := range o.Plans {
		n += len(p.Members)
	}
	return n
}

// Skipped counts the members left to hand-written code
func (o *Output) Skipped() int {
	n := 0
	for _, p := range o.Plans {
		n += len(p.Skipped)
	}
	return n
}

// Generator produces the targets of a configuration.
type Generator struct {
	cfg    *config.Config
	naming synth.Naming
}

// New returns a generator for cfg. Relative target paths resolve against
// cfg.Dir.
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg, naming: NamingFromConfig(cfg.Naming)}
}

// NamingFromConfig converts the [naming] section
func NamingFromConfig(n config.NamingConfig) synth.Naming {
	return synth.Naming{
		GetterPrefix:        n.GetterPrefix,
		SetterPrefix:        n.SetterPrefix,
		ConstructorPrefix:   n.ConstructorPrefix,
		BuilderSuffix:       n.BuilderSuffix,
		BuilderSetterPrefix: n.BuilderSetterPrefix,
	}
}

// Generate produces every target in memory, concurrently. Outputs are
// returned in target order. Any failing target fails the whole pass.
func (g *Generator) Generate(ctx context.Context, targets []config.Target) ([]*Output, error) {
	if err := g.checkOutputs(targets); err != nil {
		return nil, err
	}

	// A caller's run ID, e.g. one watch cycle, spans all its targets
	runID := logger.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.WithComponent(logger.WithRunID(ctx, runID), "generator")
	log := logger.LoggerFromContext(ctx)
	start := time.Now()
	log.Infow("Generating targets", logger.FieldCount, len(targets))

	outputs := make([]*Output, len(targets))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency())
	for i, t := range targets {
		eg.Go(func() error {
			out, err := g.GenerateTarget(egCtx, t)
			if err != nil {
				return errors.Wrapf(err, "target %s", t.Name)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Errorw("Generation failed", logger.FieldError, err)
		return nil, err
	}

	log.Infow("Generated targets",
		logger.FieldCount, len(outputs),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return outputs, nil
}

func (g *Generator) concurrency() int {
	if g.cfg.Generate.Concurrency > 0 {
		return g.cfg.Generate.Concurrency
	}
	return runtime.NumCPU()
}

// checkOutputs rejects two targets writing the same file
func (g *Generator) checkOutputs(targets []config.Target) error {
	seen := map[string]string{}
	for _, t := range targets {
		path := g.outputPath(t)
		if prev, ok := seen[path]; ok {
			return errors.NewConfigurationError("targets %s and %s both write %s", prev, t.Name, path)
		}
		seen[path] = t.Name
	}
	return nil
}

func (g *Generator) outputPath(t config.Target) string {
	p, err := filepath.Abs(g.cfg.ResolvePath(t.Output))
	if err != nil {
		return filepath.Clean(g.cfg.ResolvePath(t.Output))
	}
	return p
}

// GenerateTarget produces a single target.
func (g *Generator) GenerateTarget(ctx context.Context, t config.Target) (*Output, error) {
	ctx = logger.WithTarget(ctx, t.Name)
	log := logger.LoggerFromContext(ctx)

	outPath := g.outputPath(t)
	outDir := filepath.Dir(outPath)

	files, srcPkg, err := g.loadInputs(ctx, t)
	if err != nil {
		return nil, err
	}

	// Members must live in the package declaring the type
	existing := scan.NewMemberSet()
	var outPkg *scan.Package
	if srcPkg != nil {
		if filepath.Clean(srcPkg.Dir) != outDir {
			return nil, errors.NewConfigurationError("target %s: output %s must be in the source package directory %s", t.Name, outPath, srcPkg.Dir)
		}
		outPkg = srcPkg
	} else {
		outPkg, err = scan.ParseDir(outDir)
		if err != nil {
			return nil, err
		}
	}
	existing.Merge(outPkg.Members)

	pkgName, err := packageName(t, outPkg, files)
	if err != nil {
		return nil, err
	}

	capabilities := t.Capabilities
	if len(capabilities) == 0 {
		capabilities = g.cfg.Generate.Capabilities
	}
	specs, err := record.Normalize(files, record.WithDefaultCapabilities(capabilities...))
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		existing.AddExisting(spec)
	}

	out := &Output{Target: t.Name, Path: outPath, Package: pkgName}
	var codes []synth.Code
	for _, spec := range specs {
		plan, err := synth.NewPlan(spec, g.naming, existing)
		if err != nil {
			return nil, err
		}
		recLog := logger.ChildLogger(log, logger.FieldRecord, spec.Name())
		for _, s := range plan.Skipped {
			recLog.Debugw("Member already declared",
				logger.FieldMember, s.Member.Qualified(),
				logger.FieldReason, s.Reason)
		}
		recordCodes, err := synth.Synthesize(plan)
		if err != nil {
			return nil, err
		}
		out.Plans = append(out.Plans, plan)
		codes = append(codes, recordCodes...)
	}
	if err := checkDeclCollisions(out.Plans); err != nil {
		return nil, err
	}

	out.Content, err = render.Render(render.File{
		Name:    filepath.Base(outPath),
		Package: pkgName,
		Sources: g.sources(specs),
		Codes:   codes,
	})
	if err != nil {
		return nil, err
	}

	log.Infow("Generated target",
		logger.FieldFile, outPath,
		logger.FieldCount, len(specs),
		logger.FieldGenerated, out.Generated(),
		logger.FieldSkipped, out.Skipped())
	return out, nil
}

// loadInputs reads the target's descriptors and marked structs. The
// scanned source package is returned for source targets.
func (g *Generator) loadInputs(ctx context.Context, t config.Target) ([]record.File, *scan.Package, error) {
	var files []record.File
	if len(t.Descriptors) > 0 {
		loaded, err := descriptor.LoadAll(g.cfg.Dir, t.Descriptors)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, loaded...)
	}

	if t.Source == "" {
		return files, nil, nil
	}
	pkg, err := scan.Load(ctx, g.cfg.ResolvePath(t.Source), ".")
	if err != nil {
		return nil, nil, err
	}
	marked, err := descriptor.FromPackage(pkg)
	if err != nil {
		return nil, nil, err
	}
	if len(marked) == 0 && len(files) == 0 {
		logger.LoggerFromContext(ctx).Warnw("No records found", logger.FieldPackage, pkg.Dir)
	}
	if abs, err := filepath.Abs(pkg.Dir); err == nil {
		pkg.Dir = abs
	}
	return append(files, marked...), pkg, nil
}

// packageName picks the generated file's package: the target's setting,
// then the package already in the output directory, then the descriptors'
// package, then the directory name.
func packageName(t config.Target, outPkg *scan.Package, files []record.File) (string, error) {
	name := t.Package
	if name == "" {
		name = outPkg.Name
	}
	for _, f := range files {
		if f.Package == "" {
			continue
		}
		if name == "" {
			name = f.Package
		}
		if f.Package != name {
			return "", record.NewConfigurationError(f.Source, "", "", "package %s does not match output package %s", f.Package, name)
		}
	}
	if name == "" {
		name = filepath.Base(outPkg.Dir)
	}
	return name, nil
}

// sources lists the descriptor files of specs relative to the config
// directory
func (g *Generator) sources(specs []*record.RecordSpec) []string {
	seen := map[string]bool{}
	var out []string
	for _, spec := range specs {
		src := spec.Source()
		if src == "" {
			continue
		}
		if g.cfg.Dir != "" {
			if rel, err := filepath.Rel(g.cfg.Dir, src); err == nil {
				src = filepath.ToSlash(rel)
			}
		}
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	sort.Strings(out)
	return out
}

// checkDeclCollisions rejects package-level declarations generated for two
// records of the same file, e.g. a record named UserBuilder next to User's
// builder.
func checkDeclCollisions(plans []*synth.Plan) error {
	owner := map[string]*synth.Plan{}
	for _, plan := range plans {
		for _, m := range plan.Members {
			if m.Receiver != "" {
				continue
			}
			if prev, ok := owner[m.Name]; ok && prev != plan {
				return record.NewConfigurationError(plan.Spec.Source(), plan.Spec.Name(), m.Field,
					"generated %s %s collides with a declaration generated for record %s", m.Kind, m.Name, prev.Spec.Name())
			}
			owner[m.Name] = plan
		}
	}
	return nil
}
