// Package watch regenerates targets when their inputs change.
package watch

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/recordgen/config"
	"github.com/teranos/recordgen/descriptor"
	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/generator"
	"github.com/teranos/recordgen/logger"
)

// Runner regenerates targets; *generator.Generator implements it.
type Runner interface {
	Run(ctx context.Context, targets []config.Target) ([]*generator.Output, error)
}

// RunFunc is called after every regeneration
type RunFunc func(outputs []*generator.Output, err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithOnRun registers a callback invoked after each regeneration
func WithOnRun(fn RunFunc) Option {
	return func(w *Watcher) { w.onRun = fn }
}

// WithOutput sets where the exec command's output goes, os.Stderr by default
func WithOutput(out io.Writer) Option {
	return func(w *Watcher) { w.out = out }
}

// WithInitialRun regenerates once before waiting for changes
func WithInitialRun() Option {
	return func(w *Watcher) { w.initial = true }
}

// Watcher watches descriptor files and source packages and regenerates on
// change.
type Watcher struct {
	cfg      *config.Config
	runner   Runner
	targets  []config.Target
	watcher  *fsnotify.Watcher
	debounce time.Duration
	command  []string        // run after each successful regeneration
	outputs  map[string]bool // generated files, never a trigger
	dirs     []string
	onRun    RunFunc
	out      io.Writer
	initial  bool
	log      *zap.SugaredLogger
}

// New prepares a watcher over the inputs of targets. Directories holding
// descriptor files and source packages are watched, so files replaced by
// editors are still seen.
func New(cfg *config.Config, runner Runner, targets []config.Target, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		cfg:      cfg,
		runner:   runner,
		targets:  targets,
		debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		outputs:  map[string]bool{},
		out:      os.Stderr,
		log:      logger.ComponentLogger("watch"),
	}
	for _, opt := range opts {
		opt(w)
	}

	if cfg.Watch.Exec != "" {
		args, err := shellquote.Split(cfg.Watch.Exec)
		if err != nil {
			return nil, errors.NewConfigurationError("watch.exec %q: %v", cfg.Watch.Exec, err)
		}
		w.command = args
	}

	dirs, err := w.inputDirs()
	if err != nil {
		return nil, err
	}
	w.dirs = dirs

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}
	w.watcher = fw
	return w, nil
}

// Dirs returns the watched directories
func (w *Watcher) Dirs() []string {
	return append([]string(nil), w.dirs...)
}

// inputDirs lists the directories holding each target's inputs and records
// the target outputs
func (w *Watcher) inputDirs() ([]string, error) {
	seen := map[string]bool{}
	add := func(dir string) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		seen[dir] = true
	}
	for _, t := range w.targets {
		if out, err := filepath.Abs(w.cfg.ResolvePath(t.Output)); err == nil {
			w.outputs[out] = true
		}
		paths, err := descriptor.Expand(w.cfg.Dir, t.Descriptors)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			add(filepath.Dir(strings.TrimPrefix(p, descriptor.OpenAPIPrefix)))
		}
		if t.Source != "" {
			add(w.cfg.ResolvePath(t.Source))
		}
	}
	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Run watches until ctx is done. Changes are debounced; a failed
// regeneration is logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.log.Infow("Watching for changes",
		logger.FieldCount, len(w.dirs),
		"debounce_ms", w.debounce.Milliseconds())

	if w.initial {
		w.regenerate(ctx)
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debugw("Input changed",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)

		case <-timer.C:
			w.regenerate(ctx)
		}
	}
}

// relevant reports whether an event may change generated output
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := event.Name
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	if w.outputs[name] {
		return false
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "_test.go") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".go", ".yaml", ".yml", ".toml", ".json":
		return true
	}
	return false
}

func (w *Watcher) regenerate(ctx context.Context) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.ChildLogger(w.log, logger.FieldRunID, runID)

	start := time.Now()
	outputs, err := w.runner.Run(ctx, w.targets)
	if err != nil {
		log.Errorw("Regeneration failed", logger.FieldError, err)
	} else {
		log.Infow("Regenerated",
			logger.FieldCount, len(outputs),
			logger.FieldDurationMS, time.Since(start).Milliseconds())
		if len(w.command) > 0 {
			if cmdErr := w.exec(ctx); cmdErr != nil {
				log.Errorw("Post-generation command failed", logger.FieldError, cmdErr)
			}
		}
	}
	if w.onRun != nil {
		w.onRun(outputs, err)
	}
}

// exec runs the configured command in the config directory
func (w *Watcher) exec(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, w.command[0], w.command[1:]...)
	cmd.Dir = w.cfg.Dir
	cmd.Stdout = w.out
	cmd.Stderr = w.out
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s", shellquote.Join(w.command...))
	}
	return nil
}
