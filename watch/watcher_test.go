package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/teranos/recordgen/config"
	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/generator"
	"github.com/teranos/recordgen/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeRunner counts regenerations
type fakeRunner struct {
	mu     sync.Mutex
	calls  int
	runIDs []string
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, _ []config.Target) ([]*generator.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.runIDs = append(f.runIDs, logger.RunIDFromContext(ctx))
	return nil, f.err
}

func (f *fakeRunner) RunIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.runIDs...)
}

func (f *fakeRunner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func setup(t *testing.T) (*config.Config, []config.Target) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schemas"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "model"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemas", "user.yaml"), []byte("records: []\n"), 0o644))

	cfg := config.Default()
	cfg.Dir = dir
	cfg.Watch.DebounceMS = 30
	targets := []config.Target{{
		Name:        "model",
		Descriptors: []string{"schemas/*.yaml"},
		Output:      "model/model_gen.go",
	}}
	return cfg, targets
}

// start runs w until the test ends
func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
}

func TestWatcher_RegeneratesOnChange(t *testing.T) {
	cfg, targets := setup(t)
	runner := &fakeRunner{}
	runs := make(chan error, 10)

	w, err := New(cfg, runner, targets, WithOnRun(func(_ []*generator.Output, err error) { runs <- err }))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(cfg.Dir, "schemas")}, w.Dirs())
	start(t, w)

	path := filepath.Join(cfg.Dir, "schemas", "user.yaml")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("records: []\n# edit\n"), 0o644))
	}

	select {
	case err := <-runs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no regeneration after a descriptor changed")
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, runner.Calls(), "rapid writes are debounced into one run")
}

func TestWatcher_RunIDPerCycle(t *testing.T) {
	cfg, targets := setup(t)
	runner := &fakeRunner{}
	runs := make(chan error, 10)

	w, err := New(cfg, runner, targets, WithInitialRun(),
		WithOnRun(func(_ []*generator.Output, err error) { runs <- err }))
	require.NoError(t, err)
	start(t, w)

	wait := func() {
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatal("no regeneration")
		}
	}
	wait()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Dir, "schemas", "user.yaml"), []byte("records: []\n# edit\n"), 0o644))
	wait()

	ids := runner.RunIDs()
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEmpty(t, ids[1])
	assert.NotEqual(t, ids[0], ids[1], "every regeneration is its own run")
}

func TestWatcher_InitialRunAndExec(t *testing.T) {
	cfg, targets := setup(t)
	cfg.Watch.Exec = `sh -c 'echo "generated ok"'`
	var out bytes.Buffer
	runs := make(chan error, 10)

	w, err := New(cfg, &fakeRunner{}, targets,
		WithInitialRun(),
		WithOutput(&out),
		WithOnRun(func(_ []*generator.Output, err error) { runs <- err }))
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "-c", `echo "generated ok"`}, w.command)
	start(t, w)

	select {
	case err := <-runs:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial run")
	}
	assert.Equal(t, "generated ok\n", out.String())
}

func TestWatcher_FailedRunKeepsWatching(t *testing.T) {
	cfg, targets := setup(t)
	cfg.Watch.Exec = "false"
	runner := &fakeRunner{err: errors.New("boom")}
	runs := make(chan error, 10)

	w, err := New(cfg, runner, targets,
		WithInitialRun(),
		WithOnRun(func(_ []*generator.Output, err error) { runs <- err }))
	require.NoError(t, err)
	start(t, w)

	select {
	case err := <-runs:
		assert.EqualError(t, err, "boom")
	case <-time.After(5 * time.Second):
		t.Fatal("no initial run")
	}

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Dir, "schemas", "user.yaml"), []byte("records: []\n"), 0o644))
	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("watching stopped after a failed run")
	}
}

func TestWatcher_Relevant(t *testing.T) {
	cfg, targets := setup(t)
	w, err := New(cfg, &fakeRunner{}, targets)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })

	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"schemas/user.yaml", fsnotify.Write, true},
		{"schemas/new.toml", fsnotify.Create, true},
		{"schemas/user.yaml", fsnotify.Remove, true},
		{"model/user.go", fsnotify.Write, true},
		{"schemas/user.yaml", fsnotify.Chmod, false},
		{"model/model_gen.go", fsnotify.Write, false},
		{"model/.model_gen.go.123.tmp", fsnotify.Create, false},
		{"model/user_test.go", fsnotify.Write, false},
		{"schemas/README.md", fsnotify.Write, false},
	}
	for _, tt := range tests {
		event := fsnotify.Event{Name: filepath.Join(cfg.Dir, tt.name), Op: tt.op}
		assert.Equal(t, tt.want, w.relevant(event), "%s %s", tt.op, tt.name)
	}
}

func TestNew_Errors(t *testing.T) {
	cfg, targets := setup(t)
	cfg.Watch.Exec = `echo "unterminated`
	_, err := New(cfg, &fakeRunner{}, targets)
	assert.True(t, errors.IsConfigurationError(err), "got %v", err)

	cfg.Watch.Exec = ""
	targets[0].Descriptors = []string{"schemas/missing.yaml"}
	_, err = New(cfg, &fakeRunner{}, targets)
	assert.ErrorContains(t, err, "not found")
}
