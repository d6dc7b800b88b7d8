package generator

import (
	"bytes"
	"context"
	"os"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/teranos/recordgen/config"
	"github.com/teranos/recordgen/errors"
)

// CheckResult holds the result of comparing generated output with the
// files on disk
type CheckResult struct {
	UpToDate    bool
	Differences map[string]string // output path -> line diff (-disk +generated)
}

// Paths returns the out-of-date output paths, sorted
func (r *CheckResult) Paths() []string {
	paths := make([]string, 0, len(r.Differences))
	for p := range r.Differences {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Err returns an ErrOutOfDate error naming the stale files, or nil
func (r *CheckResult) Err() error {
	if r.UpToDate {
		return nil
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrOutOfDate, "%d generated file(s) differ: %s", len(r.Differences), strings.Join(r.Paths(), ", ")),
		"run 'recordgen generate' and commit the result")
}

// Check generates every target in memory and compares the result with the
// files on disk. Nothing is written.
func (g *Generator) Check(ctx context.Context, targets []config.Target) (*CheckResult, error) {
	outputs, err := g.Generate(ctx, targets)
	if err != nil {
		return nil, err
	}
	return Compare(outputs)
}

// Compare compares outputs with the files on disk. A missing file counts
// as a difference.
func Compare(outputs []*Output) (*CheckResult, error) {
	differences := make(map[string]string)
	for _, out := range outputs {
		current, err := os.ReadFile(out.Path)
		switch {
		case os.IsNotExist(err):
			differences[out.Path] = "file does not exist"
			continue
		case err != nil:
			return nil, errors.Wrapf(err, "failed to read %s", out.Path)
		}
		if bytes.Equal(current, out.Content) {
			continue
		}
		diff := cmp.Diff(lines(current), lines(out.Content))
		if diff == "" {
			diff = "trailing newlines differ"
		}
		differences[out.Path] = diff
	}
	return &CheckResult{
		UpToDate:    len(differences) == 0,
		Differences: differences,
	}, nil
}

func lines(b []byte) []string {
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}
