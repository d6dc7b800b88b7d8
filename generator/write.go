package generator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/teranos/recordgen/config"
	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/logger"
)

// FilePermissions of generated files
const FilePermissions = 0644

// Run generates every target and writes the outputs. Nothing is written
// unless every target succeeded.
func (g *Generator) Run(ctx context.Context, targets []config.Target) ([]*Output, error) {
	outputs, err := g.Generate(ctx, targets)
	if err != nil {
		return nil, err
	}
	if err := Write(outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Write writes outputs whose content changed. Each file is replaced
// atomically.
func Write(outputs []*Output) error {
	for _, out := range outputs {
		current, err := os.ReadFile(out.Path)
		if err == nil && bytes.Equal(current, out.Content) {
			logger.Debugw("Generated file unchanged", logger.FieldFile, out.Path)
			continue
		}
		if err := writeAtomic(out.Path, out.Content); err != nil {
			return err
		}
		logger.Infow("Wrote generated file",
			logger.FieldTarget, out.Target,
			logger.FieldFile, out.Path)
	}
	return nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", tmpName)
	}
	if err := os.Chmod(tmpName, FilePermissions); err != nil {
		return errors.Wrapf(err, "failed to set permissions on %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}
