package disassemble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Result describes disassembled document.
type Result struct {
	Source   string
	Output   string
	Files    []string
	Leaves   int
	Nested   int
	Warnings []error
}

func (p *Plan) result(src, outDir string, files []string) *Result {
	return &Result{
		Source:   src,
		Output:   outDir,
		Files:    files,
		Leaves:   p.Leaves,
		Nested:   p.Nested,
		Warnings: p.Warnings,
	}
}

// Write stores all fragments of the plan under outDir and returns paths of
// written files. When staging is requested fragments are written into
// temporary sibling directory first and moved into place only after all of
// them were successfully written.
func (p *Plan) Write(fsys billy.Filesystem, outDir string, staging bool) ([]string, error) {
	if !staging {
		return p.writeTo(fsys, outDir)
	}

	stage := fsys.Join(filepath.Dir(outDir), "."+filepath.Base(outDir)+"-"+uuid.NewString())
	if _, err := p.writeTo(fsys, stage); err != nil {
		return nil, multierr.Append(err, util.RemoveAll(fsys, stage))
	}

	files := make([]string, 0, len(p.Fragments))
	for _, f := range p.Fragments {
		from := fsys.Join(stage, f.Dir, f.Name)
		to := fsys.Join(outDir, f.Dir, f.Name)
		if err := fsys.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			return files, multierr.Append(fmt.Errorf("unable to create directory: %w", err), util.RemoveAll(fsys, stage))
		}
		if err := fsys.Remove(to); err != nil && !errors.Is(err, os.ErrNotExist) {
			return files, multierr.Append(fmt.Errorf("unable to replace fragment %s: %w", to, err), util.RemoveAll(fsys, stage))
		}
		if err := fsys.Rename(from, to); err != nil {
			return files, multierr.Append(fmt.Errorf("unable to move fragment %s: %w", to, err), util.RemoveAll(fsys, stage))
		}
		files = append(files, to)
	}
	if err := util.RemoveAll(fsys, stage); err != nil {
		return files, fmt.Errorf("unable to remove staging directory %s: %w", stage, err)
	}
	return files, nil
}

func (p *Plan) writeTo(fsys billy.Filesystem, outDir string) ([]string, error) {
	files := make([]string, 0, len(p.Fragments))
	for _, f := range p.Fragments {
		dir := fsys.Join(outDir, f.Dir)
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return files, fmt.Errorf("unable to create directory %s: %w", dir, err)
		}
		name := fsys.Join(dir, f.Name)
		if err := util.WriteFile(fsys, name, f.Data, 0o644); err != nil {
			return files, fmt.Errorf("unable to write fragment %s: %w", name, err)
		}
		files = append(files, name)
	}
	return files, nil
}
