package disassemble

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"xmldisasm/common"
	"xmldisasm/markup"
)

// Decompose writes fragments of already parsed document into outputDir. Leaf
// fragment is named after baseName. Previous content of outputDir is removed
// when pre-purge is requested, only after all fragments were prepared.
func Decompose(fsys billy.Filesystem, doc *markup.Document, outputDir, baseName string, opts Options, log *zap.Logger) (*Result, error) {
	plan, err := Prepare(doc, baseName, opts, log)
	if err != nil {
		return nil, err
	}
	if opts.PrePurge {
		if err := util.RemoveAll(fsys, outputDir); err != nil {
			return nil, fmt.Errorf("unable to purge %s: %w", outputDir, err)
		}
		log.Debug("Purged previous output", zap.String("dir", outputDir))
	}
	files, err := plan.Write(fsys, outputDir, opts.Staging)
	if err != nil {
		return nil, err
	}
	return plan.result(doc.Name, outputDir, files), nil
}

// BatchResult collects outcome of processing a directory. Failure of one
// document never prevents processing of others.
type BatchResult struct {
	Results []*Result
	// Failed lists source files which could not be disassembled.
	Failed []string

	err error
}

// Err returns combined error of all failed documents, use multierr.Errors to
// get individual errors.
func (b *BatchResult) Err() error {
	return b.err
}

// Process disassembles every XML file directly inside dir. Subdirectories are
// not visited.
func Process(ctx context.Context, fsys billy.Filesystem, dir string, opts Options, log *zap.Logger) (*BatchResult, error) {
	fi, err := fsys.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to access source: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", common.ErrNotADirectory, dir)
	}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory %s: %w", dir, err)
	}
	slices.SortFunc(entries, func(a, b os.FileInfo) int {
		return strings.Compare(a.Name(), b.Name())
	})

	res := &BatchResult{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".xml") || strings.HasPrefix(name, ".") {
			log.Debug("Skipping", zap.String("path", fsys.Join(dir, name)))
			continue
		}

		src := fsys.Join(dir, name)
		r, err := processFile(fsys, dir, name, opts, log)
		if err != nil {
			log.Error("Unable to disassemble file", zap.String("file", src), zap.Error(err))
			res.Failed = append(res.Failed, src)
			res.err = multierr.Append(res.err, fmt.Errorf("%s: %w", src, err))
			continue
		}
		log.Debug("File disassembled", zap.String("file", src), zap.String("output", r.Output),
			zap.Int("leaves", r.Leaves), zap.Int("nested", r.Nested), zap.Int("warnings", len(r.Warnings)))
		res.Results = append(res.Results, r)
	}
	if len(res.Results) == 0 && len(res.Failed) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return res, nil
}

func processFile(fsys billy.Filesystem, dir, name string, opts Options, log *zap.Logger) (*Result, error) {
	src := fsys.Join(dir, name)
	baseName := common.StemName(name)
	outDir := fsys.Join(dir, baseName)

	data, err := util.ReadFile(fsys, src)
	if err != nil {
		return nil, fmt.Errorf("unable to read file: %w", err)
	}
	doc, err := markup.Parse(src, data)
	if err != nil {
		return nil, err
	}
	if opts.Inspect != nil {
		opts.Inspect(doc)
	}
	res, err := Decompose(fsys, doc, outDir, baseName, opts, log)
	if err != nil {
		return nil, err
	}

	if opts.PostPurge {
		if err := fsys.Remove(src); err != nil {
			return nil, fmt.Errorf("unable to remove source after disassembly: %w", err)
		}
		log.Debug("Removed source", zap.String("file", src))
	}

	return res, nil
}
