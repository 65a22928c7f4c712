package disassemble

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"xmldisasm/config"
	"xmldisasm/markup"
	"xmldisasm/state"
	"xmldisasm/uniqueid"
)

// OptionsFromConfig returns disassembly options set in configuration.
func OptionsFromConfig(cfg *config.DisassembleConfig) Options {
	return Options{
		UniqueIDFields: cfg.UniqueIDElements,
		Indent:         cfg.Indent,
		Transliterate:  cfg.Transliterate,
		PrePurge:       cfg.PrePurge,
		PostPurge:      cfg.PostPurge,
		Staging:        cfg.Staging,
	}
}

// Run is the action of disassemble command. Failures of individual documents
// are reported but do not fail the command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("disassemble")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	opts := OptionsFromConfig(&env.Cfg.Disassemble)
	if cmd.IsSet("unique-id-elements") {
		opts.UniqueIDFields = uniqueid.ParseCandidates(cmd.String("unique-id-elements"))
	}
	if cmd.IsSet("pre-purge") {
		opts.PrePurge = cmd.Bool("pre-purge")
	}
	if cmd.IsSet("post-purge") {
		opts.PostPurge = cmd.Bool("post-purge")
	}
	if cmd.IsSet("staging") {
		opts.Staging = cmd.Bool("staging")
	}
	if cmd.IsSet("indent") {
		if opts.Indent = cmd.Int("indent"); opts.Indent < 0 || opts.Indent > 16 {
			return fmt.Errorf("indent must be between 0 and 16, got %d", opts.Indent)
		}
	}

	if env.Rpt != nil {
		opts.Inspect = func(doc *markup.Document) {
			env.Rpt.StoreData(filepath.ToSlash(filepath.Join("model", doc.Name+".txt")), []byte(doc.String()))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.Strings("unique_id_elements", opts.UniqueIDFields))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	fsys := osfs.New(filepath.Dir(src))
	res, err := Process(ctx, fsys, filepath.Base(src), opts, log)
	if err != nil {
		return fmt.Errorf("unable to disassemble: %w", err)
	}

	for _, name := range res.Failed {
		env.Rpt.Store(filepath.Join("failed", name), filepath.Join(filepath.Dir(src), name))
	}
	if res.Err() != nil {
		log.Warn("Some documents were not disassembled", zap.Int("failed", len(multierr.Errors(res.Err()))), zap.Int("processed", len(res.Results)))
	}
	return nil
}
