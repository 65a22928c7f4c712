package reassemble

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"xmldisasm/common"
	"xmldisasm/state"
)

// Run is the action of reassemble command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("reassemble")

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

	opts := Options{
		Namespace: env.Cfg.Reassemble.Namespace,
		Extension: env.Cfg.Reassemble.Extension,
		Order:     env.Cfg.Reassemble.Order,
		Indent:    env.Cfg.Disassemble.Indent,
	}
	if cmd.IsSet("namespace") {
		opts.Namespace = cmd.String("namespace")
	}
	if cmd.IsSet("extension") {
		opts.Extension = cmd.String("extension")
	}
	if cmd.IsSet("order") {
		if opts.Order, err = common.ParseNameOrder(cmd.String("order")); err != nil {
			return fmt.Errorf("bad fragment order: %w", err)
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.Stringer("order", opts.Order))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	res, err := Recompose(ctx, osfs.New(filepath.Dir(src)), filepath.Base(src), opts, log)
	if err != nil {
		return fmt.Errorf("unable to reassemble: %w", err)
	}
	for _, name := range res.Skipped {
		env.Rpt.Store(filepath.Join("skipped", name), filepath.Join(filepath.Dir(src), name))
	}
	log.Info("Document reassembled", zap.String("to", filepath.Join(filepath.Dir(src), res.Output)),
		zap.String("root", res.Root), zap.Int("fragments", res.Fragments), zap.Int("skipped", len(res.Skipped)))
	return nil
}
