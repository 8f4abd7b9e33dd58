package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchDebounce is how long a script must stay quiet before it is
// re-evaluated.
const watchDebounce = 100 * time.Millisecond

func newWatchCmd(c *cli) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "watch SCRIPT",
		Short: "Re-run a script and re-export its parts whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("out") {
				c.cfg.Export.Dir = outDir
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a := c.app()
			w := cmd.OutOrStdout()
			rerun := func() {
				rep, err := a.EvaluateFile(args[0])
				if err == nil {
					if err = printReport(w, rep); err == nil {
						err = a.Export(rep, c.cfg.Export.Dir)
					}
				}
				if err != nil && !errors.Is(err, errScript) {
					fmt.Fprintf(w, "%s: %v\n", args[0], err)
				}
			}
			rerun()
			fmt.Fprintf(w, "watching %s\n", args[0])
			return watchFile(ctx, args[0], c.log, rerun)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for STL files (default from config)")
	return cmd
}

// watchFile calls onChange each time path is written or replaced, once
// events for it have been quiet for watchDebounce. It watches the parent
// directory so editors that save by renaming are still seen. It returns
// when ctx is done.
func watchFile(ctx context.Context, path string, log *zap.Logger, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()
	var pending time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= watchDebounce {
				pending = time.Time{}
				log.Debug("script changed", zap.String("path", path))
				onChange()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}
