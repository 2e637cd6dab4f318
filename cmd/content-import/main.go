// cmd/content-import - Load content sheets (CSV) into the database
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"muslimlife/config"
	"muslimlife/database"
	"muslimlife/importer"
	"muslimlife/logging"
)

type app struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "content-import",
		Short:         "Import quizzes, questions, lectures, recitations, verses and hadiths from CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadForTools()
			if err != nil {
				return err
			}
			if a.log, err = logging.New(cfg.Env, cfg.LogLevel); err != nil {
				return err
			}
			a.db, err = database.Open(cfg, a.log)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.log != nil {
				_ = a.log.Sync()
			}
			if a.db != nil {
				return database.Close(a.db)
			}
			return nil
		},
	}

	for _, kind := range importer.Kinds {
		root.AddCommand(a.sheetCmd(kind))
	}
	root.AddCommand(a.dirCmd())
	root.AddCommand(lintCmd())
	return root
}

func (a *app) sheetCmd(kind importer.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " FILE.csv",
		Short: fmt.Sprintf("Import the %s sheet", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.importFile(cmd.Context(), kind, args[0])
		},
	}
}

// dirCmd imports every <kind>.csv found in a directory in dependency order.
func (a *app) dirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir DIRECTORY",
		Short: "Import every known sheet (quizzes.csv, questions.csv, ...) from a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found := 0
			for _, kind := range importer.Kinds {
				path := filepath.Join(args[0], string(kind)+".csv")
				if _, err := os.Stat(path); os.IsNotExist(err) {
					continue
				}
				found++
				if err := a.importFile(cmd.Context(), kind, path); err != nil {
					return err
				}
			}
			if found == 0 {
				return fmt.Errorf("no sheets found in %s", args[0])
			}
			return nil
		},
	}
}

func (a *app) importFile(ctx context.Context, kind importer.Kind, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := importer.New(a.db, a.log).Import(ctx, kind, f)
	if err != nil {
		return err
	}
	for _, rej := range res.Rejected {
		a.log.Warnw("row rejected", "file", path, "line", rej.Line, "error", rej.Err)
	}
	fmt.Printf("%-12s %s: %d rows, %d written, %d rejected\n", kind, path, res.Rows, res.Written, len(res.Rejected))
	return nil
}

// lintCmd checks sheets without touching the database. The file name picks
// the kind (questions.csv is a questions sheet).
func lintCmd() *cobra.Command {
	noop := func(cmd *cobra.Command, args []string) error { return nil }
	return &cobra.Command{
		Use:                "lint FILE.csv...",
		Short:              "Validate sheets and report rejected rows",
		Args:               cobra.MinimumNArgs(1),
		PersistentPreRunE:  noop,
		PersistentPostRunE: noop,
		RunE: func(cmd *cobra.Command, args []string) error {
			bad := 0
			for _, path := range args {
				n, err := lintFile(path)
				if err != nil {
					fmt.Printf("%s: %v\n", path, err)
					bad++
					continue
				}
				bad += n
			}
			if bad > 0 {
				return fmt.Errorf("%d problems found", bad)
			}
			return nil
		},
	}
}

func lintFile(path string) (int, error) {
	kind := importer.Kind(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if !kind.Valid() {
		return 0, fmt.Errorf("cannot tell the sheet kind from the file name")
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	res, err := importer.Lint(kind, f)
	if err != nil {
		return 0, err
	}
	for _, rej := range res.Rejected {
		fmt.Printf("%s:%d: %s\n", path, rej.Line, rej.Err)
	}
	if len(res.Rejected) == 0 {
		fmt.Printf("%s: OK (%d rows)\n", path, res.Rows)
	}
	return len(res.Rejected), nil
}
