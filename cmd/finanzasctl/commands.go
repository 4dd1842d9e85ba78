package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"finanzas/internal/catalog"
	"finanzas/internal/cli"
	"finanzas/internal/config"
	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

// app holds what every subcommand needs. The repository is opened on
// first use so that migrate can work on the raw file.
type app struct {
	cfg    *config.Config
	dbPath string
	logger *applog.Logger
	repo   *storage.SQLiteRepository
}

func (a *app) open() (*storage.SQLiteRepository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	repo, err := storage.NewSQLiteRepository(a.dbPath)
	if err != nil {
		return nil, err
	}
	a.repo = repo
	return repo, nil
}

func (a *app) close() {
	if a.repo != nil {
		a.repo.Close()
		a.repo = nil
	}
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Load()}

	root := &cobra.Command{
		Use:           "finanzasctl",
		Short:         "Administrative tasks for the finanzas database",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = applog.New(applog.Config{
				Level:     applog.ParseLevel(a.cfg.LogLevel),
				Format:    a.cfg.LogFormat,
				Component: applog.ComponentApp,
				Output:    cmd.ErrOrStderr(),
			})
			applog.SetDefault(a.logger)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", a.cfg.SQLiteDBPath, "path to the SQLite database")

	root.AddCommand(migrateCmd(a))
	root.AddCommand(seedCmd(a))
	root.AddCommand(processRecurringCmd(a))
	root.AddCommand(objectivesCmd(a))
	root.AddCommand(runsCmd(a))
	return root
}

func migrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.RunMigrations(a.dbPath); err != nil {
				return err
			}
			return printVersion(cmd.OutOrStdout(), a.dbPath)
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout(), a.dbPath)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			if err := storage.MigrateDown(a.dbPath, steps); err != nil {
				return err
			}
			return printVersion(cmd.OutOrStdout(), a.dbPath)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(status, down)
	return cmd
}

func printVersion(w io.Writer, dbPath string) error {
	version, dirty, err := storage.MigrationVersion(dbPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "schema version %d", version)
	if dirty {
		fmt.Fprint(w, " (dirty)")
	}
	fmt.Fprintln(w)
	return nil
}

func seedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the catalog's system categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(file)
			if err != nil {
				return err
			}
			repo, err := a.open()
			if err != nil {
				return err
			}
			n, err := services.NewCategoryService(repo, nil).Seed(cmd.Context(), cat)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "catalog", "", "YAML catalog file (defaults to the embedded one)")
	return cmd
}

func loadCatalog(file string) (*catalog.Catalog, error) {
	if file == "" {
		return catalog.Default()
	}
	return catalog.Load(file)
}

func processRecurringCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "process-recurring",
		Short: "Run the recurring payments batch once",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if date != "" {
				d, err := core.ParseDate(date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				now = d.Time
			}
			repo, err := a.open()
			if err != nil {
				return err
			}
			publisher, closePublisher := cli.Publisher(a.logger, a.cfg, nil)
			defer closePublisher()

			report, err := services.NewRecurringProcessor(repo, publisher, nil).ProcessDue(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %d on %s: checked %d, created %d, skipped %d, failed %d (%s)\n",
				report.ID, report.RunDate, report.Checked, report.Created, report.Skipped, report.Failed, report.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "processing day as YYYY-MM-DD (default today)")
	return cmd
}

func objectivesCmd(a *app) *cobra.Command {
	var (
		userID int64
		period string
	)
	cmd := &cobra.Command{
		Use:   "objectives",
		Short: "Generate or evaluate objectives",
	}
	cmd.PersistentFlags().Int64Var(&userID, "user", 0, "user id (default every user)")
	cmd.PersistentFlags().StringVar(&period, "period", "", "month as YYYY-MM (default current month)")

	setup := func() (*services.ObjectiveService, core.Period, error) {
		p := core.DateOf(time.Now()).Period()
		if period != "" {
			var err error
			if p, err = core.ParsePeriod(period); err != nil {
				return nil, p, fmt.Errorf("--period: %w", err)
			}
		}
		cat, err := catalog.Default()
		if err != nil {
			return nil, p, err
		}
		repo, err := a.open()
		if err != nil {
			return nil, p, err
		}
		return services.NewObjectiveService(repo, cat, nil), p, nil
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Instantiate system objectives for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, p, err := setup()
			if err != nil {
				return err
			}
			var n int
			if userID > 0 {
				n, err = svc.GenerateSystem(cmd.Context(), userID, p)
			} else {
				n, err = svc.GenerateAll(cmd.Context(), p)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d objectives for %s\n", n, p)
			return nil
		},
	}

	var asOf string
	evaluate := &cobra.Command{
		Use:   "evaluate",
		Short: "Settle objectives of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if asOf != "" {
				d, err := core.ParseDate(asOf)
				if err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
				now = d.Time
			}
			svc, p, err := setup()
			if err != nil {
				return err
			}
			var report services.EvaluationReport
			if userID > 0 {
				_, report, err = svc.Evaluate(cmd.Context(), userID, p, now)
			} else {
				report, err = svc.EvaluateAll(cmd.Context(), p, now)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: evaluated %d, achieved %d, failed %d\n",
				p, report.Evaluated, report.Achieved, report.Failed)
			return nil
		},
	}

	evaluate.Flags().StringVar(&asOf, "as-of", "", "settle as of this day, YYYY-MM-DD (default today)")

	cmd.AddCommand(generate, evaluate)
	return cmd
}

func runsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent recurring batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.open()
			if err != nil {
				return err
			}
			runs, err := services.NewRecurringService(repo).Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tCHECKED\tCREATED\tSKIPPED\tFAILED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n",
					r.ID, r.RunDate, r.Status, r.Checked, r.Created, r.Skipped, r.Failed)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to show")
	return cmd
}
