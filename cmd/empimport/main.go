package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aarnav1729/premier-support-hub/internal/config"
	"github.com/aarnav1729/premier-support-hub/internal/observability"
	"github.com/aarnav1729/premier-support-hub/internal/persistence"
	"github.com/aarnav1729/premier-support-hub/internal/repository"
	"github.com/aarnav1729/premier-support-hub/internal/service"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		file   string
		sheet  string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "empimport",
		Short: "Import the employee directory from an Excel workbook",
		Long: `empimport reads an .xlsx export of the company directory and upserts
every row into the emp table. The first row of the sheet is the header.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd.Context(), file, sheet, dryRun)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the .xlsx workbook")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet name (defaults to the first sheet)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without writing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(ctx context.Context, file, sheet string, dryRun bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	var employees *service.EmployeeService
	if dryRun {
		employees = service.NewEmployeeService(nil)
	} else {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		employees = service.NewEmployeeService(repository.NewEmployeeRepository(pg.PoolHandle()))
	}

	report, err := employees.ImportWorkbook(ctx, f, sheet, dryRun)
	if err != nil {
		return err
	}
	logger.Info("employee import finished",
		zap.String("file", file),
		zap.Bool("dry_run", dryRun),
		zap.Int("rows", report.Rows),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
	)
	printReport(report, dryRun)
	return nil
}

func printReport(report service.ImportReport, dryRun bool) {
	mode := color.New(color.FgGreen).Sprint("IMPORTED")
	if dryRun {
		mode = color.New(color.FgYellow).Sprint("DRY RUN")
	}
	fmt.Printf("%s\n", mode)
	fmt.Printf("  rows:     %d\n", report.Rows)
	fmt.Printf("  imported: %s\n", color.New(color.FgGreen).Sprint(report.Imported))
	if report.Skipped == 0 {
		fmt.Printf("  skipped:  0\n")
		return
	}
	fmt.Printf("  skipped:  %s %v\n", color.New(color.FgRed).Sprint(report.Skipped), report.SkippedRows)
}
