package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ledgerparse/ledgerparse/internal/common"
	"github.com/ledgerparse/ledgerparse/internal/export"
	"github.com/ledgerparse/ledgerparse/internal/learner"
	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/parser"
	"github.com/ledgerparse/ledgerparse/internal/pdftext"
	"github.com/ledgerparse/ledgerparse/internal/registry"
	"github.com/ledgerparse/ledgerparse/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func parseCmd() *cobra.Command {
	var (
		formatName  string
		outputDir   string
		noNormalize bool
		noDedupe    bool
		noLearn     bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file|glob>...",
		Short: "Parse statement files and export transactions",
		Long: `Parse one or more statement files (PDF or plain text). Each file is
detected, extracted, normalized, and written out in the chosen format next
to the input (or into --output-dir).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			files, err := expandArgs(args)
			if err != nil {
				return err
			}

			dbPath, err := rulesDBPath()
			if err != nil {
				return err
			}
			store, err := storage.NewSQLiteStore(dbPath)
			if err != nil {
				return common.NewUserError("failed to open rule database", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return common.NewUserError("failed to migrate rule database", err)
			}

			reg, err := registry.New(registry.DefaultRules())
			if err != nil {
				return err
			}
			if err := reg.Restore(store); err != nil {
				return common.NewUserError("failed to load learned rule state", err)
			}

			var observer parser.Observer
			if !noLearn {
				observer = learner.New(reg, slog.Default())
			}
			p := parser.New(reg, observer, slog.Default(), parser.Options{
				Normalize:   !noNormalize,
				Deduplicate: !noDedupe,
			})

			runErr := parseFiles(cmd.Context(), p, files, format, outputDir, dryRun)

			if !noLearn {
				if err := reg.Persist(store); err != nil {
					slog.Warn("failed to persist learned rule state", "error", err)
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "csv", "output format (csv, json, xlsx)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for output files (default: alongside input)")
	cmd.Flags().BoolVar(&noNormalize, "no-normalize", false, "skip field normalization")
	cmd.Flags().BoolVar(&noDedupe, "no-dedupe", false, "skip duplicate removal")
	cmd.Flags().BoolVar(&noLearn, "no-learn", false, "do not update rule confidences")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report, write nothing")
	return cmd
}

func parseFiles(ctx context.Context, p *parser.Parser, files []string, format export.Format, outputDir string, dryRun bool) error {
	var bar *progressbar.ProgressBar
	if len(files) > 1 {
		bar = progressbar.Default(int64(len(files)), "parsing")
	}

	failures := 0
	for _, file := range files {
		if err := parseOne(ctx, p, file, format, outputDir, dryRun); err != nil {
			failures++
			common.LogError(err, "failed to parse statement", common.Fields{"file": file})
			fmt.Println(errStyle.Render(fmt.Sprintf("✗ %s: %v", file, err)))
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(files))
	}
	return nil
}

func parseOne(ctx context.Context, p *parser.Parser, file string, format export.Format, outputDir string, dryRun bool) error {
	text, err := pdftext.ExtractFile(file)
	if err != nil {
		return err
	}

	result, err := p.Parse(ctx, text)
	if err != nil {
		return err
	}
	common.LogDebug("parsed statement", common.Fields{
		"file":         file,
		"type":         string(result.StatementType),
		"transactions": result.Metadata[model.MetaTxnCount],
	})

	printSummary(file, result)

	if dryRun {
		return nil
	}

	outPath := outputPath(file, format, outputDir)
	out, err := os.Create(outPath) //nolint:gosec // path derives from user-supplied input name
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer func() { _ = out.Close() }()

	if err := export.Write(result, format, out); err != nil {
		return err
	}
	fmt.Println(labelStyle.Render("  wrote ") + valueStyle.Render(outPath))
	return nil
}

func printSummary(file string, result *model.ParseResult) {
	summary := result.Summarize()

	fmt.Println(titleStyle.Render(filepath.Base(file)))
	line := func(label, value string) {
		fmt.Println(labelStyle.Render("  "+label+": ") + valueStyle.Render(value))
	}
	line("type", string(result.StatementType))
	if name, ok := result.Metadata[model.MetaParser].(string); ok {
		line("parser", name)
	}
	if period, ok := result.Metadata[model.MetaStatementPeriod].(string); ok {
		line("period", period)
	}
	line("transactions", fmt.Sprintf("%d", summary.TotalTransactions))
	line("credits", summary.TotalCredits.StringFixed(2))
	line("debits", summary.TotalDebits.StringFixed(2))
	line("net", summary.NetAmount.StringFixed(2))

	for _, w := range result.Warnings {
		fmt.Println(warnStyle.Render("  ⚠ " + w))
	}
	for _, e := range result.Errors {
		fmt.Println(errStyle.Render("  ✗ " + e))
	}
}

// expandArgs resolves globs and checks that every input exists.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(arg); statErr != nil {
				return nil, fmt.Errorf("no files match %q", arg)
			}
			matches = []string{arg}
		}
		files = append(files, matches...)
	}
	return files, nil
}

// outputPath derives the export file name from the input name.
func outputPath(file string, format export.Format, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	name := base + "." + format.Extension()
	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(file), name)
}
