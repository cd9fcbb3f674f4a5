package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/services/excel"
)

func (cli *commandLine) report(args []string) error {
	fs := cli.flagSet("report", "report [-details]")
	details := fs.Bool("details", false, "Show the percentage of every component")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	rep, err := cli.reports.Build(context.Background())
	if err != nil {
		return err
	}

	w := cli.table()
	header := []string{"ID", "NAME", "COURSE"}
	if *details {
		for _, c := range rep.Components {
			header = append(header, strings.ToUpper(c))
		}
	}
	header = append(header, "FINAL", "GRADE")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, r := range rep.Rows {
		cols := []string{r.StudentID, r.Name, r.Course}
		if *details {
			for _, c := range rep.Components {
				cols = append(cols, fmt.Sprintf("%.1f%%", r.Percentage(c)))
			}
		}
		cols = append(cols, fmt.Sprintf("%.1f%%", r.Final), r.GradeLabel)
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	if err = w.Flush(); err != nil {
		return err
	}

	sum := rep.Summary
	fmt.Fprintf(cli.stdout, "\nStudents: %d\nAverage: %.1f%%\nPassing: %d (%.1f%%)\n", sum.Count, sum.Mean, sum.Passing, sum.PassRate*100)
	for _, b := range sum.Buckets() {
		fmt.Fprintf(cli.stdout, "  %s: %d\n", b.Label, b.Count)
	}
	return nil
}

func (cli *commandLine) export(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(cli.stderr, "Usage: export students|grades|attendance|report -o FILE")
		return errHelp
	}
	kind, err := excelsvc.ParseKind(args[0])
	if err != nil {
		return err
	}
	fs := cli.flagSet("export "+args[0], "export "+args[0]+" -o FILE")
	out := fs.String("o", "", "The xlsx file to write, "+kind.FileName()+" by default")
	if err = parseFlags(fs, args[1:]); err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = kind.FileName()
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating workbook")
	}
	if err = cli.excel.Export(context.Background(), kind, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout, "Exported %s to %s\n", kind, path)
	return nil
}

func (cli *commandLine) importCmd(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(cli.stderr, "Usage: import students|grades|attendance -f FILE")
		return errHelp
	}
	kind, err := excelsvc.ParseKind(args[0])
	if err != nil {
		return err
	}
	if !kind.Importable() {
		return excelsvc.ErrNotImportable
	}
	fs := cli.flagSet("import "+args[0], "import "+args[0]+" -f FILE")
	in := fs.String("f", "", "The xlsx file to read (required)")
	if err = parseFlags(fs, args[1:]); err != nil {
		return err
	}
	if *in == "" {
		return usageErr(fs)
	}

	f, err := os.Open(*in)
	if err != nil {
		return errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	res, err := cli.excel.Import(context.Background(), kind, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout, "%s\nImported: %d\nSkipped: %d\n", res.Message(kind), res.Imported, res.Skipped)
	const maxShown = 10
	for i, e := range res.Errors {
		if i == maxShown {
			fmt.Fprintf(cli.stdout, "  ... and %d more\n", len(res.Errors)-maxShown)
			break
		}
		fmt.Fprintf(cli.stdout, "  %s\n", e)
	}
	return nil
}
