package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/trezcool/gradebook/apps"
	"github.com/trezcool/gradebook/core/grade"
)

func (cli *commandLine) grade(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[0] {
	case "add":
		fs := cli.flagSet("grade add", "grade add -id ID -type TYPE -name NAME -score SCORE -max MAX [-date YYYY-MM-DD]")
		id := fs.String("id", "", "The student identifier (required)")
		typ := fs.String("type", "", "The assessment type, a configured component (required)")
		name := fs.String("name", "", "The assessment name (required)")
		score := fs.Float64("score", 0, "The score obtained")
		maxScore := fs.Float64("max", 0, "The maximum score (required)")
		date := fs.String("date", "", "The date, today by default")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if *id == "" || *typ == "" || *name == "" {
			return usageErr(fs)
		}
		e, err := cli.grades.Add(ctx, grade.NewEntry{
			StudentID: *id,
			Type:      *typ,
			Name:      *name,
			Score:     *score,
			MaxScore:  *maxScore,
			Date:      *date,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "Grade #%d added: %s %s %.1f%%\n", e.ID, e.Type, e.Name, e.Percentage())
		return nil

	case "list":
		fs := cli.flagSet("grade list", "grade list [-id ID] [-type TYPE]")
		id := fs.String("id", "", "Only list this student")
		typ := fs.String("type", "", "Only list this assessment type")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		entries, err := cli.grades.Query(ctx, grade.QueryFilter{StudentID: *id, Type: *typ})
		if err != nil {
			return err
		}
		w := cli.table()
		fmt.Fprintln(w, "#\tID\tNAME\tTYPE\tASSESSMENT\tSCORE\tMAX\tPERCENTAGE\tDATE")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%g\t%g\t%.1f%%\t%s\n",
				e.ID, e.StudentID, e.StudentName, e.Type, e.Name, e.Score, e.MaxScore, e.Percentage(), e.Date)
		}
		if err = w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "%d grade(s)\n", len(entries))
		return nil

	case "delete":
		if len(args) != 2 {
			fmt.Fprintln(cli.stderr, "Usage: grade delete GRADE_ID")
			return errHelp
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return apps.NewArgumentError("invalid grade id %q", args[1])
		}
		if err = cli.grades.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "Grade #%d deleted\n", id)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}
