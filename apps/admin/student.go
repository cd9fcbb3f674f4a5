package main

import (
	"context"
	"fmt"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
)

func (cli *commandLine) student(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[0] {
	case "add":
		fs := cli.flagSet("student add", "student add -id ID -name NAME [-course COURSE] [-email EMAIL]")
		id := fs.String("id", "", "The student identifier (required)")
		name := fs.String("name", "", "The student's full name (required)")
		course := fs.String("course", "", "The course")
		email := fs.String("email", "", "The email address")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if *id == "" || *name == "" {
			return usageErr(fs)
		}
		s, err := cli.students.Create(ctx, student.NewStudent{ID: *id, Name: *name, Course: *course, Email: *email})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "Student %s (%s) added\n", s.ID, s.Name)
		return nil

	case "list":
		fs := cli.flagSet("student list", "student list [-search TEXT] [-course COURSE] [-order FIELDS]")
		search := fs.String("search", "", "Match the ID, name or email")
		course := fs.String("course", "", "Only list this course")
		order := fs.String("order", "", "Comma separated fields among student_id, name, course; prefix with - for descending")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		students, err := cli.students.Query(
			ctx,
			student.QueryFilter{Search: *search, Course: *course},
			core.ParseOrdering(*order, student.OrderableFields...)...,
		)
		if err != nil {
			return err
		}
		stats := make(map[string]student.WithAttendance)
		withAtt, err := cli.students.QueryWithAttendance(ctx)
		if err != nil {
			return err
		}
		for _, s := range withAtt {
			stats[s.ID] = s
		}

		w := cli.table()
		fmt.Fprintln(w, "ID\tNAME\tCOURSE\tEMAIL\tSESSIONS\tPRESENT\tATTENDANCE")
		for _, s := range students {
			st := stats[s.ID]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.1f%%\n", s.ID, s.Name, s.Course, s.Email, st.Total, st.Present, st.Percentage())
		}
		if err = w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "%d student(s)\n", len(students))
		return nil

	case "update":
		fs := cli.flagSet("student update", "student update -id ID [-name NAME] [-course COURSE] [-email EMAIL]")
		id := fs.String("id", "", "The student identifier (required)")
		name := fs.String("name", "", "The new name")
		course := fs.String("course", "", "The new course")
		email := fs.String("email", "", "The new email address")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if *id == "" {
			return usageErr(fs)
		}
		s, err := cli.students.Update(ctx, *id, student.UpdateStudent{Name: *name, Course: *course, Email: *email})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "Student %s updated\n", s.ID)
		return nil

	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(cli.stderr, "Usage: student delete ID...")
			return errHelp
		}
		if err := cli.students.Delete(ctx, args[1:]...); err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "%d student(s) deleted\n", len(args)-1)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}
