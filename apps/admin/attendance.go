package main

import (
	"context"
	"fmt"

	"github.com/trezcool/gradebook/apps"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
)

func (cli *commandLine) attendanceCmd(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[0] {
	case "mark":
		fs := cli.flagSet("attendance mark", "attendance mark -id ID -status Present|Absent|Late|Excused [-date YYYY-MM-DD]")
		id := fs.String("id", "", "The student identifier (required)")
		status := fs.String("status", "", "The attendance status (required)")
		date := fs.String("date", "", "The date, today by default")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if *id == "" || *status == "" {
			return usageErr(fs)
		}
		rec, err := cli.attendance.Mark(ctx, attendance.MarkAttendance{StudentID: *id, Date: *date, Status: attendance.Status(*status)})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "%s marked %s on %s\n", rec.StudentID, rec.Status, rec.Date)
		return nil

	case "roster":
		fs := cli.flagSet("attendance roster", "attendance roster [-date YYYY-MM-DD] [PRESENT_ID...]")
		date := fs.String("date", "", "The date, today by default")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		n, err := cli.attendance.MarkRoster(ctx, attendance.MarkRoster{Date: *date, Present: fs.Args()})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "%d student(s) marked, %d present\n", n, len(fs.Args()))
		return nil

	case "week", "day":
		fs := cli.flagSet("attendance "+args[0], "attendance week|day -id ID [-day DAY [-absent]] [-date YYYY-MM-DD]")
		id := fs.String("id", "", "The student identifier (required)")
		date := fs.String("date", "", "A date of the week, today by default")
		day := fs.String("day", "", "The day to mark, Monday to Saturday (day only)")
		absent := fs.Bool("absent", false, "Mark the day Absent instead of Present (day only)")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if *id == "" || (args[0] == "day" && *day == "") {
			return usageErr(fs)
		}
		ref := core.Today()
		if *date != "" {
			d, err := core.ParseDate(*date)
			if err != nil {
				return apps.NewArgumentError("invalid date %q, expected YYYY-MM-DD", *date)
			}
			ref = d
		}

		if args[0] == "day" {
			wd, ok := attendance.ParseWeekday(*day)
			if !ok {
				return attendance.ErrInvalidDay
			}
			if _, err := cli.attendance.MarkDay(ctx, *id, wd, !*absent, ref); err != nil {
				return err
			}
		}

		days, err := cli.attendance.Week(ctx, *id, ref)
		if err != nil {
			return err
		}
		w := cli.table()
		fmt.Fprintln(w, "DAY\tDATE\tSTATUS\tPRESENT")
		for _, d := range days {
			status := string(d.Status)
			if status == "" {
				status = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", d.Name, d.Date, status, d.Present)
		}
		return w.Flush()

	case "stats":
		fs := cli.flagSet("attendance stats", "attendance stats -id ID")
		id := fs.String("id", "", "The student identifier (required)")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if *id == "" {
			return usageErr(fs)
		}
		if _, err := cli.students.Get(ctx, *id); err != nil {
			return err
		}
		stats, err := cli.attendance.Stats(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "Sessions: %d\nPresent: %d\nAttendance: %.1f%%\n", stats.Total, stats.Present, stats.Percentage())
		return nil

	case "list":
		fs := cli.flagSet("attendance list", "attendance list [-id ID] [-status STATUS] [-from YYYY-MM-DD] [-to YYYY-MM-DD]")
		id := fs.String("id", "", "Only list this student")
		status := fs.String("status", "", "Only list this status")
		from := fs.String("from", "", "First date, inclusive")
		to := fs.String("to", "", "Last date, inclusive")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		recs, err := cli.attendance.Query(ctx, attendance.QueryFilter{
			StudentID: *id,
			Status:    attendance.Status(*status),
			From:      *from,
			To:        *to,
		})
		if err != nil {
			return err
		}
		w := cli.table()
		fmt.Fprintln(w, "DATE\tID\tNAME\tCOURSE\tSTATUS")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Date, r.StudentID, r.StudentName, r.Course, r.Status)
		}
		if err = w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout, "%d record(s)\n", len(recs))
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}
