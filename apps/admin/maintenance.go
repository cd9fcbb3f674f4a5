package main

import (
	"context"
	"fmt"

	"github.com/trezcool/gradebook/storage/database"
)

func (cli *commandLine) backup() error {
	path, err := database.Backup(context.Background(), cli.db, cli.conf)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout, "Backup written to %s\n", path)
	return nil
}

func (cli *commandLine) info() error {
	info, err := database.GetInfo(context.Background(), cli.db, cli.conf)
	if err != nil {
		return err
	}
	w := cli.table()
	fmt.Fprintf(w, "Engine:\t%s\n", info.Engine)
	if info.Path != "" {
		fmt.Fprintf(w, "Path:\t%s\n", info.Path)
		fmt.Fprintf(w, "Size:\t%.2f MB\n", info.SizeMB)
	}
	fmt.Fprintf(w, "Students:\t%d\n", info.Students)
	fmt.Fprintf(w, "Grades:\t%d\n", info.Grades)
	fmt.Fprintf(w, "Attendance records:\t%d\n", info.Attendance)
	fmt.Fprintf(w, "Grading components:\t%d\n", info.Components)
	if info.BackupDir != "" {
		fmt.Fprintf(w, "Backups:\t%d in %s\n", info.Backups, info.BackupDir)
		if info.LatestBackup != "" {
			fmt.Fprintf(w, "Latest backup:\t%s\n", info.LatestBackup)
		}
	}
	return w.Flush()
}

func (cli *commandLine) clear(args []string) error {
	fs := cli.flagSet("clear", "clear [-yes]")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !*yes {
		ok, err := cli.confirm("Delete every student, attendance record and grade?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cli.stdout, "Aborted")
			return nil
		}
	}
	if err := database.Clear(context.Background(), cli.db); err != nil {
		return err
	}
	cli.weights.Invalidate()
	fmt.Fprintln(cli.stdout, "All records deleted, default weights restored")
	return nil
}
