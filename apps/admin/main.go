package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/gradebook/apps"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/services/excel"
	"github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database"
	"github.com/trezcool/gradebook/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger, err := logsvc.New(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	// the schema is created on first use; `migrate` manages it explicitly
	if len(os.Args) < 2 || os.Args[1] != "migrate" {
		if err = database.Migrate(db); err != nil {
			logger.Fatal("migrating database", err)
		}
	}

	// start CLI
	cli := newCommandLine(db, conf)
	err = cli.run(os.Args)
	_ = db.Close()
	logger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", cli.describeError(err))
		}
		if apps.IsArgumentError(err) {
			fmt.Fprintln(os.Stderr, "run without arguments to list the commands")
		}
		os.Exit(1)
	}
}

func newCommandLine(db *sqlx.DB, conf *core.Config) *commandLine {
	translator := core.NewTranslator()
	validate := core.NewValidator(
		translator,
		student.InitValidators,
		attendance.InitValidators,
		grading.InitValidators,
	)

	students := student.NewService(sqlxrepos.NewStudentRepository(db), validate)
	weights := grading.NewService(sqlxrepos.NewWeightsRepository(db), validate)
	grades := grade.NewService(sqlxrepos.NewGradeRepository(db), students, weights, validate)
	att := attendance.NewService(sqlxrepos.NewAttendanceRepository(db), students, validate)
	reports := report.NewService(students, report.NewDataSource(att, grades), weights)

	return &commandLine{
		db:         db,
		conf:       conf,
		translator: translator,
		students:   students,
		attendance: att,
		grades:     grades,
		weights:    weights,
		reports:    reports,
		excel:      excelsvc.NewService(students, grades, att, reports, translator, conf),
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}
