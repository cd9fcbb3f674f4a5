package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/storage/database"
	"github.com/trezcool/gradebook/tests"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t, conf)

	cli := newCommandLine(db, conf)
	out := new(bytes.Buffer)
	cli.stdout = out
	cli.stderr = new(bytes.Buffer)
	cli.stdin = strings.NewReader("")
	return cli, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string // substring of the output
}

func runTests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				require.NoError(t, err, cli.describeError(err))
				assert.Contains(t, out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)
	defer func(orig func(string, *sql.DB, string, ...string) error) { gooseRunFunc = orig }(gooseRunFunc)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		if dir != "migrations/sqlite3" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		return nil
	}

	runTests(t, cli, out, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
	})
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)
	runTests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "student: no subcommand", args: []string{"student"}, wantErr: errHelp},
		{name: "student add: no args", args: []string{"student", "add"}, wantErr: errHelp},
		{name: "student add: -h", args: []string{"student", "add", "-h"}, wantErr: errHelp},
		{name: "attendance: unknown", args: []string{"attendance", "lol"}, wantErr: errHelp},
		{name: "grade delete: no id", args: []string{"grade", "delete"}, wantErr: errHelp},
		{name: "weights set: no args", args: []string{"weights", "set"}, wantErr: errHelp},
		{name: "import: no file", args: []string{"import", "students"}, wantErr: errHelp},
	})
}

func Test_commandLine_student(t *testing.T) {
	cli, out := setup(t)

	runTests(t, cli, out, []cliTest{
		{name: "add", args: []string{"student", "add", "-id", "S001", "-name", "Alice", "-course", "CS"}, wantOut: "Student S001 (Alice) added"},
		{name: "add bob", args: []string{"student", "add", "-id", "S002", "-name", "Bob", "-email", "bob@example.com"}},
		{name: "add duplicate", args: []string{"student", "add", "-id", "S001", "-name", "Alice"}, wantErr: student.ErrExists},
		{name: "list", args: []string{"student", "list", "-order", "-name"}, wantOut: "2 student(s)"},
		{name: "list filtered", args: []string{"student", "list", "-course", "cs"}, wantOut: "1 student(s)"},
		{name: "update", args: []string{"student", "update", "-id", "S002", "-course", "Math"}, wantOut: "Student S002 updated"},
		{name: "update unknown", args: []string{"student", "update", "-id", "S999", "-name", "X"}, wantErr: student.ErrNotFound},
		{name: "delete", args: []string{"student", "delete", "S002"}, wantOut: "1 student(s) deleted"},
	})

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "student", "list", "-order", "-name"}))
	assert.Contains(t, out.String(), "Alice")
	assert.NotContains(t, out.String(), "Bob")
}

func Test_commandLine_attendance(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()
	_, err := cli.students.Create(ctx, student.NewStudent{ID: "S001", Name: "Alice"})
	require.NoError(t, err)
	_, err = cli.students.Create(ctx, student.NewStudent{ID: "S002", Name: "Bob"})
	require.NoError(t, err)

	runTests(t, cli, out, []cliTest{
		{name: "mark", args: []string{"attendance", "mark", "-id", "S001", "-status", "late", "-date", "2024-03-04"}, wantOut: "S001 marked Late on 2024-03-04"},
		{name: "mark unknown", args: []string{"attendance", "mark", "-id", "S999", "-status", "Present"}, wantErr: student.ErrNotFound},
		{name: "roster", args: []string{"attendance", "roster", "-date", "2024-03-05", "S001"}, wantOut: "2 student(s) marked, 1 present"},
		{name: "day", args: []string{"attendance", "day", "-id", "S001", "-day", "wed", "-date", "2024-03-04"}, wantOut: "Wednesday  2024-03-06  Present"},
		{name: "day sunday", args: []string{"attendance", "day", "-id", "S001", "-day", "sun", "-date", "2024-03-04"}, wantErr: attendance.ErrInvalidDay},
		{name: "week", args: []string{"attendance", "week", "-id", "S001", "-date", "2024-03-09"}, wantOut: "Monday     2024-03-04  Late"},
		{name: "stats", args: []string{"attendance", "stats", "-id", "S001"}, wantOut: "Sessions: 3\nPresent: 2\nAttendance: 66.7%"},
		{name: "list", args: []string{"attendance", "list", "-id", "S002"}, wantOut: "1 record(s)"},
	})
}

func Test_commandLine_gradeAndReport(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()
	_, err := cli.students.Create(ctx, student.NewStudent{ID: "S001", Name: "Alice"})
	require.NoError(t, err)

	runTests(t, cli, out, []cliTest{
		{name: "add", args: []string{"grade", "add", "-id", "S001", "-type", "Quizzes", "-name", "Quiz 1", "-score", "8", "-max", "10"}, wantOut: "Grade #1 added: Quizzes Quiz 1 80.0%"},
		{name: "add attendance", args: []string{"grade", "add", "-id", "S001", "-type", "Attendance", "-name", "W1", "-score", "1", "-max", "1"}, wantErr: grade.ErrAttendanceType},
		{name: "list", args: []string{"grade", "list", "-id", "S001"}, wantOut: "1 grade(s)"},
		{name: "report", args: []string{"report", "-details"}, wantOut: "Students: 1\nAverage: 16.0%\nPassing: 0 (0.0%)"},
		{name: "delete", args: []string{"grade", "delete", "1"}, wantOut: "Grade #1 deleted"},
		{name: "delete again", args: []string{"grade", "delete", "1"}, wantErr: grade.ErrNotFound},
		{name: "delete non int", args: []string{"grade", "delete", "one"}, wantErrStr: `invalid grade id "one"`},
	})
}

func Test_commandLine_weights(t *testing.T) {
	cli, out := setup(t)
	path := filepath.Join(t.TempDir(), "weights.yaml")

	err := cli.run([]string{"admin", "weights", "set", "Quizzes=30"})
	assert.Equal(t, "invalid data:\n  weights: total weight must equal 100% (currently 110.0%)", cli.describeError(err))

	runTests(t, cli, out, []cliTest{
		{name: "show", args: []string{"weights", "show"}, wantOut: "TOTAL"},
		{name: "set invalid", args: []string{"weights", "set", "Quizzes"}, wantErrStr: `invalid weight "Quizzes", expected COMPONENT=WEIGHT`},
		{name: "set", args: []string{"weights", "set", "Quizzes=25%", "Assignments=25"}, wantOut: "Quizzes      25%"},
		{name: "add", args: []string{"weights", "add", "-name", "Projects"}, wantOut: "Projects"},
		{name: "remove default", args: []string{"weights", "remove", "Midterm"}, wantErr: grading.ErrDefaultComponent},
		{name: "export", args: []string{"weights", "export", "-o", path}, wantOut: "Weights written to"},
		{name: "reset", args: []string{"weights", "reset"}, wantOut: "Assignments  30%"},
		{name: "import", args: []string{"weights", "import", "-f", path}, wantOut: "Projects"},
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- component: Quizzes\n  weight: 25\n")
}

func Test_commandLine_sheets(t *testing.T) {
	cli, out := setup(t)
	dir := t.TempDir()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Student ID", "Name", "Course"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"S001", "Alice", "CS"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"S001", "Alice"}))
	in := filepath.Join(dir, "students.xlsx")
	require.NoError(t, f.SaveAs(in))
	require.NoError(t, f.Close())

	runTests(t, cli, out, []cliTest{
		{name: "import", args: []string{"import", "students", "-f", in}, wantOut: "Successfully imported 1 students\nImported: 1\nSkipped: 1\n  Row 3: Student S001 already exists"},
		{name: "import report", args: []string{"import", "report", "-f", in}, wantErrStr: "this kind of spreadsheet cannot be imported"},
		{name: "unknown kind", args: []string{"export", "teachers"}, wantErrStr: `unknown spreadsheet kind "teachers"`},
		{name: "export", args: []string{"export", "report", "-o", filepath.Join(dir, "out", "report")}, wantOut: "Exported report to"},
	})
	assert.FileExists(t, filepath.Join(dir, "out", "report.xlsx"))
}

func Test_commandLine_maintenance(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()
	defer func(orig func(int) bool) { isTerminalFunc = orig }(isTerminalFunc)

	_, err := cli.students.Create(ctx, student.NewStudent{ID: "S001", Name: "Alice"})
	require.NoError(t, err)

	runTests(t, cli, out, []cliTest{
		{name: "backup", args: []string{"backup"}, wantOut: "Backup written to"},
		{name: "info", args: []string{"info"}, wantOut: "Grading components:  5"},
	})

	isTerminalFunc = func(int) bool { return false }
	err = cli.run([]string{"admin", "clear"})
	assert.EqualError(t, err, "stdin is not a terminal: pass -yes to confirm")

	isTerminalFunc = func(int) bool { return true }
	cli.stdin = strings.NewReader("n\n")
	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "clear"}))
	assert.Contains(t, out.String(), "Aborted")
	ok, err := cli.students.Exists(ctx, "S001")
	require.NoError(t, err)
	assert.True(t, ok)

	cli.stdin = strings.NewReader("yes\n")
	require.NoError(t, cli.run([]string{"admin", "clear"}))
	ok, err = cli.students.Exists(ctx, "S001")
	require.NoError(t, err)
	assert.False(t, ok)

	backups, err := database.ListBackups(database.BackupDir(cli.conf))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func Test_commandLine_describeError(t *testing.T) {
	cli, _ := setup(t)
	_, err := cli.students.Create(context.Background(), student.NewStudent{ID: "S 1", Email: "nope"})
	require.Error(t, err)
	assert.Equal(t, strings.Join([]string{
		"invalid data:",
		"  email: email must be a valid email address",
		"  name: this field is required",
		"  student_id: student ID may only contain printable characters without spaces",
	}, "\n"), cli.describeError(err))

	assert.Equal(t, "boom", cli.describeError(errors.New("boom")))
	assert.Empty(t, cli.describeError(nil))
}
