package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/services/excel"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	conf       *core.Config
	translator ut.Translator

	students   *student.Service
	attendance *attendance.Service
	grades     *grade.Service
	weights    *grading.Service
	reports    *report.Service
	excel      *excelsvc.Service

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.stderr, `Usage:
  migrate COMMAND [ARGS]                                  - run a goose command (up, down, status, ...)
  student add -id ID -name NAME [-course C] [-email E]    - enroll a student
  student list [-search S] [-course C] [-order FIELDS]    - list students with their attendance
  student update -id ID [-name N] [-course C] [-email E]  - update a student (blank values are kept)
  student delete ID...                                    - delete students, their attendance and grades
  attendance mark -id ID -status S [-date D]              - mark one student (Present|Absent|Late|Excused)
  attendance roster [-date D] [ID...]                     - mark listed students Present, the others Absent
  attendance week -id ID [-date D]                        - show the Monday to Saturday week containing D
  attendance day -id ID -day DAY [-absent] [-date D]      - mark one day of the week containing D
  attendance stats -id ID                                 - show the attendance counters of a student
  attendance list [-id ID] [-status S] [-from D] [-to D]  - list attendance records, latest first
  grade add -id ID -type T -name N -score S -max M [-date D]
  grade list [-id ID] [-type T]                           - list grades, latest first
  grade delete GRADE_ID                                   - delete a grade
  weights show|reset                                      - show or restore the grading weights
  weights set COMPONENT=WEIGHT...                         - update weights (the total must be 100)
  weights add -name N [-weight W] | remove NAME           - add or remove a custom component
  weights export [-o FILE] | import -f FILE               - save or load the weights as yaml
  report [-details]                                       - compute the grade of every student
  export students|grades|attendance|report -o FILE        - write an xlsx workbook
  import students|grades|attendance -f FILE               - read an xlsx workbook
  backup                                                  - back up the database
  info                                                    - show database information
  clear [-yes]                                            - delete every record`)
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "student":
		return cli.student(args[2:])
	case "attendance":
		return cli.attendanceCmd(args[2:])
	case "grade":
		return cli.grade(args[2:])
	case "weights":
		return cli.weightsCmd(args[2:])
	case "report":
		return cli.report(args[2:])
	case "export":
		return cli.export(args[2:])
	case "import":
		return cli.importCmd(args[2:])
	case "backup":
		return cli.backup()
	case "info":
		return cli.info()
	case "clear":
		return cli.clear(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.stderr)
	fs.Usage = func() {
		fmt.Fprintf(cli.stderr, "Usage: %s\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

// usageErr prints the usage of fs and returns errHelp.
func usageErr(fs *flag.FlagSet) error {
	fs.Usage()
	return errHelp
}

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.stdout, 0, 4, 2, ' ', 0)
}

// confirm asks a yes/no question on the terminal. It fails when stdin is not a terminal.
func (cli *commandLine) confirm(question string) (bool, error) {
	if !isTerminalFunc(int(os.Stdin.Fd())) {
		return false, errors.New("stdin is not a terminal: pass -yes to confirm")
	}
	fmt.Fprintf(cli.stdout, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(cli.stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// describeError renders validation errors field by field.
func (cli *commandLine) describeError(err error) string {
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fldErrs := core.TranslateErrors(verrs, cli.translator)
		lines := make([]string, 0, len(fldErrs))
		for fld, e := range fldErrs {
			lines = append(lines, "  "+fld+": "+e)
		}
		sort.Strings(lines)
		return "invalid data:\n" + strings.Join(lines, "\n")
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		return "invalid data:\n  " + strings.Join(verr.Lines(), "\n  ")
	}
	return err.Error()
}
