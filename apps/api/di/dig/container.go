package dig_container

import (
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	backupsvc "github.com/trezcool/gradebook/services/backup"
	excelsvc "github.com/trezcool/gradebook/services/excel"
	logsvc "github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database"
	sqlxrepos "github.com/trezcool/gradebook/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type ServerParams struct {
	dig.In

	Conf       *core.Config
	DB         *sqlx.DB
	Logger     core.Logger
	Translator ut.Translator
	Students   *student.Service
	Attendance *attendance.Service
	Grades     *grade.Service
	Weights    *grading.Service
	Reports    *report.Service
	Excel      *excelsvc.Service
}

func newLogger(base *logsvc.Logger) core.Logger {
	return base.Named("api")
}

func newDBLogger(base *logsvc.Logger) core.Logger {
	return base.Named("db")
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal("setting up database", err)
	}
	return db
}

func newValidator(translator ut.Translator) *validator.Validate {
	return core.NewValidator(
		translator,
		student.InitValidators,
		attendance.InitValidators,
		grading.InitValidators,
	)
}

func newGradeService(repo grade.Repository, students *student.Service, weights *grading.Service, validate *validator.Validate) *grade.Service {
	return grade.NewService(repo, students, weights, validate)
}

func newAttendanceService(repo attendance.Repository, students *student.Service, validate *validator.Validate) *attendance.Service {
	return attendance.NewService(repo, students, validate)
}

func newReportService(students *student.Service, att *attendance.Service, grades *grade.Service, weights *grading.Service) *report.Service {
	return report.NewService(students, report.NewDataSource(att, grades), weights)
}

func newExcelService(
	students *student.Service,
	grades *grade.Service,
	att *attendance.Service,
	reports *report.Service,
	translator ut.Translator,
	conf *core.Config,
) *excelsvc.Service {
	return excelsvc.NewService(students, grades, att, reports, translator, conf)
}

// newBackupScheduler returns nil when no backup schedule is configured.
func newBackupScheduler(conf *core.Config, db *sqlx.DB, logger core.Logger) (*backupsvc.Scheduler, error) {
	if conf.Backup.Schedule == "" {
		return nil, nil
	}
	return backupsvc.NewScheduler(db, conf, logger)
}

func newServer(p ServerParams) echoapi.Server {
	return echoapi.NewServer(&echoapi.Options{
		Address:    p.Conf.Server.Address,
		Debug:      p.Conf.Debug,
		TestMode:   p.Conf.TestMode,
		Conf:       p.Conf,
		DB:         p.DB,
		Logger:     p.Logger,
		Translator: p.Translator,
		Students:   p.Students,
		Attendance: p.Attendance,
		Grades:     p.Grades,
		Weights:    p.Weights,
		Reports:    p.Reports,
		Excel:      p.Excel,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	return newContainer(core.NewConfig)
}

func newContainer(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(logsvc.New))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))

	must(c.Provide(sqlxrepos.NewStudentRepository, dig.As(new(student.Repository))))
	must(c.Provide(sqlxrepos.NewAttendanceRepository, dig.As(new(attendance.Repository))))
	must(c.Provide(sqlxrepos.NewGradeRepository, dig.As(new(grade.Repository))))
	must(c.Provide(sqlxrepos.NewWeightsRepository, dig.As(new(grading.Repository))))

	must(c.Provide(student.NewService))
	must(c.Provide(grading.NewService))
	must(c.Provide(newGradeService))
	must(c.Provide(newAttendanceService))
	must(c.Provide(newReportService))
	must(c.Provide(newExcelService))
	must(c.Provide(newBackupScheduler))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
