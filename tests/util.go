package testutil

import (
	"context"
	"path/filepath"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/storage/database"
)

// NewConfig returns a test configuration pointing at a fresh SQLite file of the test's temp dir.
func NewConfig(t *testing.T) *core.Config {
	dir := t.TempDir()
	return &core.Config{
		AppName:  "Gradebook",
		Env:      "TEST",
		TestMode: true,
		WorkDir:  dir,
		Database: core.DatabaseConfig{
			Engine: core.EngineSQLite,
			Path:   filepath.Join(dir, "data", "attendance.db"),
		},
		Backup: core.BackupConfig{Dir: filepath.Join(dir, "backups")},
	}
}

// PrepareDB opens and migrates the database of conf, closing it when the test ends.
func PrepareDB(t *testing.T, conf ...*core.Config) *sqlx.DB {
	var c *core.Config
	if len(conf) > 0 {
		c = conf[0]
	} else {
		c = NewConfig(t)
	}

	db, err := database.Open(c)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

// NewValidator returns a validator with every domain validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := core.NewValidator(
		translator,
		student.InitValidators,
		attendance.InitValidators,
		grading.InitValidators,
	)
	return validate, translator
}

func CreateStudent(t *testing.T, repo student.Repository, id, name string, course ...string) student.Student {
	s := student.Student{ID: id, Name: name}
	if len(course) > 0 {
		s.Course = course[0]
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}

func MarkAttendance(t *testing.T, repo attendance.Repository, studentID, date string, status attendance.Status) attendance.Record {
	rec, err := repo.UpsertAttendance(context.Background(), attendance.Record{StudentID: studentID, Date: date, Status: status})
	if err != nil {
		t.Fatalf("MarkAttendance() failed: %v", err)
	}
	return rec
}

func AddGrade(t *testing.T, repo grade.Repository, studentID, typ, name string, score, maxScore float64, date string) grade.Entry {
	e, err := repo.CreateEntry(context.Background(), grade.Entry{
		StudentID: studentID,
		Type:      typ,
		Name:      name,
		Score:     score,
		MaxScore:  maxScore,
		Date:      date,
	})
	if err != nil {
		t.Fatalf("AddGrade() failed: %v", err)
	}
	return e
}
