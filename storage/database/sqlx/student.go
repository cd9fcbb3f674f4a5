package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/storage/database"
)

type studentRow struct {
	StudentID string      `db:"student_id"`
	Name      string      `db:"name"`
	Course    null.String `db:"course"`
	Email     null.String `db:"email"`
}

type studentAttendanceRow struct {
	StudentID string      `db:"student_id"`
	Name      string      `db:"name"`
	Course    null.String `db:"course"`
	Email     null.String `db:"email"`
	Total     int         `db:"total"`
	Present   int         `db:"present"`
}

func toStudentRow(s student.Student) studentRow {
	return studentRow{
		StudentID: s.ID,
		Name:      s.Name,
		Course:    null.NewString(s.Course, s.Course != ""),
		Email:     null.NewString(s.Email, s.Email != ""),
	}
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:     row.StudentID,
		Name:   row.Name,
		Course: row.Course.String,
		Email:  row.Email.String,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) exists(ctx context.Context, q sqlx.QueryerContext, id string) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, repo.db.Rebind("SELECT COUNT(*) FROM students WHERE student_id = ?"), id); err != nil {
		return false, errors.Wrap(err, "checking student")
	}
	return n > 0, nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	err := database.Transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		exists, err := repo.exists(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		if exists {
			return student.ErrExists
		}
		_, err = tx.NamedExecContext(ctx,
			"INSERT INTO students (student_id, name, course, email) VALUES (:student_id, :name, :course, :email)",
			toStudentRow(s))
		return errors.Wrap(err, "inserting student")
	})
	if err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	q := repo.db.Rebind("SELECT student_id, name, course, email FROM students WHERE student_id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	return row.student(), nil
}

func (repo studentRepository) StudentExists(ctx context.Context, id string) (bool, error) {
	return repo.exists(ctx, repo.db, id)
}

func orderBy(ordering []core.DBOrdering, allowed []string, fallback string) string {
	valid := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		for _, a := range allowed {
			if ord.Field == a {
				valid = append(valid, ord)
				break
			}
		}
	}
	if len(valid) == 0 {
		return fallback
	}
	return core.OrderByClause(valid) + ", " + fallback
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error) {
	var (
		where []string
		args  []interface{}
	)
	// students with ID, Name or Email matching the search keyword
	if filter.Search != "" {
		val := like(strings.ToLower(filter.Search))
		where = append(where, "(LOWER(student_id) LIKE ? OR LOWER(name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ?)")
		args = append(args, val, val, val)
	}
	if filter.Course != "" {
		where = append(where, "LOWER(course) = ?")
		args = append(args, strings.ToLower(filter.Course))
	}

	q := "SELECT student_id, name, course, email FROM students"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderBy(ordering, student.OrderableFields, "student_id ASC")

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo studentRepository) QueryStudentsWithAttendance(ctx context.Context) ([]student.WithAttendance, error) {
	q := repo.db.Rebind(`
		SELECT s.student_id, s.name, s.course, s.email,
		       COUNT(a.id) AS total,
		       COALESCE(SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END), 0) AS present
		FROM students s
		LEFT JOIN attendance a ON a.student_id = s.student_id
		GROUP BY s.student_id, s.name, s.course, s.email
		ORDER BY s.name ASC, s.student_id ASC`)

	var rows []studentAttendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, string(attendance.StatusPresent)); err != nil {
		return nil, errors.Wrap(err, "querying students with attendance")
	}
	students := make([]student.WithAttendance, 0, len(rows))
	for _, row := range rows {
		students = append(students, student.WithAttendance{
			Student: studentRow{StudentID: row.StudentID, Name: row.Name, Course: row.Course, Email: row.Email}.student(),
			Total:   row.Total,
			Present: row.Present,
		})
	}
	return students, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	res, err := repo.db.NamedExecContext(ctx,
		"UPDATE students SET name = :name, course = :course, email = :email WHERE student_id = :student_id",
		toStudentRow(s))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (repo studentRepository) DeleteStudents(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return database.Transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		// children first: postgres enforces the foreign keys
		for _, table := range []string{"attendance", "grades", "students"} {
			q, args, err := in(repo.db, "DELETE FROM "+table+" WHERE student_id IN (?)", ids)
			if err != nil {
				return err
			}
			if _, err = tx.ExecContext(ctx, q, args...); err != nil {
				return errors.Wrapf(err, "deleting %s", table)
			}
		}
		return nil
	})
}
