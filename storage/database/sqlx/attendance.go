package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/storage/database"
)

const upsertAttendanceQuery = `
	INSERT INTO attendance (student_id, date, status) VALUES (?, ?, ?)
	ON CONFLICT (student_id, date) DO UPDATE SET status = excluded.status
	RETURNING id`

type attendanceRow struct {
	ID          int    `db:"id"`
	StudentID   string `db:"student_id"`
	Date        string `db:"date"`
	Status      string `db:"status"`
	StudentName string `db:"student_name"`
	Course      string `db:"course"`
}

func (row attendanceRow) record() attendance.Record {
	return attendance.Record{
		ID:          row.ID,
		StudentID:   row.StudentID,
		Date:        row.Date,
		Status:      attendance.Status(row.Status),
		StudentName: row.StudentName,
		Course:      row.Course,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) upsert(ctx context.Context, q sqlx.QueryerContext, rec *attendance.Record) error {
	err := sqlx.GetContext(ctx, q, &rec.ID, repo.db.Rebind(upsertAttendanceQuery), rec.StudentID, rec.Date, string(rec.Status))
	return errors.Wrap(err, "upserting attendance")
}

func (repo attendanceRepository) UpsertAttendance(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	if err := repo.upsert(ctx, repo.db, &rec); err != nil {
		return attendance.Record{}, err
	}
	return rec, nil
}

func (repo attendanceRepository) UpsertAttendances(ctx context.Context, recs []attendance.Record) error {
	return database.Transact(ctx, repo.db, func(tx *sqlx.Tx) error {
		for i := range recs {
			if err := repo.upsert(ctx, tx, &recs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo attendanceRepository) QueryAttendance(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.StudentID != "" {
		where = append(where, "a.student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		where = append(where, "a.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.From != "" {
		where = append(where, "a.date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		where = append(where, "a.date <= ?")
		args = append(args, filter.To)
	}

	q := `
		SELECT a.id, a.student_id, a.date, a.status,
		       COALESCE(s.name, '') AS student_name, COALESCE(s.course, '') AS course
		FROM attendance a
		LEFT JOIN students s ON s.student_id = a.student_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY a.date DESC, s.name ASC, a.student_id ASC"

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	recs := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.record())
	}
	return recs, nil
}

func (repo attendanceRepository) AttendanceStats(ctx context.Context, studentID string) (attendance.Stats, error) {
	var stats struct {
		Total   int `db:"total"`
		Present int `db:"present"`
	}
	q := repo.db.Rebind(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS present
		FROM attendance
		WHERE student_id = ?`)
	if err := repo.db.GetContext(ctx, &stats, q, string(attendance.StatusPresent), studentID); err != nil {
		return attendance.Stats{}, errors.Wrap(err, "counting attendance")
	}
	return attendance.Stats{Total: stats.Total, Present: stats.Present}, nil
}
