package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grade"
)

type gradeRow struct {
	ID          int     `db:"id"`
	StudentID   string  `db:"student_id"`
	Type        string  `db:"assessment_type"`
	Name        string  `db:"assessment_name"`
	Score       float64 `db:"score"`
	MaxScore    float64 `db:"max_score"`
	Date        string  `db:"date"`
	StudentName string  `db:"student_name"`
}

func (row gradeRow) entry() grade.Entry {
	return grade.Entry{
		ID:          row.ID,
		StudentID:   row.StudentID,
		Type:        row.Type,
		Name:        row.Name,
		Score:       row.Score,
		MaxScore:    row.MaxScore,
		Date:        row.Date,
		StudentName: row.StudentName,
	}
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo gradeRepository) CreateEntry(ctx context.Context, e grade.Entry) (grade.Entry, error) {
	q := repo.db.Rebind(`
		INSERT INTO grades (student_id, assessment_type, assessment_name, score, max_score, date)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)
	if err := repo.db.GetContext(ctx, &e.ID, q, e.StudentID, e.Type, e.Name, e.Score, e.MaxScore, e.Date); err != nil {
		return grade.Entry{}, errors.Wrap(err, "inserting grade")
	}
	return e, nil
}

func (repo gradeRepository) QueryEntries(ctx context.Context, filter grade.QueryFilter) ([]grade.Entry, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.StudentID != "" {
		where = append(where, "g.student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.Type != "" {
		where = append(where, "g.assessment_type = ?")
		args = append(args, filter.Type)
	}

	q := `
		SELECT g.id, g.student_id, g.assessment_type, g.assessment_name, g.score, g.max_score, g.date,
		       s.name AS student_name
		FROM grades g
		JOIN students s ON s.student_id = g.student_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY g.date DESC, s.name ASC, g.id ASC"

	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	entries := make([]grade.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry())
	}
	return entries, nil
}

func (repo gradeRepository) DeleteEntry(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM grades WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	if n == 0 {
		return grade.ErrNotFound
	}
	return nil
}

func (repo gradeRepository) AveragesByType(ctx context.Context, studentID string) (map[string]float64, error) {
	var rows []struct {
		Type    string  `db:"assessment_type"`
		Average float64 `db:"average"`
	}
	q := repo.db.Rebind(`
		SELECT assessment_type,
		       AVG(CASE WHEN max_score > 0 THEN score * 100.0 / max_score ELSE 0 END) AS average
		FROM grades
		WHERE student_id = ?
		GROUP BY assessment_type`)
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "averaging grades")
	}
	avgs := make(map[string]float64, len(rows))
	for _, row := range rows {
		avgs[row.Type] = row.Average
	}
	return avgs, nil
}
