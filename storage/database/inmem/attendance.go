package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/gradebook/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

// stats must be called with the lock held.
func (db *DB) stats(studentID string) attendance.Stats {
	var stats attendance.Stats
	for key, rec := range db.attendance {
		if key.studentID != studentID {
			continue
		}
		stats.Total++
		if rec.Status.Counts() {
			stats.Present++
		}
	}
	return stats
}

// upsert must be called with the write lock held.
func (db *DB) upsert(rec attendance.Record) attendance.Record {
	key := attendanceKey{studentID: rec.StudentID, date: rec.Date}
	if existing, ok := db.attendance[key]; ok {
		rec.ID = existing.ID
	} else {
		db.attendancePK++
		rec.ID = db.attendancePK
	}
	db.attendance[key] = rec
	return rec
}

func (repo *attendanceRepository) UpsertAttendance(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return repo.db.upsert(rec), nil
}

func (repo *attendanceRepository) UpsertAttendances(_ context.Context, recs []attendance.Record) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for i := range recs {
		recs[i] = repo.db.upsert(recs[i])
	}
	return nil
}

func (repo *attendanceRepository) QueryAttendance(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]attendance.Record, 0)
	for _, rec := range repo.db.attendance {
		switch {
		case filter.StudentID != "" && rec.StudentID != filter.StudentID,
			filter.Status != "" && rec.Status != filter.Status,
			filter.From != "" && rec.Date < filter.From,
			filter.To != "" && rec.Date > filter.To:
			continue
		}
		s := repo.db.students[rec.StudentID]
		rec.StudentName = s.Name
		rec.Course = s.Course
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Date != recs[j].Date {
			return recs[i].Date > recs[j].Date
		}
		if recs[i].StudentName != recs[j].StudentName {
			return recs[i].StudentName < recs[j].StudentName
		}
		return recs[i].StudentID < recs[j].StudentID
	})
	return recs, nil
}

func (repo *attendanceRepository) AttendanceStats(_ context.Context, studentID string) (attendance.Stats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.stats(studentID), nil
}
