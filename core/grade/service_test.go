package grade_test

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/storage/database/inmem"
	"github.com/trezcool/gradebook/tests"
)

func setup(t *testing.T) (*grade.Service, ut.Translator) {
	db := inmemdb.Open()
	validate, translator := testutil.NewValidator()
	studentRepo := inmemdb.NewStudentRepository(db)
	testutil.CreateStudent(t, studentRepo, "S001", "Alice")

	students := student.NewService(studentRepo, validate)
	weights := grading.NewService(inmemdb.NewWeightsRepository(db), validate)
	return grade.NewService(inmemdb.NewGradeRepository(db), students, weights, validate), translator
}

func TestService_Add(t *testing.T) {
	svc, translator := setup(t)
	ctx := context.Background()

	valid := func() grade.NewEntry {
		return grade.NewEntry{
			StudentID: "S001",
			Type:      grading.ComponentQuizzes,
			Name:      "Quiz 1",
			Score:     8,
			MaxScore:  10,
			Date:      "2024-03-04",
		}
	}

	tests := []struct {
		name     string
		modify   func(ne *grade.NewEntry)
		wantErrs map[string]string
		wantErr  error
	}{
		{
			name:   "valid",
			modify: func(ne *grade.NewEntry) {},
		},
		{
			name:     "missing name",
			modify:   func(ne *grade.NewEntry) { ne.Name = "  " },
			wantErrs: map[string]string{"assessment_name": "this field is required"},
		},
		{
			name:     "score above max",
			modify:   func(ne *grade.NewEntry) { ne.Score = 11 },
			wantErrs: map[string]string{"score": "score must be less than or equal to MaxScore"},
		},
		{
			name:     "negative score",
			modify:   func(ne *grade.NewEntry) { ne.Score = -1 },
			wantErrs: map[string]string{"score": "score must be 0 or greater"},
		},
		{
			name:    "unknown student",
			modify:  func(ne *grade.NewEntry) { ne.StudentID = "S999" },
			wantErr: student.ErrNotFound,
		},
		{
			name:    "attendance type",
			modify:  func(ne *grade.NewEntry) { ne.Type = grading.ComponentAttendance },
			wantErr: grade.ErrAttendanceType,
		},
		{
			name:    "unknown type",
			modify:  func(ne *grade.NewEntry) { ne.Type = "Labs" },
			wantErr: grade.ErrUnknownType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ne := valid()
			tt.modify(&ne)
			got, err := svc.Add(ctx, ne)

			switch {
			case tt.wantErrs != nil:
				var verrs validator.ValidationErrors
				require.True(t, errors.As(err, &verrs), "got %v", err)
				assert.Equal(t, tt.wantErrs, core.TranslateErrors(verrs, translator))
			case tt.wantErr != nil:
				var verr *core.ValidationError
				assert.True(t, errors.As(err, &verr), "got %v", err)
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.NotZero(t, got.ID)
				assert.Equal(t, 80.0, got.Percentage())
			}
		})
	}

	t.Run("zero max score", func(t *testing.T) {
		ne := valid()
		ne.Score, ne.MaxScore = 0, 0
		_, err := svc.Add(ctx, ne)
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs), "got %v", err)
		assert.Equal(t, "max_score", verrs[0].Field())
	})
}

func TestService_QueryDelete(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	add := func(typ, name string, score, maxScore float64, date string) grade.Entry {
		e, err := svc.Add(ctx, grade.NewEntry{StudentID: "S001", Type: typ, Name: name, Score: score, MaxScore: maxScore, Date: date})
		require.NoError(t, err)
		return e
	}
	q1 := add(grading.ComponentQuizzes, "Quiz 1", 8, 10, "2024-03-04")
	add(grading.ComponentQuizzes, "Quiz 2", 30, 50, "2024-03-11")
	add(grading.ComponentMidterm, "Midterm", 45, 60, "2024-03-15")

	entries, err := svc.Query(ctx, grade.QueryFilter{StudentID: "S001"})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Midterm", entries[0].Name, "latest first")
	assert.Equal(t, "Alice", entries[0].StudentName)

	entries, err = svc.Query(ctx, grade.QueryFilter{Type: grading.ComponentQuizzes})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	avgs, err := svc.AveragesByType(ctx, "S001")
	require.NoError(t, err)
	assert.InDelta(t, 70, avgs[grading.ComponentQuizzes], 1e-9)
	assert.InDelta(t, 75, avgs[grading.ComponentMidterm], 1e-9)
	_, ok := avgs[grading.ComponentFinalExam]
	assert.False(t, ok)

	require.NoError(t, svc.Delete(ctx, q1.ID))
	assert.ErrorIs(t, svc.Delete(ctx, q1.ID), grade.ErrNotFound)

	avgs, err = svc.AveragesByType(ctx, "S001")
	require.NoError(t, err)
	assert.InDelta(t, 60, avgs[grading.ComponentQuizzes], 1e-9)
}
