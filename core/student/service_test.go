package student_test

import (
	"context"
	"errors"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/storage/database/inmem"
	"github.com/trezcool/gradebook/tests"
)

func setup() (*student.Service, student.Repository, ut.Translator) {
	repo := inmemdb.NewStudentRepository(inmemdb.Open())
	validate, translator := testutil.NewValidator()
	return student.NewService(repo, validate), repo, translator
}

func TestService_Create(t *testing.T) {
	svc, _, translator := setup()
	ctx := context.Background()

	tests := []struct {
		name       string
		ns         student.NewStudent
		want       student.Student
		wantFields map[string]string
		wantErr    error
	}{
		{
			name: "valid",
			ns:   student.NewStudent{ID: " S001 ", Name: " Alice ", Course: "BSCS", Email: "Alice@School.EDU"},
			want: student.Student{ID: "S001", Name: "Alice", Course: "BSCS", Email: "alice@school.edu"},
		},
		{
			name:       "missing fields",
			ns:         student.NewStudent{Name: "  "},
			wantFields: map[string]string{"student_id": "this field is required", "name": "this field is required"},
		},
		{
			name:       "id with spaces",
			ns:         student.NewStudent{ID: "S 01", Name: "X"},
			wantFields: map[string]string{"student_id": "student ID may only contain printable characters without spaces"},
		},
		{
			name:       "invalid email",
			ns:         student.NewStudent{ID: "S009", Name: "X", Email: "nope"},
			wantFields: map[string]string{"email": "email must be a valid email address"},
		},
		{
			name:    "duplicate",
			ns:      student.NewStudent{ID: "S001", Name: "Other"},
			wantErr: student.ErrExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Create(ctx, tt.ns)
			switch {
			case tt.wantFields != nil:
				var verrs validator.ValidationErrors
				require.True(t, errors.As(err, &verrs), "got %v", err)
				assert.Equal(t, tt.wantFields, core.TranslateErrors(verrs, translator))
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				var verr *core.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "student_id", verr.Fields[0].Field)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestService_QueryUpdateDelete(t *testing.T) {
	svc, repo, _ := setup()
	ctx := context.Background()

	testutil.CreateStudent(t, repo, "S002", "Bob")
	testutil.CreateStudent(t, repo, "S001", "Carl", "BSIT")
	testutil.CreateStudent(t, repo, "S003", "Alice", "BSCS")

	students, err := svc.Query(ctx, student.QueryFilter{})
	require.NoError(t, err)
	names := make([]string, 0, len(students))
	for _, s := range students {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Alice", "Bob", "Carl"}, names, "name ascending by default")

	students, err = svc.Query(ctx, student.QueryFilter{Search: "  car "})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "S001", students[0].ID)

	updated, err := svc.Update(ctx, "S001", student.UpdateStudent{Name: "Carlos", Email: "carlos@school.edu"})
	require.NoError(t, err)
	assert.Equal(t, student.Student{ID: "S001", Name: "Carlos", Course: "BSIT", Email: "carlos@school.edu"}, updated, "blank course kept")

	_, err = svc.Update(ctx, "nope", student.UpdateStudent{Name: "X"})
	assert.Equal(t, student.ErrNotFound, err)

	require.NoError(t, svc.Delete(ctx, "S001", " S002 "))
	ok, err := svc.Exists(ctx, "S002")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Get(ctx, "S001")
	assert.Equal(t, student.ErrNotFound, err)
}
