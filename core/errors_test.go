package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	errTaken := errors.New("already taken")

	tests := []struct {
		name      string
		err       *ValidationError
		wantStr   string
		wantMap   map[string]string
		wantLines []string
	}{
		{
			name:      "sentinel",
			err:       NewFieldError("student_id", errTaken).(*ValidationError),
			wantStr:   "already taken",
			wantMap:   map[string]string{"student_id": "already taken"},
			wantLines: []string{"student_id: already taken"},
		},
		{
			name: "fields only",
			err: NewValidationError(nil,
				FieldError{Field: "weights", Error: "too heavy"},
				FieldError{Field: "day", Error: "not a day"},
				FieldError{Field: "weights", Error: "ignored"},
			).(*ValidationError),
			wantStr:   "weights: too heavy; day: not a day; weights: ignored",
			wantMap:   map[string]string{"weights": "too heavy", "day": "not a day"},
			wantLines: []string{"weights: too heavy", "day: not a day", "weights: ignored"},
		},
		{
			name:      "empty",
			err:       NewValidationError(nil).(*ValidationError),
			wantMap:   map[string]string{},
			wantLines: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStr, tt.err.Error())
			assert.Equal(t, tt.wantMap, tt.err.FieldMap())
			assert.Equal(t, tt.wantLines, tt.err.Lines())
		})
	}

	t.Run("unwrap", func(t *testing.T) {
		err := errors.Wrap(NewFieldError("student_id", errTaken), "creating student")
		assert.True(t, errors.Is(err, errTaken))

		var verr *ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Equal(t, "student_id", verr.Fields[0].Field)
	})
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("db lost"), "querying")))
	assert.False(t, IsShutdown(errors.New("db lost")))
}
