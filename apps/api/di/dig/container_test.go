package dig_container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	backupsvc "github.com/trezcool/gradebook/services/backup"
	"github.com/trezcool/gradebook/tests"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		schedule      string
		wantScheduler bool
	}{
		{name: "without backups", schedule: ""},
		{name: "with backups", schedule: "@daily", wantScheduler: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testutil.NewConfig(t)
			conf.Backup.Schedule = tt.schedule
			c := newContainer(func() *core.Config { return conf })

			err := c.Invoke(func(db *sqlx.DB, server echoapi.Server, scheduler *backupsvc.Scheduler) {
				t.Cleanup(func() { _ = db.Close() })

				req := httptest.NewRequest(http.MethodGet, "/", nil)
				rec := httptest.NewRecorder()
				server.ServeHTTP(rec, req)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, "Welcome to Gradebook API!", rec.Body.String())

				req = httptest.NewRequest(http.MethodGet, "/v1/students", nil)
				rec = httptest.NewRecorder()
				server.ServeHTTP(rec, req)
				assert.Equal(t, http.StatusOK, rec.Code, "migrated database")

				assert.Equal(t, tt.wantScheduler, scheduler != nil)
			})
			require.NoError(t, err)
		})
	}
}
