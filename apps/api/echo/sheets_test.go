package echoapi_test

import (
	"bytes"
	"net/http"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/gradebook/storage/database"
	"github.com/trezcool/gradebook/tests"
)

func Test_sheetsApi_export(t *testing.T) {
	a := setup(t)
	testutil.CreateStudent(t, a.studentRepo, "S001", "Alice", "CS")

	tests := []struct {
		kind  string
		sheet string
	}{
		{"students", "Students"},
		{"grades", "Grades"},
		{"attendance", "Attendance Records"},
		{"report", "Grade Report"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/v1/exports/"+tt.kind)
			a.server.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
			assert.Equal(t, `attachment; filename="`+tt.kind+`.xlsx"`, rec.Header().Get(echo.HeaderContentDisposition))

			f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, tt.sheet, f.GetSheetList()[0])
		})
	}

	runTests(t, a.server, []httpTest{
		{name: "unknown kind", path: "/v1/exports/teachers", wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"})},
	})
}

func Test_sheetsApi_import(t *testing.T) {
	a := setup(t)
	testutil.CreateStudent(t, a.studentRepo, "S001", "Alice")

	students := workbook(t,
		[]interface{}{"Student ID", "Name", "Course"},
		[]interface{}{"S001", "Alice", "CS"},
		[]interface{}{"S002", "Bob", "Math"},
	)

	tests := []struct {
		name     string
		path     string
		content  []byte
		wantCode int
		wantData []byte
	}{
		{
			name: "students", path: "/v1/imports/students", content: students, wantCode: http.StatusOK,
			wantData: []byte(`{"imported":1,"skipped":1,"errors":["Row 2: Student S001 already exists"],"message":"Successfully imported 1 students"}`),
		},
		{
			name: "missing columns", path: "/v1/imports/attendance", content: workbook(t, []interface{}{"Student ID", "Date"}),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"file":"missing required columns: Status"}`),
		},
		{
			name: "no file", path: "/v1/imports/grades",
			wantCode: http.StatusBadRequest, wantData: []byte(`{"file":"an xlsx file is required"}`),
		},
		{
			name: "report", path: "/v1/imports/report", content: students,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"kind":"this kind of spreadsheet cannot be imported"}`),
		},
		{
			name: "unknown kind", path: "/v1/imports/teachers", content: students,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUpload(t, tt.path, tt.content)
			a.server.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}

	t.Run("not a workbook", func(t *testing.T) {
		req, rec := newUpload(t, "/v1/imports/students", []byte("Student ID,Name\nS009,Zed\n"))
		a.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var got map[string]string
		unmarshall(t, rec, &got)
		assert.Contains(t, got["file"], "not a valid xlsx workbook")
	})
}

func Test_maintenanceApi(t *testing.T) {
	a := setup(t)
	testutil.CreateStudent(t, a.studentRepo, "S001", "Alice")

	var path string
	t.Run("backup", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/backups")
		a.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got map[string]string
		unmarshall(t, rec, &got)
		path = got["path"]
		assert.FileExists(t, path)
	})

	t.Run("info", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/info")
		a.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got database.Info
		unmarshall(t, rec, &got)
		assert.Equal(t, "sqlite", got.Engine)
		assert.Equal(t, a.conf.Database.Path, got.Path)
		assert.Equal(t, 1, got.Students)
		assert.Equal(t, 5, got.Components)
		assert.Equal(t, 1, got.Backups)
		assert.Equal(t, path, got.LatestBackup)
		assert.Equal(t, a.conf.Backup.Dir, got.BackupDir)

		_, err := os.Stat(got.Path)
		assert.NoError(t, err)
	})
}
