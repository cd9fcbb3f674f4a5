package echoapi_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/tests"
)

func Test_gradeApi(t *testing.T) {
	a := setup(t)
	testutil.CreateStudent(t, a.studentRepo, "S001", "Alice")

	var created struct {
		grade.Entry
		Percentage float64 `json:"percentage"`
	}
	t.Run("create", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/grades",
			[]byte(`{"student_id":"S001","assessment_type":"Quizzes","assessment_name":"Q1","score":8,"max_score":10,"date":"2024-03-04"}`))
		a.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		unmarshall(t, rec, &created)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Q1", created.Name)
		assert.InDelta(t, 80, created.Percentage, 1e-9)
	})

	runTests(t, a.server, []httpTest{
		{
			name: "create invalid", method: http.MethodPost, path: "/v1/grades",
			body:     []byte(`{"student_id":"S001","assessment_type":"Quizzes","assessment_name":"Q2","score":12,"max_score":10}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"score":"score must be less than or equal to MaxScore"}`),
		},
		{
			name: "create unknown type", method: http.MethodPost, path: "/v1/grades",
			body:     []byte(`{"student_id":"S001","assessment_type":"Labs","assessment_name":"L1","score":1,"max_score":10}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"assessment_type":"\"Labs\" is not a configured component"}`),
		},
		{
			name: "create unknown student", method: http.MethodPost, path: "/v1/grades",
			body:     []byte(`{"student_id":"S999","assessment_type":"Quizzes","assessment_name":"Q1","score":1,"max_score":10}`),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name: "create attendance type", method: http.MethodPost, path: "/v1/grades",
			body:     []byte(`{"student_id":"S001","assessment_type":"Attendance","assessment_name":"A","score":1,"max_score":1}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"assessment_type":"attendance is computed from attendance records"}`),
		},
		{name: "delete invalid id", method: http.MethodDelete, path: "/v1/grades/abc", wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"})},
		{name: "delete unknown", method: http.MethodDelete, path: "/v1/grades/999", wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "grade not found"})},
	})

	t.Run("query and delete", func(t *testing.T) {
		testutil.AddGrade(t, a.gradeRepo, "S001", grading.ComponentMidterm, "Mid", 30, 40, "2024-03-10")

		var got []grade.Entry
		req, rec := newRequest(http.MethodGet, "/v1/grades?student_id=S001")
		a.server.ServeHTTP(rec, req)
		unmarshall(t, rec, &got)
		require.Len(t, got, 2)
		assert.Equal(t, "Mid", got[0].Name, "latest first")
		assert.Equal(t, "Alice", got[0].StudentName)

		req, rec = newRequest(http.MethodGet, "/v1/grades?assessment_type=Quizzes")
		a.server.ServeHTTP(rec, req)
		unmarshall(t, rec, &got)
		require.Len(t, got, 1)

		req, rec = newRequest(http.MethodDelete, "/v1/grades/"+strconv.Itoa(created.ID))
		a.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		entries, err := a.gradeRepo.QueryEntries(context.Background(), grade.QueryFilter{StudentID: "S001"})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func Test_weightsApi(t *testing.T) {
	a := setup(t)

	defaults := marshallObj(t, map[string]interface{}{"weights": grading.DefaultWeights(), "total": 100})
	withLabs := append(grading.DefaultWeights(), grading.Weight{Component: "Labs", Weight: 0})
	balanced := grading.DefaultWeights()
	balanced[1].Weight = 25 // Quizzes
	balanced[2].Weight = 25 // Assignments

	runTests(t, a.server, []httpTest{
		{name: "retrieve", path: "/v1/weights", wantCode: http.StatusOK, wantData: defaults},
		{
			name: "update unbalanced", method: http.MethodPut, path: "/v1/weights",
			body:     []byte(`{"weights":[{"component":"Quizzes","weight":30}]}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"weights":"total weight must equal 100% (currently 110.0%)"}`),
		},
		{
			name: "update unknown", method: http.MethodPut, path: "/v1/weights",
			body:     []byte(`{"weights":[{"component":"Labs","weight":0}]}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"weights":"unknown component \"Labs\""}`),
		},
		{
			name: "update", method: http.MethodPut, path: "/v1/weights",
			body:     []byte(`{"weights":[{"component":"Quizzes","weight":25},{"component":"Assignments","weight":25}]}`),
			wantCode: http.StatusOK, wantData: marshallObj(t, map[string]interface{}{"weights": balanced, "total": 100}),
		},
		{name: "reset", method: http.MethodPost, path: "/v1/weights/reset", wantCode: http.StatusOK, wantData: defaults},
		{
			name: "add component", method: http.MethodPost, path: "/v1/weights/components", body: []byte(`{"component":"Labs"}`),
			wantCode: http.StatusCreated, wantData: marshallObj(t, map[string]interface{}{"weights": withLabs, "total": 100}),
		},
		{
			name: "add existing", method: http.MethodPost, path: "/v1/weights/components", body: []byte(`{"component":"Labs"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"component":"a component with this name already exists"}`),
		},
		{
			name: "remove default", method: http.MethodDelete, path: "/v1/weights/components/Quizzes",
			wantCode: http.StatusBadRequest, wantData: []byte(`{"component":"default components cannot be deleted; set their weight to 0 instead"}`),
		},
		{name: "remove", method: http.MethodDelete, path: "/v1/weights/components/Labs", wantCode: http.StatusOK, wantData: defaults},
		{
			name: "remove unknown", method: http.MethodDelete, path: "/v1/weights/components/Labs",
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "component not found"}),
		},
	})
}

func Test_reportApi(t *testing.T) {
	a := setup(t)
	testutil.CreateStudent(t, a.studentRepo, "S001", "Alice")
	testutil.CreateStudent(t, a.studentRepo, "S002", "Bob")
	testutil.AddGrade(t, a.gradeRepo, "S001", grading.ComponentQuizzes, "Q1", 8, 10, "2024-03-04")

	var rep struct {
		report.Report
		Buckets []report.Bucket `json:"buckets"`
	}
	req, rec := newRequest(http.MethodGet, "/v1/report")
	a.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &rep)

	assert.Equal(t, grading.DefaultWeights().Components(), rep.Components)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, "Alice", rep.Rows[0].Name)
	assert.InDelta(t, 16, rep.Rows[0].Final, 1e-9) // 20% of 80
	assert.Equal(t, 2, rep.Summary.Count)
	assert.Zero(t, rep.Summary.Passing)
	require.Len(t, rep.Buckets, 1)
	assert.Equal(t, 2, rep.Buckets[0].Count)

	var row report.Row
	req, rec = newRequest(http.MethodGet, "/v1/students/S001/grade")
	a.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshall(t, rec, &row)
	assert.Equal(t, rep.Rows[0].Final, row.Final)
	assert.Equal(t, rep.Rows[0].GradeLabel, row.GradeLabel)
	assert.InDelta(t, 80, row.Percentage(grading.ComponentQuizzes), 1e-9)
}
