package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/tests"
)

func Test_studentApi(t *testing.T) {
	a := setup(t)
	testutil.CreateStudent(t, a.studentRepo, "S002", "Bob", "Math")

	alice := student.Student{ID: "S001", Name: "Alice", Course: "CS", Email: "alice@example.com"}
	bob := student.Student{ID: "S002", Name: "Bob", Course: "Math"}
	aliceMath := alice
	aliceMath.Course = "Math"

	runTests(t, a.server, []httpTest{
		{
			name: "create", method: http.MethodPost, path: "/v1/students",
			body:     []byte(`{"student_id":" S001 ","name":"Alice","course":"CS","email":"Alice@Example.com"}`),
			wantCode: http.StatusCreated, wantData: marshallObj(t, alice),
		},
		{
			name: "create existing", method: http.MethodPost, path: "/v1/students",
			body:     []byte(`{"student_id":"S001","name":"Alice"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"student_id":"a student with this ID already exists"}`),
		},
		{
			name: "create invalid", method: http.MethodPost, path: "/v1/students",
			body:     []byte(`{"student_id":"S003","email":"nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"this field is required","email":"email must be a valid email address"}`),
		},
		{name: "query", path: "/v1/students", wantCode: http.StatusOK, wantData: marshallObj(t, []student.Student{alice, bob})},
		{name: "query ordering", path: "/v1/students?ordering=-student_id", wantCode: http.StatusOK, wantData: marshallObj(t, []student.Student{bob, alice})},
		{name: "query search", path: "/v1/students?search=ALI", wantCode: http.StatusOK, wantData: marshallObj(t, []student.Student{alice})},
		{name: "query course", path: "/v1/students?course=math", wantCode: http.StatusOK, wantData: marshallObj(t, []student.Student{bob})},
		{
			name: "roster", path: "/v1/students?with_attendance=true", wantCode: http.StatusOK,
			wantData: []byte(`[
				{"student_id":"S001","name":"Alice","course":"CS","email":"alice@example.com","total_sessions":0,"present":0,"attendance_percentage":0},
				{"student_id":"S002","name":"Bob","course":"Math","email":"","total_sessions":0,"present":0,"attendance_percentage":0}
			]`),
		},
		{name: "retrieve", path: "/v1/students/S001", wantCode: http.StatusOK, wantData: marshallObj(t, alice)},
		{name: "retrieve unknown", path: "/v1/students/S999", wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "student not found"})},
		{
			name: "update", method: http.MethodPut, path: "/v1/students/S001", body: []byte(`{"name":" ","course":"Math"}`),
			wantCode: http.StatusOK, wantData: marshallObj(t, aliceMath),
		},
		{
			name: "update invalid", method: http.MethodPut, path: "/v1/students/S001", body: []byte(`{"email":"nope"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"email":"email must be a valid email address"}`),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/students/S002", wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/students/S002", wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "student not found"})},
		{name: "delete unknown", method: http.MethodDelete, path: "/v1/students/S002", wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "student not found"})},
	})
}
