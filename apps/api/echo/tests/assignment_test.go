package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/student"
)

func Test_assignmentApi_retrieve(t *testing.T) {
	env := setup(t)
	inst := env.createAssignment(t, "q0", "q1", "q2")
	stu := env.createStudent(t, "amani", "s3curepassword", nil)
	token := getToken(t, stu)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/assignments/"+inst.ID)
		env.app.ServeHTTP(rec, req)
		checkCodeAndBody(t, rec, http.StatusUnauthorized, marshallObj(t, errMissingToken))
	})

	t.Run("not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/nope", token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndBody(t, rec, http.StatusNotFound, marshallObj(t, httpErr{Error: "assignment not found"}))
	})

	t.Run("ordered questions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/"+inst.ID, token)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var got struct {
			Instance  assignment.Instance   `json:"assignment"`
			Questions []assignment.Question `json:"questions"`
		}
		decodeBody(t, rec, &got)
		if got.Instance.ID != inst.ID || len(got.Questions) != 3 {
			t.Errorf("retrieve = %+v", got)
		}
		if got.Questions[0].ID != "q0" {
			t.Errorf("Questions[0].ID = %s, want q0", got.Questions[0].ID)
		}
	})
}

func Test_assignmentApi_updateOrder(t *testing.T) {
	env := setup(t)
	inst := env.createAssignment(t, "q0", "q1", "q2")
	stu := env.createStudent(t, "amani", "s3curepassword", nil)
	teacher := env.createStudent(t, "teacher", "s3curepassword", []string{student.RoleTeacher})

	orderBody := func(order string) []byte {
		return marshallObj(t, map[string]string{"order": order})
	}

	t.Run("teacher required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/assignments/"+inst.ID+"/order", getToken(t, stu), orderBody("2,0,1"))
		env.app.ServeHTTP(rec, req)
		checkCodeAndBody(t, rec, http.StatusForbidden, marshallObj(t, errForbidden))
	})

	t.Run("rejected candidates", func(t *testing.T) {
		tests := []struct {
			candidate string
			wantErr   string
		}{
			{candidate: "0,one,2", wantErr: "not a comma separated list of integers."},
			{candidate: "0,-1,2", wantErr: "has negative values."},
			{candidate: "0,1,3", wantErr: "has at least one value bigger than the number of questions."},
			{candidate: "0,1,1", wantErr: "there are duplicate values."},
			{candidate: "0,1", wantErr: "does not include every question."},
		}
		for _, tt := range tests {
			t.Run(tt.wantErr, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodPut, "/v1/assignments/"+inst.ID+"/order", getToken(t, teacher), orderBody(tt.candidate))
				env.app.ServeHTTP(rec, req)
				checkCodeAndBody(t, rec, http.StatusBadRequest, marshallObj(t, map[string]string{"order": tt.wantErr}))
			})
		}
	})

	t.Run("reorders", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/assignments/"+inst.ID+"/order", getToken(t, teacher), orderBody("2,0,1"))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var got assignment.Instance
		decodeBody(t, rec, &got)
		if len(got.Order) != 3 || got.Order[0] != 2 || got.Order[1] != 0 || got.Order[2] != 1 {
			t.Errorf("Order = %v, want [2 0 1]", got.Order)
		}
	})
}

func Test_assignmentApi_answerFlow(t *testing.T) {
	env := setup(t)
	inst := env.createAssignment(t, "q0", "q1")
	stu := env.createStudent(t, "amani", "s3curepassword", nil)
	env.enroll(t, stu, inst)
	token := getToken(t, stu)

	currentQuestion := func(t *testing.T) (q *assignment.Question, state string, done bool) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/"+inst.ID+"/current-question", token)
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var got struct {
			Question *assignment.Question `json:"question"`
			State    string               `json:"state"`
			Done     bool                 `json:"done"`
		}
		decodeBody(t, rec, &got)
		return got.Question, got.State, got.Done
	}
	submit := func(t *testing.T, questionID string, choice int) *httptest.ResponseRecorder {
		t.Helper()
		body := marshallObj(t, map[string]interface{}{"question_id": questionID, "choice": choice})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+inst.ID+"/answers", token, body)
		env.app.ServeHTTP(rec, req)
		return rec
	}

	q, state, done := currentQuestion(t)
	if q == nil || q.ID != "q0" || state != "first-round-in-progress" || done {
		t.Fatalf("current = %v %s %v, want q0 first-round-in-progress false", q, state, done)
	}

	t.Run("rejects out of turn submissions", func(t *testing.T) {
		rec := submit(t, "q1", 0)
		checkCodeAndBody(t, rec, http.StatusBadRequest, marshallObj(t, map[string]string{"question_id": "this is not the current question."}))
	})

	t.Run("rejects out of range choices", func(t *testing.T) {
		rec := submit(t, "q0", 5)
		checkCodeAndBody(t, rec, http.StatusBadRequest, marshallObj(t, map[string]string{"choice": "invalid answer choice."}))
	})

	// round 1: q0 wrong, q1 right; round 2: q0 right, q1 wrong
	for _, sub := range []struct {
		questionID string
		choice     int
	}{
		{"q0", 1}, {"q1", 0},
		{"q0", 0}, {"q1", 2},
	} {
		rec := submit(t, sub.questionID, sub.choice)
		checkCode(t, rec, http.StatusCreated)
	}

	q, state, done = currentQuestion(t)
	if q != nil || state != "done" || !done {
		t.Fatalf("current = %v %s %v, want nil done true", q, state, done)
	}

	t.Run("nothing left to answer", func(t *testing.T) {
		rec := submit(t, "q0", 0)
		checkCodeAndBody(t, rec, http.StatusBadRequest, marshallObj(t, map[string]string{"question_id": "there is nothing left to answer."}))
	})

	t.Run("results", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/"+inst.ID+"/results", token)
		env.app.ServeHTTP(rec, req)
		want := assignment.Results{
			NumQuestions: 2, NumCompleted: 2,
			NumFirstCorrect: 1, NumCorrect: 1,
			Grade: 1, Completed: true,
		}
		checkCodeAndBody(t, rec, http.StatusOK, marshallObj(t, want))
	})
}

func Test_assignmentApi_answersRequireEnrollment(t *testing.T) {
	env := setup(t)
	inst := env.createAssignment(t, "q0")
	stu := env.createStudent(t, "amani", "s3curepassword", nil)
	token := getToken(t, stu)

	body := marshallObj(t, map[string]interface{}{"question_id": "q0", "choice": 0})
	req, rec := newAuthRequest(http.MethodPost, "/v1/assignments/"+inst.ID+"/answers", token, body)
	env.app.ServeHTTP(rec, req)
	checkCodeAndBody(t, rec, http.StatusNotFound, marshallObj(t, httpErr{Error: "enrollment not found"}))
}

func Test_assignmentApi_report(t *testing.T) {
	env := setup(t)
	inst := env.createAssignment(t, "q0", "q1")
	stu := env.createStudent(t, "amani", "s3curepassword", nil)
	teacher := env.createStudent(t, "teacher", "s3curepassword", []string{student.RoleTeacher})
	env.addMember(t, inst.GroupID, stu)
	env.enroll(t, stu, inst)

	if _, err := env.assignSvc.SubmitAnswer(stu.ID, inst.ID, "q0", 0); err != nil {
		t.Fatalf("SubmitAnswer() failed: %v", err)
	}

	t.Run("teacher required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/"+inst.ID+"/report", getToken(t, stu))
		env.app.ServeHTTP(rec, req)
		checkCodeAndBody(t, rec, http.StatusForbidden, marshallObj(t, errForbidden))
	})

	t.Run("per question stats", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments/"+inst.ID+"/report", getToken(t, teacher))
		env.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var got []assignment.QuestionStats
		decodeBody(t, rec, &got)
		if len(got) != 2 {
			t.Fatalf("stats = %d, want 2", len(got))
		}
		if got[0].Question.ID != "q0" || got[0].First != 1 || got[0].FirstCorrect != 1 {
			t.Errorf("stats[0] = %+v", got[0])
		}
	})
}
