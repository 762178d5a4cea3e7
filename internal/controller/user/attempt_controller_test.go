package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/attempt-engine/internal/dto"
	"github.com/lshigami/attempt-engine/internal/middleware"
	"github.com/lshigami/attempt-engine/internal/service"
)

// stubAttemptService records calls and returns canned values.
type stubAttemptService struct {
	startCreated bool
	startErr     error
	submitErr    error
	finishErr    error

	lastStudent   string
	lastAnswer    service.AnswerInput
	lastQuestion  uint
	lastPending   []service.PendingAnswer
	startTemplate uint
}

func (s *stubAttemptService) StartAttempt(_ context.Context, studentID string, examTemplateID uint) (*dto.AttemptDTO, bool, error) {
	s.lastStudent, s.startTemplate = studentID, examTemplateID
	if s.startErr != nil {
		return nil, false, s.startErr
	}
	return &dto.AttemptDTO{ID: "att-1", StudentID: studentID, ExamTemplateID: examTemplateID, Status: "IN_PROGRESS"}, s.startCreated, nil
}

func (s *stubAttemptService) SubmitAnswer(_ context.Context, attemptID, studentID string, questionID uint, answer service.AnswerInput) error {
	s.lastStudent, s.lastQuestion, s.lastAnswer = studentID, questionID, answer
	return s.submitErr
}

func (s *stubAttemptService) FinishAttempt(_ context.Context, attemptID, studentID string, pending []service.PendingAnswer) (*dto.ResultDTO, error) {
	s.lastStudent, s.lastPending = studentID, pending
	if s.finishErr != nil {
		return nil, s.finishErr
	}
	return &dto.ResultDTO{AttemptID: attemptID, StudentID: studentID, Status: "COMPLETED", Score: 2, MaxScore: 3}, nil
}

func (s *stubAttemptService) GetResult(_ context.Context, attemptID, studentID string) (*dto.ResultDTO, error) {
	return nil, &service.EngineError{Kind: service.KindFailedPrecondition, Message: "attempt " + attemptID + " is not completed yet"}
}

func (s *stubAttemptService) ListInProgress(_ context.Context, studentID string) ([]dto.AttemptDTO, error) {
	return []dto.AttemptDTO{}, nil
}

func (s *stubAttemptService) Reconcile(_ context.Context, studentID string) (*dto.ReconcileReportDTO, error) {
	return &dto.ReconcileReportDTO{StudentID: studentID}, nil
}

func (s *stubAttemptService) ReconcileAll(_ context.Context, limit int) (*dto.ReconcileReportDTO, error) {
	return &dto.ReconcileReportDTO{}, nil
}

func newAttemptRouter(svc service.AttemptService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewAttemptController(svc)
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.ContextStudentID, "stu-1")
		c.Next()
	})
	api.POST("/exams/:exam_id/attempts", ctrl.StartAttempt)
	api.GET("/attempts/in-progress", ctrl.ListInProgress)
	api.PUT("/attempts/:attempt_id/answers/:question_id", ctrl.SubmitAnswer)
	api.POST("/attempts/:attempt_id/finish", ctrl.FinishAttempt)
	api.GET("/attempts/:attempt_id/result", ctrl.GetResult)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestStartAttemptStatusCodes(t *testing.T) {
	svc := &stubAttemptService{startCreated: true}
	r := newAttemptRouter(svc)

	if w := serve(r, http.MethodPost, "/api/v1/exams/5/attempts", ""); w.Code != http.StatusCreated {
		t.Fatalf("created status = %d", w.Code)
	}
	if svc.lastStudent != "stu-1" || svc.startTemplate != 5 {
		t.Fatalf("service called with %q/%d", svc.lastStudent, svc.startTemplate)
	}

	svc.startCreated = false
	if w := serve(r, http.MethodPost, "/api/v1/exams/5/attempts", ""); w.Code != http.StatusOK {
		t.Fatalf("resumed status = %d", w.Code)
	}

	if w := serve(r, http.MethodPost, "/api/v1/exams/abc/attempts", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", w.Code)
	}
}

func TestStartAttemptConflictEchoesBlockingTemplate(t *testing.T) {
	svc := &stubAttemptService{startErr: &service.EngineError{
		Kind:                   service.KindConflict,
		Message:                "another exam is in progress",
		BlockingExamTemplateID: 9,
		BlockingAttemptID:      "att-9",
	}}
	w := serve(newAttemptRouter(svc), http.MethodPost, "/api/v1/exams/5/attempts", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Kind != "Conflict" || resp.BlockingExamTemplateID == nil || *resp.BlockingExamTemplateID != 9 {
		t.Fatalf("error body = %+v", resp)
	}
	if resp.BlockingAttemptID == nil || *resp.BlockingAttemptID != "att-9" {
		t.Fatalf("blocking attempt = %v", resp.BlockingAttemptID)
	}
}

func TestSubmitAnswerShapes(t *testing.T) {
	svc := &stubAttemptService{}
	r := newAttemptRouter(svc)

	w := serve(r, http.MethodPut, "/api/v1/attempts/att-1/answers/3", `{"option_id": 12}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("option status = %d body %s", w.Code, w.Body.String())
	}
	if got, ok := svc.lastAnswer.(service.OptionAnswer); !ok || got.OptionID != 12 || svc.lastQuestion != 3 {
		t.Fatalf("service got %#v for question %d", svc.lastAnswer, svc.lastQuestion)
	}

	w = serve(r, http.MethodPut, "/api/v1/attempts/att-1/answers/4", `{"essay_text": "because"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("essay status = %d", w.Code)
	}
	if _, ok := svc.lastAnswer.(service.EssayAnswer); !ok {
		t.Fatalf("service got %#v", svc.lastAnswer)
	}

	for _, body := range []string{`{"option_id": 1, "essay_text": "x"}`, `{}`, `{"essay_text": "   "}`, `not json`} {
		if w := serve(r, http.MethodPut, "/api/v1/attempts/att-1/answers/4", body); w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestSubmitAnswerErrorMapping(t *testing.T) {
	finishedAt := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		err  error
		want int
	}{
		{&service.EngineError{Kind: service.KindNotFound, Message: "attempt not found"}, http.StatusNotFound},
		{&service.EngineError{Kind: service.KindInvalidArgument, Message: "bad option"}, http.StatusBadRequest},
		{&service.EngineError{Kind: service.KindFailedPrecondition, Message: "finished", FinishedAt: &finishedAt}, http.StatusConflict},
		{&service.EngineError{Kind: service.KindDeadlineExceeded, Message: "late"}, http.StatusGone},
		{&service.EngineError{Kind: service.KindInternal, Message: "db down"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := &stubAttemptService{submitErr: tt.err}
		w := serve(newAttemptRouter(svc), http.MethodPut, "/api/v1/attempts/att-1/answers/1", `{"option_id": 2}`)
		if w.Code != tt.want {
			t.Fatalf("%v: status = %d, want %d", tt.err, w.Code, tt.want)
		}
		if tt.want == http.StatusConflict {
			resp := decodeError(t, w)
			if resp.FinishedAt == nil || !resp.FinishedAt.Equal(finishedAt) {
				t.Fatalf("finished_at = %v", resp.FinishedAt)
			}
		}
	}
}

func TestFinishAttemptPassesPendingAnswers(t *testing.T) {
	svc := &stubAttemptService{}
	r := newAttemptRouter(svc)

	body := `{"pending_answers": [{"question_id": 1, "option_id": 4}, {"question_id": 2, "essay_text": "text"}, {"question_id": 3}]}`
	w := serve(r, http.MethodPost, "/api/v1/attempts/att-1/finish", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if len(svc.lastPending) != 3 {
		t.Fatalf("pending = %d, want 3", len(svc.lastPending))
	}
	if svc.lastPending[2].Answer != nil {
		t.Fatalf("malformed pending answer should reach the service as nil, got %#v", svc.lastPending[2].Answer)
	}

	var result dto.ResultDTO
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Score != 2 || result.Status != "COMPLETED" {
		t.Fatalf("result = %+v", result)
	}

	if w := serve(r, http.MethodPost, "/api/v1/attempts/att-1/finish", ""); w.Code != http.StatusOK {
		t.Fatalf("finish without body status = %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/api/v1/attempts/att-1/finish", `{"pending_answers": [{"option_id": 4}]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("pending answer without question_id status = %d", w.Code)
	}
}

func TestGetResultNotCompleted(t *testing.T) {
	w := serve(newAttemptRouter(&stubAttemptService{}), http.MethodGet, "/api/v1/attempts/att-1/result", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Kind != "FailedPrecondition" {
		t.Fatalf("kind = %s", resp.Kind)
	}
}
