package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/attempt-engine/internal/controller"
	"github.com/lshigami/attempt-engine/internal/dto"
	"github.com/lshigami/attempt-engine/internal/middleware"
	"github.com/lshigami/attempt-engine/internal/service"
	"github.com/rs/zerolog/log"
)

type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(attemptService service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: attemptService}
}

// StartAttempt godoc
// @Summary Start or resume an attempt
// @Description Creates an attempt on the exam, or returns the open attempt the student already has on it. A student with an open attempt on another exam gets 409.
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam template ID"
// @Success 201 {object} dto.AttemptDTO "Attempt created"
// @Success 200 {object} dto.AttemptDTO "Open attempt resumed"
// @Failure 400 {object} dto.ErrorResponse "Invalid exam ID"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 409 {object} dto.ErrorResponse "Exam not published or another exam in progress"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams/{exam_id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	examID, ok := controller.ParseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	studentID := middleware.StudentID(ctx)

	attempt, created, err := c.attemptService.StartAttempt(ctx.Request.Context(), studentID, examID)
	if err != nil {
		controller.RespondError(ctx, err, "StartAttempt")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, attempt)
}

// ListInProgress godoc
// @Summary List the student's open attempts
// @Description Open attempts with derived status (IN_PROGRESS or TIMEOUT) and remaining seconds.
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AttemptDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/in-progress [get]
func (c *AttemptController) ListInProgress(ctx *gin.Context) {
	attempts, err := c.attemptService.ListInProgress(ctx.Request.Context(), middleware.StudentID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "ListInProgress")
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// SubmitAnswer godoc
// @Summary Save an answer
// @Description Upserts the answer to one question. Exactly one of option_id or essay_text must be set.
// @Tags Attempts
// @Accept json
// @Security BearerAuth
// @Param attempt_id path string true "Attempt ID"
// @Param question_id path int true "Question ID"
// @Param answer body dto.SubmitAnswerRequest true "Answer"
// @Success 204 "Saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid answer"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already finished"
// @Failure 410 {object} dto.ErrorResponse "Time budget exhausted"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id}/answers/{question_id} [put]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	attemptID := ctx.Param("attempt_id")
	questionID, ok := controller.ParseUintParam(ctx, "question_id")
	if !ok {
		return
	}

	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "SubmitAnswer")
		return
	}
	answer, err := service.NewAnswerInput(req.OptionID, req.EssayText)
	if err != nil {
		controller.RespondError(ctx, err, "SubmitAnswer")
		return
	}

	if err := c.attemptService.SubmitAnswer(ctx.Request.Context(), attemptID, middleware.StudentID(ctx), questionID, answer); err != nil {
		controller.RespondError(ctx, err, "SubmitAnswer")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// FinishAttempt godoc
// @Summary Finish an attempt
// @Description Applies pending answers best-effort, scores the attempt and returns the result. Finishing twice returns the stored result.
// @Tags Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attempt_id path string true "Attempt ID"
// @Param body body dto.FinishAttemptRequest false "Answers not yet synced"
// @Success 200 {object} dto.ResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id}/finish [post]
func (c *AttemptController) FinishAttempt(ctx *gin.Context) {
	attemptID := ctx.Param("attempt_id")

	var req dto.FinishAttemptRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			controller.BindError(ctx, err, "FinishAttempt")
			return
		}
	}

	pending := make([]service.PendingAnswer, 0, len(req.PendingAnswers))
	for _, p := range req.PendingAnswers {
		// A malformed pending answer is reported in the result, not rejected.
		answer, err := service.NewAnswerInput(p.OptionID, p.EssayText)
		if err != nil {
			log.Debug().Err(err).Uint("questionID", p.QuestionID).Msg("FinishAttempt: malformed pending answer")
		}
		pending = append(pending, service.PendingAnswer{QuestionID: p.QuestionID, Answer: answer})
	}

	result, err := c.attemptService.FinishAttempt(ctx.Request.Context(), attemptID, middleware.StudentID(ctx), pending)
	if err != nil {
		controller.RespondError(ctx, err, "FinishAttempt")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetResult godoc
// @Summary Get the result of a finished attempt
// @Tags Attempts
// @Produce json
// @Security BearerAuth
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} dto.ResultDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt not completed yet"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id}/result [get]
func (c *AttemptController) GetResult(ctx *gin.Context) {
	result, err := c.attemptService.GetResult(ctx.Request.Context(), ctx.Param("attempt_id"), middleware.StudentID(ctx))
	if err != nil {
		controller.RespondError(ctx, err, "GetResult")
		return
	}
	ctx.JSON(http.StatusOK, result)
}
