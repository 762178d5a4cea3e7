package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/attempt-engine/internal/controller"
	"github.com/lshigami/attempt-engine/internal/service"
)

type ExamController struct {
	examService service.ExamService
}

func NewExamController(examService service.ExamService) *ExamController {
	return &ExamController{examService: examService}
}

// ListExams godoc
// @Summary List published exams
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ExamSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	exams, err := c.examService.ListPublished(ctx.Request.Context())
	if err != nil {
		controller.RespondError(ctx, err, "ListExams")
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// GetExam godoc
// @Summary Get a published exam with its questions
// @Description Options are returned without their correctness flags.
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam template ID"
// @Success 200 {object} dto.ExamDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid exam ID"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams/{exam_id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	examID, ok := controller.ParseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	exam, err := c.examService.GetExam(ctx.Request.Context(), examID)
	if err != nil {
		controller.RespondError(ctx, err, "GetExam")
		return
	}
	ctx.JSON(http.StatusOK, exam)
}
