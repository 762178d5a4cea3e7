package admin

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/attempt-engine/internal/controller"
	"github.com/lshigami/attempt-engine/internal/dto"
	"github.com/lshigami/attempt-engine/internal/service"
	"github.com/rs/zerolog/log"
)

// CatalogEvicter drops cached template questions. It is nil when the catalog
// cache is off.
type CatalogEvicter interface {
	Invalidate(ctx context.Context, templateID uint) error
}

type MaintenanceController struct {
	attemptService service.AttemptService
	catalogCache   CatalogEvicter
}

func NewMaintenanceController(attemptService service.AttemptService, catalogCache CatalogEvicter) *MaintenanceController {
	return &MaintenanceController{attemptService: attemptService, catalogCache: catalogCache}
}

// ReconcileStudent godoc
// @Summary (Admin) Finalize a student's stuck attempts
// @Description Force-finishes every open attempt of the student whose time budget plus grace has passed. One failing attempt does not stop the others.
// @Tags Admin - Maintenance
// @Produce json
// @Security BearerAuth
// @Param student_id path string true "Student ID"
// @Success 200 {object} dto.ReconcileReportDTO
// @Failure 400 {object} dto.ErrorResponse "Missing student ID"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/students/{student_id}/reconcile [post]
func (c *MaintenanceController) ReconcileStudent(ctx *gin.Context) {
	studentID := strings.TrimSpace(ctx.Param("student_id"))
	if studentID == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "student_id is required"})
		return
	}

	report, err := c.attemptService.Reconcile(ctx.Request.Context(), studentID)
	if err != nil {
		controller.RespondError(ctx, err, "ReconcileStudent")
		return
	}
	log.Info().Str("studentID", studentID).Int("finalized", report.Finalized).Msg("Admin ReconcileStudent: done")
	ctx.JSON(http.StatusOK, report)
}

// ReconcileAll godoc
// @Summary (Admin) Finalize stuck attempts of all students
// @Tags Admin - Maintenance
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum attempts to examine" default(200)
// @Success 200 {object} dto.ReconcileReportDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/reconcile [post]
func (c *MaintenanceController) ReconcileAll(ctx *gin.Context) {
	limit := 200
	if raw := ctx.Query("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid limit format"})
			return
		}
		limit = val
	}

	report, err := c.attemptService.ReconcileAll(ctx.Request.Context(), limit)
	if err != nil {
		controller.RespondError(ctx, err, "ReconcileAll")
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// EvictCatalog godoc
// @Summary (Admin) Drop the cached questions of an exam template
// @Description Used after editing a template's questions so attempts read the new catalog. A no-op when the cache is off.
// @Tags Admin - Maintenance
// @Security BearerAuth
// @Param exam_id path int true "Exam template ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse "Invalid exam ID"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 500 {object} dto.ErrorResponse "Cache unreachable"
// @Router /admin/exams/{exam_id}/catalog-cache [delete]
func (c *MaintenanceController) EvictCatalog(ctx *gin.Context) {
	examID, ok := controller.ParseUintParam(ctx, "exam_id")
	if !ok {
		return
	}
	if c.catalogCache == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	if err := c.catalogCache.Invalidate(ctx.Request.Context(), examID); err != nil {
		log.Error().Err(err).Uint("examTemplateID", examID).Msg("Admin EvictCatalog: redis delete failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "failed to evict cached catalog", Kind: service.KindInternal.String()})
		return
	}
	log.Info().Uint("examTemplateID", examID).Msg("Admin EvictCatalog: cached questions dropped")
	ctx.Status(http.StatusNoContent)
}
