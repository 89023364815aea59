package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/internal/service"
	"github.com/lingoplatform/admin-backend/pkg/ginutil"
	"github.com/lingoplatform/admin-backend/pkg/logger"
)

// AuditLogHandler serves the read side of the audit trail
type AuditLogHandler struct {
	service *service.AuditService
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(service *service.AuditService) *AuditLogHandler {
	return &AuditLogHandler{service: service}
}

// List handles GET /admin/audit-logs
// @Summary 감사 로그 목록
// @Tags audit
// @Produce json
// @Param start_date query string false "시작일 (YYYY-MM-DD)"
// @Param end_date query string false "종료일 (YYYY-MM-DD)"
// @Param action query string false "액션"
// @Param area query string false "콘텐츠 타입"
// @Param user_id query int false "사용자 ID"
// @Param status query string false "success / failure / error"
// @Param sort_by query string false "performed_at / action / area / status"
// @Param sort_order query string false "asc / desc"
// @Param page query int false "페이지"
// @Param per_page query int false "페이지 크기 (최대 100)"
// @Success 200 {object} common.Response{data=[]domain.AuditLog}
// @Router /admin/audit-logs [get]
func (h *AuditLogHandler) List(c *gin.Context) {
	var filter domain.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, bindError(err))
		return
	}

	entries, total, err := h.service.Query(c.Request.Context(), &filter)
	if err != nil {
		fail(c, err)
		return
	}
	common.SuccessWithMeta(c, entries, common.NewMeta(filter.Page, filter.PerPage, total))
}

// Get handles GET /admin/audit-logs/{id}
// @Summary 감사 로그 상세
// @Tags audit
// @Produce json
// @Param id path int true "감사 로그 ID"
// @Success 200 {object} common.Response{data=domain.AuditLog}
// @Failure 404 {object} common.Response
// @Router /admin/audit-logs/{id} [get]
func (h *AuditLogHandler) Get(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil || id == 0 {
		fail(c, invalidID("id"))
		return
	}

	entry, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, entry)
}

// Summary handles GET /admin/audit-logs/summary
// @Summary 감사 로그 집계
// @Tags audit
// @Produce json
// @Success 200 {object} common.Response{data=domain.AuditSummary}
// @Router /admin/audit-logs/summary [get]
func (h *AuditLogHandler) Summary(c *gin.Context) {
	var filter domain.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, bindError(err))
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, summary)
}

// Export handles GET /admin/audit-logs/export
// @Summary 감사 로그 내보내기 (CSV / JSON)
// @Tags audit
// @Produce text/csv
// @Produce json
// @Param format query string false "csv (기본) / json"
// @Param start_date query string true "시작일 (YYYY-MM-DD)"
// @Param end_date query string true "종료일 (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 404 {object} common.Response
// @Failure 409 {object} common.Response
// @Router /admin/audit-logs/export [get]
func (h *AuditLogHandler) Export(c *gin.Context) {
	var filter domain.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, bindError(err))
		return
	}

	result, err := h.service.Export(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		fail(c, err)
		return
	}

	log := logger.WithRequestID(c.GetString("request_id"))
	log.Info().
		Int("rows", result.Count).
		Str("filename", result.Filename).
		Msg("audit logs exported")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
