package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/internal/middleware"
	"github.com/lingoplatform/admin-backend/internal/service"
	"github.com/lingoplatform/admin-backend/pkg/ginutil"
)

// StatusRequest PATCH /{type}/{id}/status body
type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft published archived"`
}

// ApproveRequest approve-review body
type ApproveRequest struct {
	Comment string `json:"comment" binding:"max=2000"`
}

// RejectRequest reject-review body
type RejectRequest struct {
	Comment         string `json:"comment" binding:"max=2000"`
	RejectionReason string `json:"rejection_reason" binding:"required,max=2000"`
}

// ContentHandler handles lifecycle requests for every registered content type
type ContentHandler struct {
	service *service.LifecycleService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(service *service.LifecycleService) *ContentHandler {
	return &ContentHandler{service: service}
}

func (h *ContentHandler) itemID(c *gin.Context) (uint64, bool) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil || id == 0 {
		fail(c, invalidID("id"))
		return 0, false
	}
	return id, true
}

func (h *ContentHandler) attributes(c *gin.Context) (map[string]interface{}, bool) {
	var attrs map[string]interface{}
	if err := c.ShouldBindJSON(&attrs); err != nil {
		fail(c, bindError(err))
		return nil, false
	}
	return attrs, true
}

// Create handles POST /admin/{type}
// @Summary 콘텐츠 생성 (draft)
// @Tags content
// @Accept json
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Success 201 {object} common.Response
// @Failure 422 {object} common.Response
// @Router /admin/{type} [post]
func (h *ContentHandler) Create(c *gin.Context) {
	attrs, ok := h.attributes(c)
	if !ok {
		return
	}

	item, err := h.service.Create(c.Request.Context(), contentType(c), attrs, middleware.ActorFromContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	common.Created(c, item)
}

// Get handles GET /admin/{type}/{id}
// @Summary 콘텐츠 조회
// @Tags content
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Success 200 {object} common.Response
// @Router /admin/{type}/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	item, err := h.service.Get(c.Request.Context(), contentType(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, item)
}

// Update handles PUT /admin/{type}/{id}
// @Summary 콘텐츠 수정 (manual 스냅샷 생성)
// @Tags content
// @Accept json
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Success 200 {object} common.Response
// @Failure 422 {object} common.Response
// @Router /admin/{type}/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	attrs, ok := h.attributes(c)
	if !ok {
		return
	}

	item, err := h.service.Update(c.Request.Context(), contentType(c), id, attrs, middleware.ActorFromContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, item)
}

// Delete handles DELETE /admin/{type}/{id}
// @Summary 콘텐츠 삭제 (게시 상태 불가)
// @Tags content
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Success 200 {object} common.Response
// @Failure 409 {object} common.Response
// @Router /admin/{type}/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), contentType(c), id, middleware.ActorFromContext(c)); err != nil {
		fail(c, err)
		return
	}
	common.Success(c, gin.H{"id": id, "deleted": true})
}

// ChangeStatus handles PATCH /admin/{type}/{id}/status
// @Summary 상태 변경 (publish / unpublish / archive)
// @Tags content
// @Accept json
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Param request body StatusRequest true "목표 상태"
// @Success 200 {object} common.Response
// @Failure 409 {object} common.Response
// @Router /admin/{type}/{id}/status [patch]
func (h *ContentHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	item, err := h.service.ChangeStatus(c.Request.Context(), contentType(c), id, domain.ContentStatus(req.Status), middleware.ActorFromContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, item)
}

// ListVersions handles GET /admin/{type}/{id}/versions
// @Summary 스냅샷 목록 (최신순)
// @Tags versions
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Success 200 {object} common.Response{data=[]domain.ContentVersion}
// @Router /admin/{type}/{id}/versions [get]
func (h *ContentHandler) ListVersions(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	versions, err := h.service.ListVersions(c.Request.Context(), contentType(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, versions)
}

// GetVersion handles GET /admin/{type}/{id}/versions/{versionId}
// @Summary 스냅샷 조회
// @Tags versions
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Param versionId path int true "스냅샷 ID"
// @Success 200 {object} common.Response{data=domain.ContentVersion}
// @Router /admin/{type}/{id}/versions/{versionId} [get]
func (h *ContentHandler) GetVersion(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	versionID, err := ginutil.ParamUint64(c, "versionId")
	if err != nil || versionID == 0 {
		fail(c, invalidID("version_id"))
		return
	}

	version, err := h.service.GetVersion(c.Request.Context(), contentType(c), id, versionID)
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, version)
}

// CompareVersions handles GET /admin/{type}/{id}/versions/compare?from=&to=
// Without "to" the snapshot is compared against the current state.
// @Summary 스냅샷 비교
// @Tags versions
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Param from query int true "기준 스냅샷 ID"
// @Param to query int false "비교 스냅샷 ID (생략 시 현재 상태)"
// @Success 200 {object} common.Response
// @Router /admin/{type}/{id}/versions/compare [get]
func (h *ContentHandler) CompareVersions(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	from, present, err := ginutil.QueryUint64(c, "from")
	if err != nil || !present || from == 0 {
		fail(c, invalidID("from"))
		return
	}
	to, _, err := ginutil.QueryUint64(c, "to")
	if err != nil {
		fail(c, invalidID("to"))
		return
	}

	changes, err := h.service.CompareVersions(c.Request.Context(), contentType(c), id, from, to)
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, changes)
}

// Restore handles POST /admin/{type}/{id}/restore/{versionId}
// @Summary 스냅샷으로 복원
// @Tags versions
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Param versionId path int true "스냅샷 ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.Response
// @Router /admin/{type}/{id}/restore/{versionId} [post]
func (h *ContentHandler) Restore(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	versionID, err := ginutil.ParamUint64(c, "versionId")
	if err != nil || versionID == 0 {
		fail(c, invalidID("version_id"))
		return
	}

	item, err := h.service.Restore(c.Request.Context(), contentType(c), id, versionID, middleware.ActorFromContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, item)
}

// SubmitForReview handles POST /admin/{type}/{id}/submit-for-review
// @Summary 검수 요청
// @Tags reviews
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Success 201 {object} common.Response{data=domain.Review}
// @Failure 409 {object} common.Response
// @Router /admin/{type}/{id}/submit-for-review [post]
func (h *ContentHandler) SubmitForReview(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	review, err := h.service.SubmitForReview(c.Request.Context(), contentType(c), id, middleware.ActorFromContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	common.Created(c, review)
}

// ApproveReview handles POST /admin/{type}/{id}/approve-review
// @Summary 검수 승인 (게시)
// @Tags reviews
// @Accept json
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Param request body ApproveRequest false "검수 코멘트"
// @Success 200 {object} common.Response{data=domain.Review}
// @Failure 404 {object} common.Response
// @Router /admin/{type}/{id}/approve-review [post]
func (h *ContentHandler) ApproveReview(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	var req ApproveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, bindError(err))
			return
		}
	}

	review, err := h.service.ApproveReview(c.Request.Context(), contentType(c), id, req.Comment, middleware.ActorFromContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, review)
}

// RejectReview handles POST /admin/{type}/{id}/reject-review
// @Summary 검수 반려
// @Tags reviews
// @Accept json
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Param request body RejectRequest true "반려 사유"
// @Success 200 {object} common.Response{data=domain.Review}
// @Failure 422 {object} common.Response
// @Router /admin/{type}/{id}/reject-review [post]
func (h *ContentHandler) RejectReview(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	review, err := h.service.RejectReview(c.Request.Context(), contentType(c), id, req.Comment, req.RejectionReason, middleware.ActorFromContext(c))
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, review)
}

// ListReviews handles GET /admin/{type}/{id}/reviews
// @Summary 검수 이력
// @Tags reviews
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Success 200 {object} common.Response{data=[]domain.Review}
// @Router /admin/{type}/{id}/reviews [get]
func (h *ContentHandler) ListReviews(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}

	reviews, err := h.service.ListReviews(c.Request.Context(), contentType(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	common.Success(c, reviews)
}

// History handles GET /admin/{type}/{id}/audit-logs
// @Summary 콘텐츠 감사 로그
// @Tags audit
// @Produce json
// @Param type path string true "콘텐츠 타입"
// @Param id path int true "콘텐츠 ID"
// @Success 200 {object} common.Response{data=[]domain.AuditLog}
// @Router /admin/{type}/{id}/audit-logs [get]
func (h *ContentHandler) History(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	var filter domain.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, bindError(err))
		return
	}

	entries, total, err := h.service.History(c.Request.Context(), contentType(c), id, &filter)
	if err != nil {
		fail(c, err)
		return
	}
	common.SuccessWithMeta(c, entries, common.NewMeta(filter.Page, filter.PerPage, total))
}
