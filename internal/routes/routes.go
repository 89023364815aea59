package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/handler"
	"github.com/lingoplatform/admin-backend/internal/middleware"
	"github.com/lingoplatform/admin-backend/pkg/jwt"
	"github.com/redis/go-redis/v9"
)

// Setup configures the admin API. contentTypes are the registry type tags;
// each gets its own route group so static segments never collide with gin params.
func Setup(
	router *gin.Engine,
	contentHandler *handler.ContentHandler,
	auditLogHandler *handler.AuditLogHandler,
	contentTypes []string,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		common.UseJSONFieldNames(v)
	}

	admin := router.Group("/admin", middleware.JWTAuth(jwtManager), middleware.RequireAdmin())

	// Audit trail (export/summary before /:id)
	audit := admin.Group("/audit-logs")
	audit.GET("", auditLogHandler.List)
	audit.GET("/summary", auditLogHandler.Summary)
	audit.GET("/export", middleware.RateLimitPerUser(redisClient, middleware.ExportRateLimitConfig()), auditLogHandler.Export)
	audit.GET("/:id", auditLogHandler.Get)

	for _, tag := range contentTypes {
		g := admin.Group("/"+tag, handler.WithContentType(tag))

		g.POST("", contentHandler.Create)
		g.GET("/:id", contentHandler.Get)
		g.PUT("/:id", contentHandler.Update)
		g.DELETE("/:id", contentHandler.Delete)
		g.PATCH("/:id/status", contentHandler.ChangeStatus)

		// 버전 관리
		g.GET("/:id/versions", contentHandler.ListVersions)
		g.GET("/:id/versions/compare", contentHandler.CompareVersions)
		g.GET("/:id/versions/:versionId", contentHandler.GetVersion)
		g.POST("/:id/restore/:versionId", contentHandler.Restore)

		// 검수 워크플로
		g.POST("/:id/submit-for-review", contentHandler.SubmitForReview)
		g.POST("/:id/approve-review", contentHandler.ApproveReview)
		g.POST("/:id/reject-review", contentHandler.RejectReview)
		g.GET("/:id/reviews", contentHandler.ListReviews)

		g.GET("/:id/audit-logs", contentHandler.History)
	}
}
