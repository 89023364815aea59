package routes

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lingoplatform/admin-backend/internal/handler"
	"github.com/lingoplatform/admin-backend/internal/migration"
	"github.com/lingoplatform/admin-backend/internal/repository"
	"github.com/lingoplatform/admin-backend/internal/service"
	"github.com/lingoplatform/admin-backend/pkg/jwt"
	"github.com/lingoplatform/admin-backend/pkg/serializer"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Meta    *struct {
		Page    int   `json:"page"`
		PerPage int   `json:"per_page"`
		Total   int64 `json:"total"`
	} `json:"meta"`
	Errors map[string]string `json:"errors"`
}

type listEnvelope struct {
	Success bool                     `json:"success"`
	Data    []map[string]interface{} `json:"data"`
	Meta    *struct {
		Page    int   `json:"page"`
		PerPage int   `json:"per_page"`
		Total   int64 `json:"total"`
	} `json:"meta"`
}

// AdminAPISuite drives the admin API end to end over an in-memory database
type AdminAPISuite struct {
	suite.Suite
	db          *gorm.DB
	router      *gin.Engine
	adminToken  string
	memberToken string
}

func TestAdminAPISuite(t *testing.T) {
	suite.Run(t, new(AdminAPISuite))
}

func (s *AdminAPISuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(migration.Run(db))
	s.db = db

	jwtManager := jwt.NewManager("test-secret-key-for-admin-api", 900, 86400)
	s.adminToken, err = jwtManager.GenerateAccessToken(1, "admin", 10)
	s.Require().NoError(err)
	s.memberToken, err = jwtManager.GenerateAccessToken(2, "member", 2)
	s.Require().NoError(err)

	registry := repository.NewDefaultRegistry(db)
	audits := service.NewAuditService(repository.NewAuditLogRepository(db), nil, service.SystemClock, service.DefaultAuditConfig())
	versions := service.NewVersionService(repository.NewVersionRepository(db), service.SystemClock)
	lifecycle := service.NewLifecycleService(db, registry, versions, audits, repository.NewReviewRepository(db), service.SystemClock)

	s.router = gin.New()
	Setup(s.router, handler.NewContentHandler(lifecycle), handler.NewAuditLogHandler(audits), registry.Types(), jwtManager, nil)
}

func (s *AdminAPISuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := serializer.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", "admin-api-test")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AdminAPISuite) admin(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	w := s.do(method, path, s.adminToken, body)
	var resp envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(serializer.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

// list is admin for endpoints whose data is an array
func (s *AdminAPISuite) list(path string) (*httptest.ResponseRecorder, listEnvelope) {
	w := s.do(http.MethodGet, path, s.adminToken, nil)
	var resp listEnvelope
	s.Require().NoError(serializer.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func (s *AdminAPISuite) createLesson(title string) uint64 {
	w, resp := s.admin(http.MethodPost, "/admin/lessons", map[string]interface{}{"title": title})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return uint64(resp.Data["id"].(float64))
}

func (s *AdminAPISuite) TestAuthentication() {
	w := s.do(http.MethodGet, "/admin/audit-logs", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/admin/audit-logs", "garbage", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/admin/lessons", s.memberToken, map[string]interface{}{"title": "x"})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *AdminAPISuite) TestContentLifecycle() {
	id := s.createLesson("Hola")
	base := fmt.Sprintf("/admin/lessons/%d", id)

	w, resp := s.admin(http.MethodGet, base, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("draft", resp.Data["status"])

	w, resp = s.admin(http.MethodPut, base, map[string]interface{}{"title": "Hola!"})
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Hola!", resp.Data["title"])

	w, resp = s.admin(http.MethodPut, base, map[string]interface{}{"titel": "Typo"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(resp.Errors, "attributes")

	w, resp = s.admin(http.MethodPut, base, map[string]interface{}{"status": "published"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(resp.Errors, "status")

	w, resp = s.admin(http.MethodPatch, base+"/status", map[string]interface{}{"status": "published"})
	s.Equal(http.StatusOK, w.Code)
	s.Equal("published", resp.Data["status"])
	s.NotNil(resp.Data["published_at"])

	w, _ = s.admin(http.MethodPatch, base+"/status", map[string]interface{}{"status": "published"})
	s.Equal(http.StatusConflict, w.Code)

	w, resp = s.admin(http.MethodPatch, base+"/status", map[string]interface{}{"status": "gone"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(resp.Errors, "status")

	w, resp = s.admin(http.MethodDelete, base, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.False(resp.Success)
	s.Contains(resp.Message, "archive")

	w, _ = s.admin(http.MethodPatch, base+"/status", map[string]interface{}{"status": "archived"})
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.admin(http.MethodDelete, base, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.admin(http.MethodGet, base, nil)
	s.Equal(http.StatusNotFound, w.Code)

	// snapshots survive deletion
	w, versions := s.list(base + "/versions")
	s.Equal(http.StatusOK, w.Code)
	s.Len(versions.Data, 3) // manual, before_publish, before_archive
}

func (s *AdminAPISuite) TestVersionsRestoreAndCompare() {
	id := s.createLesson("First")
	base := fmt.Sprintf("/admin/lessons/%d", id)

	w, _ := s.admin(http.MethodPut, base, map[string]interface{}{"title": "Second"})
	s.Require().Equal(http.StatusOK, w.Code)

	w, versions := s.list(base + "/versions")
	s.Equal(http.StatusOK, w.Code)
	s.Require().Len(versions.Data, 1)
	versionID := uint64(versions.Data[0]["id"].(float64))

	w, resp := s.admin(http.MethodGet, fmt.Sprintf("%s/versions/%d", base, versionID), nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("manual", resp.Data["label"])

	w, resp = s.admin(http.MethodGet, fmt.Sprintf("%s/versions/compare?from=%d", base, versionID), nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(map[string]interface{}{"old": "First", "new": "Second"}, resp.Data["title"])

	w, _ = s.admin(http.MethodGet, base+"/versions/compare", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w, resp = s.admin(http.MethodPost, fmt.Sprintf("%s/restore/%d", base, versionID), nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("First", resp.Data["title"])

	w, _ = s.admin(http.MethodPost, fmt.Sprintf("%s/restore/%d", base, 9999), nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.admin(http.MethodPost, base+"/restore/abc", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *AdminAPISuite) TestReviewWorkflow() {
	id := s.createLesson("Review me")
	base := fmt.Sprintf("/admin/lessons/%d", id)

	w, _ := s.admin(http.MethodPost, base+"/approve-review", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, resp := s.admin(http.MethodPost, base+"/submit-for-review", nil)
	s.Equal(http.StatusCreated, w.Code)
	s.Equal("pending", resp.Data["status"])

	w, _ = s.admin(http.MethodPost, base+"/submit-for-review", nil)
	s.Equal(http.StatusConflict, w.Code)

	w, resp = s.admin(http.MethodPost, base+"/reject-review", map[string]interface{}{"comment": "hmm"})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(resp.Errors, "rejection_reason")

	w, resp = s.admin(http.MethodPost, base+"/approve-review", map[string]interface{}{"comment": "looks good"})
	s.Equal(http.StatusOK, w.Code)
	s.Equal("approved", resp.Data["status"])
	s.Equal("looks good", resp.Data["review_comment"])

	w, resp = s.admin(http.MethodGet, base, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("published", resp.Data["status"])
	s.Equal("approved", resp.Data["review_status"])

	w, reviews := s.list(base + "/reviews")
	s.Equal(http.StatusOK, w.Code)
	s.Len(reviews.Data, 1)

	w, history := s.list(base + "/audit-logs?sort_order=asc")
	s.Equal(http.StatusOK, w.Code)
	s.Require().Len(history.Data, 3)
	s.Equal("create", history.Data[0]["action"])
	s.Equal("submit_for_review", history.Data[1]["action"])
	s.Equal("review_approved", history.Data[2]["action"])
	s.Equal(int64(3), history.Meta.Total)
}

func (s *AdminAPISuite) TestAuditLogs() {
	s.createLesson("One")
	s.createLesson("Two")
	w, _ := s.admin(http.MethodPost, "/admin/vocabularies", map[string]interface{}{"word": "perro", "translation": "dog", "language": "es"})
	s.Require().Equal(http.StatusCreated, w.Code)

	w, page := s.list("/admin/audit-logs?area=lessons&per_page=1")
	s.Equal(http.StatusOK, w.Code)
	s.Len(page.Data, 1)
	s.Require().NotNil(page.Meta)
	s.Equal(int64(2), page.Meta.Total)
	s.Equal(1, page.Meta.PerPage)
	s.Equal(1, page.Meta.Page)

	w, resp := s.admin(http.MethodGet, "/admin/audit-logs?sort_by=user_agent", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(resp.Errors, "sort_by")

	w, resp = s.admin(http.MethodGet, "/admin/audit-logs/1", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("create", resp.Data["action"])
	s.Equal("admin-api-test", resp.Data["user_agent"])

	w, _ = s.admin(http.MethodGet, "/admin/audit-logs/999", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, resp = s.admin(http.MethodGet, "/admin/audit-logs/summary", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(float64(3), resp.Data["total"])
}

func (s *AdminAPISuite) TestAuditLogExport() {
	s.createLesson("Export me")
	today := time.Now().UTC()
	start := today.AddDate(0, 0, -1).Format("2006-01-02")
	end := today.AddDate(0, 0, 1).Format("2006-01-02")

	w := s.do(http.MethodGet, fmt.Sprintf("/admin/audit-logs/export?start_date=%s&end_date=%s", start, end), s.adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("text/csv", w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), fmt.Sprintf("audit_logs_%s_%s.csv", start, end))

	rows, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("Performed At", rows[0][7])
	s.Equal("1", rows[1][1])

	w = s.do(http.MethodGet, fmt.Sprintf("/admin/audit-logs/export?format=json&start_date=%s&end_date=%s", start, end), s.adminToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.True(strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))

	w = s.do(http.MethodGet, "/admin/audit-logs/export?start_date="+start, s.adminToken, nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/admin/audit-logs/export?start_date=2020-01-01&end_date=2021-03-01", s.adminToken, nil)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/admin/audit-logs/export?start_date=2021-03-01&end_date=2021-01-01", s.adminToken, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/admin/audit-logs/export?start_date=2020-01-01&end_date=2020-01-31", s.adminToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *AdminAPISuite) TestUnknownContentType() {
	w := s.do(http.MethodPut, "/admin/podcasts/1", s.adminToken, map[string]interface{}{"title": "x"})
	s.Equal(http.StatusNotFound, w.Code)
}
