package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"github.com/rolinkstone/new-talawang-sub001/internal/repository"
	"github.com/rolinkstone/new-talawang-sub001/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// principalHolder lets a test swap the authenticated principal per request
type principalHolder struct {
	principal *auth.Principal
}

func (h *principalHolder) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.principal == nil {
			Error(c, http.StatusUnauthorized, "unauthorized", "")
			c.Abort()
			return
		}
		auth.SetPrincipal(c, h.principal)
		c.Next()
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *principalHolder, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.KegiatanModel{},
		&model.NominatifPegawaiModel{},
		&model.RincianBiayaModel{},
		&model.AuditLogModel{},
	))

	holder := &principalHolder{principal: &auth.Principal{
		ID: "user-1", Username: "budi", Name: "Budi Santoso", Role: auth.RoleRegular,
	}}

	kegiatanSvc := service.NewKegiatanService(db, nil, nil)
	searchSvc := service.NewSearchService(db)
	kegiatanCtrl := NewKegiatanController(kegiatanSvc)
	searchCtrl := NewSearchController(searchSvc)

	router := gin.New()
	router.Use(I18nMiddleware())
	v1 := router.Group("/api/v1", holder.middleware())
	{
		v1.POST("/kegiatan", kegiatanCtrl.Create)
		v1.GET("/kegiatan", kegiatanCtrl.List)
		v1.GET("/kegiatan/:id", kegiatanCtrl.Get)
		v1.PUT("/kegiatan/:id/cancel", kegiatanCtrl.Cancel)
		v1.POST("/kegiatan/:id/approve", kegiatanCtrl.Approve)
		v1.GET("/search", searchCtrl.Search)
		v1.GET("/search/stats", searchCtrl.Stats)
	}
	return router, holder, db
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateKegiatanEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/kegiatan", gin.H{
		"nama_kegiatan": "Rapat Koordinasi",
		"mak":           "524111",
		"lokasi":        "Sampit",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, string(model.StatusDiajukan), data["status"])
	assert.Equal(t, "Budi Santoso", data["nama_pengaju"])
}

func TestCreateKegiatanEndpointMissingName(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/kegiatan", gin.H{"lokasi": "Sampit"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetKegiatanInvalidID(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, id := range []string{"abc", "0", "-1"} {
		w := doJSON(router, http.MethodGet, "/api/v1/kegiatan/"+id, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
	}
}

func TestGetKegiatanNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/kegiatan/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListKegiatanInvalidQueryParams(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/kegiatan?page=0",
		"/api/v1/kegiatan?page_size=abc",
		"/api/v1/kegiatan?status=draft",
		"/api/v1/kegiatan?sort_by=nama;drop",
		"/api/v1/kegiatan?sort_order=sideways",
	} {
		w := doJSON(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %q", path)
	}
}

func TestListKegiatanPagination(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for i := 0; i < 3; i++ {
		w := doJSON(router, http.MethodPost, "/api/v1/kegiatan", gin.H{"nama_kegiatan": "Kegiatan"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/kegiatan?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPage)
	assert.Len(t, resp.Data.([]interface{}), 2)
}

func TestCancelEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/kegiatan", gin.H{"nama_kegiatan": "Kegiatan"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/kegiatan/1/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// cancelling again reports the terminal state as a client error
	w = doJSON(router, http.MethodPut, "/api/v1/kegiatan/1/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "kegiatan already cancelled", resp.Message)
}

func TestApproveEndpointForbiddenForRegular(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/kegiatan", gin.H{"nama_kegiatan": "Kegiatan"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/kegiatan/1/approve", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateAuditRowCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.KegiatanModel{},
		&model.NominatifPegawaiModel{},
		&model.RincianBiayaModel{},
		&model.AuditLogModel{},
	))

	holder := &principalHolder{principal: &auth.Principal{
		ID: "user-1", Username: "budi", Name: "Budi Santoso", Role: auth.RoleRegular,
	}}
	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db))
	ctrl := NewKegiatanController(service.NewKegiatanService(db, auditSvc, nil))

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.POST("/api/v1/kegiatan", holder.middleware(), ctrl.Create)

	body := bytes.NewBufferString(`{"nama_kegiatan":"Rapat Koordinasi"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kegiatan", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-12345")
	req.Header.Set("User-Agent", "talawang-web/1.0")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var row model.AuditLogModel
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, "req-12345", row.RequestID)
	assert.Equal(t, "talawang-web/1.0", row.UserAgent)
	assert.NotEmpty(t, row.IP)
}

func TestEndpointsRequirePrincipal(t *testing.T) {
	router, holder, _ := newTestRouter(t)
	holder.principal = nil

	w := doJSON(router, http.MethodGet, "/api/v1/kegiatan", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
