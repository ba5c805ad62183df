package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"github.com/rolinkstone/new-talawang-sub001/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedKegiatanRow(t *testing.T, db *gorm.DB, k *model.KegiatanModel) {
	now := time.Now()
	k.CreatedAt = now
	k.UpdatedAt = now
	require.NoError(t, db.Create(k).Error)
}

func TestSearchEndpointEmptyTerm(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/search?q=", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpointInvalidLimit(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/search?q=rapat&limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/search?q=rapat&limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpointMeta(t *testing.T) {
	router, holder, db := newTestRouter(t)
	holder.principal = &auth.Principal{ID: "a1", Username: "admin", Role: auth.RoleAdmin}

	seedKegiatanRow(t, db, &model.KegiatanModel{
		NamaKegiatan: "Rapat Koordinasi", Status: model.StatusDisetujuiPPK, UserID: "u1",
	})

	w := doJSON(router, http.MethodGet, "/api/v1/search?q=rapat&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Meta.Count)
	assert.Equal(t, 10, resp.Meta.Limit)
	assert.Equal(t, "rapat", resp.Meta.SearchTerm)
	assert.Equal(t, service.FilterTypePPKID, resp.Meta.FilterType)
	assert.NotEmpty(t, resp.Meta.StatusFilter)
	assert.Len(t, resp.Data.([]interface{}), 1)
}

func TestSearchEndpointFallbackMessage(t *testing.T) {
	router, holder, db := newTestRouter(t)
	holder.principal = &auth.Principal{ID: "ppk-1", Username: "siti", Name: "Siti Rahma", Role: auth.RolePPK}

	// legacy row carries the approver name but no id
	seedKegiatanRow(t, db, &model.KegiatanModel{
		NamaKegiatan: "Survey Lama", Status: model.StatusDisetujuiPPK,
		UserID: "u1", NamaPPK: "Siti Rahma",
	})

	w := doJSON(router, http.MethodGet, "/api/v1/search?q=survey", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.FilterTypePPKNamaFallback, resp.Meta.FilterType)
	assert.NotEmpty(t, resp.Meta.Message)
}

func TestStatsEndpoint(t *testing.T) {
	router, holder, db := newTestRouter(t)
	holder.principal = &auth.Principal{ID: "a1", Username: "admin", Role: auth.RoleAdmin}

	seedKegiatanRow(t, db, &model.KegiatanModel{NamaKegiatan: "A", Status: model.StatusDiajukan, UserID: "u1"})
	seedKegiatanRow(t, db, &model.KegiatanModel{NamaKegiatan: "B", Status: model.StatusSelesai, UserID: "u2"})

	w := doJSON(router, http.MethodGet, "/api/v1/search/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["total_kegiatan"])
	assert.Equal(t, float64(1), data["total_selesai"])
}
