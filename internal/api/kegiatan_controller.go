package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"github.com/rolinkstone/new-talawang-sub001/internal/repository"
	"github.com/rolinkstone/new-talawang-sub001/internal/service"
	"github.com/rolinkstone/new-talawang-sub001/internal/utils"
)

// KegiatanController kegiatan lifecycle endpoints
type KegiatanController struct {
	kegiatanService service.KegiatanService
}

// NewKegiatanController creates a kegiatan controller
func NewKegiatanController(kegiatanService service.KegiatanService) *KegiatanController {
	return &KegiatanController{
		kegiatanService: kegiatanService,
	}
}

// Create POST /api/v1/kegiatan
func (c *KegiatanController) Create(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req service.CreateKegiatanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	kegiatan, err := c.kegiatanService.Create(ctx.Request.Context(), principal, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Created(ctx, kegiatan)
}

// Get GET /api/v1/kegiatan/:id
func (c *KegiatanController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	kegiatan, err := c.kegiatanService.Get(id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, kegiatan)
}

// List GET /api/v1/kegiatan
func (c *KegiatanController) List(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	filter := &repository.KegiatanFilter{
		Page:     1,
		PageSize: 20,
	}
	if page := ctx.Query("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			Error(ctx, http.StatusBadRequest, "invalid page", "page must be a positive integer")
			return
		}
		filter.Page = n
	}
	if pageSize := ctx.Query("page_size"); pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil || n < 1 {
			Error(ctx, http.StatusBadRequest, "invalid page_size", "page_size must be a positive integer")
			return
		}
		filter.PageSize = n
	}
	if status := ctx.Query("status"); status != "" {
		s := model.Status(status)
		if !s.IsValid() {
			Error(ctx, http.StatusBadRequest, "invalid status", "unknown status value")
			return
		}
		filter.Status = &s
	}
	if ppkID := ctx.Query("ppk_id"); ppkID != "" {
		filter.PPKID = &ppkID
	}
	if mak := ctx.Query("mak"); mak != "" {
		filter.MAK = &mak
	}
	if sortBy := ctx.Query("sort_by"); sortBy != "" {
		if err := utils.ValidateSortField(sortBy); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid sort_by", err.Error())
			return
		}
		filter.SortBy = sortBy
	}
	if sortOrder := ctx.Query("sort_order"); sortOrder != "" {
		if err := utils.ValidateSortOrder(sortOrder); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid sort_order", err.Error())
			return
		}
		filter.SortOrder = sortOrder
	}

	records, total, err := c.kegiatanService.List(principal, filter)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	totalPage := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	Paginated(ctx, records, PaginationInfo{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// Approve POST /api/v1/kegiatan/:id/approve
func (c *KegiatanController) Approve(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	kegiatan, err := c.kegiatanService.Approve(ctx.Request.Context(), principal, id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, kegiatan)
}

// Reject POST /api/v1/kegiatan/:id/reject
func (c *KegiatanController) Reject(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// body is optional; a bare reject carries no reason
	_ = ctx.ShouldBindJSON(&req)

	kegiatan, err := c.kegiatanService.Reject(ctx.Request.Context(), principal, id, req.Reason)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, kegiatan)
}

// Transfer POST /api/v1/kegiatan/:id/transfer
func (c *KegiatanController) Transfer(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req service.TransferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	kegiatan, err := c.kegiatanService.Transfer(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, kegiatan)
}

// Complete POST /api/v1/kegiatan/:id/complete
func (c *KegiatanController) Complete(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req service.CompleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	kegiatan, err := c.kegiatanService.Complete(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, kegiatan)
}

// Cancel PUT /api/v1/kegiatan/:id/cancel
func (c *KegiatanController) Cancel(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	result, err := c.kegiatanService.Cancel(ctx.Request.Context(), principal, id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, result)
}

// AddPegawai POST /api/v1/kegiatan/:id/pegawai
func (c *KegiatanController) AddPegawai(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req service.AddPegawaiRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := c.kegiatanService.AddPegawai(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Created(ctx, entry)
}

// ListPegawai GET /api/v1/kegiatan/:id/pegawai
func (c *KegiatanController) ListPegawai(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	entries, err := c.kegiatanService.ListPegawai(id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, entries)
}

// DeletePegawai DELETE /api/v1/kegiatan/:id/pegawai/:pegawaiId
func (c *KegiatanController) DeletePegawai(ctx *gin.Context) {
	principal, ok := auth.GetPrincipal(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthorized", "")
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	pegawaiID, err := strconv.Atoi(ctx.Param("pegawaiId"))
	if err != nil || pegawaiID < 1 {
		Error(ctx, http.StatusBadRequest, "invalid pegawai id", "pegawai id must be a positive integer")
		return
	}

	if err := c.kegiatanService.DeletePegawai(ctx.Request.Context(), principal, id, uint(pegawaiID)); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// parseID parses the :id path parameter; non-numeric ids are a client
// error, never a lookup.
func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		Error(ctx, http.StatusBadRequest, "invalid id", "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
