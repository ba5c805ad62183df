package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response uniform response envelope
type Response struct {
	Code    int         `json:"code"`    // 0 on success, non-zero on failure
	Message string      `json:"message"` // response message
	Data    interface{} `json:"data"`    // payload
}

// ErrorResponse error envelope
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// PaginatedResponse list envelope with pagination info
type PaginatedResponse struct {
	Code       int            `json:"code"`
	Message    string         `json:"message"`
	Data       interface{}    `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// PaginationInfo page position and totals
type PaginationInfo struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"total_page"`
}

// SearchMeta metadata attached to search responses so clients can tell
// how the result set was scoped and filtered.
type SearchMeta struct {
	Count        int    `json:"count"`
	Limit        int    `json:"limit"`
	SearchTerm   string `json:"searchTerm"`
	FilterType   string `json:"filter_type"`
	StatusFilter string `json:"status_filter"`
	Message      string `json:"message,omitempty"`
}

// SearchResponse search envelope
type SearchResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Meta    SearchMeta  `json:"meta"`
}

// Success 200 response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error error response
func Error(c *gin.Context, code int, message string, detail string) {
	statusCode := http.StatusInternalServerError
	if code >= 400 && code < 600 {
		statusCode = code
	}

	c.JSON(statusCode, ErrorResponse{
		Code:    code,
		Message: message,
		Detail:  detail,
	})
}

// Paginated list response
func Paginated(c *gin.Context, data interface{}, pagination PaginationInfo) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Code:       0,
		Message:    "success",
		Data:       data,
		Pagination: pagination,
	})
}

// Search search response
func Search(c *gin.Context, data interface{}, meta SearchMeta) {
	c.JSON(http.StatusOK, SearchResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}
