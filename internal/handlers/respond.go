package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/services"
	"gorm.io/gorm"
)

// Pagination carries list paging metadata in every list envelope
type Pagination struct {
	PerPage          int   `json:"per_page"`
	TotalCount       int64 `json:"total_count"`
	TotalPage        int64 `json:"total_page"`
	CurrentPage      int   `json:"current_page"`
	CurrentPageCount int   `json:"current_page_count"`
	NextPage         *int  `json:"next_page"`
	PreviousPage     *int  `json:"previous_page"`
}

// NewPagination computes paging metadata for a list result
func NewPagination(page, perPage, currentCount int, total int64) *Pagination {
	if perPage < 1 {
		perPage = 1
	}
	totalPage := (total + int64(perPage) - 1) / int64(perPage)

	p := &Pagination{
		PerPage:          perPage,
		TotalCount:       total,
		TotalPage:        totalPage,
		CurrentPage:      page,
		CurrentPageCount: currentCount,
	}
	if int64(page) < totalPage {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.PreviousPage = &prev
	}
	return p
}

func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func respondList(c *gin.Context, message string, data interface{}, pagination *Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    message,
		"data":       data,
		"pagination": pagination,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func respondValidation(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

// respondServiceError maps service layer errors onto the error envelope
func respondServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		respondValidation(c, ve.Fields)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "Record not found")
	case errors.Is(err, services.ErrUnauthorized):
		respondError(c, http.StatusForbidden, "Not allowed")
	case errors.Is(err, services.ErrInvalidPassword):
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrDuplicate):
		respondError(c, http.StatusUnprocessableEntity, "Record already exists")
	case errors.Is(err, services.ErrInvalidState):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}
