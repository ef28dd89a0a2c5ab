package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/services"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewPagination_MiddlePage(t *testing.T) {
	p := NewPagination(2, 10, 10, 35)

	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, int64(35), p.TotalCount)
	assert.Equal(t, int64(4), p.TotalPage)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 10, p.CurrentPageCount)
	assert.Equal(t, 3, *p.NextPage)
	assert.Equal(t, 1, *p.PreviousPage)
}

func TestNewPagination_LastPage(t *testing.T) {
	p := NewPagination(4, 10, 5, 35)

	assert.Nil(t, p.NextPage)
	assert.Equal(t, 3, *p.PreviousPage)
	assert.Equal(t, 5, p.CurrentPageCount)
}

func TestNewPagination_FirstPage(t *testing.T) {
	p := NewPagination(1, 10, 10, 35)

	assert.Equal(t, 2, *p.NextPage)
	assert.Nil(t, p.PreviousPage)
}

func TestNewPagination_EmptyResult(t *testing.T) {
	p := NewPagination(1, 10, 0, 0)

	assert.Equal(t, int64(0), p.TotalPage)
	assert.Nil(t, p.NextPage)
	assert.Nil(t, p.PreviousPage)
}

func TestNewPagination_SerializesNullNextPage(t *testing.T) {
	p := NewPagination(1, 10, 3, 3)

	raw, err := json.Marshal(p)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["next_page"])
	assert.Nil(t, decoded["previous_page"])
	assert.Equal(t, float64(1), decoded["total_page"])
}

func recordResponse(fn func(c *gin.Context)) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRespondSuccess_Envelope(t *testing.T) {
	w, body := recordResponse(func(c *gin.Context) {
		respondSuccess(c, http.StatusCreated, "Investor created", gin.H{"id": 1})
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Investor created", body["message"])
	assert.NotNil(t, body["data"])
}

func TestRespondList_IncludesPagination(t *testing.T) {
	w, body := recordResponse(func(c *gin.Context) {
		respondList(c, "Investors retrieved", []string{}, NewPagination(1, 10, 0, 0))
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "pagination")
}

func TestRespondServiceError_ValidationError(t *testing.T) {
	err := services.NewValidationError().Add("paid_date", "must be on or after the due date")

	w, body := recordResponse(func(c *gin.Context) {
		respondServiceError(c, err)
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Validation failed", body["message"])

	fields := body["errors"].(map[string]interface{})
	assert.Contains(t, fields, "paid_date")
}

func TestRespondServiceError_NotFound(t *testing.T) {
	for _, err := range []error{services.ErrNotFound, gorm.ErrRecordNotFound} {
		w, body := recordResponse(func(c *gin.Context) {
			respondServiceError(c, err)
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Record not found", body["message"])
	}
}

func TestRespondServiceError_Unauthorized(t *testing.T) {
	w, _ := recordResponse(func(c *gin.Context) {
		respondServiceError(c, services.ErrUnauthorized)
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRespondServiceError_Unknown(t *testing.T) {
	w, body := recordResponse(func(c *gin.Context) {
		respondServiceError(c, errors.New("database connection lost"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "database connection lost", body["message"])
}
