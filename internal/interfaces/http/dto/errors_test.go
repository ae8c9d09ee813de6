package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found", "NOT_FOUND", http.StatusNotFound},
		{"duplicate container", "DUPLICATE_CONTAINER", http.StatusConflict},
		{"duplicate booking", "DUPLICATE_BOOKING", http.StatusConflict},
		{"optimistic lock", "OPTIMISTIC_LOCK_ERROR", http.StatusConflict},
		{"check digit mismatch", "CHECK_DIGIT_MISMATCH", http.StatusBadRequest},
		{"structural validation", "STRUCTURAL_VALIDATION", http.StatusBadRequest},
		{"invalid state", "INVALID_STATE", http.StatusUnprocessableEntity},
		{"exceeds balance", "EXCEEDS_BALANCE", http.StatusUnprocessableEntity},
		{"empty invoice", "EMPTY_INVOICE", http.StatusUnprocessableEntity},
		{"configuration error", "CONFIGURATION_ERROR", http.StatusInternalServerError},
		{"rate limited", ErrCodeRateLimited, http.StatusTooManyRequests},
		{"unlisted INVALID code falls to 400", "INVALID_TAX_RATE", http.StatusBadRequest},
		{"unknown code falls to 500", "SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a", "b"}, 5, 1, 2)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(5), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages, "partial last page counts")
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Invoice not found", "req-123")

	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestListRequestToFilter(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		filter := ListRequest{}.ToFilter()
		assert.Equal(t, 1, filter.Page)
		assert.Equal(t, 20, filter.PageSize)
		assert.Equal(t, "created_at", filter.OrderBy)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		filter := ListRequest{Page: 3, PageSize: 50, OrderBy: "due_date", OrderDir: "asc", Search: "INV-"}.ToFilter()
		assert.Equal(t, 3, filter.Page)
		assert.Equal(t, 50, filter.PageSize)
		assert.Equal(t, "due_date", filter.OrderBy)
		assert.Equal(t, "asc", filter.OrderDir)
		assert.Equal(t, "INV-", filter.Search)
	})
}
