package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	billingapp "github.com/drayage/backend/internal/application/billing"
	"github.com/drayage/backend/internal/domain/billing"
	"github.com/drayage/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTestMoney(t *testing.T, amount int64) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoney(decimal.NewFromInt(amount), valueobject.USD)
	require.NoError(t, err)
	return m
}

func testRateRules(t *testing.T) billing.RateRules {
	t.Helper()
	schedule := billing.TierSchedule{
		{FromDay: 6, ToDay: 10, RatePerDay: decimal.NewFromInt(25)},
		{FromDay: 11, ToDay: 0, RatePerDay: decimal.NewFromInt(35)},
	}
	return billing.RateRules{
		Detention: billing.DetentionConfig{
			FreeTimeMinutes:    120,
			GracePeriodMinutes: 15,
			RatePerHour:        mustTestMoney(t, 75),
			MaxDailyCharge:     mustTestMoney(t, 600),
		},
		PerDiem:   map[valueobject.ContainerSize]billing.TierSchedule{valueobject.Size40HC: schedule},
		Demurrage: map[valueobject.ContainerSize]billing.TierSchedule{valueobject.Size40HC: schedule},
	}
}

func setupChargeTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service, err := billingapp.NewChargeService(testRateRules(t))
	require.NoError(t, err)
	handler := NewChargeHandler(service)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func putJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPut, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChargeHandler_QuotePerDiem(t *testing.T) {
	t.Run("should quote per-diem for configured size", func(t *testing.T) {
		router := setupChargeTestRouter(t)

		w := postJSON(t, router, "/api/v1/billing/charges/per-diem/quote", TieredQuoteRequest{
			Size: "40HC",
			Days: 12,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["success"].(bool))

		data := response["data"].(map[string]interface{})
		assert.Equal(t, "PER_DIEM", data["charge_type"])
	})

	t.Run("should reject unknown size", func(t *testing.T) {
		router := setupChargeTestRouter(t)

		w := postJSON(t, router, "/api/v1/billing/charges/per-diem/quote", TieredQuoteRequest{
			Size: "53FT",
			Days: 3,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should surface missing schedule as server error", func(t *testing.T) {
		router := setupChargeTestRouter(t)

		// 20ST is a valid size but the test rules carry no schedule for it.
		w := postJSON(t, router, "/api/v1/billing/charges/per-diem/quote", TieredQuoteRequest{
			Size: "20ST",
			Days: 3,
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "CONFIGURATION_ERROR")
	})
}

func TestChargeHandler_QuoteDemurrage(t *testing.T) {
	router := setupChargeTestRouter(t)

	w := postJSON(t, router, "/api/v1/billing/charges/demurrage/quote", TieredQuoteRequest{
		Size: "40HC",
		Days: 8,
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "DEMURRAGE", data["charge_type"])
}

func TestChargeHandler_QuoteDetention(t *testing.T) {
	t.Run("should quote detention past the free window", func(t *testing.T) {
		router := setupChargeTestRouter(t)

		w := postJSON(t, router, "/api/v1/billing/charges/detention/quote", DetentionQuoteRequest{
			ActualMinutes: 255,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "DETENTION", data["charge_type"])
		// 255 minutes less 120 free and 15 grace leaves 120 billable.
		assert.Equal(t, float64(120), data["billable_minutes"])
	})

	t.Run("should quote zero within the free window", func(t *testing.T) {
		router := setupChargeTestRouter(t)

		w := postJSON(t, router, "/api/v1/billing/charges/detention/quote", DetentionQuoteRequest{
			ActualMinutes: 90,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "0", data["amount"])
	})
}
