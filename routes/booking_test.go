package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func postJSON(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", uint(1))
	return c, w
}

func TestCreateBooking_RejectsNegativeAmount(t *testing.T) {
	c, w := postJSON(t, `{
		"service_name": "Basic Wash",
		"vehicle_type": "hatchback",
		"preferred_date_time": "2026-09-01 10:00",
		"total_amount": -100,
		"payment_method": "pay_later"
	}`)

	createBooking(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Amount must be positive")
}

func TestCreateBooking_RejectsUnknownPaymentMethod(t *testing.T) {
	c, w := postJSON(t, `{
		"service_name": "Basic Wash",
		"vehicle_type": "hatchback",
		"preferred_date_time": "2026-09-01 10:00",
		"total_amount": 299,
		"payment_method": "cheque"
	}`)

	createBooking(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid payment method")
}
