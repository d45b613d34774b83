package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenyaconnect/storefront/models"
	"github.com/kenyaconnect/storefront/notify"
)

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	ErrorResponse(rec, http.StatusUnprocessableEntity, "Please fill in all required fields",
		notify.Notice{Severity: notify.Error, Title: "Please fill in all required fields"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body struct {
		Error   string          `json:"error"`
		Notices []notify.Notice `json:"notices"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Please fill in all required fields", body.Error)
	assert.Len(t, body.Notices, 1)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var v struct {
		Quantity int `json:"quantity"`
	}
	req := httptest.NewRequest("PUT", "/", strings.NewReader(`{"quantity":2,"colour":"red"}`))

	assert.Error(t, DecodeJSON(req, &v))
}

func TestNewProduct(t *testing.T) {
	p := &models.Product{
		ID:     "1",
		Name:   "Maasai Beaded Necklace",
		Price:  3500,
		Images: []string{"a.jpg", "b.jpg"},
		Rating: decimal.RequireFromString("4.8"),
	}

	v := NewProduct(p)

	assert.Equal(t, "KES 3,500", v.FormattedPrice)
	assert.Equal(t, "a.jpg", v.Image)
	assert.Equal(t, 4.8, v.Rating)
}
