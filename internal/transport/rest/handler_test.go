package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/productmng/product-service/internal/domain"
	perrors "github.com/productmng/product-service/internal/errors"
	"github.com/productmng/product-service/pkg/web"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductService is a mock implementation of the ProductService interface
type mockProductService struct {
	product  *domain.Product
	products []domain.Product
	err      error

	changePriceCalls int
}

func (m *mockProductService) Create(_ context.Context, _ domain.ProductDraft) (*domain.Product, error) {
	return m.product, m.err
}

func (m *mockProductService) FindByID(_ context.Context, _ int64) (*domain.Product, error) {
	return m.product, m.err
}

func (m *mockProductService) FindAll(_ context.Context) ([]domain.Product, error) {
	return m.products, m.err
}

func (m *mockProductService) ChangePrice(_ context.Context, _ int64, _ decimal.Decimal) (*domain.Product, error) {
	m.changePriceCalls++
	return m.product, m.err
}

func (m *mockProductService) Delete(_ context.Context, _ int64) error {
	return m.err
}

func testHandler(svc *mockProductService) *Handler {
	return NewHandler(svc, slog.New(slog.DiscardHandler))
}

func decodeEnvelope(t *testing.T, body string) web.ErrorResponse {
	t.Helper()
	var envelope web.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	return envelope
}

func sampleProduct() *domain.Product {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Product{
		ID:          1,
		Name:        "Steak",
		Description: "Dry aged",
		Price:       decimal.RequireFromString("1000.00"),
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
}

func Test_Handler_FindByID(t *testing.T) {
	testCases := []struct {
		name            string
		mockService     *mockProductService
		productID       string
		expectedCode    int
		expectedMessage string
	}{
		{
			name:         "Success - product found",
			mockService:  &mockProductService{product: sampleProduct()},
			productID:    "1",
			expectedCode: http.StatusOK,
		},
		{
			name:            "Error - product not found",
			mockService:     &mockProductService{err: fmt.Errorf("%w with id: 999", perrors.ErrProductNotFound)},
			productID:       "999",
			expectedCode:    http.StatusNotFound,
			expectedMessage: "product not found with id: 999",
		},
		{
			name:            "Error - invalid id",
			mockService:     &mockProductService{},
			productID:       "abc",
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Invalid ID: abc",
		},
		{
			name:            "Error - unexpected service failure",
			mockService:     &mockProductService{err: fmt.Errorf("store exploded")},
			productID:       "2",
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := testHandler(tc.mockService)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+tc.productID, nil)
			req.SetPathValue("id", tc.productID)
			rr := httptest.NewRecorder()

			// when
			handler.FindByID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedMessage != "" {
				envelope := decodeEnvelope(t, rr.Body.String())
				assert.Equal(t, tc.expectedCode, envelope.Status)
				assert.Equal(t, http.StatusText(tc.expectedCode), envelope.Error)
				assert.Equal(t, tc.expectedMessage, envelope.Message)
				assert.Equal(t, "/api/v1/products/"+tc.productID, envelope.Path)
				return
			}
			var response ProductResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Equal(t, int64(1), response.ID)
			assert.Equal(t, "Steak", response.Name)
			assert.True(t, decimal.RequireFromString("1000.00").Equal(response.Price))
		})
	}
}

func Test_Handler_Create(t *testing.T) {
	testCases := []struct {
		name            string
		mockService     *mockProductService
		body            string
		expectedCode    int
		expectedMessage string
	}{
		{
			name:         "Success - product created",
			mockService:  &mockProductService{product: sampleProduct()},
			body:         `{"name":"Steak","description":"Dry aged","price":1000.00}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:            "Error - blank name and non-positive price aggregated",
			mockService:     &mockProductService{},
			body:            `{"name":"   ","price":0}`,
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Product name must not be blank, Price value must be greater than 0",
		},
		{
			name:            "Error - name too long",
			mockService:     &mockProductService{},
			body:            fmt.Sprintf(`{"name":%q,"price":10}`, strings.Repeat("x", 256)),
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Maximum number of characters for product name is 255",
		},
		{
			name:            "Error - malformed body",
			mockService:     &mockProductService{},
			body:            `{"name":`,
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "Invalid request body",
		},
		{
			name:            "Error - duplicate name",
			mockService:     &mockProductService{err: perrors.ErrDuplicateProduct},
			body:            `{"name":"Steak","price":1000.00}`,
			expectedCode:    http.StatusConflict,
			expectedMessage: "Product with this name already exists",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := testHandler(tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			handler.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedMessage != "" {
				envelope := decodeEnvelope(t, rr.Body.String())
				assert.Equal(t, tc.expectedMessage, envelope.Message)
				assert.Equal(t, "/api/v1/products", envelope.Path)
				return
			}
			var response ProductResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Equal(t, int64(1), response.ID)
			assert.Equal(t, int64(0), response.Version)
		})
	}
}

func Test_Handler_ChangePrice(t *testing.T) {
	repriced := sampleProduct()
	repriced.Price = decimal.RequireFromString("100.00")
	repriced.Version = 1

	testCases := []struct {
		name             string
		mockService      *mockProductService
		body             string
		expectedCode     int
		expectedMessage  string
		expectNoDelegate bool
	}{
		{
			name:         "Success - price changed",
			mockService:  &mockProductService{product: repriced},
			body:         `{"newPrice":100.00}`,
			expectedCode: http.StatusOK,
		},
		{
			name:             "Error - non-positive price stopped at the boundary",
			mockService:      &mockProductService{},
			body:             `{"newPrice":-1}`,
			expectedCode:     http.StatusBadRequest,
			expectedMessage:  "Price value must be greater than 0",
			expectNoDelegate: true,
		},
		{
			name:            "Error - concurrent modification",
			mockService:     &mockProductService{err: perrors.ErrConcurrentModification},
			body:            `{"newPrice":100.00}`,
			expectedCode:    http.StatusConflict,
			expectedMessage: "Product was modified concurrently. Please retry.",
		},
		{
			name:            "Error - product not found",
			mockService:     &mockProductService{err: fmt.Errorf("%w with id: 1", perrors.ErrProductNotFound)},
			body:            `{"newPrice":100.00}`,
			expectedCode:    http.StatusNotFound,
			expectedMessage: "product not found with id: 1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := testHandler(tc.mockService)
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/products/1/price", strings.NewReader(tc.body))
			req.SetPathValue("id", "1")
			rr := httptest.NewRecorder()

			// when
			handler.ChangePrice(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectNoDelegate {
				assert.Zero(t, tc.mockService.changePriceCalls, "invalid price must not reach the service")
			}
			if tc.expectedMessage != "" {
				envelope := decodeEnvelope(t, rr.Body.String())
				assert.Equal(t, tc.expectedMessage, envelope.Message)
				return
			}
			var response ProductResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.True(t, decimal.RequireFromString("100.00").Equal(response.Price))
			assert.Equal(t, int64(1), response.Version)
		})
	}
}

func Test_Handler_DeleteByID(t *testing.T) {
	testCases := []struct {
		name            string
		mockService     *mockProductService
		expectedCode    int
		expectedMessage string
	}{
		{
			name:         "Success - product deleted",
			mockService:  &mockProductService{},
			expectedCode: http.StatusNoContent,
		},
		{
			name:            "Error - product not found",
			mockService:     &mockProductService{err: fmt.Errorf("%w with id: 1", perrors.ErrProductNotFound)},
			expectedCode:    http.StatusNotFound,
			expectedMessage: "product not found with id: 1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			handler := testHandler(tc.mockService)
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/1", nil)
			req.SetPathValue("id", "1")
			rr := httptest.NewRecorder()

			// when
			handler.DeleteByID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedMessage != "" {
				envelope := decodeEnvelope(t, rr.Body.String())
				assert.Equal(t, tc.expectedMessage, envelope.Message)
			}
		})
	}
}

func Test_Handler_FindAll(t *testing.T) {
	// given
	handler := testHandler(&mockProductService{products: []domain.Product{*sampleProduct()}})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rr := httptest.NewRecorder()

	// when
	handler.FindAll(rr, req)

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	var responses []ProductResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &responses))
	require.Len(t, responses, 1)
	assert.Equal(t, "Steak", responses[0].Name)
}
