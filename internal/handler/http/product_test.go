package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardhouse/storefront/internal/catalog"
	"github.com/cardhouse/storefront/internal/domain"
)

type mockCatalogAPI struct {
	mock.Mock
}

func (m *mockCatalogAPI) ProductByHandle(ctx context.Context, handle string) (*domain.Product, bool, error) {
	args := m.Called(ctx, handle)
	var product *domain.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*domain.Product)
	}
	return product, args.Bool(1), args.Error(2)
}

func setupProductRouter(api *mockCatalogAPI) *chi.Mux {
	svc := catalog.NewService(api, testLogger())
	handler := NewProductHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/add-ons", handler.GetAddOns)
		r.Get("/{handle}", handler.GetProduct)
	})
	return r
}

func sampleProduct(handle string, available bool) *domain.Product {
	return &domain.Product{
		ID:     "gid://product/" + handle,
		Title:  "Sample Product",
		Handle: handle,
		Variants: []domain.Variant{
			{
				ID:                "gid://variant/" + handle,
				Title:             "Default",
				AvailableForSale:  available,
				QuantityAvailable: 3,
				Price:             domain.Money{Amount: "4.99", CurrencyCode: "USD"},
			},
		},
	}
}

func TestGetProduct_Found(t *testing.T) {
	api := new(mockCatalogAPI)
	router := setupProductRouter(api)

	api.On("ProductByHandle", mock.Anything, "card-sleeves").
		Return(sampleProduct("card-sleeves", true), true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/card-sleeves", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	var product domain.Product
	require.NoError(t, json.Unmarshal(resp.Data, &product))
	assert.Equal(t, "card-sleeves", product.Handle)
	api.AssertExpectations(t)
}

func TestGetProduct_NotFound(t *testing.T) {
	api := new(mockCatalogAPI)
	router := setupProductRouter(api)

	api.On("ProductByHandle", mock.Anything, "missing").Return(nil, false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestGetAddOns_FiltersUnavailable(t *testing.T) {
	api := new(mockCatalogAPI)
	router := setupProductRouter(api)

	api.On("ProductByHandle", mock.Anything, "sleeves").
		Return(sampleProduct("sleeves", true), true, nil).Once()
	api.On("ProductByHandle", mock.Anything, "sold-out").
		Return(sampleProduct("sold-out", false), true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/add-ons?handles=sleeves,sold-out", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	var products []domain.Product
	require.NoError(t, json.Unmarshal(resp.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "sleeves", products[0].Handle)
}

func TestGetAddOns_RequiresHandles(t *testing.T) {
	router := setupProductRouter(new(mockCatalogAPI))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/add-ons", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
