package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCatalogTestRouter(handler *CatalogHandler) *gin.Engine {
	router := gin.New()

	services := router.Group("/api/v1/services")
	{
		services.GET("", handler.ListServices)
		services.GET("/types", handler.ListTypes)
		services.GET("/:id", handler.GetService)
	}

	return router
}

func TestCatalogHandler_ListServices_PassesFilters(t *testing.T) {
	mockService := new(MockCatalogService)
	router := setupCatalogTestRouter(NewCatalogHandler(mockService))

	mockService.On("ListServices", mock.Anything, &dto.ListServicesQuery{Query: "blue", Type: "Salon"}).
		Return([]dto.ServiceResponse{{ID: "sal-1", Name: "BlueWave Salon"}})

	w := doRequest(router, http.MethodGet, "/api/v1/services?q=blue&type=Salon", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, 1, env.Meta.Total)

	var got []dto.ServiceResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "sal-1", got[0].ID)
	mockService.AssertExpectations(t)
}

func TestCatalogHandler_ListTypes(t *testing.T) {
	mockService := new(MockCatalogService)
	router := setupCatalogTestRouter(NewCatalogHandler(mockService))

	mockService.On("ListTypes", mock.Anything).Return([]string{"All", "Hospital", "Salon"})

	w := doRequest(router, http.MethodGet, "/api/v1/services/types", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got dto.ServiceTypesResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, []string{"All", "Hospital", "Salon"}, got.Types)
}

func TestCatalogHandler_GetService(t *testing.T) {
	mockService := new(MockCatalogService)
	router := setupCatalogTestRouter(NewCatalogHandler(mockService))

	mockService.On("GetService", mock.Anything, "dmv-1").Return(&dto.ServiceResponse{ID: "dmv-1", Position: 20}, nil)
	mockService.On("GetService", mock.Anything, "nope").Return(nil, domain.ErrInvalidServiceReference)

	w := doRequest(router, http.MethodGet, "/api/v1/services/dmv-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/services/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeServiceNotFound, decode(t, w).Error.Code)
}
