package service

import (
	"context"
	"testing"

	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(list []dto.ServiceResponse) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func TestCatalogService_ListServices(t *testing.T) {
	catalog, err := NewCatalogService(nil)
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name  string
		query *dto.ListServicesQuery
		want  []string
	}{
		{"no filter", nil, []string{"hsp-1", "sal-1", "bnk-1", "dmv-1"}},
		{"all type", &dto.ListServicesQuery{Type: "All"}, []string{"hsp-1", "sal-1", "bnk-1", "dmv-1"}},
		{"name is case-insensitive", &dto.ListServicesQuery{Query: "bluewave"}, []string{"sal-1"}},
		{"type text matches", &dto.ListServicesQuery{Query: "dmv"}, []string{"dmv-1"}},
		{"exact type filter", &dto.ListServicesQuery{Type: "Bank"}, []string{"bnk-1"}},
		{"type filter is case-sensitive", &dto.ListServicesQuery{Type: "bank"}, []string{}},
		{"query and type", &dto.ListServicesQuery{Query: "center", Type: "Hospital"}, []string{}},
		{"no match", &dto.ListServicesQuery{Query: "pharmacy"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(catalog.ListServices(ctx, tt.query)))
		})
	}
}

func TestCatalogService_GetService(t *testing.T) {
	catalog, err := NewCatalogService(nil)
	require.NoError(t, err)

	svc, err := catalog.GetService(context.Background(), "dmv-1")
	require.NoError(t, err)
	assert.Equal(t, "DMV Center", svc.Name)
	assert.Equal(t, 20, svc.Position)
	assert.Equal(t, 52, svc.WaitMinutes)

	_, err = catalog.GetService(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidServiceReference)
}

func TestCatalogService_ListTypes(t *testing.T) {
	catalog, err := NewCatalogService([]domain.Service{
		{ID: "a", Type: "Bank"},
		{ID: "b", Type: "Salon"},
		{ID: "c", Type: "Bank"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"All", "Bank", "Salon"}, catalog.ListTypes(context.Background()))
}

func TestNewCatalogService_Invalid(t *testing.T) {
	_, err := NewCatalogService([]domain.Service{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err)

	_, err = NewCatalogService([]domain.Service{{ID: "a", WaitMinutes: -1}})
	assert.ErrorIs(t, err, domain.ErrInvalidBaseline)
}

func TestCatalogService_ServicesIsACopy(t *testing.T) {
	catalog, err := NewCatalogService(nil)
	require.NoError(t, err)

	list := catalog.Services()
	list[0].Name = "changed"

	svc, err := catalog.Lookup(list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "CityCare Hospital", svc.Name)
}
