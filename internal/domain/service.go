package domain

import "strings"

// ServiceTypeAll is the catalog filter value meaning no type restriction
const ServiceTypeAll = "All"

// Service is a bookable place with a queue
type Service struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	WaitMinutes int     `json:"wait_minutes"`
	Position    int     `json:"position"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// DefaultCatalog returns the demo catalog
func DefaultCatalog() []Service {
	return []Service{
		{ID: "hsp-1", Type: "Hospital", Name: "CityCare Hospital", Location: "Downtown", WaitMinutes: 38, Position: 12, Lat: 37.78, Lng: -122.41},
		{ID: "sal-1", Type: "Salon", Name: "BlueWave Salon", Location: "Market St.", WaitMinutes: 18, Position: 5, Lat: 37.784, Lng: -122.406},
		{ID: "bnk-1", Type: "Bank", Name: "SecureBank", Location: "Union Sq.", WaitMinutes: 25, Position: 8, Lat: 37.787, Lng: -122.42},
		{ID: "dmv-1", Type: "DMV", Name: "DMV Center", Location: "Civic Center", WaitMinutes: 52, Position: 20, Lat: 37.779, Lng: -122.416},
	}
}

// Validate validates the service entry
func (s *Service) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrInvalidServiceReference
	}
	if s.WaitMinutes < 0 || s.Position < 0 {
		return ErrInvalidBaseline
	}
	return nil
}

// Matches reports whether the service matches a free-text query and type filter.
// The query is a case-insensitive substring of name or type. An empty type or
// ServiceTypeAll disables the type filter.
func (s *Service) Matches(query, serviceType string) bool {
	if serviceType != "" && serviceType != ServiceTypeAll && s.Type != serviceType {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Type), q)
}
