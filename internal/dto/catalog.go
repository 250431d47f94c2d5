package dto

// ListServicesQuery represents catalog search parameters
type ListServicesQuery struct {
	Query string `form:"q"`
	Type  string `form:"type"`
}

// ServiceResponse represents a catalog entry
type ServiceResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	WaitMinutes int     `json:"wait_minutes"`
	Position    int     `json:"position"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// ServiceTypesResponse lists the type filter options
type ServiceTypesResponse struct {
	Types []string `json:"types"`
}
