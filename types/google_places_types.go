package types

// Wire types for the Google Places nearby-search response.

type GooglePlacesResponse struct {
	HTMLAttributions []string            `json:"html_attributions"`
	NextPageToken    string              `json:"next_page_token"`
	Results          []GooglePlaceResult `json:"results"`
	Status           string              `json:"status"`
	ErrorMessage     string              `json:"error_message,omitempty"`
}

type GooglePlaceResult struct {
	BusinessStatus   *string        `json:"business_status,omitempty"`
	Geometry         GoogleGeometry `json:"geometry"`
	Name             string         `json:"name"`
	PlaceID          string         `json:"place_id"`
	Rating           *float64       `json:"rating,omitempty"`
	Types            []string       `json:"types"`
	UserRatingsTotal *int           `json:"user_ratings_total,omitempty"`
	Vicinity         *string        `json:"vicinity,omitempty"`
	EditorialSummary *struct {
		Overview string `json:"overview"`
	} `json:"editorial_summary,omitempty"`
}

type GoogleGeometry struct {
	Location GoogleLocation `json:"location"`
}

type GoogleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
