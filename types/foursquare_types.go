package types

// Wire types for the Foursquare place search response.

type FoursquareSearchResponse struct {
	Results []FoursquarePlace `json:"results"`
}

type FoursquarePlace struct {
	FsqID       string               `json:"fsq_id"`
	Name        string               `json:"name"`
	Categories  []FoursquareCategory `json:"categories"`
	Geocodes    FoursquareGeocodes   `json:"geocodes"`
	Location    FoursquareLocation   `json:"location"`
	Distance    int                  `json:"distance"`
	Rating      float64              `json:"rating,omitempty"`
	Description string               `json:"description,omitempty"`
}

type FoursquareCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type FoursquareGeocodes struct {
	Main FoursquarePoint `json:"main"`
}

type FoursquarePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type FoursquareLocation struct {
	FormattedAddress string `json:"formatted_address"`
	Locality         string `json:"locality"`
	Region           string `json:"region"`
}
