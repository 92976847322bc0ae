package external

// OpenWeatherResponse is the subset of the OpenWeatherMap current weather payload the service reads
type OpenWeatherResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []OpenWeatherCondition `json:"weather"`
}

type OpenWeatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// OpenWeatherErrorResponse is returned by OpenWeatherMap on failures, e.g. {"cod":"404","message":"city not found"}
type OpenWeatherErrorResponse struct {
	Message string `json:"message"`
}
