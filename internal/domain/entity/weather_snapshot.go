package entity

import "strings"

// WeatherSnapshot is the current weather of one city, produced fresh for every dispatch.
type WeatherSnapshot struct {
	Temperature float64 `json:"temp"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	IsRain      bool    `json:"isRain"`
}

// NewWeatherSnapshot builds a snapshot, deriving IsRain from the condition label.
func NewWeatherSnapshot(temperature float64, condition, description string) WeatherSnapshot {
	return WeatherSnapshot{
		Temperature: temperature,
		Condition:   condition,
		Description: description,
		IsRain:      strings.Contains(strings.ToLower(condition), "rain"),
	}
}
