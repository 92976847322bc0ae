package notification

import (
	"embed"
	"html/template"
	"strconv"
	"strings"

	"umbrella-reminder/internal/domain/entity"
	"umbrella-reminder/internal/domain/gateway/mail"
)

const (
	subjectPrefix = "☂ Weather Update for "

	RainAlert  = "Bring your umbrella, it’s rainy today!"
	SunnyAlert = "No umbrella needed, enjoy the sunshine!"
)

//go:embed templates/weather_email.html
var templates embed.FS

var weatherEmail = template.Must(template.ParseFS(templates, "templates/weather_email.html"))

type weatherEmailData struct {
	City        string
	Condition   string
	Temperature string
	Description string
	IsRain      bool
}

// Compose renders the weather email for one recipient. The rain branch depends only on snapshot.IsRain.
// From is left empty for the caller to fill from configuration.
func Compose(to string, snapshot entity.WeatherSnapshot, city string) mail.Message {
	var body strings.Builder
	_ = weatherEmail.Execute(&body, weatherEmailData{
		City:        city,
		Condition:   snapshot.Condition,
		Temperature: strconv.FormatFloat(snapshot.Temperature, 'f', -1, 64),
		Description: snapshot.Description,
		IsRain:      snapshot.IsRain,
	})

	return mail.Message{
		To:      to,
		Subject: subjectPrefix + city,
		HTML:    body.String(),
	}
}
