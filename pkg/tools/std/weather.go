package std

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
	"github.com/ilkoid/poncho-chat/pkg/webclient"
)

// WeatherTool — текущая погода в городе через open-meteo.
//
// Два запроса: геокодинг города → координаты, затем прогноз
// с текущими значениями (current=...).
type WeatherTool struct {
	client       *webclient.Client
	geocodingURL string
	forecastURL  string
}

// NewWeatherTool создает инструмент погоды.
func NewWeatherTool(c *webclient.Client, cfg config.WeatherConfig) *WeatherTool {
	cfg = cfg.GetDefaults()
	return &WeatherTool{client: c, geocodingURL: cfg.GeocodingURL, forecastURL: cfg.ForecastURL}
}

// Definition возвращает определение инструмента для function calling.
func (t *WeatherTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "find_the_current_forecast_for_city",
		Description: "Finds the current weather forecast for a city.",
		Parameters:  tools.ObjectSchema(map[string]string{"city": "string"}, "city"),
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Time          string  `json:"time"`
		Temperature   float64 `json:"temperature_2m"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
	} `json:"current"`
}

// Execute выполняет инструмент согласно контракту "Raw In, String Out".
func (t *WeatherTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		City string `json:"city"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil || strings.TrimSpace(args.City) == "" {
		utils.Warn("weather: invalid arguments", "args", argsJSON)
		return WeatherApology, nil
	}

	report, err := t.lookup(ctx, strings.TrimSpace(args.City))
	if err != nil {
		utils.Error("weather lookup failed", "city", args.City, "type", webclient.ClassifyError(err).String(), "error", err)
		return WeatherApology, nil
	}
	return report, nil
}

func (t *WeatherTool) lookup(ctx context.Context, city string) (string, error) {
	var geo geocodingResponse
	params := url.Values{}
	params.Set("name", city)
	params.Set("count", "1")
	params.Set("format", "json")
	if err := t.client.GetJSON(ctx, t.geocodingURL, params, &geo); err != nil {
		return "", fmt.Errorf("geocoding: %w", err)
	}
	if len(geo.Results) == 0 {
		return "", fmt.Errorf("geocoding: city %q not found", city)
	}
	place := geo.Results[0]

	var fc forecastResponse
	params = url.Values{}
	params.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', 4, 64))
	params.Set("current", "temperature_2m,wind_speed_10m,precipitation,weather_code")
	params.Set("temperature_unit", "celsius")
	if err := t.client.GetJSON(ctx, t.forecastURL, params, &fc); err != nil {
		return "", fmt.Errorf("forecast: %w", err)
	}

	name := place.Name
	if place.Country != "" {
		name += ", " + place.Country
	}
	return fmt.Sprintf("Current weather in %s: %.1f°C, %s, wind %.1f km/h, precipitation %.1f mm (as of %s)",
		name, fc.Current.Temperature, describeWeatherCode(fc.Current.WeatherCode),
		fc.Current.WindSpeed, fc.Current.Precipitation, fc.Current.Time), nil
}

// describeWeatherCode переводит WMO код погоды в текст.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown conditions"
	}
}
