package domain

import (
	"strings"
	"testing"
)

func TestWeatherReport_Summary(t *testing.T) {
	r := &WeatherReport{
		City:        "Rome",
		Temperature: 21.5,
		FeelsLike:   20.9,
		Conditions:  "clear sky",
		Humidity:    40,
		WindSpeed:   3.2,
	}

	s := r.Summary()
	for _, want := range []string{"Rome", "21.5°C", "clear sky", "40%", "3.2 m/s"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary %q missing %q", s, want)
		}
	}
}
