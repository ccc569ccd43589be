package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kortschak/sun"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/catalog"
)

type SkyObject struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Constellation string  `json:"constellation"`
	Magnitude     float64 `json:"magnitude"`
	Visibility    string  `json:"visibility"`
	Description   string  `json:"description"`
}

type SkyReport struct {
	Location string      `json:"location,omitempty"`
	Sunset   *time.Time  `json:"sunset,omitempty"`
	Fallback bool        `json:"fallback"`
	Objects  []SkyObject `json:"objects"`
}

// Shown when no usable location is known.
var fallbackSky = []SkyObject{
	{Name: "Jupiter", Type: "Planet", Constellation: "Taurus", Magnitude: -2.5, Visibility: "Excellent", Description: "Bright and prominent in the evening sky"},
	{Name: "Mars", Type: "Planet", Constellation: "Gemini", Magnitude: 0.8, Visibility: "Good", Description: "Red planet visible in the early hours"},
	{Name: "Orion Nebula", Type: "Nebula", Constellation: "Orion", Magnitude: 4.0, Visibility: "Fair", Description: "Star-forming region visible with binoculars"},
	{Name: "Sirius", Type: "Star", Constellation: "Canis Major", Magnitude: -1.4, Visibility: "Excellent", Description: "Brightest star in the night sky"},
}

// Location is an optional observer position in decimal degrees.
type Location struct {
	Lat float64
	Lon float64
}

func (l *Location) valid() bool {
	return l != nil &&
		!math.IsNaN(l.Lat) && !math.IsNaN(l.Lon) &&
		l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// SkyTonight lists what is worth looking at from loc. Without a valid
// location the fixed fallback list is returned.
func SkyTonight(loc *Location, now time.Time) SkyReport {
	if !loc.valid() {
		return SkyReport{Fallback: true, Objects: append([]SkyObject(nil), fallbackSky...)}
	}

	report := SkyReport{Location: fmt.Sprintf("%.2f, %.2f", loc.Lat, loc.Lon)}
	if t, ok := nextSunset(loc, now); ok {
		report.Sunset = &t
	}

	seen := map[string]bool{}
	for _, o := range fallbackSky {
		if o.Type == "Planet" {
			report.Objects = append(report.Objects, o)
			seen[o.Name] = true
		}
	}
	var visible []SkyObject
	for _, c := range catalog.Objects() {
		if seen[c.Name] {
			continue
		}
		dec, ok := ParseDeclination(c.Coordinates.Dec)
		if !ok {
			continue
		}
		alt := maxAltitude(loc.Lat, dec)
		if alt <= 10 {
			continue
		}
		visible = append(visible, SkyObject{
			Name:          c.Name,
			Type:          c.Type,
			Constellation: c.Constellation,
			Magnitude:     c.Magnitude,
			Visibility:    rateVisibility(alt, c.Magnitude),
			Description:   c.Description,
		})
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Magnitude < visible[j].Magnitude })
	report.Objects = append(report.Objects, visible...)
	return report
}

// maxAltitude is the culmination altitude in degrees.
func maxAltitude(lat, dec float64) float64 {
	return 90 - math.Abs(lat-dec)
}

func rateVisibility(alt, mag float64) string {
	switch {
	case alt > 45 && mag < 2:
		return "Excellent"
	case alt > 30 && mag < 5:
		return "Good"
	default:
		return "Fair"
	}
}

func nextSunset(loc *Location, now time.Time) (time.Time, bool) {
	sched, err := sun.Parser{}.Parse(fmt.Sprintf("@sunset %v %v", loc.Lat, loc.Lon))
	if err != nil {
		return time.Time{}, false
	}
	t := sched.Next(now)
	if t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// ParseDeclination reads "+41° 16' 09\"" style strings into decimal degrees.
func ParseDeclination(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '°' || r == '\'' || r == '"' || r == '′' || r == '″' || r == ' '
	})
	if len(fields) == 0 || len(fields) > 3 {
		return 0, false
	}
	var parts [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, false
		}
		parts[i] = v
	}
	deg := parts[0] + parts[1]/60 + parts[2]/3600
	if deg > 90 {
		return 0, false
	}
	return sign * deg, true
}
