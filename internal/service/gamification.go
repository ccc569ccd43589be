package service

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/catalog"
)

const observationsPerLevel = 10

type Achievement struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
}

type Challenge struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
	Total       int    `json:"total"`
	Completed   bool   `json:"completed"`
}

type Profile struct {
	User          *internal.User `json:"user,omitempty"`
	Total         int            `json:"total_observations"`
	Level         int            `json:"level"`
	LevelProgress float64        `json:"level_progress"` // 0..1 toward the next level
	NextLevelAt   int            `json:"next_level_at"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	UniqueObjects int            `json:"unique_objects"`
	ThisWeek      int            `json:"this_week"`
	ThisMonth     int            `json:"this_month"`
	Achievements  []Achievement  `json:"achievements"`
	Challenges    []Challenge    `json:"challenges"`
}

// Level is floor(total/10)+1.
func Level(total int) int {
	if total < 0 {
		total = 0
	}
	return total/observationsPerLevel + 1
}

func LevelProgress(total int) float64 {
	if total < 0 {
		return 0
	}
	return float64(total%observationsPerLevel) / observationsPerLevel
}

var (
	planets     = []string{"Mercury", "Venus", "Mars", "Jupiter", "Saturn", "Uranus", "Neptune"}
	nakedEye    = []string{"Mercury", "Venus", "Mars", "Jupiter", "Saturn"}
	messierName = regexp.MustCompile(`(?i)^m\s?(\d{1,3})$`)
	messier     = map[string]int{
		"andromeda galaxy": 31,
		"orion nebula":     42,
		"pleiades":         45,
		"ring nebula":      57,
		"whirlpool galaxy": 51,
	}
)

func objectKey(o internal.Observation) string {
	return strings.ToLower(strings.TrimSpace(o.Name))
}

// objectType prefers the type the user logged and falls back to the catalog.
func objectType(o internal.Observation) string {
	if o.ObjectType != "" {
		return o.ObjectType
	}
	for _, c := range catalog.Objects() {
		if strings.EqualFold(c.Name, strings.TrimSpace(o.Name)) {
			return c.Type
		}
	}
	return ""
}

func constellationOf(o internal.Observation) string {
	for _, c := range catalog.Objects() {
		if strings.EqualFold(c.Name, strings.TrimSpace(o.Name)) && c.Constellation != "Varies" {
			return c.Constellation
		}
	}
	return ""
}

func messierNumber(o internal.Observation) int {
	if m := messierName.FindStringSubmatch(strings.TrimSpace(o.Name)); m != nil {
		n := 0
		for _, d := range m[1] {
			n = n*10 + int(d-'0')
		}
		if n >= 1 && n <= 110 {
			return n
		}
		return 0
	}
	return messier[objectKey(o)]
}

func isPlanet(name string, set []string) bool {
	for _, p := range set {
		if strings.EqualFold(p, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func observedDay(o internal.Observation) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", o.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// streaks returns the current and longest runs of consecutive observing
// days. The current run counts only if it reaches today or yesterday.
func streaks(list []internal.Observation, now time.Time) (current, longest int) {
	seen := map[time.Time]bool{}
	var days []time.Time
	for _, o := range list {
		if d, ok := observedDay(o); ok && !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return 0, 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	last := days[len(days)-1]
	if last.Equal(today) || last.Equal(today.AddDate(0, 0, -1)) {
		current = run
	}
	return current, longest
}

func capped(n, target int) int {
	if n > target {
		return target
	}
	return n
}

// BuildProfile derives every profile figure from the observation list.
func BuildProfile(user *internal.User, list []internal.Observation, now time.Time) Profile {
	total := len(list)
	p := Profile{
		User:          user,
		Total:         total,
		Level:         Level(total),
		LevelProgress: LevelProgress(total),
		NextLevelAt:   Level(total) * observationsPerLevel,
	}
	p.CurrentStreak, p.LongestStreak = streaks(list, now)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := today.AddDate(0, 0, -6)

	unique := map[string]bool{}
	deepSky := map[string]bool{}
	galaxies := map[string]bool{}
	nebulae := map[string]bool{}
	planetsSeen := map[string]bool{}
	monthPlanets := map[string]bool{}
	constellations := map[string]bool{}
	messierSeen := map[int]bool{}
	doubles := map[string]bool{}
	meteors := 0

	for _, o := range list {
		key := objectKey(o)
		unique[key] = true
		typ := objectType(o)
		switch {
		case strings.EqualFold(typ, "Galaxy"):
			galaxies[key] = true
			deepSky[key] = true
		case strings.EqualFold(typ, "Nebula"):
			nebulae[key] = true
			deepSky[key] = true
		case strings.EqualFold(typ, "Star Cluster"):
			deepSky[key] = true
		case strings.EqualFold(typ, "Meteor Shower"):
			meteors++
		case strings.EqualFold(typ, "Double Star"):
			doubles[key] = true
		}
		if typ == "" && strings.Contains(key, "meteor") {
			meteors++
		}
		if typ == "" && strings.Contains(key, "double") {
			doubles[key] = true
		}
		if isPlanet(o.Name, nakedEye) {
			planetsSeen[key] = true
		}
		if c := constellationOf(o); c != "" {
			constellations[c] = true
		}
		if n := messierNumber(o); n > 0 {
			messierSeen[n] = true
		}

		if d, ok := observedDay(o); ok {
			if !d.Before(weekStart) && !d.After(today) {
				p.ThisWeek++
			}
			if d.Year() == today.Year() && d.Month() == today.Month() {
				p.ThisMonth++
				if isPlanet(o.Name, planets) {
					monthPlanets[key] = true
				}
			}
		}
	}
	p.UniqueObjects = len(unique)

	achievements := []struct {
		name, desc string
		progress   int
		target     int
	}{
		{"First Light", "Made your first observation", total, 1},
		{"Star Gazer", "Observed 10 different objects", len(unique), 10},
		{"Deep Space", "Observed 5 deep space objects", len(deepSky), 5},
		{"Planet Hunter", "Observed all visible planets", len(planetsSeen), len(nakedEye)},
		{"Meteor Watcher", "Logged 3 meteor shower observations", meteors, 3},
		{"Galaxy Explorer", "Observed 10 different galaxies", len(galaxies), 10},
		{"Nebula Seeker", "Observed 15 different nebulae", len(nebulae), 15},
		{"Constellation Master", "Identified all 88 constellations", len(constellations), 88},
	}
	for i, a := range achievements {
		p.Achievements = append(p.Achievements, Achievement{
			ID:          i + 1,
			Name:        a.name,
			Description: a.desc,
			Earned:      a.progress >= a.target,
			Progress:    capped(a.progress, a.target),
			Target:      a.target,
		})
	}

	challenges := []struct {
		name, desc string
		progress   int
		total      int
	}{
		{"Messier Marathon", "Observe all 110 Messier objects", len(messierSeen), 110},
		{"Solar System Tour", "Observe all planets in one month", len(monthPlanets), len(planets)},
		{"Double Star Challenge", "Observe 50 double star systems", len(doubles), 50},
	}
	for i, c := range challenges {
		p.Challenges = append(p.Challenges, Challenge{
			ID:          i + 1,
			Name:        c.name,
			Description: c.desc,
			Progress:    capped(c.progress, c.total),
			Total:       c.total,
			Completed:   c.progress >= c.total,
		})
	}
	return p
}
