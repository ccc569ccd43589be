package catalog

import (
	"time"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

// The calendar is dated; refresh it before the last event passes.
var events = []internal.SkyEvent{
	{
		ID:          1,
		Title:       "Orionids Meteor Shower Peak",
		Type:        "Meteor Shower",
		Date:        "2026-10-21",
		Time:        "04:00 AM",
		Description: "Debris from Halley's Comet produces up to 20 swift meteors per hour before dawn.",
		Visibility:  "Worldwide",
		Rating:      "Good",
	},
	{
		ID:          2,
		Title:       "Leonids Meteor Shower Peak",
		Type:        "Meteor Shower",
		Date:        "2026-11-17",
		Time:        "03:00 AM",
		Description: "Fast, bright meteors radiating from Leo, occasionally leaving persistent trains.",
		Visibility:  "Worldwide",
		Rating:      "Fair",
	},
	{
		ID:          3,
		Title:       "Geminids Meteor Shower Peak",
		Type:        "Meteor Shower",
		Date:        "2026-12-14",
		Time:        "02:00 AM",
		Description: "One of the best meteor showers of the year with up to 120 meteors per hour.",
		Visibility:  "Worldwide",
		Rating:      "Excellent",
	},
	{
		ID:          4,
		Title:       "Quadrantids Meteor Shower",
		Type:        "Meteor Shower",
		Date:        "2027-01-03",
		Time:        "03:00 AM",
		Description: "The first major meteor shower of the year with a short but intense peak.",
		Visibility:  "Northern Hemisphere",
		Rating:      "Good",
	},
	{
		ID:          5,
		Title:       "Jupiter at Opposition",
		Type:        "Planetary",
		Date:        "2027-02-11",
		Time:        "09:00 PM",
		Description: "Jupiter will be at its closest approach to Earth and fully illuminated.",
		Visibility:  "Worldwide",
		Rating:      "Excellent",
	},
	{
		ID:          6,
		Title:       "Mars at Opposition",
		Type:        "Planetary",
		Date:        "2027-02-19",
		Time:        "10:00 PM",
		Description: "The red planet rises at sunset and is visible all night at its brightest.",
		Visibility:  "Worldwide",
		Rating:      "Excellent",
	},
	{
		ID:          7,
		Title:       "Penumbral Lunar Eclipse",
		Type:        "Eclipse",
		Date:        "2027-02-20",
		Time:        "11:13 PM",
		Description: "A subtle shading of the full Moon as it passes through Earth's outer shadow.",
		Visibility:  "Americas, Europe, Africa, Asia",
		Rating:      "Fair",
	},
	{
		ID:          8,
		Title:       "Total Solar Eclipse",
		Type:        "Eclipse",
		Date:        "2027-08-02",
		Time:        "10:07 AM",
		Description: "Totality lasts over six minutes along a path crossing Spain, North Africa and the Middle East.",
		Visibility:  "Europe, North Africa, Middle East",
		Rating:      "Excellent",
	},
}

// Events returns a copy of the event calendar in date order.
func Events() []internal.SkyEvent {
	out := make([]internal.SkyEvent, len(events))
	copy(out, events)
	return out
}

func EventByID(id int) (internal.SkyEvent, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return internal.SkyEvent{}, false
}

func EventTypes() []string {
	return []string{AllTypes, "Meteor Shower", "Eclipse", "Planetary"}
}

// Upcoming keeps events dated today or later.
func Upcoming(list []internal.SkyEvent, now time.Time) []internal.SkyEvent {
	out := make([]internal.SkyEvent, 0, len(list))
	for _, e := range list {
		if e.DaysUntil(now) >= 0 {
			out = append(out, e)
		}
	}
	return out
}
