package catalog

import (
	"strings"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func typeMatches(itemType, filter string) bool {
	return filter == "" || strings.EqualFold(filter, AllTypes) || strings.EqualFold(itemType, filter)
}

// MatchObject reports whether o passes both the text query and the type filter.
func MatchObject(o internal.CelestialObject, query, typ string) bool {
	q := strings.TrimSpace(query)
	text := q == "" || containsFold(o.Name, q) || containsFold(o.Description, q) || containsFold(o.Constellation, q)
	return text && typeMatches(o.Type, typ)
}

func FilterObjects(list []internal.CelestialObject, query, typ string) []internal.CelestialObject {
	out := []internal.CelestialObject{}
	for _, o := range list {
		if MatchObject(o, query, typ) {
			out = append(out, o)
		}
	}
	return out
}

func MatchEvent(e internal.SkyEvent, query, typ string) bool {
	q := strings.TrimSpace(query)
	text := q == "" || containsFold(e.Title, q) || containsFold(e.Description, q) || containsFold(e.Visibility, q)
	return text && typeMatches(e.Type, typ)
}

func FilterEvents(list []internal.SkyEvent, query, typ string) []internal.SkyEvent {
	out := []internal.SkyEvent{}
	for _, e := range list {
		if MatchEvent(e, query, typ) {
			out = append(out, e)
		}
	}
	return out
}

// Browser is the catalog view state. It is not safe for concurrent use.
type Browser struct {
	Query    string
	Type     string
	Expanded int // 0 when nothing is expanded
}

func NewBrowser() *Browser {
	return &Browser{Type: AllTypes}
}

func (b *Browser) Results() []internal.CelestialObject {
	return FilterObjects(objects, b.Query, b.Type)
}

// Toggle expands id, or collapses it when it is already expanded.
func (b *Browser) Toggle(id int) {
	if b.Expanded == id {
		b.Expanded = 0
		return
	}
	b.Expanded = id
}

func (b *Browser) Reset() {
	*b = Browser{Type: AllTypes}
}

// EventBrowser is Browser for the event calendar.
type EventBrowser struct {
	Query    string
	Type     string
	Expanded int
}

func NewEventBrowser() *EventBrowser {
	return &EventBrowser{Type: AllTypes}
}

func (b *EventBrowser) Results() []internal.SkyEvent {
	return FilterEvents(events, b.Query, b.Type)
}

func (b *EventBrowser) Toggle(id int) {
	if b.Expanded == id {
		b.Expanded = 0
		return
	}
	b.Expanded = id
}

func (b *EventBrowser) Reset() {
	*b = EventBrowser{Type: AllTypes}
}
