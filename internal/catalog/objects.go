// Package catalog holds the static reference data for celestial objects and
// sky events, and the browse state used to filter them.
package catalog

import "github.com/Manas-Phal/CCHack-SpaceExplorer/internal"

// AllTypes is the filter sentinel that matches every type.
const AllTypes = "All"

var objects = []internal.CelestialObject{
	{
		ID:            1,
		Name:          "Andromeda Galaxy",
		Type:          "Galaxy",
		Distance:      "2.537 million ly",
		Magnitude:     3.4,
		Constellation: "Andromeda",
		Description:   "The nearest major galaxy to the Milky Way and the most distant object visible to the naked eye.",
		Coordinates:   internal.Coordinates{RA: "00h 42m 44s", Dec: "+41° 16' 09\""},
		BestViewing:   "October - February",
	},
	{
		ID:            2,
		Name:          "Orion Nebula",
		Type:          "Nebula",
		Distance:      "1,344 ly",
		Magnitude:     4.0,
		Constellation: "Orion",
		Description:   "A stellar nursery where new stars are being born, visible as a fuzzy patch in Orion's sword.",
		Coordinates:   internal.Coordinates{RA: "05h 35m 17s", Dec: "-05° 23' 14\""},
		BestViewing:   "December - March",
	},
	{
		ID:            3,
		Name:          "Saturn",
		Type:          "Planet",
		Distance:      "746 million miles",
		Magnitude:     0.7,
		Constellation: "Varies",
		Description:   "The ringed planet, famous for its spectacular ring system visible through small telescopes.",
		Coordinates:   internal.Coordinates{RA: "Variable", Dec: "Variable"},
		BestViewing:   "Year-round",
	},
	{
		ID:            4,
		Name:          "Pleiades",
		Type:          "Star Cluster",
		Distance:      "444 ly",
		Magnitude:     1.6,
		Constellation: "Taurus",
		Description:   "Also known as the Seven Sisters, this open star cluster is easily visible to the naked eye.",
		Coordinates:   internal.Coordinates{RA: "03h 47m 29s", Dec: "+24° 07' 00\""},
		BestViewing:   "November - April",
	},
	{
		ID:            5,
		Name:          "Jupiter",
		Type:          "Planet",
		Distance:      "390 million miles",
		Magnitude:     -2.2,
		Constellation: "Varies",
		Description:   "The largest planet in our solar system, with four major moons visible through binoculars.",
		Coordinates:   internal.Coordinates{RA: "Variable", Dec: "Variable"},
		BestViewing:   "Year-round",
	},
	{
		ID:            6,
		Name:          "Ring Nebula",
		Type:          "Nebula",
		Distance:      "2,300 ly",
		Magnitude:     8.8,
		Constellation: "Lyra",
		Description:   "A planetary nebula that looks like a cosmic donut through a telescope.",
		Coordinates:   internal.Coordinates{RA: "18h 53m 35s", Dec: "+33° 01' 45\""},
		BestViewing:   "June - October",
	},
	{
		ID:            7,
		Name:          "Sirius",
		Type:          "Star",
		Distance:      "8.6 ly",
		Magnitude:     -1.46,
		Constellation: "Canis Major",
		Description:   "The brightest star in the night sky, a white main-sequence star with a faint white dwarf companion.",
		Coordinates:   internal.Coordinates{RA: "06h 45m 09s", Dec: "-16° 42' 58\""},
		BestViewing:   "December - March",
	},
	{
		ID:            8,
		Name:          "Betelgeuse",
		Type:          "Star",
		Distance:      "548 ly",
		Magnitude:     0.5,
		Constellation: "Orion",
		Description:   "A red supergiant marking the shoulder of the hunter, noticeably orange to the naked eye.",
		Coordinates:   internal.Coordinates{RA: "05h 55m 10s", Dec: "+07° 24' 25\""},
		BestViewing:   "December - March",
	},
	{
		ID:            9,
		Name:          "Whirlpool Galaxy",
		Type:          "Galaxy",
		Distance:      "23 million ly",
		Magnitude:     8.4,
		Constellation: "Canes Venatici",
		Description:   "A face-on spiral galaxy interacting with a smaller companion, a favourite for dark-sky telescopes.",
		Coordinates:   internal.Coordinates{RA: "13h 29m 53s", Dec: "+47° 11' 43\""},
		BestViewing:   "March - July",
	},
	{
		ID:            10,
		Name:          "Mars",
		Type:          "Planet",
		Distance:      "140 million miles",
		Magnitude:     0.8,
		Constellation: "Varies",
		Description:   "The red planet, showing polar caps and dark surface markings at close approaches.",
		Coordinates:   internal.Coordinates{RA: "Variable", Dec: "Variable"},
		BestViewing:   "Around opposition",
	},
	{
		ID:            11,
		Name:          "Venus",
		Type:          "Planet",
		Distance:      "25 to 160 million miles",
		Magnitude:     -4.2,
		Constellation: "Varies",
		Description:   "The evening and morning star, bright enough to cast shadows and showing phases like the Moon.",
		Coordinates:   internal.Coordinates{RA: "Variable", Dec: "Variable"},
		BestViewing:   "Near greatest elongation",
	},
	{
		ID:            12,
		Name:          "Double Cluster",
		Type:          "Star Cluster",
		Distance:      "7,500 ly",
		Magnitude:     3.7,
		Constellation: "Perseus",
		Description:   "Two rich open clusters side by side, striking in binoculars and low-power eyepieces.",
		Coordinates:   internal.Coordinates{RA: "02h 20m 00s", Dec: "+57° 08' 00\""},
		BestViewing:   "September - February",
	},
}

// Objects returns a copy of the catalog in ID order.
func Objects() []internal.CelestialObject {
	out := make([]internal.CelestialObject, len(objects))
	copy(out, objects)
	return out
}

func ObjectByID(id int) (internal.CelestialObject, bool) {
	for _, o := range objects {
		if o.ID == id {
			return o, true
		}
	}
	return internal.CelestialObject{}, false
}

// ObjectTypes lists the filter choices, sentinel first.
func ObjectTypes() []string {
	return []string{AllTypes, "Galaxy", "Nebula", "Planet", "Star Cluster", "Star"}
}

// Constellations returns the distinct real constellations in the catalog.
func Constellations() []string {
	seen := map[string]bool{}
	var out []string
	for _, o := range objects {
		if o.Constellation == "Varies" || seen[o.Constellation] {
			continue
		}
		seen[o.Constellation] = true
		out = append(out, o.Constellation)
	}
	return out
}
