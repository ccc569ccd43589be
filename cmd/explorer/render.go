package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/explorer"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/service"
)

func render(app *explorer.App, out io.Writer) {
	user := app.Session.Current()
	if user != nil {
		fmt.Fprintf(out, "signed in as %s\n", user.DisplayName)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	switch app.Tab() {
	case explorer.TabExplore:
		for _, o := range app.Catalog.Results() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\tmag %.1f\n", o.ID, o.Name, o.Type, o.Constellation, o.Magnitude)
			if app.Catalog.Expanded == o.ID {
				fmt.Fprintf(tw, "\t%s\n\tRA %s  Dec %s  distance %s  best %s\n",
					o.Description, o.Coordinates.RA, o.Coordinates.Dec, o.Distance, o.BestViewing)
			}
		}
	case explorer.TabEvents:
		for _, e := range app.UpcomingEvents() {
			mark := " "
			if e.Reminder {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s%d\t%s\t%s\t%s\tin %d days\n", mark, e.ID, e.Title, e.Type, e.Date, e.DaysUntil)
			if app.Events.Expanded == e.ID {
				fmt.Fprintf(tw, "\t%s\n\t%s, %s, rating %s\n", e.Description, e.Time, e.Visibility, e.Rating)
			}
		}
	case explorer.TabObservations:
		if user == nil {
			fmt.Fprintln(tw, "sign in to log observations")
			return
		}
		fmt.Fprintf(tw, "form: %s\n", app.Form.State())
		if err := app.Form.Err(); err != nil {
			fmt.Fprintf(tw, "last error: %v\n", err)
		}
		for _, o := range app.Tracker.Observations() {
			fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\n", o.ID, o.Name, o.Date, o.Time, o.Location)
		}
	case explorer.TabProfile:
		if user == nil {
			fmt.Fprintln(tw, "sign in to see your profile")
			return
		}
		renderProfile(app.Profile(), tw)
	case explorer.TabSignIn:
		fmt.Fprintln(tw, "signin <email> <password> or signup <email> <password>")
	}
}

func renderProfile(p service.Profile, out io.Writer) {
	bar := strings.Repeat("#", int(p.LevelProgress*10)) + strings.Repeat(".", 10-int(p.LevelProgress*10))
	fmt.Fprintf(out, "level %d [%s] %d observations, next level at %d\n", p.Level, bar, p.Total, p.NextLevelAt)
	fmt.Fprintf(out, "streak %d (best %d)\tunique objects %d\tthis week %d\tthis month %d\n",
		p.CurrentStreak, p.LongestStreak, p.UniqueObjects, p.ThisWeek, p.ThisMonth)
	for _, a := range p.Achievements {
		mark := "[ ]"
		if a.Earned {
			mark = "[x]"
		}
		fmt.Fprintf(out, "%s %s\t%d/%d\t%s\n", mark, a.Name, a.Progress, a.Target, a.Description)
	}
	for _, c := range p.Challenges {
		fmt.Fprintf(out, "challenge %s\t%d/%d\t%s\n", c.Name, c.Progress, c.Total, c.Description)
	}
}

func printSky(r service.SkyReport, out io.Writer) {
	if r.Fallback {
		fmt.Fprintln(out, "no location, showing a general list")
	} else {
		fmt.Fprintf(out, "sky from %s", r.Location)
		if r.Sunset != nil {
			fmt.Fprintf(out, ", sunset %s", r.Sunset.Local().Format("15:04"))
		}
		fmt.Fprintln(out)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, o := range r.Objects {
		fmt.Fprintf(tw, "%s\t%s\t%s\tmag %.1f\t%s\n", o.Name, o.Type, o.Constellation, o.Magnitude, o.Visibility)
	}
	tw.Flush()
}
