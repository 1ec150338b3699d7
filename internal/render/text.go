// Package render draws dashboard views as plain text.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"idacast/models"
	"idacast/utils/timewindow"
)

const timeLayout = "01/02 15:04"

// Text writes the active screen of view to w.
func Text(w io.Writer, s models.Schedules, status models.DashboardStatus, p *Pager, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	var tabs []string
	for _, screen := range Screens() {
		label := screen.String()
		if screen == p.Screen() {
			label = "[" + label + "]"
		}
		tabs = append(tabs, label)
	}
	fmt.Fprintf(tw, "%s\n", strings.Join(tabs, "  "))
	loc := status.Locale
	if loc == "" {
		loc = "default"
	}
	fmt.Fprintf(tw, "%s | locale %s\n", status.Refresh, loc)
	if status.CacheError != "" {
		fmt.Fprintf(tw, "cache: %s\n", status.CacheError)
	}

	for _, c := range p.Screen().Categories() {
		fmt.Fprintf(tw, "\n== %s ==\n", c.Title())
		if !writeCategory(tw, c, &s, p, now) {
			fmt.Fprintln(tw, "  (nothing scheduled)")
		}
	}
	return tw.Flush()
}

func writeCategory(w io.Writer, c models.Category, s *models.Schedules, p *Pager, now time.Time) bool {
	switch c {
	case models.CategoryRegular, models.CategoryAnarchyOpen, models.CategoryAnarchySeries, models.CategoryXBattle:
		window, ok := timewindow.Filter(s.Battles(c), p.Capacity, p.Shift(), now)
		for _, b := range window {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", span(b.StartTime, b.EndTime, now), b.Rule.Name, joinNames(b.Stages))
		}
		return ok && len(window) > 0
	case models.CategoryWorkRegular, models.CategoryWorkBigRun, models.CategoryWorkTeamContest:
		window, ok := timewindow.Filter(s.Coop(c), p.Capacity, p.Shift(), now)
		for _, w2 := range window {
			boss := "?"
			if w2.Boss != nil {
				boss = w2.Boss.Name
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", span(w2.StartTime, w2.EndTime, now), w2.Stage.Name, boss, joinNames(w2.Weapons))
		}
		return ok && len(window) > 0
	case models.CategoryLeague:
		window, ok := timewindow.Filter(s.League, p.Capacity, p.Shift(), now)
		for _, l := range window {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", l.EventName.Name, l.Rule.Name, joinNames(l.Stages))
			for _, tp := range l.TimePeriods {
				if tp.EndTime.Before(now) {
					continue
				}
				fmt.Fprintf(w, "    %s\t\t\n", span(tp.StartTime, tp.EndTime, now))
			}
		}
		return ok && len(window) > 0
	}
	return false
}

func span(start, end, now time.Time) string {
	marker := " "
	if !now.Before(start) && now.Before(end) {
		marker = "*"
	}
	return fmt.Sprintf("%s %s - %s", marker, start.Local().Format(timeLayout), end.Local().Format(timeLayout))
}

func joinNames(names []models.NameID) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.Name
	}
	return strings.Join(parts, ", ")
}
