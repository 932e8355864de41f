package formatter

import (
	"strconv"
	"time"

	"github.com/alexanderramin/mandalart/internal/repository"
)

// FormatHistory renders journaled session mutations, newest first as given.
func FormatHistory(events []*repository.SessionEvent, now time.Time) string {
	if len(events) == 0 {
		return Dim("No history yet.") + "\n"
	}
	table := make([][]string, 0, len(events))
	for _, e := range events {
		outcome := StyleGreen.Render(e.Outcome)
		if e.Outcome != "applied" {
			outcome = StyleYellow.Render(e.Outcome)
		}
		table = append(table, []string{
			strconv.FormatInt(e.Revision, 10),
			e.Action,
			outcome,
			e.Step,
			Dim(HumanTimestampFrom(e.CreatedAt, now)),
		})
	}
	return RenderTable([]string{"REV", "ACTION", "OUTCOME", "STEP", "WHEN"}, table)
}
