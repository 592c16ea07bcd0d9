package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ncheta/ncheta/internal/session"
)

// WriteEntryTable prints one row per entry, newest first as given
func WriteEntryTable(w io.Writer, items []session.EntryListItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No entries yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tKIND\tITEMS\tCREATED\tLAST PRACTICED")
	for _, item := range items {
		lastPracticed := "-"
		if item.LastPracticedAt != nil {
			lastPracticed = formatMillis(*item.LastPracticedAt)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			item.ID, item.Title, item.Kind, item.ItemCount, formatMillis(item.CreatedAt), lastPracticed)
	}
	return tw.Flush()
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
