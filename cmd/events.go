package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the latest session events",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")

		recs, err := a.store.Events().Latest(cmd.Context(), a.cfg.UserID, limit)
		if err != nil {
			return err
		}
		if kind != "" {
			kept := recs[:0]
			for _, r := range recs {
				if r.Kind == kind {
					kept = append(kept, r)
				}
			}
			recs = kept
		}
		return render(cmd, recs, func(w io.Writer) {
			if len(recs) == 0 {
				fmt.Fprintln(w, "No events recorded.")
				return
			}
			t := newTable("Seq", "Time", "Kind", "Session", "Data")
			for _, r := range recs {
				t.Row(
					fmt.Sprint(r.Sequence),
					clockTime(r.Timestamp, a.loc),
					r.Kind,
					truncate(r.SessionID, 8),
					formatData(r.Data),
				)
			}
			printTable(w, t)
		})
	}),
}

func init() {
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().String("kind", "", "Only show events of this kind")
}

// formatData renders event data as sorted key=value pairs.
func formatData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return strings.Join(parts, " ")
}
