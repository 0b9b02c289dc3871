package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordiz/internal/study"
	"github.com/abhisek/wordiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		counts, err := d.words.Counts(ctx)
		if err != nil {
			return err
		}
		last, err := d.words.LastStatistics(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printCounts(out, counts)
		fmt.Fprintln(out)
		printLastDay(out, last)
		return nil
	},
}

func printCounts(out io.Writer, counts []store.BookCount) {
	if len(counts) == 0 {
		fmt.Fprintln(out, "No word books imported yet. Try `wordiz import <file.json>`.")
		return
	}
	fmt.Fprintf(out, "%-20s  %8s  %8s  %6s\n", "Book", "Learned", "Total", "Done")
	fmt.Fprintln(out, strings.Repeat("─", 48))
	for _, c := range counts {
		pct := 0
		if c.Total > 0 {
			pct = c.Learned * 100 / c.Total
		}
		fmt.Fprintf(out, "%-20s  %8d  %8d  %5d%%\n", c.Book, c.Learned, c.Total, pct)
	}
}

func printLastDay(out io.Writer, st *study.Statistics) {
	if st == nil {
		fmt.Fprintln(out, "No study sessions yet.")
		return
	}
	missed := 0
	for _, it := range st.Items {
		if st.FailMap[it.TopicID] > 0 {
			missed++
		}
	}
	mins := st.TotalTimeMs / 60_000
	secs := st.TotalTimeMs / 1000 % 60
	fmt.Fprintf(out, "Last study day: %s\n", st.Day)
	fmt.Fprintf(out, "  Words:   %d (%d missed at least once)\n", len(st.Items), missed)
	fmt.Fprintf(out, "  Time:    %d:%02d\n", mins, secs)
}
