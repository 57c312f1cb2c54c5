package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/pprof/profile"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newProfileCommand() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "profile <file>",
		Short: "Print the functions with the most samples in a profile written by --cpuprofile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			p, err := profile.Parse(f)
			if err != nil {
				return errors.Wrapf(err, "parsing profile %s", args[0])
			}
			printTop(cmd.OutOrStdout(), p, top)
			return nil
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 10, "number of functions to print")
	return cmd
}

type funcStat struct {
	name string
	flat int64
}

// topFunctions sums the last sample value per leaf function, largest first.
func topFunctions(p *profile.Profile, n int) (stats []funcStat, total int64) {
	if len(p.SampleType) == 0 {
		return nil, 0
	}
	idx := len(p.SampleType) - 1
	byName := make(map[string]int64)
	for _, s := range p.Sample {
		v := s.Value[idx]
		total += v
		if len(s.Location) == 0 || len(s.Location[0].Line) == 0 {
			byName["<unknown>"] += v
			continue
		}
		byName[s.Location[0].Line[0].Function.Name] += v
	}
	for name, flat := range byName {
		stats = append(stats, funcStat{name: name, flat: flat})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].flat != stats[j].flat {
			return stats[i].flat > stats[j].flat
		}
		return stats[i].name < stats[j].name
	})
	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats, total
}

func printTop(w io.Writer, p *profile.Profile, n int) {
	stats, total := topFunctions(p, n)
	unit := ""
	if len(p.SampleType) > 0 {
		unit = p.SampleType[len(p.SampleType)-1].Unit
	}
	for _, s := range stats {
		pct := 0.0
		if total > 0 {
			pct = float64(s.flat) * 100 / float64(total)
		}
		fmt.Fprintf(w, "%10s %6.2f%%  %s\n", formatValue(s.flat, unit), pct, s.name)
	}
}

func formatValue(v int64, unit string) string {
	if unit == "nanoseconds" {
		return time.Duration(v).String()
	}
	return fmt.Sprint(v)
}
