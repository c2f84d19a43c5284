package cmd

import (
	"fmt"
	"io"
	"runtime"
	"sort"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ssargent/bagindex/pkg/bag"
)

// FileSummary is the summary of one bag when several are scanned at once.
type FileSummary struct {
	Source      string `json:"source" yaml:"source"`
	bag.Summary `yaml:",inline"`
}

func newScanCmd() *cobra.Command {
	var (
		dumpMetrics bool
		jobs        int
	)

	scanCmd := &cobra.Command{
		Use:   "scan <bag>...",
		Short: "Summarize the records of one or more bags",
		Long: `Read every record of a bag, decode the index data records and print a
summary: record counts per op, decode failures and indexed connections.
Several bags are scanned concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			summaries, err := scanFiles(a, args, jobs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			format := a.config.Output.Format
			if len(args) == 1 {
				err = render(out, format, summaries[0], func(w io.Writer) error {
					return writeSummary(w, args[0], summaries[0])
				})
			} else {
				files := make([]FileSummary, len(args))
				for i, s := range summaries {
					files[i] = FileSummary{Source: args[i], Summary: *s}
				}
				err = render(out, format, files, func(w io.Writer) error {
					for i, s := range summaries {
						if i > 0 {
							fmt.Fprintln(w)
						}
						if err := writeSummary(w, args[i], s); err != nil {
							return err
						}
					}
					return nil
				})
			}
			if err != nil {
				return err
			}

			if dumpMetrics {
				return writeMetrics(out, a)
			}
			return nil
		},
	}

	scanCmd.Flags().BoolVar(&dumpMetrics, "metrics", false, "Print the collected metrics in Prometheus text format")
	scanCmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Number of bags to scan at once")
	return scanCmd
}

// scanFiles scans paths with at most jobs scans running at a time. Summaries
// are returned in the order of paths.
func scanFiles(a *app, paths []string, jobs int) ([]*bag.Summary, error) {
	if jobs < 1 {
		return nil, fmt.Errorf("invalid --jobs %d", jobs)
	}

	summaries := make([]*bag.Summary, len(paths))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			s, err := scanFile(a, path)
			summaries[i] = s
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func writeSummary(w io.Writer, source string, s *bag.Summary) error {
	fmt.Fprintf(w, "file:\t%s\n", source)
	fmt.Fprintf(w, "scan id:\t%s\n", s.ScanID)
	fmt.Fprintf(w, "records:\t%d\n", s.Records)
	fmt.Fprintf(w, "bytes:\t%d\n", s.Bytes)
	fmt.Fprintf(w, "decoded:\t%d\n", s.Decoded)
	fmt.Fprintf(w, "skipped:\t%d\n", s.Skipped)
	fmt.Fprintf(w, "connections:\t%d\n", len(s.Index.Connections()))
	fmt.Fprintf(w, "index entries:\t%d\n", s.Entries)

	ops := make([]string, 0, len(s.ByOp))
	for op := range s.ByOp {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		fmt.Fprintf(w, "  %s\t%d\n", op, s.ByOp[op])
	}
	return nil
}

func writeMetrics(w io.Writer, a *app) error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
