package cmd

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/bagindex/pkg/bag"
)

// EntryDump is one index entry as printed by bagidx index.
type EntryDump struct {
	Time     uint64 `json:"time" yaml:"time"`
	Stamp    string `json:"stamp" yaml:"stamp"`
	Offset   uint32 `json:"offset" yaml:"offset"`
	ChunkPos int    `json:"chunk_pos" yaml:"chunk_pos"`
}

// ConnectionDump holds the index entries of one connection.
type ConnectionDump struct {
	Conn    uint32      `json:"conn" yaml:"conn"`
	Entries []EntryDump `json:"entries" yaml:"entries"`
}

type indexOptions struct {
	conn    uint32
	hasConn bool
	start   uint64
	end     uint64
}

func newIndexCmd() *cobra.Command {
	var opts indexOptions

	indexCmd := &cobra.Command{
		Use:   "index <bag>",
		Short: "Print the index entries of each connection",
		Long: `Print the time-ordered index entries of every connection, or of one
connection with --conn. --start and --end select entries with
start <= time < end, in nanoseconds since the epoch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			opts.hasConn = cmd.Flags().Changed("conn")

			summary, err := scanFile(a, args[0])
			if err != nil {
				return err
			}

			conns, err := collectEntries(summary.Index, opts)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.config.Output.Format, conns, func(w io.Writer) error {
				for _, c := range conns {
					fmt.Fprintf(w, "conn %d\t%d entries\n", c.Conn, len(c.Entries))
					for _, e := range c.Entries {
						fmt.Fprintf(w, "\t%s\toffset=%d\tchunk=%d\n", e.Stamp, e.Offset, e.ChunkPos)
					}
				}
				return nil
			})
		},
	}

	flags := indexCmd.Flags()
	flags.Uint32Var(&opts.conn, "conn", 0, "Only print this connection")
	flags.Uint64Var(&opts.start, "start", 0, "First time to include, in nanoseconds")
	flags.Uint64Var(&opts.end, "end", math.MaxUint64, "Time to stop at, in nanoseconds (exclusive)")
	return indexCmd
}

func collectEntries(ix *bag.Index, opts indexOptions) ([]ConnectionDump, error) {
	conns := ix.Connections()
	if opts.hasConn {
		if !ix.Has(opts.conn) {
			return nil, fmt.Errorf("connection %d has no index data", opts.conn)
		}
		conns = []uint32{opts.conn}
	}

	out := make([]ConnectionDump, 0, len(conns))
	for _, conn := range conns {
		entries, err := ix.Between(conn, opts.start, opts.end)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", conn, err)
		}
		dump := ConnectionDump{Conn: conn, Entries: make([]EntryDump, 0, len(entries))}
		for _, e := range entries {
			dump.Entries = append(dump.Entries, EntryDump{
				Time:     e.Time,
				Stamp:    e.Timestamp().UTC().Format(time.RFC3339Nano),
				Offset:   e.Offset,
				ChunkPos: e.ChunkPos,
			})
		}
		out = append(out, dump)
	}
	return out, nil
}
