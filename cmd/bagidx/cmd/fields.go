package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ssargent/bagindex/pkg/bag"
	"github.com/ssargent/bagindex/pkg/codec"
)

// FieldDump is one header field as printed by bagidx fields.
type FieldDump struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// RecordDump is one record as printed by bagidx fields.
type RecordDump struct {
	Pos     int         `json:"pos" yaml:"pos"`
	Op      string      `json:"op" yaml:"op"`
	DataLen int         `json:"data_len" yaml:"data_len"`
	Fields  []FieldDump `json:"fields" yaml:"fields"`
}

func newFieldsCmd() *cobra.Command {
	var limit int

	fieldsCmd := &cobra.Command{
		Use:   "fields <bag>",
		Short: "Print the header fields of each record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read bag: %w", err)
			}

			records, err := dumpFields(buf, a.config.Decode.Raw, limit)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), a.config.Output.Format, records, func(w io.Writer) error {
				for _, rec := range records {
					fmt.Fprintf(w, "@%d\t%s\tdata=%d\n", rec.Pos, rec.Op, rec.DataLen)
					for _, f := range rec.Fields {
						fmt.Fprintf(w, "\t%s\t%s\n", f.Name, f.Value)
					}
				}
				return nil
			})
		},
	}

	fieldsCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many records (0 for all)")
	return fieldsCmd
}

func dumpFields(buf []byte, raw bool, limit int) ([]RecordDump, error) {
	var r *bag.Reader
	if raw {
		r = bag.NewReader(buf)
	} else {
		var err error
		if r, err = bag.Open(buf); err != nil {
			return nil, err
		}
	}

	var records []RecordDump
	for r.Next() {
		if limit > 0 && len(records) == limit {
			break
		}
		rec := r.Record()
		dump := RecordDump{Pos: rec.Pos, Op: bag.OpName(rec.Op), DataLen: len(rec.Data)}

		it := codec.NewHeaderFieldIterator(rec.Header)
		for it.Next() {
			dump.Fields = append(dump.Fields, FieldDump{Name: it.Name(), Value: formatValue(it.Value())})
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("record at %d: %w", rec.Pos, err)
		}
		records = append(records, dump)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// formatValue renders a field value. Printable text is quoted, single bytes
// and four-byte values are shown as numbers and anything else as hex.
func formatValue(v []byte) string {
	switch {
	case len(v) == 0:
		return `""`
	case len(v) > 1 && printable(v):
		return strconv.Quote(string(v))
	case len(v) == 1:
		return fmt.Sprintf("0x%02x", v[0])
	case len(v) == 4:
		n, _ := codec.NewCursor(v).NextU32()
		return strconv.FormatUint(uint64(n), 10)
	default:
		return hex.EncodeToString(v)
	}
}

func printable(v []byte) bool {
	if !utf8.Valid(v) {
		return false
	}
	for _, r := range string(v) {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
