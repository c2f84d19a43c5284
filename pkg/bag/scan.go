package bag

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/bagindex/pkg/codec"
	"github.com/ssargent/bagindex/pkg/metrics"
)

// ScanConfig holds configuration for Scan
type ScanConfig struct {
	Raw     bool             // buffer holds records only, no version line
	Strict  bool             // fail on the first record that does not decode
	Logger  *zap.Logger      // optional
	Metrics *metrics.Metrics // optional
}

// Summary describes a scanned bag.
type Summary struct {
	ScanID  string         `json:"scan_id" yaml:"scan_id"`
	Records int            `json:"records" yaml:"records"`
	Bytes   int            `json:"bytes" yaml:"bytes"`
	ByOp    map[string]int `json:"by_op" yaml:"by_op"`
	Decoded int            `json:"decoded" yaml:"decoded"`
	Skipped int            `json:"skipped" yaml:"skipped"`
	Entries int            `json:"entries" yaml:"entries"`
	Index   *Index         `json:"-" yaml:"-"`
}

// Scan reads every record of buf, decodes the kinds Decode supports and
// collects index data records into an Index.
//
// Records that fail to decode are logged and skipped unless cfg.Strict is set.
// A record that cannot be framed ends the scan with an error, since nothing
// after it can be located.
func Scan(buf []byte, cfg ScanConfig) (*Summary, error) {
	start := time.Now()
	defer func() { cfg.Metrics.ObserveScan(time.Since(start)) }()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	summary := &Summary{
		ScanID: ksuid.New().String(),
		ByOp:   make(map[string]int),
		Index:  NewIndex(),
	}
	sugar := logger.Sugar().With("scan_id", summary.ScanID)

	var r *Reader
	if cfg.Raw {
		r = NewReader(buf)
	} else {
		var err error
		if r, err = Open(buf); err != nil {
			cfg.Metrics.RecordDecode("bag", false, ErrorKind(err))
			return nil, err
		}
	}

	chunkPos := -1
	for r.Next() {
		rec := r.Record()
		name := OpName(rec.Op)
		summary.Records++
		summary.Bytes += rec.Size()
		summary.ByOp[name]++
		cfg.Metrics.RecordSeen(name)
		sugar.Debugw("record", "op", name, "pos", rec.Pos, "header_len", len(rec.Header), "data_len", len(rec.Data))

		if rec.Op == OpChunk {
			chunkPos = rec.Pos
			continue
		}
		if !Supported(rec.Op) {
			continue
		}

		decoded, err := Decode(rec)
		cfg.Metrics.RecordDecode(name, err == nil, ErrorKind(err))
		if err != nil {
			if cfg.Strict {
				return nil, err
			}
			sugar.Warnw("skipping record", "op", name, "pos", rec.Pos, "error", err)
			summary.Skipped++
			continue
		}
		summary.Decoded++

		switch d := decoded.(type) {
		case *codec.IndexData:
			summary.Index.Add(chunkPos, d)
			summary.Entries += d.Len()
			cfg.Metrics.RecordIndexEntries(d.Len())
		}
	}
	if err := r.Err(); err != nil {
		cfg.Metrics.RecordDecode("bag", false, ErrorKind(err))
		return nil, fmt.Errorf("scan %s: %w", summary.ScanID, err)
	}

	sugar.Infow("scan complete",
		"records", summary.Records,
		"decoded", summary.Decoded,
		"skipped", summary.Skipped,
		"connections", len(summary.Index.Connections()),
		"entries", summary.Entries,
	)
	return summary, nil
}
