package cmd

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssargent/bagindex/pkg/bag"
	"github.com/ssargent/bagindex/pkg/codec"
)

func slot(payload []byte) []byte {
	return append(binary.LittleEndian.AppendUint32(nil, uint32(len(payload))), payload...)
}

func u32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func field(name string, value []byte) []byte {
	return slot(append([]byte(name+"="), value...))
}

func record(data []byte, fields ...[]byte) []byte {
	var h []byte
	for _, f := range fields {
		h = append(h, f...)
	}
	return append(slot(h), slot(data)...)
}

func chunkRecord() []byte {
	return record(nil, field("op", []byte{bag.OpChunk}), field("compression", []byte("none")), field("size", u32(0)))
}

func indexRecord(conn uint32, entries ...codec.IndexDataEntry) []byte {
	var payload []byte
	for _, e := range entries {
		payload = e.AppendTo(payload)
	}
	return record(payload,
		field("op", []byte{bag.OpIndexData}),
		field("ver", u32(1)),
		field("conn", u32(conn)),
		field("count", u32(uint32(len(entries)))),
	)
}

// writeBag writes a bag with the given records to a temp file.
func writeBag(t *testing.T, records ...[]byte) string {
	t.Helper()
	buf := []byte(bag.VersionLine)
	for _, r := range records {
		buf = append(buf, r...)
	}
	path := filepath.Join(t.TempDir(), "test.bag")
	require.NoError(t, os.WriteFile(path, buf, 0600))
	return path
}

// sampleBag has one chunk and index data for connections 0 and 3.
func sampleBag(t *testing.T) string {
	return writeBag(t,
		chunkRecord(),
		indexRecord(3,
			codec.IndexDataEntry{Time: 2_000_000_000, Offset: 40},
			codec.IndexDataEntry{Time: 1_000_000_000, Offset: 0},
		),
		indexRecord(0, codec.IndexDataEntry{Time: 1_500_000_000, Offset: 80}),
	)
}

// run executes bagidx with args under a fresh home directory and returns
// what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithHome(t, t.TempDir(), args...)
}

func runWithHome(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}
