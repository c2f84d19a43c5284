package bag

import (
	"sort"

	"github.com/ssargent/bagindex/pkg/codec"
)

// Entry is an index entry together with the position of the chunk record it
// points into.
type Entry struct {
	codec.IndexDataEntry
	ChunkPos int // offset of the chunk record in the bag, -1 if unknown
}

// Index collects the index data records of a bag by connection.
type Index struct {
	byConn  map[uint32][]indexRecord
	records int
	entries int
}

type indexRecord struct {
	chunkPos int
	rec      *codec.IndexData
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{byConn: make(map[uint32][]indexRecord)}
}

// Add records an index data record describing the chunk at chunkPos.
func (ix *Index) Add(chunkPos int, rec *codec.IndexData) {
	ix.byConn[rec.ConnID] = append(ix.byConn[rec.ConnID], indexRecord{chunkPos: chunkPos, rec: rec})
	ix.records++
	ix.entries += rec.Len()
}

// Connections returns the connection ids with at least one index record, in
// ascending order.
func (ix *Index) Connections() []uint32 {
	conns := make([]uint32, 0, len(ix.byConn))
	for conn := range ix.byConn {
		conns = append(conns, conn)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i] < conns[j] })
	return conns
}

// Has reports whether conn has any index record.
func (ix *Index) Has(conn uint32) bool {
	_, ok := ix.byConn[conn]
	return ok
}

// Count returns the number of entries indexed for conn.
func (ix *Index) Count(conn uint32) int {
	n := 0
	for _, r := range ix.byConn[conn] {
		n += r.rec.Len()
	}
	return n
}

// Records returns the number of index data records added.
func (ix *Index) Records() int {
	return ix.records
}

// Len returns the total number of entries across all connections.
func (ix *Index) Len() int {
	return ix.entries
}

// Entries returns every entry of conn ordered by time. Entries with the same
// time keep bag order.
func (ix *Index) Entries(conn uint32) ([]Entry, error) {
	records := ix.byConn[conn]
	entries := make([]Entry, 0, ix.Count(conn))
	for _, r := range records {
		it := r.rec.Entries()
		for it.Next() {
			entries = append(entries, Entry{IndexDataEntry: it.Entry(), ChunkPos: r.chunkPos})
		}
		if err := it.Err(); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Time < entries[j].Time })
	return entries, nil
}

// Between returns the entries of conn with start <= Time < end.
func (ix *Index) Between(conn uint32, start, end uint64) ([]Entry, error) {
	entries, err := ix.Entries(conn)
	if err != nil {
		return nil, err
	}
	lo := sort.Search(len(entries), func(i int) bool { return entries[i].Time >= start })
	hi := sort.Search(len(entries), func(i int) bool { return entries[i].Time >= end })
	if hi < lo {
		hi = lo
	}
	return entries[lo:hi], nil
}
