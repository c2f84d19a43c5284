package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_Seek(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}

	t.Run("within bounds", func(t *testing.T) {
		for p := 0; p <= len(buf); p++ {
			c := NewCursor(buf)
			require.NoError(t, c.Seek(p))
			assert.Equal(t, p, c.Pos())
			assert.Equal(t, len(buf)-p, c.Left())

			// seeking again to the same position changes nothing
			require.NoError(t, c.Seek(p))
			assert.Equal(t, p, c.Pos())
		}
	})

	t.Run("out of bounds", func(t *testing.T) {
		c := NewCursor(buf)
		require.NoError(t, c.Seek(2))

		for _, p := range []int{6, 100, -1} {
			err := c.Seek(p)
			assert.ErrorIs(t, err, ErrOutOfBounds)
			assert.Equal(t, 2, c.Pos())
		}
	})
}

func TestCursor_NextBytes(t *testing.T) {
	buf := []byte{10, 11, 12, 13, 14, 15}

	testCases := []struct {
		name    string
		start   int
		n       int
		want    []byte
		wantErr bool
	}{
		{name: "zero bytes", start: 0, n: 0, want: []byte{}},
		{name: "prefix", start: 0, n: 2, want: []byte{10, 11}},
		{name: "middle", start: 2, n: 3, want: []byte{12, 13, 14}},
		{name: "exactly the rest", start: 1, n: 5, want: []byte{11, 12, 13, 14, 15}},
		{name: "one too many", start: 1, n: 6, wantErr: true},
		{name: "at end", start: 6, n: 1, wantErr: true},
		{name: "negative", start: 0, n: -1, wantErr: true},
		{name: "huge", start: 3, n: int(^uint(0) >> 1), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCursor(buf)
			require.NoError(t, c.Seek(tc.start))

			got, err := c.NextBytes(tc.n)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrOutOfBounds)
				assert.Equal(t, tc.start, c.Pos())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.start+tc.n, c.Pos())
		})
	}
}

func TestCursor_NextBytesAliasesBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	c := NewCursor(buf)

	b, err := c.NextBytes(2)
	require.NoError(t, err)

	buf[0] = 99
	assert.Equal(t, byte(99), b[0])
	assert.Equal(t, 2, cap(b), "sub-slice must not expose bytes past its end")
}

func TestCursor_NextU32(t *testing.T) {
	c := NewCursor([]byte{0x78, 0x56, 0x34, 0x12, 0xff})

	v, err := c.NextU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v)
	assert.Equal(t, 4, c.Pos())

	_, err = c.NextU32()
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 4, c.Pos())
}

func TestCursor_NextChunk(t *testing.T) {
	t.Run("reads length-prefixed slot", func(t *testing.T) {
		buf := append(u32(5), 'h', 'e', 'l', 'l', 'o', 'x')
		c := NewCursor(buf)

		got, err := c.NextChunk()
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), got)
		assert.Equal(t, 9, c.Pos())
		assert.Equal(t, 1, c.Left())
	})

	t.Run("empty slot", func(t *testing.T) {
		c := NewCursor(u32(0))

		got, err := c.NextChunk()
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 0, c.Left())
	})

	t.Run("truncated payload leaves position", func(t *testing.T) {
		buf := append(u32(10), 1, 2, 3)
		c := NewCursor(buf)

		_, err := c.NextChunk()
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.Equal(t, 0, c.Pos())
	})

	t.Run("truncated length", func(t *testing.T) {
		c := NewCursor([]byte{1, 0})

		_, err := c.NextChunk()
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.Equal(t, 0, c.Pos())
	})

	t.Run("max length does not overflow", func(t *testing.T) {
		c := NewCursor(append(u32(0xffffffff), 1, 2))

		_, err := c.NextChunk()
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})
}

func TestCursor_NextTime(t *testing.T) {
	testCases := []struct {
		name string
		secs uint32
		nsec uint32
		want uint64
	}{
		{name: "zero", want: 0},
		{name: "two and a half microseconds", secs: 2, nsec: 500, want: 2_000_000_500},
		{name: "nanoseconds only", nsec: 999_999_999, want: 999_999_999},
		{name: "max seconds", secs: 0xffffffff, nsec: 1, want: 4_294_967_295_000_000_001},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCursor(append(u32(tc.secs), u32(tc.nsec)...))

			got, err := c.NextTime()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, 8, c.Pos())
		})
	}

	t.Run("truncated nanoseconds", func(t *testing.T) {
		c := NewCursor(append(u32(1), 0, 0))

		_, err := c.NextTime()
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.Equal(t, 0, c.Pos())
	})
}
