package xmlcharset

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkReaderReplay(t *testing.T) {
	mr := NewMarkReader(strings.NewReader("hello world"))
	mr.Mark(32)

	p := make([]byte, 5)
	_, err := io.ReadFull(mr, p)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, "hello", string(p), "first read")

	require.NoError(t, mr.Reset(), "reset should succeed")
	rest, err := io.ReadAll(mr)
	require.NoError(t, err, "read after reset should succeed")
	require.Equal(t, "hello world", string(rest), "reset replays from the mark")
}

func TestMarkReaderRemarkMidReplay(t *testing.T) {
	mr := NewMarkReader(strings.NewReader("abcdef"))
	mr.Mark(32)

	p := make([]byte, 3)
	_, err := io.ReadFull(mr, p)
	require.NoError(t, err, "read should succeed")

	require.NoError(t, mr.Reset(), "reset should succeed")

	// consume one replayed byte, then move the mark
	one := make([]byte, 1)
	_, err = io.ReadFull(mr, one)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, "a", string(one), "replayed byte")

	mr.Mark(32)
	rest, err := io.ReadAll(mr)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, "bcdef", string(rest), "read runs past the replay buffer")

	require.NoError(t, mr.Reset(), "reset to the new mark should succeed")
	rest, err = io.ReadAll(mr)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, "bcdef", string(rest), "the new mark sits after the consumed byte")
}

func TestMarkReaderLimitExceeded(t *testing.T) {
	mr := NewMarkReader(strings.NewReader(strings.Repeat("x", 100)))
	mr.Mark(10)

	_, err := io.ReadAll(mr)
	require.NoError(t, err, "read should succeed")
	require.ErrorIs(t, mr.Reset(), ErrMarkInvalid, "reading past the limit invalidates the mark")
}

func TestMarkReaderResetWithoutMark(t *testing.T) {
	mr := NewMarkReader(strings.NewReader("x"))
	require.ErrorIs(t, mr.Reset(), ErrMarkInvalid, "reset without a mark should fail")
}
