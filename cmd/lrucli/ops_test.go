package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOps(t *testing.T) {
	ops, err := parseOps(strings.Fields("write 1 a w 2 b read 1 rm 2 clear dump"))
	require.NoError(t, err)
	require.Equal(t, []op{
		{kind: opWrite, key: "1", value: "a"},
		{kind: opWrite, key: "2", value: "b"},
		{kind: opRead, key: "1"},
		{kind: opRemove, key: "2"},
		{kind: opClear},
		{kind: opDump},
	}, ops)
}

func TestParseOpsErrors(t *testing.T) {
	_, err := parseOps([]string{"frobnicate"})
	require.True(t, errors.Is(err, errUnknownOp))

	_, err = parseOps([]string{"write", "k"})
	require.ErrorContains(t, err, "needs 2 operand(s)")

	_, err = parseOps([]string{"read"})
	require.ErrorContains(t, err, "needs 1 operand(s)")
}

func TestReadOps(t *testing.T) {
	input := `
# warm up
write a 1
read a

write b 2
`
	ops, err := readOps(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ops, 3)

	_, err = readOps(strings.NewReader("write a 1\nread a read b\n"))
	require.ErrorContains(t, err, "line 2")

	_, err = readOps(strings.NewReader("bogus\n"))
	require.ErrorIs(t, err, errUnknownOp)
}

func TestSessionRun(t *testing.T) {
	var out bytes.Buffer
	s, err := newSession(cacheConfig{Size: 2}, &out)
	require.NoError(t, err)

	ops, err := parseOps(strings.Fields("write 1 a write 2 b read 1 write 3 c read 2 dump"))
	require.NoError(t, err)
	s.run(ops)

	require.Equal(t, "1 = a\n2: miss\n0 3=c\n1 1=a\norder (MRU->LRU): [3 1]\n", out.String())
}

func TestSessionClearAndRemove(t *testing.T) {
	var out bytes.Buffer
	s, err := newSession(cacheConfig{Size: 3}, &out)
	require.NoError(t, err)

	ops, err := parseOps(strings.Fields("write a 1 write b 2 clear remove a write c 3"))
	require.NoError(t, err)
	s.run(ops)

	require.Equal(t, "a: not present\norder (MRU->LRU): [c]\n", out.String())
}
