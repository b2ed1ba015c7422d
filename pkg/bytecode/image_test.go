package bytecode

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/monty/pkg/parser"
)

func runChunk(t *testing.T, c *Chunk) (string, error) {
	t.Helper()
	var out bytes.Buffer
	vm := NewVM(&out)
	defer vm.Close()
	err := vm.RunChunk(c)
	return out.String(), err
}

const sampleProgram = `push 1
push -2
queue
push 2147483647
add
nope 3
push q
pall
`

func TestImageRoundTrip(t *testing.T) {
	c := Compile("sample.m", slices.Values(parser.ParseString(sampleProgram)))

	data, err := MarshalChunk(c)
	require.NoError(t, err)
	assert.True(t, IsImage(data))

	got, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestImageIsDeterministic(t *testing.T) {
	recs := parser.ParseString(sampleProgram)
	a, err := MarshalChunk(Compile("x", slices.Values(recs)))
	require.NoError(t, err)
	b, err := MarshalChunk(Compile("x", slices.Values(recs)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestImageExecutesLikeSource(t *testing.T) {
	src := "push 1\npush 2\nswap\npall\nrotl\npstr\n"

	want, err := runSource(t, src)
	require.NoError(t, err)

	data, err := MarshalChunk(Compile("", slices.Values(parser.ParseString(src))))
	require.NoError(t, err)
	c, err := UnmarshalChunk(data)
	require.NoError(t, err)

	got, err := runChunk(t, c)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUnmarshalBadMagic(t *testing.T) {
	_, err := UnmarshalChunk([]byte("push 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad magic")
	assert.False(t, IsImage([]byte("MNT")))
}

func TestUnmarshalTruncated(t *testing.T) {
	data, err := MarshalChunk(Compile("", slices.Values(parser.ParseString(sampleProgram))))
	require.NoError(t, err)

	_, err = UnmarshalChunk(data[:len(data)-3])
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "bytecode: unmarshal chunk"))
}

func TestUnmarshalFutureVersion(t *testing.T) {
	c := NewChunk("")
	c.Version = BytecodeVersion + 1
	data, err := MarshalChunk(c)
	require.NoError(t, err)

	_, err = UnmarshalChunk(data)
	assert.ErrorContains(t, err, "unsupported image version")
}
