package metadata

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompressReaderGzipRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte("Package: a\nVersion: 1\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := decompressReader(&buf, ".gz")
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Package: a\nVersion: 1\n", string(out))
}

func TestDecompressReaderPlain(t *testing.T) {
	r, err := decompressReader(bytes.NewReader([]byte("plain")), "")
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(out))
}

func TestDecompressReaderUnsupportedSuffix(t *testing.T) {
	_, err := decompressReader(bytes.NewReader(nil), ".bz2")
	assert.Error(t, err)
}
