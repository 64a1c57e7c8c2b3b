package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleRelease = `Origin: Test
Label: Test
Suite: stable
SHA256:
 abcdef0123456789 1234 main/binary-amd64/Packages
 fedcba9876543210 567 main/binary-amd64/Packages.gz
MD5Sum:
 00000000000000000000000000000000 1234 main/binary-amd64/Packages
`

func TestParseReleaseChecksums(t *testing.T) {
	sums := parseReleaseChecksums([]byte(sampleRelease), "SHA256")
	assert.Equal(t, "abcdef0123456789", sums["main/binary-amd64/Packages"])
	assert.Equal(t, "fedcba9876543210", sums["main/binary-amd64/Packages.gz"])
	assert.Len(t, sums, 2)
}
