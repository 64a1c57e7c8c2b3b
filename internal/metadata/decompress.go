package metadata

import (
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// compressedVariants lists the preference order for a base index file
// name: try .xz first, then .gz, then the uncompressed file.
var compressedVariants = []string{".xz", ".gz", ""}

// decompressReader wraps r according to suffix, chosen from
// compressedVariants, returning a plain io.Reader of the decoded bytes.
func decompressReader(r io.Reader, suffix string) (io.Reader, error) {
	switch suffix {
	case ".xz":
		reader, err := xz.NewReader(r)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeDataLoss).
				WithMsg("failed to open xz stream").
				WithCause(err)
		}
		return reader, nil
	case ".gz":
		reader, err := gzip.NewReader(r)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeDataLoss).
				WithMsg("failed to open gzip stream").
				WithCause(err)
		}
		return reader, nil
	case "":
		return r, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported compression suffix: " + suffix)
	}
}
