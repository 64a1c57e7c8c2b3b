package metadata

import (
	"bufio"
	"strings"
)

// parseReleaseChecksums extracts the "<algo>:" checksum section of an
// InRelease/Release file body into path -> hex digest, used to pick and
// verify the Packages variant for each component/arch.
func parseReleaseChecksums(body []byte, algo string) map[string]string {
	out := map[string]string{}
	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	inSection := false
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			inSection = strings.EqualFold(strings.TrimSuffix(trimmed, ":"), algo) && strings.HasSuffix(trimmed, ":")
			continue
		}
		if !inSection {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 3 {
			continue
		}
		out[fields[2]] = fields[0]
	}
	return out
}
