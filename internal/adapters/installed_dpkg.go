package adapters

import (
	"bufio"
	"os"
	"strings"

	"avular-packages/internal/debversion"
	"avular-packages/internal/ports"
	"avular-packages/internal/types"
)

// DpkgStatusAdapter reads the installed-set oracle from dpkg's status
// file.
type DpkgStatusAdapter struct {
	Path string
}

var _ ports.InstalledSetPort = DpkgStatusAdapter{}

func NewDpkgStatusAdapter(path string) DpkgStatusAdapter {
	if path == "" {
		path = "/var/lib/dpkg/status"
	}
	return DpkgStatusAdapter{Path: path}
}

// Load parses dpkg's status file: stanzas separated by a blank line,
// each with Package/Version/Status/Essential fields. Only packages whose
// Status state word (its last word) is "installed" are included,
// matching dpkg's own convention for what counts as present.
func (a DpkgStatusAdapter) Load() (types.InstalledSet, error) {
	out := types.NewInstalledSet()

	f, err := os.Open(a.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	fields := map[string]string{}
	flush := func() error {
		if len(fields) == 0 {
			return nil
		}
		defer func() { fields = map[string]string{} }()

		status := strings.Fields(fields["Status"])
		if len(status) == 0 || status[len(status)-1] != "installed" {
			return nil
		}
		name := fields["Package"]
		versionStr := fields["Version"]
		if name == "" || versionStr == "" {
			return nil
		}
		v, err := debversion.Parse(versionStr)
		if err != nil {
			return nil
		}
		out.Versions[name] = v
		if strings.EqualFold(fields["Essential"], "yes") {
			out.Essential[name] = true
		}
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return out, err
			}
			continue
		}
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue // folded continuation, irrelevant to the fields we track
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		fields[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+1:])
	}
	if err := flush(); err != nil {
		return out, err
	}
	return out, scanner.Err()
}
