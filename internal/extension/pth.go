package extension

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// parsePth reads a `.pth`-style path file: one entry per line, blank
// lines and `#`-comments ignored. Only bare path lines are honored; a
// line beginning with "import" is the source's executable form and is
// rejected per spec §9's hardening note, surfaced as a warning rather
// than failing the load.
func parsePth(path string) (paths []string, warnings []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "import\t") {
			warnings = append(warnings,
				fmt.Sprintf("%s: rejected executable .pth entry %q (code-execution form is disabled)", path, line))
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return paths, warnings, nil
}
