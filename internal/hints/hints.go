// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"

	"github.com/heasarc/go-ssirewrite/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and creating the config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/ssirewrite/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForInputDir returns hints for a missing or unusable input directory.
func ForInputDir(dir string) string {
	return format("generate the HTML pages into " + dir + " first, or pass the input directory as an argument")
}

// ForFragmentDir returns hints when the fragment directory is missing.
// Every include marker will then be removed with a warning.
func ForFragmentDir(dir string) string {
	return format("no fragment directory at " + dir + "; set --fragments or fragments.dir")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForOutputInsideInput returns hints when output and input are the same directory.
func ForOutputInsideInput() string {
	return format("choose a different --output; processing in place would overwrite the sources")
}

// ForInvalidUTF8 returns hints for pages or fragments that are not UTF-8.
func ForInvalidUTF8() string {
	return format("convert the file to UTF-8, e.g. iconv -f latin1 -t utf-8")
}

// ForWatch returns hints for watcher setup failures.
// Container bind mounts often do not deliver file events.
func ForWatch() string {
	hints := []string{"on Linux, raise fs.inotify.max_user_watches for large trees"}
	if IsInContainer() {
		hints = append(hints, "bind-mounted directories may not deliver file events inside containers")
	}
	return formatHints(hints)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
