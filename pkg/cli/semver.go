package cli

import (
	"regexp"
	"strings"

	"github.com/usefultrainer/freeze/pkg/logger"
	"golang.org/x/mod/semver"
)

var semverLog = logger.New("cli:semver")

var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// parseVersion extracts the first dotted version number from a tool's
// --version output, e.g. "Pyarmor 8.5.10 (trial)" -> "8.5.10".
func parseVersion(output string) string {
	return versionPattern.FindString(output)
}

// canonicalVersion adds the 'v' prefix the semver package expects.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// compareVersions returns 1 if v1 > v2, -1 if v1 < v2 and 0 if they are equal.
func compareVersions(v1, v2 string) int {
	result := semver.Compare(canonicalVersion(v1), canonicalVersion(v2))
	semverLog.Printf("Comparing versions: %s vs %s -> %d", v1, v2, result)
	return result
}

// meetsMinimum reports whether version satisfies minimum. An empty minimum
// is always satisfied; an unparsable version never is.
func meetsMinimum(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	if !semver.IsValid(canonicalVersion(version)) {
		return false
	}
	return compareVersions(version, minimum) >= 0
}
