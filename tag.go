package buildtag

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/blang/semver"
)

const (
	tagRefPrefix = "refs/tags/"
	autoSegment  = "auto"
)

var tagPattern = regexp.MustCompile(`^refs/tags/(?:(.+)-)?auto-v(\d+\.\d+\.\d+)-(\d+)$`)

// EffectivePrefix returns the namespace embedded in generated tag names
func EffectivePrefix(prefix string) string {
	if prefix == "" {
		return autoSegment
	}
	return prefix + "-" + autoSegment
}

// FormatTag builds the tag name for a version and build number
func FormatTag(prefix, version, build string) string {
	return fmt.Sprintf("%s-v%s-%s", EffectivePrefix(prefix), version, build)
}

// ParseRef parses a ref name such as "refs/tags/staging-auto-v1.2.3-4".
// It returns false for refs that are not generated version tags.
func ParseRef(ref string) (TagRecord, bool) {
	matches := tagPattern.FindStringSubmatch(ref)
	if matches == nil {
		return TagRecord{}, false
	}

	// semver.Parse rejects leading zeros, which keeps Full round-trippable
	version, err := semver.Parse(matches[2])
	if err != nil {
		return TagRecord{}, false
	}

	record := TagRecord{
		Prefix:  matches[1],
		Version: version,
		Build:   matches[3],
	}
	record.Full = FormatTag(record.Prefix, version.String(), record.Build)
	return record, true
}

// ParseRefs parses every ref, dropping those that do not match
func ParseRefs(refs []string) []TagRecord {
	records := make([]TagRecord, 0, len(refs))
	for _, ref := range refs {
		if record, ok := ParseRef(ref); ok {
			records = append(records, record)
		}
	}
	return records
}

// Select parses refs of any prefix and orders them newest first
func Select(refs []string) Selection {
	return newSelection(ParseRefs(refs))
}

// SelectScoped is Select restricted to tags carrying the given prefix
func SelectScoped(refs []string, prefix string) Selection {
	var scoped []TagRecord
	for _, record := range ParseRefs(refs) {
		if record.Prefix == prefix {
			scoped = append(scoped, record)
		}
	}
	return newSelection(scoped)
}

func newSelection(records []TagRecord) Selection {
	sort.SliceStable(records, func(i, j int) bool {
		return compareRecords(records[i], records[j]) > 0
	})

	sel := Selection{All: records}
	if len(records) > 0 {
		sel.Current = &records[0]
	}
	if len(records) > 1 {
		sel.Previous = &records[1]
	}
	return sel
}

func compareRecords(a, b TagRecord) int {
	if cmp := a.Version.Compare(b.Version); cmp != 0 {
		return cmp
	}
	return compareBuild(a.Build, b.Build)
}

// compareBuild compares the digits of two build strings as integers.
// Sequential and date builds compare numerically too, so the two modes
// must not share a prefix.
func compareBuild(a, b string) int {
	da, db := buildDigits(a), buildDigits(b)
	if len(da) != len(db) {
		if len(da) > len(db) {
			return 1
		}
		return -1
	}
	return strings.Compare(da, db)
}

func buildDigits(build string) string {
	var sb strings.Builder
	for _, r := range build {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return strings.TrimLeft(sb.String(), "0")
}
