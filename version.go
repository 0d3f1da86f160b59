package buildtag

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/creasty/defaults"
)

const (
	initialVersion = "0.0.0"
	initialBuild   = "1"
	dateLayout     = "20060102"
)

// Derive computes the next version, build number and tag names.
// today is only consulted in date build mode.
func Derive(sel Selection, policy Policy, today time.Time) Result {
	return derive(sel, policy.normalized(), today)
}

// derive expects a normalized policy
func derive(sel Selection, policy Policy, today time.Time) Result {
	if sel.Current == nil {
		return deriveInitial(policy, today)
	}

	current := sel.Current
	currentVersion := current.Version.String()

	result := Result{
		Version:    applyIncrement(currentVersion, policy.Increment),
		CurrentTag: current.Full,
	}
	if sel.Previous != nil {
		result.OldTag = sel.Previous.Full
	}

	if policy.BuildMode == BuildDate {
		result.BuildNumber = nextDateBuild(sel.All, today)
	} else {
		result.BuildNumber = nextSequentialBuild(current.Build, policy.Reinit)
	}

	switch {
	case policy.Increment.Freezes():
		result.Version = currentVersion
		result.BuildNumber = current.Build
	case policy.Increment.BuildOnly():
		result.Version = currentVersion
		result.NewTag = FormatTag(policy.Prefix, currentVersion, result.BuildNumber)
	default:
		result.NewTag = FormatTag(policy.Prefix, result.Version, result.BuildNumber)
	}

	return result
}

func deriveInitial(policy Policy, today time.Time) Result {
	result := Result{
		Version:     applyIncrement(initialVersion, policy.Increment),
		BuildNumber: initialBuild,
	}
	if policy.BuildMode == BuildDate {
		result.BuildNumber = DateStamp(today) + "01"
	}
	if !policy.Increment.Freezes() {
		result.NewTag = FormatTag(policy.Prefix, result.Version, result.BuildNumber)
	}
	return result
}

// DateStamp formats the UTC calendar date of t as YYYYMMDD
func DateStamp(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// nextDateBuild scans every record, not only the newest, so the intra-day
// counter keeps growing across version bumps.
func nextDateBuild(records []TagRecord, today time.Time) string {
	stamp := DateStamp(today)

	var highest uint64
	for _, record := range records {
		if !strings.HasPrefix(record.Build, stamp) {
			continue
		}
		n, err := strconv.ParseUint(record.Build[len(stamp):], 10, 64)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s%02d", stamp, highest+1)
}

func nextSequentialBuild(build string, reinit bool) string {
	if reinit {
		return initialBuild
	}

	last := build
	if idx := strings.LastIndex(build, "."); idx >= 0 {
		last = build[idx+1:]
	}

	n, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		n = 0
	}
	return strconv.FormatUint(n+1, 10)
}

// applyIncrement bumps version according to increment. Unknown increments
// and unparsable versions return the input unchanged.
func applyIncrement(version string, increment Increment) string {
	v, err := semver.Parse(version)
	if err != nil {
		return version
	}

	switch increment.normalized() {
	case IncrementPatch, IncrementBug:
		v.Patch++
	case IncrementMinor, IncrementFeature:
		v.Minor++
		v.Patch = 0
	case IncrementMajor:
		v.Major++
		v.Minor = 0
		v.Patch = 0
	default:
		return version
	}

	v.Pre = nil
	v.Build = nil
	return v.String()
}

func (p Policy) normalized() Policy {
	p.Increment = p.Increment.normalized()
	p.BuildMode = BuildMode(strings.ToLower(strings.TrimSpace(string(p.BuildMode))))

	// defaults.Set only fails on non-pointer input
	_ = defaults.Set(&p)
	return p
}
