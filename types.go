// Package buildtag computes the next semantic version and build number of a
// repository from its existing auto-generated version tags, and applies the
// result by creating the new tag and pruning superseded ones.
package buildtag

import (
	"strings"

	"github.com/blang/semver"
)

// Increment names the part of the version bumped by a run
type Increment string

const (
	IncrementPatch     Increment = "patch"
	IncrementBug       Increment = "bug"
	IncrementMinor     Increment = "minor"
	IncrementFeature   Increment = "feature"
	IncrementMajor     Increment = "major"
	IncrementNoChange  Increment = "no change"
	IncrementNone      Increment = "none"
	IncrementBuildOnly Increment = "build number only"
	IncrementBuild     Increment = "build"
)

func (i Increment) normalized() Increment {
	return Increment(strings.ToLower(strings.TrimSpace(string(i))))
}

// Freezes reports whether the increment keeps both version and build number
func (i Increment) Freezes() bool {
	switch i.normalized() {
	case IncrementNoChange, IncrementNone:
		return true
	}
	return false
}

// BuildOnly reports whether the increment bumps only the build number
func (i Increment) BuildOnly() bool {
	switch i.normalized() {
	case IncrementBuildOnly, IncrementBuild:
		return true
	}
	return false
}

// BuildMode selects how build numbers are generated
type BuildMode string

const (
	// BuildSequential numbers builds 1, 2, 3, ...
	BuildSequential BuildMode = "sequential"
	// BuildDate numbers builds YYYYMMDDNN, resetting NN every calendar day
	BuildDate BuildMode = "date"
)

// Policy configures version derivation
type Policy struct {
	// Prefix is the optional tag namespace (e.g. "staging")
	Prefix string

	// Increment selects the version bump
	Increment Increment `default:"patch"`

	// BuildMode selects sequential or date based build numbers
	BuildMode BuildMode `default:"sequential"`

	// Reinit resets sequential build numbers to 1
	Reinit bool
}

// TagRecord is one parsed version tag
type TagRecord struct {
	Prefix  string
	Version semver.Version
	Build   string
	// Full is the tag name without the refs/tags/ namespace
	Full string
}

// Selection holds the parsed tags of one repository, newest first
type Selection struct {
	Current  *TagRecord
	Previous *TagRecord
	All      []TagRecord
}

// Result is the outcome of a derivation. Empty tag fields mean absent.
type Result struct {
	Version     string `json:"version_number"`
	BuildNumber string `json:"build_number"`
	NewTag      string `json:"tag_label,omitempty"`
	CurrentTag  string `json:"current_tag_label,omitempty"`
	OldTag      string `json:"old_tag_label,omitempty"`
}
