package buildtag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref     string
		ok      bool
		prefix  string
		version string
		build   string
		full    string
	}{
		{"refs/tags/auto-v1.2.3-4", true, "", "1.2.3", "4", "auto-v1.2.3-4"},
		{"refs/tags/staging-auto-v0.1.0-2025042601", true, "staging", "0.1.0", "2025042601", "staging-auto-v0.1.0-2025042601"},
		{"refs/tags/a-b-auto-v10.20.30-7", true, "a-b", "10.20.30", "7", "a-b-auto-v10.20.30-7"},
		{"refs/tags/v1.2.3", false, "", "", "", ""},
		{"refs/tags/auto-v1.2-3", false, "", "", "", ""},
		{"refs/tags/auto-v1.2.3", false, "", "", "", ""},
		{"refs/tags/auto-v1.2.3-rc1", false, "", "", "", ""},
		{"refs/tags/auto-v01.2.3-1", false, "", "", "", ""},
		{"refs/tags/-auto-v1.2.3-1", false, "", "", "", ""},
		{"refs/heads/auto-v1.2.3-1", false, "", "", "", ""},
		{"refs/tags/staging-version-2.0.0-1", false, "", "", "", ""},
		{"", false, "", "", "", ""},
	}

	for _, test := range tests {
		t.Run(test.ref, func(t *testing.T) {
			record, ok := ParseRef(test.ref)
			require.Equal(t, test.ok, ok)
			if !test.ok {
				return
			}
			require.Equal(t, test.prefix, record.Prefix)
			require.Equal(t, test.version, record.Version.String())
			require.Equal(t, test.build, record.Build)
			require.Equal(t, test.full, record.Full)
		})
	}
}

func TestEffectivePrefix(t *testing.T) {
	require.Equal(t, "auto", EffectivePrefix(""))
	require.Equal(t, "staging-auto", EffectivePrefix("staging"))
	require.Equal(t, "staging-auto-v1.0.0-3", FormatTag("staging", "1.0.0", "3"))
	require.Equal(t, "auto-v1.0.0-2025042601", FormatTag("", "1.0.0", "2025042601"))
}

func TestSelect(t *testing.T) {
	t.Run("No tags", func(t *testing.T) {
		sel := Select(nil)
		require.Nil(t, sel.Current)
		require.Nil(t, sel.Previous)
		require.Empty(t, sel.All)
	})

	t.Run("Single tag", func(t *testing.T) {
		sel := Select(testTagRefs("auto-v1.0.0-5"))
		require.NotNil(t, sel.Current)
		require.Equal(t, "auto-v1.0.0-5", sel.Current.Full)
		require.Nil(t, sel.Previous)
	})

	t.Run("Unrelated tags are ignored", func(t *testing.T) {
		sel := Select(testTagRefs("v9.9.9", "release-1", "auto-v1.0.0-1"))
		require.Len(t, sel.All, 1)
		require.Equal(t, "auto-v1.0.0-1", sel.Current.Full)
	})

	t.Run("Version wins over build", func(t *testing.T) {
		sel := Select(testTagRefs("auto-v1.10.0-1", "auto-v1.9.0-99", "auto-v1.2.0-50"))
		require.Equal(t, "auto-v1.10.0-1", sel.Current.Full)
		require.Equal(t, "auto-v1.9.0-99", sel.Previous.Full)
	})

	t.Run("Builds compare numerically", func(t *testing.T) {
		sel := Select(testTagRefs("auto-v2.0.0-9", "auto-v2.0.0-10", "auto-v2.0.0-2"))
		require.Equal(t, "auto-v2.0.0-10", sel.Current.Full)
		require.Equal(t, "auto-v2.0.0-9", sel.Previous.Full)
		require.Equal(t, "auto-v2.0.0-2", sel.All[2].Full)
	})

	t.Run("Date builds", func(t *testing.T) {
		sel := Select(testTagRefs("auto-v2.0.0-2025042601", "auto-v2.0.0-2025042502", "auto-v2.0.0-2025042602"))
		require.Equal(t, "auto-v2.0.0-2025042602", sel.Current.Full)
		require.Equal(t, "auto-v2.0.0-2025042601", sel.Previous.Full)
	})

	t.Run("All prefixes are parsed", func(t *testing.T) {
		sel := Select(testTagRefs("auto-v1.0.0-1", "staging-auto-v3.0.0-1"))
		require.Len(t, sel.All, 2)
		require.Equal(t, "staging", sel.Current.Prefix)
	})
}

func TestSelectScoped(t *testing.T) {
	refs := testTagRefs("auto-v1.0.0-1", "staging-auto-v3.0.0-1", "staging-auto-v3.0.0-2", "auto-v1.0.0-2")

	sel := SelectScoped(refs, "staging")
	require.Len(t, sel.All, 2)
	require.Equal(t, "staging-auto-v3.0.0-2", sel.Current.Full)
	require.Equal(t, "staging-auto-v3.0.0-1", sel.Previous.Full)

	sel = SelectScoped(refs, "")
	require.Len(t, sel.All, 2)
	require.Equal(t, "auto-v1.0.0-2", sel.Current.Full)

	sel = SelectScoped(refs, "prod")
	require.Nil(t, sel.Current)
}

func TestCompareBuild(t *testing.T) {
	require.Equal(t, 0, compareBuild("10", "10"))
	require.Equal(t, 1, compareBuild("10", "9"))
	require.Equal(t, -1, compareBuild("9", "10"))
	require.Equal(t, 0, compareBuild("007", "7"))
	require.Equal(t, 1, compareBuild("2025042603", "12"))
	require.Equal(t, 1, compareBuild("1.12", "1.3"))
}
