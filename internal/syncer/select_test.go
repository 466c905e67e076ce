package syncer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secretsync/internal/syncer"
)

func names(entries []syncer.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func manifestEntries(keys ...string) []syncer.Entry {
	entries := make([]syncer.Entry, len(keys))
	for i, k := range keys {
		entries[i] = syncer.Entry{Name: k, Path: k + ".env", SecretName: "app/" + k}
	}
	return entries
}

func TestSelect(t *testing.T) {
	entries := manifestEntries("a", "b1", "b2", "c")

	tests := []struct {
		name   string
		filter syncer.TargetFilter
		want   []string
	}{
		{
			name:   "empty filter selects everything",
			filter: syncer.TargetFilter{},
			want:   []string{"a", "b1", "b2", "c"},
		},
		{
			name:   "names and globs are ORed",
			filter: syncer.TargetFilter{Names: []string{"a"}, Globs: []string{"b*"}},
			want:   []string{"a", "b1", "b2"},
		},
		{
			name:   "declaration order wins over filter order",
			filter: syncer.TargetFilter{Names: []string{"c", "a"}},
			want:   []string{"a", "c"},
		},
		{
			name:   "overlapping name and glob select once",
			filter: syncer.TargetFilter{Names: []string{"b1"}, Globs: []string{"b?"}},
			want:   []string{"b1", "b2"},
		},
		{
			name:   "brace alternatives",
			filter: syncer.TargetFilter{Globs: []string{"{a,c}"}},
			want:   []string{"a", "c"},
		},
		{
			name:   "character class",
			filter: syncer.TargetFilter{Globs: []string{"b[2-9]"}},
			want:   []string{"b2"},
		},
		{
			name:   "unknown name selects nothing",
			filter: syncer.TargetFilter{Names: []string{"zzz"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := syncer.Select(entries, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSelectDoesNotAliasInput(t *testing.T) {
	entries := manifestEntries("a", "b")

	got, err := syncer.Select(entries, syncer.TargetFilter{})
	require.NoError(t, err)

	got[0].Name = "changed"
	assert.Equal(t, "a", entries[0].Name)
}

func TestSelectGlobSeparator(t *testing.T) {
	entries := manifestEntries("prod/db", "prod-api", "prod/eu/cache")

	tests := []struct {
		pattern string
		want    []string
	}{
		{pattern: "prod*", want: []string{"prod-api"}},
		{pattern: "prod/*", want: []string{"prod/db"}},
		{pattern: "prod?db", want: []string{}},
		{pattern: "prod/**", want: []string{"prod/db", "prod/eu/cache"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := syncer.Select(entries, syncer.TargetFilter{Globs: []string{tt.pattern}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSelectInvalidGlob(t *testing.T) {
	_, err := syncer.Select(manifestEntries("a"), syncer.TargetFilter{Globs: []string{"[a-"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid glob pattern "[a-"`)
}

func TestCheckSelection(t *testing.T) {
	assert.NoError(t, syncer.CheckSelection(0, 0, "secret-sync.yaml"), "empty manifest is not an error")
	assert.NoError(t, syncer.CheckSelection(3, 1, "secret-sync.yaml"))

	err := syncer.CheckSelection(3, 0, "/srv/app/secret-sync.yaml")
	var filterErr *syncer.FilterEmptyError
	require.ErrorAs(t, err, &filterErr)
	assert.Equal(t, `no files matching filter within "/srv/app/secret-sync.yaml"`, err.Error())
}
