package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SourceKey
		wantErr bool
	}{
		{"film", Film, false},
		{" Anime ", Anime, false},
		{"mangas", Manga, false},
		{"BOOKS", Book, false},
		{"game", Game, false},
		{"music", "", true},
		{"", "", true},
		{"s", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSourceKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeys_ReturnsCopy(t *testing.T) {
	k := Keys()
	require.Len(t, k, 5)
	k[0] = "changed"
	assert.Equal(t, Film, Keys()[0])
}

func TestTruncate(t *testing.T) {
	recs := []Record{{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: "d"}}
	assert.Len(t, Truncate(recs, MaxPerSource), 3)
	assert.Equal(t, "c", Truncate(recs, MaxPerSource)[2].Title)
	assert.Len(t, Truncate(recs[:2], MaxPerSource), 2)
	assert.Empty(t, Truncate(nil, MaxPerSource))
}

func TestResultsEntries_AllKeysInOrder(t *testing.T) {
	r := Results{Game: {{Title: "Dune: Spice Wars", Type: "Game"}}}

	entries := r.Entries()
	require.Len(t, entries, 5)
	for i, k := range Keys() {
		assert.Equal(t, k, entries[i].Key)
		assert.NotNil(t, entries[i].Data)
	}
	assert.Equal(t, "Dune: Spice Wars", entries[4].Data[0].Title)
}

func TestRecord_EmptyFieldsSerializeAsStrings(t *testing.T) {
	b, err := json.Marshal(Results{}.Entries()[:1])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"film","data":[]}]`, string(b))

	b, err = json.Marshal(Record{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"","year":"","type":"","url":"","image":"","desc":""}`, string(b))
}
