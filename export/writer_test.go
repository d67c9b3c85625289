package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSVHeterogeneousRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	records := []map[string]any{
		{"a": 1, "b": 2},
		{"b": 3, "c": 4},
	}
	require.NoError(t, WriteCSV(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a,b,c", lines[0])
	assert.Equal(t, "1,2,", lines[1])
	assert.Equal(t, ",3,4", lines[2])
}

func TestWriteCSVSkipsEmptyBatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty batch must not create a CSV file")
}

func TestWriteCSVRendersListsAsJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	records := []map[string]any{
		{"attachments": []string{"u1", "u2"}, "pinned": true},
	}
	require.NoError(t, WriteCSV(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"[""u1"",""u2""]"`)
	assert.Contains(t, string(data), "true")
}

func TestWriteJSONEmptyBatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "out.json")
	require.NoError(t, WriteJSON(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteJSONPreservesNonASCII(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	records := []map[string]any{{"content": "čau <světe>"}}
	require.NoError(t, WriteJSON(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "čau <světe>", "non-ASCII and angle brackets must not be escaped")
	assert.Contains(t, string(data), "\n  ", "output must be pretty-printed")
}

// Exporting the same messages twice must yield structurally equal arrays.
func TestExportShapeIsDeterministic(t *testing.T) {
	t.Parallel()

	msgs := []*discordgo.Message{
		{
			ID:        "100000000000000001",
			ChannelID: "2",
			Author:    &discordgo.User{ID: "300000000000000001", Username: "alice", Discriminator: "0"},
			Content:   "first",
			Timestamp: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:        "100000000000000002",
			ChannelID: "2",
			Author:    &discordgo.User{ID: "300000000000000002", Username: "bob", Discriminator: "0"},
			Content:   "second",
			Timestamp: time.Date(2024, 3, 1, 9, 1, 0, 0, time.UTC),
		},
	}

	build := func(path string) []map[string]any {
		var records []map[string]any
		for _, m := range msgs {
			records = append(records, MessageToRecord(m, "general", "g").Map())
		}
		require.NoError(t, WriteJSON(path, records))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got []map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		return got
	}

	dir := t.TempDir()
	first := build(filepath.Join(dir, "export_a.json"))
	second := build(filepath.Join(dir, "export_b.json"))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("export shape differs between runs (-first +second):\n%s", diff)
	}
}
