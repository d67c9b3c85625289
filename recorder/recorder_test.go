package recorder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"discord-extractor/filter"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(id, content string, ts time.Time) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: "200000000000000001",
		Author:    &discordgo.User{ID: "300000000000000001", Username: "alice", Discriminator: "0"},
		Content:   content,
		Timestamp: ts,
	}
}

func readDay(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestHandleCreatesAndAppends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := New(dir, filter.NewStore())
	ch := &discordgo.Channel{ID: "200000000000000001", Name: "general"}
	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	path := filepath.Join(dir, "live_2024-05-01.json")

	require.NoError(t, rec.Handle(message("m1", "first", day), ch, "g"))
	records := readDay(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0]["id"])

	require.NoError(t, rec.Handle(message("m2", "second", day.Add(time.Minute)), ch, "g"))
	records = readDay(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "m1", records[0]["id"], "existing order must be preserved")
	assert.Equal(t, "m2", records[1]["id"], "new record must come last")
}

func TestHandleMergesWithExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "live_2024-05-01.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"old"}]`), 0o644))

	rec := New(dir, filter.NewStore())
	ch := &discordgo.Channel{ID: "200000000000000001", Name: "general"}
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, rec.Handle(message("new", "hi", day), ch, "g"))
	records := readDay(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "old", records[0]["id"])
	assert.Equal(t, "new", records[1]["id"])
}

func TestHandleStartsFreshOnMalformedFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated json", content: `[{"id":`},
		{name: "non-array content", content: `{"id":"x"}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "live_2024-05-01.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			rec := New(dir, filter.NewStore())
			ch := &discordgo.Channel{ID: "200000000000000001", Name: "general"}
			day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			require.NoError(t, rec.Handle(message("m1", "hi", day), ch, "g"))
			records := readDay(t, path)
			require.Len(t, records, 1)
			assert.Equal(t, "m1", records[0]["id"])
		})
	}
}

func TestHandleDropsFilteredMessages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := filter.NewStore()
	store.SetChannels([]string{"other-channel"})
	rec := New(dir, store)

	ch := &discordgo.Channel{ID: "200000000000000001", Name: "general"}
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, rec.Handle(message("m1", "hi", day), ch, "g"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected messages must leave no trace")
}

func TestHandleSplitsFilesByUTCDate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := New(dir, filter.NewStore())
	ch := &discordgo.Channel{ID: "200000000000000001", Name: "general"}

	// 23:30 in UTC-3 is already the next day in UTC.
	local := time.Date(2024, 5, 1, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*3600))
	require.NoError(t, rec.Handle(message("m1", "late", local), ch, "g"))

	_, err := os.Stat(filepath.Join(dir, "live_2024-05-02.json"))
	assert.NoError(t, err, "date key must come from the UTC creation date")
}
