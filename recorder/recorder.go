// Package recorder appends admitted live messages to per-day JSON logs.
package recorder

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"discord-extractor/export"
	"discord-extractor/filter"

	"github.com/bwmarrin/discordgo"
)

// Recorder writes one record per admitted inbound message into
// live_<YYYY-MM-DD>.json under the output directory. Writes to a given
// day file are serialized with a per-path mutex so the read-merge-write
// stays correct under concurrent event dispatch.
type Recorder struct {
	outDir string
	store  *filter.Store

	mu    sync.Mutex
	paths map[string]*sync.Mutex
}

// New returns a recorder writing under outDir.
func New(outDir string, store *filter.Store) *Recorder {
	return &Recorder{
		outDir: outDir,
		store:  store,
		paths:  make(map[string]*sync.Mutex),
	}
}

// Handle processes one inbound message event. Non-admitted messages are
// dropped with no side effect; self-messages are the caller's concern.
func (r *Recorder) Handle(m *discordgo.Message, ch *discordgo.Channel, guildName string) error {
	if !r.store.ChannelAllowed(ch) || !r.store.AuthorAllowed(m.Author) {
		return nil
	}

	channelName := ""
	if ch != nil {
		channelName = ch.Name
	}
	rec := export.MessageToRecord(m, channelName, guildName)
	day := m.Timestamp.UTC().Format("2006-01-02")
	path := filepath.Join(r.outDir, "live_"+day+".json")

	lock := r.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	records := append(loadRecords(path), rec.Map())
	if err := export.WriteJSON(path, records); err != nil {
		return err
	}
	slog.Info("captured message",
		slog.String("message_id", rec.ID), slog.String("path", path))
	return nil
}

// pathLock returns the mutex serializing writes to one output file.
func (r *Recorder) pathLock(path string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.paths[path]
	if !ok {
		lock = &sync.Mutex{}
		r.paths[path] = lock
	}
	return lock
}

// loadRecords reads the existing day log. A missing file, malformed JSON
// or non-array content starts a fresh array; such faults never surface.
func loadRecords(path string) []map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}
