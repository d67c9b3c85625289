// Package bot owns the Discord session: connection lifecycle, the ready
// sequence (overview, pickers, bulk export) and live message dispatch.
package bot

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"discord-extractor/config"
	"discord-extractor/export"
	"discord-extractor/filter"
	"discord-extractor/picker"
	"discord-extractor/recorder"
	"discord-extractor/scanner"

	"github.com/bwmarrin/discordgo"
)

// Bot encapsulates one extractor session.
type Bot struct {
	Session *discordgo.Session

	cfg   *config.Config
	store *filter.Store
	rec   *recorder.Recorder

	ready     sync.Once
	recording atomic.Bool
	done      chan struct{}
	finish    sync.Once
	runErr    error
}

// NewBot creates the Discord session and wires the extractor's handlers.
func NewBot(cfg *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	store := filter.NewStore()
	b := &Bot{
		Session: dg,
		cfg:     cfg,
		store:   store,
		rec:     recorder.New(cfg.OutDir, store),
		done:    make(chan struct{}),
	}
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	return b, nil
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

// Stop gracefully closes the session.
func (b *Bot) Stop() {
	if b.Session != nil {
		b.Session.Close()
	}
	slog.Info("session closed")
}

// Run opens a session for the given configuration and blocks until the
// work is done or the operator interrupts.
func Run(cfg *config.Config) error {
	b, err := NewBot(cfg)
	if err != nil {
		return err
	}
	if err := b.Start(); err != nil {
		return err
	}
	defer b.Stop()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case <-sc:
		slog.Info("interrupt received, shutting down")
	case <-b.done:
	}
	return b.runErr
}

// onReady fires once per gateway (re)connection; the setup sequence must
// only run for the first one.
func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.ready.Do(func() { go b.setup(s) })
}

// setup runs the post-connect sequence: overview, filters, bulk export,
// then either finish (active) or stay resident (passive/both).
func (b *Bot) setup(s *discordgo.Session) {
	slog.Info("logged in",
		slog.String("user", s.State.User.String()), slog.String("user_id", s.State.User.ID))

	guilds := b.targetGuilds(s)
	if len(guilds) == 0 {
		b.fail(fmt.Errorf("no guild visible: check --guild %q and the bot's invitations", b.cfg.GuildID))
		return
	}
	b.printOverview(s, guilds)

	if err := b.setupFilters(s, guilds); err != nil {
		b.fail(fmt.Errorf("filter setup failed: %w", err))
		return
	}

	if b.cfg.Mode == config.ModeActive || b.cfg.Mode == config.ModeBoth {
		if err := export.Run(s, guilds, b.store, b.cfg.HistoryLimit, b.cfg.OutDir); err != nil {
			b.fail(err)
			return
		}
		if b.cfg.Mode == config.ModeActive {
			b.finishRun()
			return
		}
	}

	b.recording.Store(true)
	slog.Info("passive mode: waiting for new messages (Ctrl-C to stop)")
}

// targetGuilds resolves the guild bound: the --guild id when given, else
// every visible guild. Names missing from state are fetched once.
func (b *Bot) targetGuilds(s *discordgo.Session) []*discordgo.Guild {
	var out []*discordgo.Guild
	for _, g := range s.State.Guilds {
		if b.cfg.GuildID != "" && g.ID != b.cfg.GuildID {
			continue
		}
		if g.Name == "" {
			if full, err := s.Guild(g.ID); err == nil {
				g = full
			}
		}
		out = append(out, g)
	}
	return out
}

// printOverview logs the guild/channel tree so the operator can see what
// the session is working with.
func (b *Bot) printOverview(s *discordgo.Session, guilds []*discordgo.Guild) {
	slog.Info("============== DISCORD OVERVIEW ==============")
	for _, g := range guilds {
		slog.Info("guild", slog.String("name", g.Name), slog.String("id", g.ID))
		channels, err := scanner.TextChannels(s, g.ID)
		if err != nil {
			slog.Error("listing channels failed",
				slog.String("guild", g.Name), slog.String("guild_id", g.ID), slog.Any("err", err))
			continue
		}
		for _, ch := range channels {
			slog.Info("channel", slog.String("name", "#"+ch.Name), slog.String("id", ch.ID))
		}
	}
	slog.Info("==============================================")
}

// setupFilters installs the non-interactive filters and runs the pickers
// when requested. The flag conflicts were already rejected at startup.
func (b *Bot) setupFilters(s *discordgo.Session, guilds []*discordgo.Guild) error {
	if len(b.cfg.Channels) > 0 {
		b.store.SetChannels(b.cfg.Channels)
		slog.Info("channel filter set", slog.Any("channels", b.store.Channels()))
	}
	if len(b.cfg.Users) > 0 {
		b.store.SetAuthors(b.cfg.Users)
		slog.Info("author filter set", slog.Any("users", b.store.Authors()))
	}
	if !b.cfg.PickChannels && !b.cfg.PickUsers {
		return nil
	}

	console := picker.Console()
	defer console.Close()

	if b.cfg.PickChannels {
		g := guilds[0]
		channels, err := scanner.TextChannels(s, g.ID)
		if err != nil {
			return fmt.Errorf("listing channels of %s (%s): %w", g.Name, g.ID, err)
		}
		if len(channels) == 0 {
			return fmt.Errorf("guild %s (%s) has no text channels", g.Name, g.ID)
		}
		picked, err := picker.PickChannels(console, channels)
		if err != nil {
			return err
		}
		b.store.SetChannels(picked)
		slog.Info("channel filter set", slog.Any("channels", picked))
	}

	if b.cfg.PickUsers {
		authors, err := scanner.CollectAuthors(s, guilds, b.store, b.cfg.ScanLimit)
		if err != nil {
			return err
		}
		slog.Info("author directory built",
			slog.Int("authors", len(authors)), slog.Int("scan_limit", b.cfg.ScanLimit))
		picked, err := picker.PickAuthors(console, authors)
		if err != nil {
			return err
		}
		b.store.SetAuthors(picked)
		slog.Info("author filter set", slog.Any("users", picked))
	}
	return nil
}

// onMessageCreate feeds admitted live messages to the recorder once the
// bulk phase (if any) is over.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !b.recording.Load() {
		return
	}
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	ch, err := s.State.Channel(m.ChannelID)
	if err != nil {
		if ch, err = s.Channel(m.ChannelID); err != nil {
			ch = &discordgo.Channel{ID: m.ChannelID}
		}
	}
	guildName := ""
	if m.GuildID != "" {
		if g, err := s.State.Guild(m.GuildID); err == nil {
			guildName = g.Name
		}
	}

	if err := b.rec.Handle(m.Message, ch, guildName); err != nil {
		slog.Error("recording message failed",
			slog.String("message_id", m.ID), slog.String("channel_id", m.ChannelID), slog.Any("err", err))
	}
}

func (b *Bot) fail(err error) {
	slog.Error("session aborted", slog.Any("err", err))
	b.finish.Do(func() {
		b.runErr = err
		close(b.done)
	})
}

func (b *Bot) finishRun() {
	b.finish.Do(func() { close(b.done) })
}
