// Package config loads and validates the invocation configuration from
// the command line, an optional config.yaml, a .env file and the process
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"discord-extractor/filter"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Run modes.
const (
	ModePassive = "passive"
	ModeActive  = "active"
	ModeBoth    = "both"
)

// ErrConflict marks mutually exclusive flag combinations.
var ErrConflict = errors.New("conflicting flags")

// Config carries every knob of one invocation. It is built once during
// startup and passed explicitly; nothing reads viper afterwards.
type Config struct {
	Token        string
	Mode         string
	OutDir       string
	Channels     []string
	Users        []string
	HistoryLimit int
	ScanLimit    int
	PickChannels bool
	PickUsers    bool
	GuildID      string
	LogLevel     string
}

// RegisterFlags defines the command line flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("mode", ModeBoth, "run mode: passive, active or both")
	fs.String("out", "./exports", "output directory")
	fs.StringSlice("channels", nil, "channels (ids or names) to admit")
	fs.Int("history-limit", 10, "messages fetched per channel in active mode")
	fs.StringSlice("users", nil, "authors (ids or <@id> mentions) to admit")
	fs.Bool("pick-channels", false, "pick channels interactively from a listing")
	fs.Bool("pick-users", false, "pick authors interactively from recent history")
	fs.Int("scan-limit", 0, "messages scanned per channel for the author picker (default: history-limit)")
	fs.String("guild", "", "target guild id (default: first visible guild)")
}

// Load layers the configuration sources: .env file, config.yaml,
// environment variables and the parsed flags. Flags win over file and
// environment values. The returned config is already validated.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// A missing .env file is fine; the token may come from the real
	// environment or config.yaml.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	cfg := &Config{
		Token:        v.GetString("BOT_TOKEN"),
		Mode:         v.GetString("mode"),
		OutDir:       v.GetString("out"),
		Channels:     retokenize(v.GetStringSlice("channels")),
		Users:        retokenize(v.GetStringSlice("users")),
		HistoryLimit: v.GetInt("history-limit"),
		ScanLimit:    v.GetInt("scan-limit"),
		PickChannels: v.GetBool("pick-channels"),
		PickUsers:    v.GetBool("pick-users"),
		GuildID:      v.GetString("guild"),
		LogLevel:     v.GetString("LOG_LEVEL"),
	}
	for i, u := range cfg.Users {
		cfg.Users[i] = filter.NormalizeUser(u)
	}
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = cfg.HistoryLimit
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the flag contract. It runs before any connection
// attempt so that misconfiguration never reaches the network.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModePassive, ModeActive, ModeBoth:
	default:
		return fmt.Errorf("invalid --mode %q: want passive, active or both", c.Mode)
	}
	if c.PickChannels && len(c.Channels) > 0 {
		return fmt.Errorf("%w: --pick-channels cannot be combined with --channels", ErrConflict)
	}
	if c.PickUsers && len(c.Users) > 0 {
		return fmt.Errorf("%w: --pick-users cannot be combined with --users", ErrConflict)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("invalid --history-limit %d: must be positive", c.HistoryLimit)
	}
	for _, u := range c.Users {
		if !filter.IsDigits(u) {
			return fmt.Errorf("invalid --users token %q: only ids and <@id> mentions are accepted", u)
		}
	}
	if c.Token == "" {
		return errors.New("no bot token provided: set BOT_TOKEN in .env, config.yaml or the environment")
	}
	return nil
}

// retokenize re-splits slice values so that quoted "a, b c" style input
// behaves like separate tokens.
func retokenize(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return filter.Tokens(strings.Join(values, " "))
}
