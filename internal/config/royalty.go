package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RoyaltyConfig tunes the allocation engine scheduling and defaults.
type RoyaltyConfig struct {
	// DebounceWindowMS is the quiescence window applied to author-share
	// edits before the recalculation cascade runs.
	DebounceWindowMS int `mapstructure:"debounceWindowMs"`
	// DefaultAuthorShare seeds the aggregate for an author with no
	// existing records on any platform.
	DefaultAuthorShare int `mapstructure:"defaultAuthorShare"`
	// StrictAggregateCheck surfaces a data-integrity warning when imported
	// records disagree across platforms for the same author.
	StrictAggregateCheck bool `mapstructure:"strictAggregateCheck"`
}

func DefaultRoyaltyConfig() RoyaltyConfig {
	return RoyaltyConfig{
		DebounceWindowMS:     300,
		DefaultAuthorShare:   100,
		StrictAggregateCheck: true,
	}
}

type RoyaltyConfigHolder struct {
	current atomic.Value // holds RoyaltyConfig
}

func NewRoyaltyConfigHolder() (*RoyaltyConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("royalty")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/folio/config") // Volume-mounted config
	v.AddConfigPath("/etc/folio")            // System config
	v.AddConfigPath(".")                     // Current directory (dev mode)

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultRoyaltyConfig()
		v.SetDefault("royalty.debounceWindowMs", defaults.DebounceWindowMS)
		v.SetDefault("royalty.defaultAuthorShare", defaults.DefaultAuthorShare)
		v.SetDefault("royalty.strictAggregateCheck", defaults.StrictAggregateCheck)
	}

	var cfg RoyaltyConfig
	if err := v.UnmarshalKey("royalty", &cfg); err != nil {
		return nil, err
	}
	if err := validateRoyaltyConfig(cfg); err != nil {
		return nil, err
	}

	holder := &RoyaltyConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated RoyaltyConfig
		if err := v.UnmarshalKey("royalty", &updated); err != nil {
			log.Printf("[royalty-config] reload failed: %v", err)
			return
		}
		if err := validateRoyaltyConfig(updated); err != nil {
			log.Printf("[royalty-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[royalty-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *RoyaltyConfigHolder) Get() RoyaltyConfig {
	return h.current.Load().(RoyaltyConfig)
}

func validateRoyaltyConfig(cfg RoyaltyConfig) error {
	if cfg.DebounceWindowMS < 0 || cfg.DebounceWindowMS > 5000 {
		return errors.New("royalty.debounceWindowMs must be within [0, 5000]")
	}
	if cfg.DefaultAuthorShare < 0 || cfg.DefaultAuthorShare > 100 {
		return errors.New("royalty.defaultAuthorShare must be within [0, 100]")
	}
	return nil
}
