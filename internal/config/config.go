package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/Strangers/internal/adapters/rtc"
	"github.com/dkeye/Strangers/internal/app/sim"
)

const envPrefix = "STRANGERS"

type Config struct {
	Mode       string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port       int           `mapstructure:"port" validate:"min=1,max=65535"`
	StaticPath string        `mapstructure:"static_path" validate:"required"`
	ReadLimit  int64         `mapstructure:"read_limit" validate:"min=512"`
	PingPeriod time.Duration `mapstructure:"ping_period" validate:"min=1s"`
	SendBuffer int           `mapstructure:"send_buffer" validate:"min=1"`
	Secret     string        `mapstructure:"secret" validate:"required"`
	AdminKey   string        `mapstructure:"admin_key"`
	LogLevel   string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`

	ConnectLimit    int           `mapstructure:"connect_limit" validate:"min=1"`
	ConnectInterval time.Duration `mapstructure:"connect_interval" validate:"min=1s"`

	ICEServers []rtc.Server `mapstructure:"ice_servers" validate:"dive"`

	Sim SimConfig `mapstructure:"sim"`
}

// SimConfig holds the simulated partner's pacing.
type SimConfig struct {
	GraceMin          time.Duration `mapstructure:"grace_min" validate:"min=0"`
	GraceMax          time.Duration `mapstructure:"grace_max" validate:"gtefield=GraceMin"`
	OpeningMin        time.Duration `mapstructure:"opening_min" validate:"min=0"`
	OpeningMax        time.Duration `mapstructure:"opening_max" validate:"gtefield=OpeningMin"`
	TypingMin         time.Duration `mapstructure:"typing_min" validate:"min=0"`
	TypingMax         time.Duration `mapstructure:"typing_max" validate:"gtefield=TypingMin"`
	FollowUpMin       time.Duration `mapstructure:"follow_up_min" validate:"min=0"`
	FollowUpMax       time.Duration `mapstructure:"follow_up_max" validate:"gtefield=FollowUpMin"`
	FollowUpTypingMin time.Duration `mapstructure:"follow_up_typing_min" validate:"min=0"`
	FollowUpTypingMax time.Duration `mapstructure:"follow_up_typing_max" validate:"gtefield=FollowUpTypingMin"`
	MaxFollowUps      int           `mapstructure:"max_follow_ups" validate:"min=0"`
	ReplyPerChar      time.Duration `mapstructure:"reply_per_char" validate:"min=0"`
	ReplyJitterMin    time.Duration `mapstructure:"reply_jitter_min" validate:"min=0"`
	ReplyJitterMax    time.Duration `mapstructure:"reply_jitter_max" validate:"gtefield=ReplyJitterMin"`
	ReplyThinkMax     time.Duration `mapstructure:"reply_think_max" validate:"min=0"`
	ReplyTypingMin    time.Duration `mapstructure:"reply_typing_min" validate:"min=0"`
	ReplyTypingMax    time.Duration `mapstructure:"reply_typing_max" validate:"gtefield=ReplyTypingMin"`
}

func (s SimConfig) Timing() sim.Timing {
	return sim.Timing{
		Grace:          sim.Range{Min: s.GraceMin, Max: s.GraceMax},
		Opening:        sim.Range{Min: s.OpeningMin, Max: s.OpeningMax},
		Typing:         sim.Range{Min: s.TypingMin, Max: s.TypingMax},
		FollowUp:       sim.Range{Min: s.FollowUpMin, Max: s.FollowUpMax},
		FollowUpTyping: sim.Range{Min: s.FollowUpTypingMin, Max: s.FollowUpTypingMax},
		MaxFollowUps:   s.MaxFollowUps,
		ReplyPerChar:   s.ReplyPerChar,
		ReplyJitter:    sim.Range{Min: s.ReplyJitterMin, Max: s.ReplyJitterMax},
		ReplyThinkMax:  s.ReplyThinkMax,
		ReplyTyping:    sim.Range{Min: s.ReplyTypingMin, Max: s.ReplyTypingMax},
	}
}

// Load reads config/config.<CONFIG_ENV>.yaml, defaulting to dev.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName over the defaults and applies STRANGERS_*
// environment overrides. A missing file is not an error.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("secret", "strangers-dev-secret")
	v.SetDefault("admin_key", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("connect_limit", 10)
	v.SetDefault("connect_interval", "1m")

	servers := make([]map[string]any, 0, 1)
	for _, s := range rtc.DefaultServers() {
		servers = append(servers, map[string]any{"urls": s.URLs})
	}
	v.SetDefault("ice_servers", servers)

	t := sim.DefaultTiming()
	for key, val := range map[string]any{
		"sim.grace_min":            t.Grace.Min,
		"sim.grace_max":            t.Grace.Max,
		"sim.opening_min":          t.Opening.Min,
		"sim.opening_max":          t.Opening.Max,
		"sim.typing_min":           t.Typing.Min,
		"sim.typing_max":           t.Typing.Max,
		"sim.follow_up_min":        t.FollowUp.Min,
		"sim.follow_up_max":        t.FollowUp.Max,
		"sim.follow_up_typing_min": t.FollowUpTyping.Min,
		"sim.follow_up_typing_max": t.FollowUpTyping.Max,
		"sim.max_follow_ups":       t.MaxFollowUps,
		"sim.reply_per_char":       t.ReplyPerChar,
		"sim.reply_jitter_min":     t.ReplyJitter.Min,
		"sim.reply_jitter_max":     t.ReplyJitter.Max,
		"sim.reply_think_max":      t.ReplyThinkMax,
		"sim.reply_typing_min":     t.ReplyTyping.Min,
		"sim.reply_typing_max":     t.ReplyTyping.Max,
	} {
		v.SetDefault(key, val)
	}
}
