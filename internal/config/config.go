package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Chain   ChainConfig   `mapstructure:"chain"`
	Signer  SignerConfig  `mapstructure:"signer"`
	Cron    CronConfig    `mapstructure:"cron"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Stream  StreamConfig  `mapstructure:"stream"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// ChainConfig points the dashboard at one deployment of the protocol:
// an LCD endpoint for smart queries plus the controller and account
// registry contract addresses.
type ChainConfig struct {
	LCDURL     string        `mapstructure:"lcd_url"`
	WSURL      string        `mapstructure:"ws_url"`
	ChainID    string        `mapstructure:"chain_id"`
	Denom      string        `mapstructure:"denom"`
	Controller string        `mapstructure:"controller"`
	Registry   string        `mapstructure:"registry"`
	Explorer   string        `mapstructure:"explorer"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type SignerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CronConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	GameRefresh string `mapstructure:"game_refresh"`
}

type RefreshConfig struct {
	PageLimit       int `mapstructure:"page_limit"`
	FeaturedLimit   int `mapstructure:"featured_limit"`
	MemberPageLimit int `mapstructure:"member_page_limit"`
	TVLMemberLimit  int `mapstructure:"tvl_member_limit"`
}

type StreamConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.path", "data/ddream.db")
	v.SetDefault("chain.lcd_url", "https://api.xion-testnet-2.burnt.com")
	v.SetDefault("chain.ws_url", "wss://rpc.xion-testnet-2.burnt.com/websocket")
	v.SetDefault("chain.chain_id", "xion-testnet-2")
	v.SetDefault("chain.denom", "uxion")
	v.SetDefault("chain.controller", "")
	v.SetDefault("chain.registry", "")
	v.SetDefault("chain.explorer", "https://www.mintscan.io/xion-testnet")
	v.SetDefault("chain.timeout", "15s")
	v.SetDefault("signer.base_url", "http://localhost:8090")
	v.SetDefault("signer.timeout", "30s")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.game_refresh", "@every 10s")
	v.SetDefault("refresh.page_limit", 50)
	v.SetDefault("refresh.featured_limit", 4)
	v.SetDefault("refresh.member_page_limit", 10)
	v.SetDefault("refresh.tvl_member_limit", 100)
	v.SetDefault("stream.enabled", false)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
