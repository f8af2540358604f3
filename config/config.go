package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "SHOPFINDER_CONFIG_FILE"

type search struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	DefaultLimit  int           `mapstructure:"default_limit"`
	TrendingLimit int           `mapstructure:"trending_limit"`
}

type remoteSource struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type sources struct {
	ExternalA remoteSource `mapstructure:"external_a"`
	ExternalB remoteSource `mapstructure:"external_b"`
}

type consumers struct {
	SearchStatsGroup string `mapstructure:"search_stats_group"`
}

type topics struct {
	SearchEvents string `mapstructure:"search_events"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type broker struct {
	SeedBrokers        []string      `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string      `mapstructure:"schema_registry_urls"`
	Topics             topics        `mapstructure:"topics"`
	Consumers          consumers     `mapstructure:"consumers"`
	TLS                tlsFiles      `mapstructure:"tls"`
	ProduceTimeout     time.Duration `mapstructure:"produce_timeout"`
}

// Enabled reports whether search events are published and counted.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type Config struct {
	LogLevel           slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr     string        `mapstructure:"http_server_addr"`
	HTTPHandlerTimeout time.Duration `mapstructure:"http_handler_timeout"`
	SQLDB              string        `mapstructure:"sql_db"`
	Search             search        `mapstructure:"search"`
	Sources            sources       `mapstructure:"sources"`
	Broker             broker        `mapstructure:"broker"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8000")
	v.SetDefault("http_handler_timeout", "35s")
	v.SetDefault("search.timeout", "30s")
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.trending_limit", 10)
	v.SetDefault("sources.external_a.base_url", "https://dummyjson.com")
	v.SetDefault("sources.external_a.timeout", "10s")
	v.SetDefault("sources.external_b.base_url", "https://fakestoreapi.com")
	v.SetDefault("sources.external_b.timeout", "10s")
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.search_events", "search-events")
	v.SetDefault("broker.consumers.search_stats_group", "search-stats")
	v.SetDefault("broker.produce_timeout", "5s")
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
}

func Load() Config {
	cfg, err := load(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

func load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPHandlerTimeout=%s
	SQLDB=%q

	Search:
	Timeout=%s
	DefaultLimit=%d
	TrendingLimit=%d

	Sources:
	ExternalA=%q (timeout %s)
	ExternalB=%q (timeout %s)

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	ProduceTimeout=%s
	Topics:
		SearchEvents=%q
	Consumers:
		SearchStatsGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPHandlerTimeout,
		redactDSN(c.SQLDB),
		c.Search.Timeout,
		c.Search.DefaultLimit,
		c.Search.TrendingLimit,
		c.Sources.ExternalA.BaseURL,
		c.Sources.ExternalA.Timeout,
		c.Sources.ExternalB.BaseURL,
		c.Sources.ExternalB.Timeout,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.CA != "",
		c.Broker.ProduceTimeout,
		c.Broker.Topics.SearchEvents,
		c.Broker.Consumers.SearchStatsGroup,
	)
}

// redactDSN hides the password of a URL style DSN.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":***@" + host
}
