package config

import (
	"flag"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	sc "github.com/sksmith/go-spring-config"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	AppName  = "Fulfilment"
	Revision = "1"

	maxRetries = 5
)

var (
	// Build time arguments
	AppVersion  string
	Sha1Version string
	BuildTime   string

	// Runtime flags
	profile      *string
	configSource *string
	configUrl    *string
	configBranch *string
	configUser   *string
	configPass   *string
)

type StringConfig struct {
	Value       string `json:"value"       yaml:"value"`
	Default     string `json:"default"     yaml:"default"`
	Description string `json:"description" yaml:"description"`
}

type BoolConfig struct {
	Value       bool   `json:"value"       yaml:"value"`
	Default     bool   `json:"default"     yaml:"default"`
	Description string `json:"description" yaml:"description"`
}

type IntConfig struct {
	Value       int64  `json:"value"       yaml:"value"`
	Default     int64  `json:"default"     yaml:"default"`
	Description string `json:"description" yaml:"description"`
}

type Config struct {
	AppName     StringConfig    `json:"appName"     yaml:"appName"`
	AppVersion  StringConfig    `json:"appVersion"  yaml:"appVersion"`
	Sha1Version StringConfig    `json:"sha1Version" yaml:"sha1Version"`
	BuildTime   StringConfig    `json:"buildTime"   yaml:"buildTime"`
	Profile     StringConfig    `json:"profile"     yaml:"profile"`
	Revision    StringConfig    `json:"revision"    yaml:"revision"`
	Port        StringConfig    `json:"port"        yaml:"port"`
	Config      ConfigSource    `json:"config"      yaml:"config"`
	Log         LogConfig       `json:"log"         yaml:"log"`
	Db          DbConfig        `json:"db"          yaml:"db"`
	RabbitMQ    QueueConfig     `json:"rabbitmq"    yaml:"rabbitmq"`
	Locations   LocationsConfig `json:"locations"   yaml:"locations"`
}

type ConfigSource struct {
	Print  BoolConfig   `json:"print"  yaml:"print"`
	Source StringConfig `json:"source" yaml:"source"`
	Spring SpringConfig `json:"spring" yaml:"spring"`
}

type SpringConfig struct {
	Url    StringConfig `json:"url"    yaml:"url"`
	Branch StringConfig `json:"branch" yaml:"branch"`
	User   StringConfig `json:"user"   yaml:"user"`
	Pass   StringConfig `json:"pass"   yaml:"pass"   sensitive:"true"`
}

type LogConfig struct {
	Level      StringConfig `json:"level"      yaml:"level"`
	Structured BoolConfig   `json:"structured" yaml:"structured"`
}

type DbConfig struct {
	Name     StringConfig `json:"name"     yaml:"name"`
	Host     StringConfig `json:"host"     yaml:"host"`
	Port     StringConfig `json:"port"     yaml:"port"`
	Migrate  BoolConfig   `json:"migrate"  yaml:"migrate"`
	Clean    BoolConfig   `json:"clean"    yaml:"clean"`
	InMemory BoolConfig   `json:"inMemory" yaml:"inMemory"`
	User     StringConfig `json:"user"     yaml:"user"`
	Pass     StringConfig `json:"pass"     yaml:"pass"     sensitive:"true"`
	Pool     DbPoolConfig `json:"pool"     yaml:"pool"`
}

type DbPoolConfig struct {
	MinSize IntConfig `json:"minSize" yaml:"minSize"`
	MaxSize IntConfig `json:"maxSize" yaml:"maxSize"`
}

type QueueConfig struct {
	Host       StringConfig       `json:"host"       yaml:"host"`
	Port       StringConfig       `json:"port"       yaml:"port"`
	User       StringConfig       `json:"user"       yaml:"user"`
	Pass       StringConfig       `json:"pass"       yaml:"pass"       sensitive:"true"`
	Mock       BoolConfig         `json:"mock"       yaml:"mock"`
	Warehouse  ExchangeConfig     `json:"warehouse"  yaml:"warehouse"`
	Fulfilment ExchangeConfig     `json:"fulfilment" yaml:"fulfilment"`
	Catalog    CatalogQueueConfig `json:"catalog"    yaml:"catalog"`
}

type ExchangeConfig struct {
	Exchange StringConfig `json:"exchange" yaml:"exchange"`
}

type CatalogQueueConfig struct {
	Queue StringConfig   `json:"queue" yaml:"queue"`
	Dlt   ExchangeConfig `json:"dlt"   yaml:"dlt"`
}

type LocationsConfig struct {
	CacheSize IntConfig `json:"cacheSize" yaml:"cacheSize"`
}

func (c *Config) Print() {
	if c.Config.Print.Value {
		log.Info().Interface("config", c).Msg("the following configurations have successfully loaded")
	}
}

func init() {
	profile = flag.String("p", "", "profile for the application config")
	configSource = flag.String("s", "", "where to get configurations from: local or spring")
	configUrl = flag.String("cfgUrl", "", "url for application config server")
	configBranch = flag.String("cfgBranch", "", "branch to request from the configuration server (used for spring cloud config)")
	configUser = flag.String("cfgUser", "", "username to use when connecting to the application server")
	configPass = flag.String("cfgPass", "", "password to use when connecting to the application server")
}

// LoadDefaults returns a configuration holding only default values.
func LoadDefaults() *Config {
	c := newConfig()
	for _, s := range c.settings() {
		s.reset()
	}
	return c
}

// Load reads the named yaml file (without extension) from the working
// directory or its parents, then lets environment variables override it.
// A missing file leaves the defaults in place.
func Load(filename string) *Config {
	c := LoadDefaults()

	v := viper.New()
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("..")
	v.AddConfigPath("../config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal().Err(err).Str("filename", filename).Msg("failed to read configurations")
		}
		log.Warn().Str("filename", filename).Msg("no configuration file found, using defaults")
	}

	c.apply(func(key string) (interface{}, bool) {
		if !v.IsSet(key) {
			return nil, false
		}
		return v.Get(key), true
	})

	c.Profile.Value = firstSet(*profile, c.Profile.Value)
	c.Config.Source.Value = firstSet(*configSource, c.Config.Source.Value)
	c.Config.Spring.Url.Value = firstSet(*configUrl, c.Config.Spring.Url.Value)
	c.Config.Spring.Branch.Value = firstSet(*configBranch, c.Config.Spring.Branch.Value)
	c.Config.Spring.User.Value = firstSet(*configUser, c.Config.Spring.User.Value)
	c.Config.Spring.Pass.Value = firstSet(*configPass, c.Config.Spring.Pass.Value)

	switch c.Config.Source.Value {
	case "local":
	case "spring":
		if err := loadRemoteConfigs(c); err != nil {
			log.Fatal().Err(err).Msg("failed to load remote configurations")
		}
	default:
		log.Warn().
			Str("configSource", c.Config.Source.Value).
			Msg("unrecognized configuration source, using local")
	}

	return c
}

func loadRemoteConfigs(c *Config) error {
	var remote *sc.Config
	var err error

	for tryCount := 1; tryCount <= maxRetries; tryCount++ {
		remote, err = sc.LoadWithCreds(
			c.Config.Spring.Url.Value,
			c.AppName.Value,
			c.Config.Spring.Branch.Value,
			c.Config.Spring.User.Value,
			c.Config.Spring.Pass.Value,
			c.Profile.Value)
		if err == nil {
			break
		}
		log.Error().Err(err).Int("try", tryCount).Msg("failed to load configurations... retrying")
		time.Sleep(5 * time.Second)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	c.apply(func(key string) (interface{}, bool) {
		v := remote.Get(key)
		return v, v != nil
	})
	return nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type setting interface {
	reset()
	set(v interface{}) error
}

func (s *StringConfig) reset() { s.Value = s.Default }
func (s *BoolConfig) reset()   { s.Value = s.Default }
func (s *IntConfig) reset()    { s.Value = s.Default }

func (s *StringConfig) set(v interface{}) (err error) {
	s.Value, err = cast.ToStringE(v)
	return err
}

func (s *BoolConfig) set(v interface{}) (err error) {
	s.Value, err = cast.ToBoolE(v)
	return err
}

func (s *IntConfig) set(v interface{}) (err error) {
	s.Value, err = cast.ToInt64E(v)
	return err
}

func (c *Config) apply(lookup func(key string) (interface{}, bool)) {
	for key, s := range c.settings() {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		if err := s.set(v); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("ignoring invalid configuration value")
		}
	}
}

func (c *Config) settings() map[string]setting {
	return map[string]setting{
		"appName":     &c.AppName,
		"appVersion":  &c.AppVersion,
		"sha1Version": &c.Sha1Version,
		"buildTime":   &c.BuildTime,
		"port":        &c.Port,
		"profile":     &c.Profile,
		"revision":    &c.Revision,

		"config.print":         &c.Config.Print,
		"config.source":        &c.Config.Source,
		"config.spring.url":    &c.Config.Spring.Url,
		"config.spring.branch": &c.Config.Spring.Branch,
		"config.spring.user":   &c.Config.Spring.User,
		"config.spring.pass":   &c.Config.Spring.Pass,

		"log.level":      &c.Log.Level,
		"log.structured": &c.Log.Structured,

		"db.name":         &c.Db.Name,
		"db.host":         &c.Db.Host,
		"db.port":         &c.Db.Port,
		"db.user":         &c.Db.User,
		"db.pass":         &c.Db.Pass,
		"db.migrate":      &c.Db.Migrate,
		"db.clean":        &c.Db.Clean,
		"db.inMemory":     &c.Db.InMemory,
		"db.pool.minSize": &c.Db.Pool.MinSize,
		"db.pool.maxSize": &c.Db.Pool.MaxSize,

		"rabbitmq.host":                 &c.RabbitMQ.Host,
		"rabbitmq.port":                 &c.RabbitMQ.Port,
		"rabbitmq.user":                 &c.RabbitMQ.User,
		"rabbitmq.pass":                 &c.RabbitMQ.Pass,
		"rabbitmq.mock":                 &c.RabbitMQ.Mock,
		"rabbitmq.warehouse.exchange":   &c.RabbitMQ.Warehouse.Exchange,
		"rabbitmq.fulfilment.exchange":  &c.RabbitMQ.Fulfilment.Exchange,
		"rabbitmq.catalog.queue":        &c.RabbitMQ.Catalog.Queue,
		"rabbitmq.catalog.dlt.exchange": &c.RabbitMQ.Catalog.Dlt.Exchange,

		"locations.cacheSize": &c.Locations.CacheSize,
	}
}

func newConfig() *Config {
	return &Config{
		AppName: StringConfig{
			Default:     AppName,
			Description: "Name of the application in a human readable format. Example: Fulfilment",
		},
		AppVersion: StringConfig{
			Default:     AppVersion,
			Description: "Semantic version of the application. Example: v1.2.3",
		},
		Sha1Version: StringConfig{
			Default:     Sha1Version,
			Description: "Git sha1 hash of the application version.",
		},
		BuildTime: StringConfig{
			Default:     BuildTime,
			Description: "When this version of the application was compiled.",
		},
		Profile: StringConfig{
			Default:     "local",
			Description: "Running profile of the application, can assist with sensible defaults or change behavior. Examples: local, dev, prod",
		},
		Revision: StringConfig{
			Default:     Revision,
			Description: "A hard coded revision handy for quickly determining if local changes are running. Examples: 1, Two, 9999",
		},
		Port: StringConfig{
			Default:     "8080",
			Description: "Port that the application will bind to on startup. Examples: 8080, 3000",
		},
		Config: ConfigSource{
			Print: BoolConfig{
				Default:     false,
				Description: "Print configurations on startup.",
			},
			Source: StringConfig{
				Default:     "local",
				Description: "Where the application should go for configurations. Examples: local, spring",
			},
			Spring: SpringConfig{
				Url: StringConfig{
					Description: "The url of the Spring Cloud Config server.",
				},
				Branch: StringConfig{
					Description: "The git branch to use to pull configurations from. Examples: main, master, development",
				},
				User: StringConfig{
					Description: "User to use when connecting to the Spring Cloud Config server.",
				},
				Pass: StringConfig{
					Description: "Password to use when connecting to the Spring Cloud Config server.",
				},
			},
		},
		Log: LogConfig{
			Level: StringConfig{
				Default:     "info",
				Description: "The lowest level that the application should log at. Examples: info, warn, error.",
			},
			Structured: BoolConfig{
				Default:     false,
				Description: "Whether the application should output structured (json) logging, or human friendly plain text.",
			},
		},
		Db: DbConfig{
			Name: StringConfig{
				Default:     "fulfilment-db",
				Description: "The name of the database to connect to.",
			},
			Host: StringConfig{
				Default:     "localhost",
				Description: "Host of the database.",
			},
			Port: StringConfig{
				Default:     "5432",
				Description: "Port of the database.",
			},
			Migrate: BoolConfig{
				Default:     true,
				Description: "Whether or not database migrations should be executed on startup.",
			},
			Clean: BoolConfig{
				Default:     false,
				Description: "WARNING: THIS WILL DELETE ALL DATA FROM THE DB. Used only during migration. If clean is true, all 'down' migrations are executed.",
			},
			InMemory: BoolConfig{
				Default:     false,
				Description: "Whether or not the application should use an in memory database.",
			},
			User: StringConfig{
				Default:     "postgres",
				Description: "User the application will use to connect to the database.",
			},
			Pass: StringConfig{
				Default:     "postgres",
				Description: "Password the application will use for connecting to the database.",
			},
			Pool: DbPoolConfig{
				MinSize: IntConfig{
					Default:     1,
					Description: "The minimum number of connections the pool keeps open.",
				},
				MaxSize: IntConfig{
					Default:     10,
					Description: "The maximum number of connections the pool may open.",
				},
			},
		},
		RabbitMQ: QueueConfig{
			Host: StringConfig{
				Default:     "localhost",
				Description: "RabbitMQ's broker host.",
			},
			Port: StringConfig{
				Default:     "5672",
				Description: "RabbitMQ's broker host port.",
			},
			User: StringConfig{
				Default:     "guest",
				Description: "User the application will use to connect to RabbitMQ.",
			},
			Pass: StringConfig{
				Default:     "guest",
				Description: "Password the application will use to connect to RabbitMQ.",
			},
			Mock: BoolConfig{
				Default:     false,
				Description: "Whether or not the application should mock sending messages to RabbitMQ.",
			},
			Warehouse: ExchangeConfig{
				Exchange: StringConfig{
					Default:     "warehouse.exchange",
					Description: "RabbitMQ exchange to use for posting warehouse lifecycle events.",
				},
			},
			Fulfilment: ExchangeConfig{
				Exchange: StringConfig{
					Default:     "fulfilment.exchange",
					Description: "RabbitMQ exchange to use for posting fulfilment assignment events.",
				},
			},
			Catalog: CatalogQueueConfig{
				Queue: StringConfig{
					Default:     "catalog.queue",
					Description: "Queue used for listening to store and product updates coming from the catalog owners.",
				},
				Dlt: ExchangeConfig{
					Exchange: StringConfig{
						Default:     "catalog.dlt.exchange",
						Description: "Exchange used for posting catalog messages that could not be processed.",
					},
				},
			},
		},
		Locations: LocationsConfig{
			CacheSize: IntConfig{
				Default:     16,
				Description: "Number of resolved locations kept in memory when locations are read from the database.",
			},
		},
	}
}
