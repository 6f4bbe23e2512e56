package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/meetvoice/message-history-service/pkg/database"
	"github.com/meetvoice/message-history-service/pkg/log"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Mongo    MongoConfig     `mapstructure:"mongo"`
	Database database.Config `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Cache    CacheConfig     `mapstructure:"cache"`
	Log      log.Config      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type MongoConfig struct {
	URI                string        `mapstructure:"uri"`
	Database           string        `mapstructure:"database"`
	MessagesCollection string        `mapstructure:"messages_collection"`
	ContactsCollection string        `mapstructure:"contacts_collection"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "meetvoice_gateway")
	viper.SetDefault("mongo.messages_collection", "messages")
	viper.SetDefault("mongo.contacts_collection", "contacts")
	viper.SetDefault("mongo.connect_timeout", "10s")
	viper.SetDefault("database.driver", "")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("cache.prefix", "msg:conversations")
	viper.SetDefault("cache.ttl", "30s")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.service_name", "message-history-service")

	// Env overrides (for Docker)
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("mongo.uri", "MONGO_URI")
	_ = viper.BindEnv("mongo.database", "MONGO_DATABASE")
	_ = viper.BindEnv("database.driver", "DB_DRIVER")
	_ = viper.BindEnv("database.host", "DB_HOST")
	_ = viper.BindEnv("database.port", "DB_PORT")
	_ = viper.BindEnv("database.user", "DB_USER")
	_ = viper.BindEnv("database.password", "DB_PASSWORD")
	_ = viper.BindEnv("database.dbname", "DB_NAME")
	_ = viper.BindEnv("redis.address", "REDIS_ADDRESS")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FallbackConfigured reports whether a fallback relational store was
// configured at all. Connectivity is still probed once at startup; an
// unreachable store leaves the service running without enrichment.
func (c *Config) FallbackConfigured() bool {
	return c.Database.Driver != ""
}
