// Package config holds the process configuration loaded from a YAML file,
// YAMMI_ environment overrides and built-in defaults.
package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "YAMMI"

type SysConfig struct {
	Appid    string `yaml:"appid" mapstructure:"appid"`
	Location string `yaml:"location" mapstructure:"location"`
	Workdir  string `yaml:"workdir" mapstructure:"workdir"`
	Debug    bool   `yaml:"debug" mapstructure:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" mapstructure:"host"`
	Port   int    `yaml:"port" mapstructure:"port"`
	Secret string `yaml:"secret" mapstructure:"secret"`
}

// DBConfig selects the relational database used by the database backend.
// For sqlite, Name is a file path relative to the workdir.
type DBConfig struct {
	Type     string `yaml:"type" mapstructure:"type"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Name     string `yaml:"name" mapstructure:"name"`
	User     string `yaml:"user" mapstructure:"user"`
	Passwd   string `yaml:"passwd" mapstructure:"passwd"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
	IdleConn int    `yaml:"idle_conn" mapstructure:"idle_conn"`
	Debug    bool   `yaml:"debug" mapstructure:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" mapstructure:"mode"`
	Level      string `yaml:"level" mapstructure:"level"`
	FileEnable bool   `yaml:"file_enable" mapstructure:"file_enable"`
	Filename   string `yaml:"filename" mapstructure:"filename"`
}

type StoreConfig struct {
	Backend       string        `yaml:"backend" mapstructure:"backend"`
	CacheFile     string        `yaml:"cache_file" mapstructure:"cache_file"`
	PollInterval  time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	Optimistic    bool          `yaml:"optimistic" mapstructure:"optimistic"`
	Workers       int           `yaml:"workers" mapstructure:"workers"`
	RemoteURL     string        `yaml:"remote_url" mapstructure:"remote_url"`
	RemoteToken   string        `yaml:"remote_token" mapstructure:"remote_token"`
	RemoteTimeout time.Duration `yaml:"remote_timeout" mapstructure:"remote_timeout"`
}

// AdminConfig is the single back-office account. PasswordHash is a bcrypt hash;
// when empty, Password is hashed at startup.
type AdminConfig struct {
	Username     string        `yaml:"username" mapstructure:"username"`
	Password     string        `yaml:"password" mapstructure:"password"`
	PasswordHash string        `yaml:"password_hash" mapstructure:"password_hash"`
	TokenTTL     time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

type CheckoutConfig struct {
	WhatsAppEndpoint string `yaml:"whatsapp_endpoint" mapstructure:"whatsapp_endpoint"`
	NodeID           int64  `yaml:"node_id" mapstructure:"node_id"`
}

type MailConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system" mapstructure:"system"`
	Web      WebConfig      `yaml:"web" mapstructure:"web"`
	Database DBConfig       `yaml:"database" mapstructure:"database"`
	Logger   LogConfig      `yaml:"logger" mapstructure:"logger"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Admin    AdminConfig    `yaml:"admin" mapstructure:"admin"`
	Checkout CheckoutConfig `yaml:"checkout" mapstructure:"checkout"`
	Mail     MailConfig     `yaml:"mail" mapstructure:"mail"`
}

// GetLogDir returns <workdir>/logs
func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

// GetDataDir returns <workdir>/data
func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

// CachePath resolves the bbolt file against the data dir
func (c *AppConfig) CachePath() string {
	if filepath.IsAbs(c.Store.CacheFile) {
		return c.Store.CacheFile
	}
	return filepath.Join(c.GetDataDir(), c.Store.CacheFile)
}

// Addr is the listen address of the web server
func (c *AppConfig) Addr() string {
	return net.JoinHostPort(c.Web.Host, strconv.Itoa(c.Web.Port))
}

func Default() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "yammi",
			Location: "Africa/Dar_es_Salaam",
			Workdir:  "/var/yammi",
		},
		Web: WebConfig{
			Host:   "0.0.0.0",
			Port:   8080,
			Secret: "9b6de5cc-0731-4bf1-8e31-yammiyami01",
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "yammi",
			User:     "postgres",
			Passwd:   "postgres",
			MaxConn:  20,
			IdleConn: 5,
		},
		Logger: LogConfig{
			Mode:     "development",
			Level:    "info",
			Filename: "/var/yammi/logs/yammi.log",
		},
		Store: StoreConfig{
			Backend:       "local",
			CacheFile:     "cache.db",
			PollInterval:  30 * time.Second,
			Workers:       4,
			RemoteTimeout: 10 * time.Second,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "yammiyami",
			TokenTTL: 12 * time.Hour,
		},
		Checkout: CheckoutConfig{
			WhatsAppEndpoint: "https://wa.me/255754000000",
			NodeID:           1,
		},
		Mail: MailConfig{
			Port: 587,
			From: "noreply@yammiyami.co.tz",
		},
	}
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *AppConfig) {
	v.SetDefault("system.appid", d.System.Appid)
	v.SetDefault("system.location", d.System.Location)
	v.SetDefault("system.workdir", d.System.Workdir)
	v.SetDefault("system.debug", d.System.Debug)

	v.SetDefault("web.host", d.Web.Host)
	v.SetDefault("web.port", d.Web.Port)
	v.SetDefault("web.secret", d.Web.Secret)

	v.SetDefault("database.type", d.Database.Type)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.passwd", d.Database.Passwd)
	v.SetDefault("database.max_conn", d.Database.MaxConn)
	v.SetDefault("database.idle_conn", d.Database.IdleConn)
	v.SetDefault("database.debug", d.Database.Debug)

	v.SetDefault("logger.mode", d.Logger.Mode)
	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.file_enable", d.Logger.FileEnable)
	v.SetDefault("logger.filename", d.Logger.Filename)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.cache_file", d.Store.CacheFile)
	v.SetDefault("store.poll_interval", d.Store.PollInterval)
	v.SetDefault("store.optimistic", d.Store.Optimistic)
	v.SetDefault("store.workers", d.Store.Workers)
	v.SetDefault("store.remote_url", d.Store.RemoteURL)
	v.SetDefault("store.remote_token", d.Store.RemoteToken)
	v.SetDefault("store.remote_timeout", d.Store.RemoteTimeout)

	v.SetDefault("admin.username", d.Admin.Username)
	v.SetDefault("admin.password", d.Admin.Password)
	v.SetDefault("admin.password_hash", d.Admin.PasswordHash)
	v.SetDefault("admin.token_ttl", d.Admin.TokenTTL)

	v.SetDefault("checkout.whatsapp_endpoint", d.Checkout.WhatsAppEndpoint)
	v.SetDefault("checkout.node_id", d.Checkout.NodeID)

	v.SetDefault("mail.enabled", d.Mail.Enabled)
	v.SetDefault("mail.host", d.Mail.Host)
	v.SetDefault("mail.port", d.Mail.Port)
	v.SetDefault("mail.username", d.Mail.Username)
	v.SetDefault("mail.password", d.Mail.Password)
	v.SetDefault("mail.from", d.Mail.From)
}

// Load reads path (optional) over the defaults, then applies YAMMI_* env vars.
// YAMMI_WEB_PORT overrides web.port.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "config file %s", path)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}
