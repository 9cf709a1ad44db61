// Package config loads the geostamp configuration from defaults,
// an optional file, the environment and command line flags.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/arnauagrupocobra-tech/geostamp"
	"github.com/arnauagrupocobra-tech/geostamp/internal/archive"
	"github.com/arnauagrupocobra-tech/geostamp/profile"
)

// EnvPrefix prefixes the environment variables of the configuration keys.
const EnvPrefix = "GEOSTAMP"

// Config represents the application configuration
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	Offset         string  `mapstructure:"offset"`
	Radius         float64 `mapstructure:"radius"`
	Quality        int     `mapstructure:"quality"`
	Profile        string  `mapstructure:"profile"`
	FilenamePrefix string  `mapstructure:"filename_prefix"`
	AutoOrient     bool    `mapstructure:"auto_orient"`
	MaxBodyBytes   int64   `mapstructure:"max_body_bytes"`
	MaxPixels      int64   `mapstructure:"max_pixels"`

	// Profiles are registered in addition to the built-in ones.
	Profiles []profile.Profile `mapstructure:"profiles"`

	Archive archive.Config `mapstructure:"archive"`
}

// New creates a new configuration with default values
func New() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           5000,
		LogLevel:       "info",
		Offset:         geostamp.DefaultOffset,
		Radius:         geostamp.DefaultRadius,
		Quality:        geostamp.DefaultQuality,
		Profile:        profile.DefaultName,
		FilenamePrefix: geostamp.DefaultFilenamePrefix,
		MaxBodyBytes:   32 << 20,
		MaxPixels:      geostamp.DefaultMaxPixels,
		Archive: archive.Config{
			Region: "us-east-1",
			UseSSL: true,
		},
	}
}

// SetDefaults registers the defaults of New in v,
// so that all keys can be set from the environment.
func SetDefaults(v *viper.Viper) {
	d := New()
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("offset", d.Offset)
	v.SetDefault("radius", d.Radius)
	v.SetDefault("quality", d.Quality)
	v.SetDefault("profile", d.Profile)
	v.SetDefault("filename_prefix", d.FilenamePrefix)
	v.SetDefault("auto_orient", d.AutoOrient)
	v.SetDefault("max_body_bytes", d.MaxBodyBytes)
	v.SetDefault("max_pixels", d.MaxPixels)
	v.SetDefault("profiles", []interface{}{})

	v.SetDefault("archive.endpoint", d.Archive.Endpoint)
	v.SetDefault("archive.region", d.Archive.Region)
	v.SetDefault("archive.bucket", d.Archive.Bucket)
	v.SetDefault("archive.access_key", d.Archive.AccessKey)
	v.SetDefault("archive.secret_key", d.Archive.SecretKey)
	v.SetDefault("archive.use_ssl", d.Archive.UseSSL)
	v.SetDefault("archive.prefix", d.Archive.Prefix)
}

// LoadDotEnv loads environment variables from the named files,
// or .env if none are given. Missing files are ignored,
// and variables already set are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, fn := range files {
		if _, err := os.Stat(fn); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(fn); err != nil {
			return errors.Wrapf(err, "config: loading %s", fn)
		}
	}
	return nil
}

// Load reads the configuration into a Config.
//
// Values are taken from flags bound to v, then environment variables
// named EnvPrefix_KEY, then configFile (if not empty), then the defaults.
// The PORT variable set by hosting platforms is used for the port
// when GEOSTAMP_PORT is not set.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", EnvPrefix+"_PORT", "PORT"); err != nil {
		return nil, errors.Wrap(err, "config")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: reading %s", configFile)
		}
	}

	cfg := new(Config)
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, errors.Wrap(err, "config: decoding")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values of c.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("config: invalid port %d", c.Port)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return errors.Errorf("config: invalid quality %d", c.Quality)
	}
	if !(c.Radius > 0) {
		return errors.Errorf("config: invalid radius %v", c.Radius)
	}
	if c.MaxBodyBytes <= 0 {
		return errors.Errorf("config: invalid max_body_bytes %d", c.MaxBodyBytes)
	}
	if c.MaxPixels <= 0 {
		return errors.Errorf("config: invalid max_pixels %d", c.MaxPixels)
	}
	if _, err := geostamp.ParseOffset(c.Offset); err != nil {
		return errors.Wrap(err, "config")
	}
	for _, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			return errors.Wrap(err, "config")
		}
	}
	return nil
}

// Addr returns the address the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// StamperOptions registers the custom profiles of c
// and returns the options for geostamp.NewStamper.
func (c *Config) StamperOptions() (geostamp.Options, error) {
	for _, p := range c.Profiles {
		if err := profile.Register(p); err != nil {
			return geostamp.Options{}, errors.Wrap(err, "config")
		}
	}

	p, ok := profile.Lookup(c.Profile)
	if !ok {
		return geostamp.Options{}, errors.Errorf("config: unknown profile %q (have %s)",
			c.Profile, strings.Join(profile.Names(), ", "))
	}

	zone, err := geostamp.ParseOffset(c.Offset)
	if err != nil {
		return geostamp.Options{}, errors.Wrap(err, "config")
	}

	return geostamp.Options{
		Profile:        p,
		Zone:           zone,
		Radius:         c.Radius,
		Quality:        c.Quality,
		FilenamePrefix: c.FilenamePrefix,
		AutoOrient:     c.AutoOrient,
		MaxPixels:      c.MaxPixels,
	}, nil
}
