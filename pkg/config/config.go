// Package config loads uvchost settings from a TOML file, UVCHOST_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/kevmo314/go-uvcstream/pkg/transfers"
)

const envPrefix = "UVCHOST"

var ErrConfigExists = errors.New("config file already exists")

type Config struct {
	Device          string `mapstructure:"device" toml:"device"`
	Encoding        string `mapstructure:"encoding" toml:"encoding"`
	Width           int    `mapstructure:"width" toml:"width"`
	Height          int    `mapstructure:"height" toml:"height"`
	RxFIFOLimit     uint32 `mapstructure:"rx_fifo_limit" toml:"rx_fifo_limit"`
	FrameBufferSize int    `mapstructure:"frame_buffer_size" toml:"frame_buffer_size"`
	QueueDepth      int    `mapstructure:"queue_depth" toml:"queue_depth"`
	Output          Output `mapstructure:"output" toml:"output"`
	Log             Log    `mapstructure:"log" toml:"log"`
}

type Output struct {
	// Dir receives one file per frame when set.
	Dir string `mapstructure:"dir" toml:"dir"`
	// QUIC is the host:port of a receiver to forward frames to when set.
	QUIC string `mapstructure:"quic" toml:"quic"`
}

type Log struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

func Default() Config {
	return Config{
		Encoding:        "mjpeg",
		Width:           640,
		Height:          480,
		RxFIFOLimit:     3 * 1024,
		FrameBufferSize: 0,
		QueueDepth:      4,
		Log:             Log{Level: "info", Format: "text"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/uvchost/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "uvchost", "config.toml")
}

// New returns a viper instance with defaults and environment bindings. If
// file is empty the default path and the working directory are searched.
func New(file string) *viper.Viper {
	v := viper.New()
	def := Default()
	v.SetDefault("device", def.Device)
	v.SetDefault("encoding", def.Encoding)
	v.SetDefault("width", def.Width)
	v.SetDefault("height", def.Height)
	v.SetDefault("rx_fifo_limit", def.RxFIFOLimit)
	v.SetDefault("frame_buffer_size", def.FrameBufferSize)
	v.SetDefault("queue_depth", def.QueueDepth)
	v.SetDefault("output.dir", def.Output.Dir)
	v.SetDefault("output.quic", def.Output.QUIC)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}
	return v
}

// Load reads the config file, if any, and decodes the merged settings. A
// missing file in the search path is not an error; a missing explicit file
// is.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return c, nil
}

// WriteDefault writes the default settings to path as TOML. It refuses to
// replace an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Wrap(ErrConfigExists, path)
	}
	data, err := toml.Marshal(Default())
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

// Target is the format and resolution to request from the camera.
func (c *Config) Target() (transfers.Target, error) {
	enc, err := transfers.ParseEncoding(c.Encoding)
	if err != nil {
		return transfers.Target{}, err
	}
	if c.Width <= 0 || c.Height <= 0 || c.Width > 0xffff || c.Height > 0xffff {
		return transfers.Target{}, errors.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	}
	return transfers.Target{Encoding: enc, Width: uint16(c.Width), Height: uint16(c.Height)}, nil
}

// ConfigureLogger applies the log level and format to logger.
func (c *Config) ConfigureLogger(logger *logrus.Logger, out io.Writer) error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return errors.Wrap(err, "log.level")
	}
	logger.SetLevel(level)
	logger.SetOutput(out)
	switch c.Log.Format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}
