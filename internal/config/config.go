package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/prerender/internal/errors"
)

const (
	// ConfigFileName is the default name of the configuration file.
	ConfigFileName = "prerender.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultRoot is the root component used when the configuration names none.
	DefaultRoot = "root"

	// DefaultStats is the default path of the client build metadata.
	DefaultStats = "dist/webpack-stats.json"
)

// candidateFiles lists the file names Load looks for, in order.
var candidateFiles = []string{ConfigFileName, "prerender.yaml", "prerender.yml"}

// Config represents the complete project configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// RootComponent names the registered root component.
	RootComponent string `json:"rootComponent,omitempty" yaml:"rootComponent,omitempty"`

	// RootServerComponent names a server-only root component. It takes
	// precedence over RootComponent.
	RootServerComponent string `json:"rootServerComponent,omitempty" yaml:"rootServerComponent,omitempty"`

	// Routes names the registered routes builder.
	Routes string `json:"routes,omitempty" yaml:"routes,omitempty"`

	// Redux configures the per-request state store.
	Redux ReduxConfig `json:"redux,omitempty" yaml:"redux,omitempty"`

	// Providers lists, outermost first, the providers wrapped around the root.
	Providers []string `json:"providers,omitempty" yaml:"providers,omitempty"`

	// Assets locates the client build metadata.
	Assets AssetsConfig `json:"assets,omitempty" yaml:"assets,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty" yaml:"static,omitempty"`

	// Server contains HTTP listener configuration.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Document contains settings for the assembled HTML document.
	Document DocumentConfig `json:"document,omitempty" yaml:"document,omitempty"`

	// Dev contains development-only settings.
	Dev DevConfig `json:"dev,omitempty" yaml:"dev,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ReduxConfig names the store middleware list and root reducer.
type ReduxConfig struct {
	// Middleware names a registered per-request middleware list.
	// Empty means no extra middleware.
	Middleware string `json:"middleware,omitempty" yaml:"middleware,omitempty"`

	// Reducers names the registered root reducer.
	Reducers string `json:"reducers,omitempty" yaml:"reducers,omitempty"`
}

// AssetsConfig locates client build metadata.
type AssetsConfig struct {
	// Stats is the path to the build stats file, relative to the project root.
	Stats string `json:"stats,omitempty" yaml:"stats,omitempty"`

	// PublicPath is prefixed to asset file names lacking a leading slash.
	PublicPath string `json:"publicPath,omitempty" yaml:"publicPath,omitempty"`

	// S3 reads the stats file from an S3 object instead of the local disk.
	S3 *S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config locates build stats in an S3 bucket.
type S3Config struct {
	Bucket   string `json:"bucket" yaml:"bucket"`
	Key      string `json:"key" yaml:"key"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/").
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// ReadTimeout and WriteTimeout are Go durations (e.g., "10s").
	// Rendering has no internal timeout; these bound a request from outside.
	ReadTimeout  string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// Compress enables gzip compression of responses.
	Compress bool `json:"compress,omitempty" yaml:"compress,omitempty"`
}

// DocumentConfig contains settings for the assembled HTML document.
type DocumentConfig struct {
	Title string            `json:"title,omitempty" yaml:"title,omitempty"`
	Lang  string            `json:"lang,omitempty" yaml:"lang,omitempty"`
	Meta  map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// DevConfig contains development-only settings.
type DevConfig struct {
	// Watch lists paths whose changes trigger a reload.
	Watch []string `json:"watch,omitempty" yaml:"watch,omitempty"`

	// LiveReload pushes reload notifications to open browsers.
	LiveReload bool `json:"liveReload,omitempty" yaml:"liveReload,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{
		Dev: DevConfig{LiveReload: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for prerender.json, then prerender.yaml, then prerender.yml.
func Load(dir string) (*Config, error) {
	for _, name := range candidateFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E121").
		WithDetail("No prerender.json found in " + dir)
}

// LoadFile reads configuration from the specified file path.
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{Dev: DevConfig{LiveReload: true}}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Routes == "" {
		c.Routes = "routes"
	}
	if c.Assets.Stats == "" {
		c.Assets.Stats = DefaultStats
	}
	if c.Assets.PublicPath == "" {
		c.Assets.PublicPath = "/dist/"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Document.Lang == "" {
		c.Document.Lang = "en"
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{c.Assets.Stats}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("server.port must be between 0 and 65535")
	}
	for _, d := range []struct{ name, value string }{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return errors.New("E122").
				WithDetail(d.name + " is not a duration: " + d.value)
		}
	}
	if s3 := c.Assets.S3; s3 != nil && (s3.Bucket == "" || s3.Key == "") {
		return errors.New("E122").
			WithDetail("assets.s3 needs both bucket and key")
	}
	for i, p := range c.Providers {
		if strings.TrimSpace(p) == "" {
			return errors.New("E122").
				WithDetail("providers[" + strconv.Itoa(i) + "] is empty")
		}
	}
	return nil
}

// RootName returns the root component to render, preferring the server-only
// root over the shared one and falling back to DefaultRoot.
func (c *Config) RootName() string {
	if c.RootServerComponent != "" {
		return c.RootServerComponent
	}
	if c.RootComponent != "" {
		return c.RootComponent
	}
	return DefaultRoot
}

// Address returns the listen address string.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// ReadTimeout returns the parsed read timeout (zero when unset).
func (c *Config) ReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// WriteTimeout returns the parsed write timeout (zero when unset).
func (c *Config) WriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

// StatsPath returns the absolute path to the build stats file.
func (c *Config) StatsPath() string {
	return c.resolve(c.Assets.Stats)
}

// StaticPath returns the absolute path to the static directory, or "" when
// static serving is disabled.
func (c *Config) StaticPath() string {
	if c.Static.Dir == "" {
		return ""
	}
	return c.resolve(c.Static.Dir)
}

// WatchPaths returns the absolute development watch paths, always including
// the configuration file itself when it was loaded from disk.
func (c *Config) WatchPaths() []string {
	paths := make([]string, 0, len(c.Dev.Watch)+1)
	if c.configPath != "" {
		paths = append(paths, c.configPath)
	}
	for _, p := range c.Dev.Watch {
		paths = append(paths, c.resolve(p))
	}
	return paths
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range candidateFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E121").
				WithDetail("No prerender.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
