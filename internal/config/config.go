// Package config loads the YAML configuration holding the Boosty session
// credentials and the download root. A missing file is not an error the
// user has to puzzle over: a commented sample is written in its place and
// the program exits with instructions.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config is looked for relative to the working
// directory.
const DefaultPath = "config.yaml"

const sampleConfig = `# boosty-dl configuration.
#
# Both auth values come from an authenticated browser session on boosty.to:
# open developer tools, pick any api.boosty.to request and copy the Cookie
# and Authorization request headers verbatim.
auth:
  cookie: ""
  auth_header: ""

downloading_settings:
  # Where author archives are created. One subdirectory per author.
  target_directory: "./boosty-downloads"
`

// ErrCreated is returned when no config existed and a sample was written.
// The caller prints guidance and exits non-zero.
var ErrCreated = errors.New("config file created, fill in credentials and rerun")

// Error reports an unreadable or invalid config file.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Auth carries the raw browser session values.
type Auth struct {
	Cookie     string `yaml:"cookie"`
	AuthHeader string `yaml:"auth_header"`
}

// DownloadingSettings holds filesystem preferences.
type DownloadingSettings struct {
	TargetDirectory string `yaml:"target_directory"`
}

// Config is the full configuration file.
type Config struct {
	Auth                Auth                `yaml:"auth"`
	DownloadingSettings DownloadingSettings `yaml:"downloading_settings"`
}

// Load reads the config at path (DefaultPath when empty). When the file
// does not exist a sample is written and ErrCreated returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if writeErr := os.WriteFile(path, []byte(sampleConfig), 0o600); writeErr != nil {
			return nil, &Error{Path: path, Err: writeErr}
		}
		return nil, &Error{Path: path, Err: ErrCreated}
	}
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if h := strings.TrimSpace(cfg.Auth.AuthHeader); h != "" && !strings.HasPrefix(h, "Bearer ") {
		return nil, &Error{Path: path, Err: errors.New(`auth.auth_header must be the full header value, starting with "Bearer "`)}
	}
	if strings.TrimSpace(cfg.DownloadingSettings.TargetDirectory) == "" {
		cfg.DownloadingSettings.TargetDirectory = "./boosty-downloads"
	}
	return &cfg, nil
}

// HasCredentials reports whether the session values are filled in. Runs
// without credentials still work for public posts, with a warning.
func (c *Config) HasCredentials() bool {
	return strings.TrimSpace(c.Auth.Cookie) != "" &&
		strings.TrimSpace(c.Auth.AuthHeader) != ""
}
