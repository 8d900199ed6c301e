package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrMissingArgument = errors.New("missing required argument")
	ErrUnknownKey      = errors.New("unknown configuration key")
)

const (
	DefaultHost      = "backlog.jp"
	DefaultPageSize  = 100
	MaxPageSize      = 100
	DefaultOutputDir = "."
)

const envPrefix = "ATTACHSYNC_"

// Settings holds everything needed to reach a space and lay files out on disk.
// A zero Timeout means the HTTP client never times out.
type Settings struct {
	APIKey    string        `yaml:"api_key,omitempty"`
	SpaceID   string        `yaml:"space_id,omitempty"`
	Host      string        `yaml:"host,omitempty"`
	PageSize  int           `yaml:"page_size,omitempty"`
	OutputDir string        `yaml:"output_dir,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// Keys lists the names accepted by Set, in display order.
var Keys = []string{"api_key", "space_id", "host", "page_size", "output_dir", "timeout"}

func Load() (*Settings, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	settings := &Settings{}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return settings, nil
}

func (s *Settings) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return s.SaveFile(path)
}

func (s *Settings) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	_, writeErr := file.Write(data)
	closeErr := file.Close()
	if writeErr != nil {
		return fmt.Errorf("write config: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("write config: %w", closeErr)
	}

	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}

	return nil
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".attachsync"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ApplyEnv overrides fields with ATTACHSYNC_* variables found by lookup.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(envPrefix + "API_KEY"); ok && v != "" {
		s.APIKey = v
	}
	if v, ok := lookup(envPrefix + "SPACE_ID"); ok && v != "" {
		s.SpaceID = v
	}
	if v, ok := lookup(envPrefix + "HOST"); ok && v != "" {
		s.Host = v
	}
	if v, ok := lookup(envPrefix + "OUTPUT_DIR"); ok && v != "" {
		s.OutputDir = v
	}
}

func (s *Settings) ApplyDefaults() {
	if strings.TrimSpace(s.Host) == "" {
		s.Host = DefaultHost
	}
	if s.PageSize <= 0 || s.PageSize > MaxPageSize {
		s.PageSize = DefaultPageSize
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		s.OutputDir = DefaultOutputDir
	}
	if s.Timeout < 0 {
		s.Timeout = 0
	}
}

// Missing returns the flag names of required credentials that are unset.
func (s *Settings) Missing() []string {
	var missing []string
	if strings.TrimSpace(s.APIKey) == "" {
		missing = append(missing, "-k API_KEY")
	}
	if strings.TrimSpace(s.SpaceID) == "" {
		missing = append(missing, "-s SPACE_ID")
	}
	return missing
}

func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "api_key":
		s.APIKey = value
	case "space_id":
		s.SpaceID = value
	case "host":
		s.Host = value
	case "page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("page_size: %w", err)
		}
		if n <= 0 || n > MaxPageSize {
			return fmt.Errorf("page_size must be between 1 and %d", MaxPageSize)
		}
		s.PageSize = n
	case "output_dir":
		s.OutputDir = value
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		s.Timeout = d
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "api_key":
		return s.APIKey, nil
	case "space_id":
		return s.SpaceID, nil
	case "host":
		return s.Host, nil
	case "page_size":
		return strconv.Itoa(s.PageSize), nil
	case "output_dir":
		return s.OutputDir, nil
	case "timeout":
		return s.Timeout.String(), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// MaskToken keeps the first and last four characters of long tokens only;
// anything of eight characters or fewer is hidden completely.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return fmt.Sprintf("%s***%s", token[:4], token[len(token)-4:])
}
