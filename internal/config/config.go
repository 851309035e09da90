// Package config loads the pets view configuration asset: the pet service URL
// and the deployment stage.
package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultAssetPath is where the asset is looked up when nothing else is configured.
const DefaultAssetPath = "assets/config.json"

const maxAssetBytes = 1 << 20

// ErrNoSource is returned when there is neither an asset nor env overrides to read.
var ErrNoSource = errors.New("config: no configuration source")

// ErrAssetTooLarge is returned for a URL asset bigger than 1 MiB.
var ErrAssetTooLarge = errors.New("config: asset too large")

// Configuration is the key-value blob consumed by the pets view.
// Values are taken as-is; nothing here is validated.
type Configuration struct {
	PetServiceURL string `json:"petServiceUrl" yaml:"petServiceUrl" toml:"petServiceUrl" env:"PETSVIEW_PET_SERVICE_URL"`
	Stage         string `json:"stage" yaml:"stage" toml:"stage" env:"PETSVIEW_STAGE"`
}

// AssetLoader reads a Configuration from a file or http(s) URL and then
// applies environment overrides.
type AssetLoader struct {
	// Source is a file path or an http(s) URL. Empty means env only.
	Source string
	// HTTP is used for URL sources. Nil means http.DefaultClient.
	HTTP *http.Client
	// SkipEnv disables PETSVIEW_* overrides.
	SkipEnv bool
}

// Load reads the asset and applies overrides. It honors ctx for URL sources.
func (l AssetLoader) Load(ctx context.Context) (Configuration, error) {
	var cfg Configuration

	src := strings.TrimSpace(l.Source)
	if src == "" && l.SkipEnv {
		return cfg, ErrNoSource
	}

	if src != "" {
		data, err := l.read(ctx, src)
		if err != nil {
			return cfg, err
		}
		if err := Decode(formatOf(src), data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", src, err)
		}
	}

	if !l.SkipEnv {
		if err := env.Parse(&cfg); err != nil {
			return cfg, fmt.Errorf("parse env: %w", err)
		}
	}
	return cfg, nil
}

func (l AssetLoader) read(ctx context.Context, src string) ([]byte, error) {
	if !isURL(src) {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		return data, nil
	}

	client := l.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("config request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch config %s: status %d", src, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read config body: %w", err)
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrAssetTooLarge, src, maxAssetBytes)
	}
	return data, nil
}

// Format names an encoding for configuration assets.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Decode unmarshals data into cfg. Unknown formats are read as YAML.
func Decode(format Format, data []byte, cfg *Configuration) error {
	switch format {
	case FormatTOML:
		return toml.Unmarshal(data, cfg)
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return json.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func formatOf(src string) Format {
	p := src
	if isURL(src) {
		if u, err := url.Parse(src); err == nil {
			p = u.Path
		}
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// ResolvePath returns explicit when set, then $XDG_CONFIG_HOME/petsview/config.yaml
// (or ~/.config/petsview/config.yaml), then DefaultAssetPath, keeping only
// candidates that exist. It returns "" when none do.
func ResolvePath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	var candidates []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "petsview", "config.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "petsview", "config.yaml"))
	}
	candidates = append(candidates, DefaultAssetPath)

	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c
		}
	}
	return ""
}
