// Package confloader provides configuration loading mechanism.
//
// It uses Koanf to merge the env-style file, the YAML document and
// (optionally) the process environment into one Mapping.
package confloader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/sync/errgroup"
)

// Fixed file names looked up inside the base directory.
const (
	EnvFileName      = "config_env_template.env"
	DocumentFileName = "config_app_defaults.yaml"
)

const (
	// DSNKey is the required connection string key.
	DSNKey = "SYSTEM_VALIDATOR_DSN"
	// DSNPrefix is the literal prefix DSNKey must start with.
	DSNPrefix = "postgresql"
)

// DefaultEnvPrefix is the default process environment prefix used by
// WithProcessEnv.
const DefaultEnvPrefix = "SYSTEM_VALIDATOR_"

// DefaultEnvKeys are process environment keys overlaid by WithProcessEnv
// regardless of prefix.
var DefaultEnvKeys = []string{
	"API_BIND_HOST",
	"API_BIND_PORT",
	"UI_DIST_DIR",
	"LOG_LEVEL",
	"BLUEGREEN_SLOT",
}

// Observer is notified after every Load call.
type Observer interface {
	ObserveLoad(baseDir string, elapsed time.Duration, keys int, err error)
}

// Loader loads configuration directories. A Loader holds no state
// between calls and is safe for concurrent use.
type Loader struct {
	parser   koanf.Parser
	logger   *slog.Logger
	observer Observer

	processEnv bool
	envPrefix  string
	envKeys    map[string]struct{}
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithParser sets the parser used for the document file.
func WithParser(p koanf.Parser) Option {
	return func(l *Loader) {
		l.parser = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithObserver sets the load observer.
func WithObserver(o Observer) Option {
	return func(l *Loader) {
		l.observer = o
	}
}

// WithProcessEnv overlays process environment variables on top of both
// files. Variables starting with prefix or named in keys are taken
// verbatim. An empty prefix with no keys selects DefaultEnvPrefix and
// DefaultEnvKeys.
func WithProcessEnv(prefix string, keys ...string) Option {
	return func(l *Loader) {
		if prefix == "" && len(keys) == 0 {
			prefix = DefaultEnvPrefix
			keys = DefaultEnvKeys
		}
		l.processEnv = true
		l.envPrefix = prefix
		l.envKeys = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			l.envKeys[k] = struct{}{}
		}
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		parser: yaml.Parser(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads baseDir with a default Loader.
func Load(ctx context.Context, baseDir string) (Mapping, error) {
	return NewLoader().Load(ctx, baseDir)
}

// Load reads both files from baseDir, merges them and validates the
// result. The two files are read concurrently; merge order is fixed:
//  1. Env-style file
//  2. YAML document (overrides 1)
//  3. Process environment, if enabled (overrides 1 and 2)
//
// On error the returned Mapping is nil.
func (l *Loader) Load(ctx context.Context, baseDir string) (m Mapping, err error) {
	start := time.Now()
	if l.observer != nil {
		defer func() {
			l.observer.ObserveLoad(baseDir, time.Since(start), len(m), err)
		}()
	}

	var envVals, docVals map[string]any

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		envVals, err = l.readEnvFile(gctx, filepath.Join(baseDir, EnvFileName))
		return err
	})
	g.Go(func() error {
		var err error
		docVals, err = l.readDocument(gctx, filepath.Join(baseDir, DocumentFileName))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if envVals != nil {
		if err := k.Load(mapProvider(envVals), nil); err != nil {
			return nil, fmt.Errorf("merge %s: %w", EnvFileName, err)
		}
	}
	if docVals != nil {
		if err := k.Load(mapProvider(docVals), nil); err != nil {
			return nil, fmt.Errorf("merge %s: %w", DocumentFileName, err)
		}
	}
	if l.processEnv {
		if err := k.Load(env.Provider("", "", l.selectEnv), nil); err != nil {
			return nil, fmt.Errorf("load env: %w", err)
		}
	}

	merged := mappingOf(k.Raw())
	if err := Validate(merged); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			l.logger.Warn("configuration rejected",
				"base_dir", baseDir,
				"key", ve.Key,
				"reason", ve.Reason,
			)
		}
		return nil, err
	}

	l.logger.Debug("configuration loaded",
		"base_dir", baseDir,
		"keys", len(merged),
		"elapsed", time.Since(start),
	)
	return merged, nil
}

// readEnvFile returns nil, nil when the file does not exist.
func (l *Loader) readEnvFile(ctx context.Context, path string) (map[string]any, error) {
	ok, err := exists(path)
	if err != nil || !ok {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vals, err := envFile(path).Read()
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	l.logger.Debug("env file read", "path", path, "keys", len(vals))
	return vals, nil
}

// readDocument returns nil, nil when the file does not exist.
func (l *Loader) readDocument(ctx context.Context, path string) (map[string]any, error) {
	ok, err := exists(path)
	if err != nil || !ok {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := file.Provider(path).ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	vals, err := l.parser.Unmarshal(b)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	l.logger.Debug("document read", "path", path, "keys", len(vals))
	return vals, nil
}

// selectEnv keeps process variables matching the prefix or the key list.
func (l *Loader) selectEnv(key string) string {
	if l.envPrefix != "" && strings.HasPrefix(key, l.envPrefix) {
		return key
	}
	if _, ok := l.envKeys[key]; ok {
		return key
	}
	return ""
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}
