package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/casefile/internal/cache"
	"github.com/ppiankov/casefile/internal/logging"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/pipeline"
	"github.com/ppiankov/casefile/internal/store"
)

// registerDefaults makes every config key known to viper, so env variables
// and flags can override keys the config file does not mention
func registerDefaults(v *viper.Viper) {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults(v, "", tree)
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]interface{}) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if sub, ok := value.(map[string]interface{}); ok {
			setDefaults(v, full, sub)
			continue
		}
		v.SetDefault(full, value)
	}
}

// bindEnv reads environment variables that match CASEFILE_*, e.g. CASEFILE_STORE_DSN
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("CASEFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig resolves the effective configuration: flags, env, config file, defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *model.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// openStore opens the configured backend, or returns nil in dry-run mode
func openStore(ctx context.Context, cfg *model.Config, dryRun bool) (store.Backend, error) {
	if dryRun {
		return nil, nil
	}
	backend, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return backend, nil
}

// pipelineOptions builds the pipeline options shared by ingest and batch
func pipelineOptions(cfg *model.Config, logger *zap.Logger, st store.Store) []pipeline.Option {
	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if st != nil {
		opts = append(opts, pipeline.WithStore(st))
	}
	if cfg.Cache.Enabled {
		opts = append(opts, pipeline.WithCache(cache.NewLayeredCache(
			cfg.Cache.MemoryTTL, expandPath(cfg.Cache.Dir), cfg.Cache.DiskTTL)))
	}
	return opts
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

var unsafeFilename = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// sanitizeFilename turns a case id into a file name
func sanitizeFilename(s string) string {
	s = unsafeFilename.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		s = "case"
	}
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}
