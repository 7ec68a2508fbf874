package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ServiceConfig points the client at the remote analysis service.
type ServiceConfig struct {
	BaseURL         string `json:"base_url"`
	UploadTimeoutMS int    `json:"upload_timeout_ms"`
}

// StorageConfig selects the local persistence backend.
type StorageConfig struct {
	BaseDir string `json:"base_dir"`
	Backend string `json:"backend"` // "sqlite" or "json"
}

// LogConfig controls the rotated diagnostic log file.
type LogConfig struct {
	Level      string `json:"level"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

type Config struct {
	Service ServiceConfig `json:"service"`
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
}

type fileServiceConfig struct {
	BaseURL         *string `json:"base_url"`
	UploadTimeoutMS *int    `json:"upload_timeout_ms"`
}

type fileStorageConfig struct {
	BaseDir *string `json:"base_dir"`
	Backend *string `json:"backend"`
}

type fileLogConfig struct {
	Level      *string `json:"level"`
	MaxSizeMB  *int    `json:"max_size_mb"`
	MaxBackups *int    `json:"max_backups"`
}

type fileConfig struct {
	Service *fileServiceConfig `json:"service"`
	Storage *fileStorageConfig `json:"storage"`
	Log     *fileLogConfig     `json:"log"`
}

func Default() Config {
	return Config{
		Service: ServiceConfig{
			BaseURL:         "http://127.0.0.1:8000",
			UploadTimeoutMS: 120000,
		},
		Storage: StorageConfig{
			BaseDir: "~/.claimdesk",
			Backend: "sqlite",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
	}
}

// Load builds the effective config: defaults, then the global config
// file, then the explicit path (or CLAIMDESK_CONFIG_PATH), then env
// overrides. Missing files are fine; unparseable ones are errors.
func Load(path string) (Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		if err := mergeFromFile(&cfg, filepath.Join(home, ".claimdesk", "config.json")); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("CLAIMDESK_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	var fileCfg fileConfig
	if err := json.Unmarshal(stripJSONComments(data), &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}

	if fileCfg.Service != nil {
		if fileCfg.Service.BaseURL != nil {
			cfg.Service.BaseURL = *fileCfg.Service.BaseURL
		}
		if fileCfg.Service.UploadTimeoutMS != nil {
			cfg.Service.UploadTimeoutMS = *fileCfg.Service.UploadTimeoutMS
		}
	}
	if fileCfg.Storage != nil {
		if fileCfg.Storage.BaseDir != nil {
			cfg.Storage.BaseDir = *fileCfg.Storage.BaseDir
		}
		if fileCfg.Storage.Backend != nil {
			cfg.Storage.Backend = *fileCfg.Storage.Backend
		}
	}
	if fileCfg.Log != nil {
		if fileCfg.Log.Level != nil {
			cfg.Log.Level = *fileCfg.Log.Level
		}
		if fileCfg.Log.MaxSizeMB != nil {
			cfg.Log.MaxSizeMB = *fileCfg.Log.MaxSizeMB
		}
		if fileCfg.Log.MaxBackups != nil {
			cfg.Log.MaxBackups = *fileCfg.Log.MaxBackups
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("CLAIMDESK_BASE_URL")); v != "" {
		cfg.Service.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CLAIMDESK_UPLOAD_TIMEOUT_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid CLAIMDESK_UPLOAD_TIMEOUT_MS: %q", v)
		}
		cfg.Service.UploadTimeoutMS = n
	}
	if v := strings.TrimSpace(os.Getenv("CLAIMDESK_DATA_DIR")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CLAIMDESK_BACKEND")); v != "" {
		cfg.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("CLAIMDESK_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func normalize(cfg *Config) error {
	cfg.Service.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Service.BaseURL), "/")
	if cfg.Service.BaseURL == "" {
		return fmt.Errorf("service base_url is empty")
	}
	if cfg.Service.UploadTimeoutMS <= 0 {
		cfg.Service.UploadTimeoutMS = Default().Service.UploadTimeoutMS
	}

	baseDir, err := ExpandPath(cfg.Storage.BaseDir)
	if err != nil {
		return fmt.Errorf("expand storage base_dir: %w", err)
	}
	if baseDir == "" {
		return fmt.Errorf("storage base_dir is empty")
	}
	cfg.Storage.BaseDir = baseDir

	backend := strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	switch backend {
	case "sqlite", "json":
		cfg.Storage.Backend = backend
	case "":
		cfg.Storage.Backend = "sqlite"
	default:
		return fmt.Errorf("unknown storage backend %q (want sqlite or json)", cfg.Storage.Backend)
	}

	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = Default().Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups < 0 {
		cfg.Log.MaxBackups = 0
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

// stripJSONComments removes // and /* */ comments so config files can
// be annotated. String contents are preserved verbatim.
func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}
	return out.Bytes()
}
