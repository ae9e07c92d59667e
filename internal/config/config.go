package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentx-labs/monogen/internal/branding"
	"github.com/agentx-labs/monogen/internal/errors"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys.
const (
	KeyRoot               = "root"
	KeyUnitsDir           = "units_dir"
	KeyLedgerManifest     = "ledger.manifest"
	KeyLedgerBuild        = "ledger.build"
	KeyLedgerCI           = "ledger.ci"
	KeyReserved           = "reserved"
	KeyPythonVersion      = "python_version"
	KeyDependencyManager  = "dependency_manager"
	KeyLogLevel           = "log_level"
	KeyDefaultFramework   = "default_framework"
	KeyDefaultPersistence = "default_persistence"
)

var defaults = map[string]any{
	KeyRoot:               "",
	KeyUnitsDir:           "",
	KeyLedgerManifest:     "pyproject.toml",
	KeyLedgerBuild:        "Makefile",
	KeyLedgerCI:           ".github/workflows/ci.yml",
	KeyReserved:           []string{},
	KeyPythonVersion:      "3.12",
	KeyDependencyManager:  "poetry",
	KeyLogLevel:           "warn",
	KeyDefaultFramework:   "semantic-kernel",
	KeyDefaultPersistence: "json",
}

// Keys returns every known key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key is a known setting.
func IsKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// Dir returns the path to the user config directory (~/.monogen/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the user config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// WorkspaceFilePath returns the workspace config file under root.
func WorkspaceFilePath(root string) string {
	return filepath.Join(root, branding.WorkspaceFile())
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper from every source. workspaceRoot may be empty when
// no workspace was found. A missing file is not an error; a malformed one is.
func Load(workspaceRoot string) error {
	viper.Reset()
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	// .env values never override variables already set in the environment.
	envFiles := []string{".env"}
	if workspaceRoot != "" {
		envFiles = append(envFiles, filepath.Join(workspaceRoot, ".env"))
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return errors.Wrap(errors.EUsage, "loading "+f, err)
			}
		}
	}

	viper.SetConfigType(fileType)
	if err := mergeFile(FilePath()); err != nil {
		return err
	}
	if workspaceRoot != "" {
		if err := mergeFile(WorkspaceFilePath(workspaceRoot)); err != nil {
			return err
		}
	}

	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return nil
}

func mergeFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		return errors.Wrap(errors.EUsage, "reading config file "+path, err)
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	if key == KeyReserved {
		return strings.Join(Current().Reserved, ",")
	}
	return viper.GetString(key)
}

// Settings is a typed snapshot of the loaded configuration.
type Settings struct {
	Root               string
	UnitsDir           string
	LedgerManifest     string
	LedgerBuild        string
	LedgerCI           string
	Reserved           []string
	PythonVersion      string
	DependencyManager  string
	LogLevel           string
	DefaultFramework   string
	DefaultPersistence string
}

// Current returns the loaded settings.
func Current() Settings {
	var reserved []string
	for _, r := range viper.GetStringSlice(KeyReserved) {
		for _, part := range strings.Split(r, ",") {
			if p := strings.TrimSpace(part); p != "" {
				reserved = append(reserved, p)
			}
		}
	}
	return Settings{
		Root:               viper.GetString(KeyRoot),
		UnitsDir:           viper.GetString(KeyUnitsDir),
		LedgerManifest:     viper.GetString(KeyLedgerManifest),
		LedgerBuild:        viper.GetString(KeyLedgerBuild),
		LedgerCI:           viper.GetString(KeyLedgerCI),
		Reserved:           reserved,
		PythonVersion:      viper.GetString(KeyPythonVersion),
		DependencyManager:  viper.GetString(KeyDependencyManager),
		LogLevel:           viper.GetString(KeyLogLevel),
		DefaultFramework:   viper.GetString(KeyDefaultFramework),
		DefaultPersistence: viper.GetString(KeyDefaultPersistence),
	}
}

// Set writes a key-value pair to the config file at path and updates the
// loaded configuration. Only the keys already in that file are rewritten,
// never values merged from other sources.
func Set(path, key, value string) error {
	if !IsKey(key) {
		return errors.NewWithDetails(errors.EUsage,
			fmt.Sprintf("unknown config key %q", key),
			map[string]string{"keys": strings.Join(Keys(), ", ")})
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.EIO, "creating directory for "+path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrap(errors.EUsage, "reading config file "+path, err)
		}
	}

	var val any = value
	if key == KeyReserved {
		val = splitList(value)
	}
	v.Set(key, val)
	if err := v.WriteConfigAs(path); err != nil {
		return errors.Wrap(errors.EIO, "writing config file "+path, err)
	}
	viper.Set(key, val)
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
