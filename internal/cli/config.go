package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go-attendance/internal/shared/clock"

	"github.com/BurntSushi/toml"
)

// Config is the device-side settings file, ~/.attendctl.toml by default.
type Config struct {
	ServerURL    string `toml:"server_url"`
	ActorID      string `toml:"actor_id"`
	Email        string `toml:"email"`
	KeystorePath string `toml:"keystore_path"`
	TZOffset     string `toml:"tz_offset"`
	Token        string `toml:"token"`
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".attendctl.toml"
	}
	return filepath.Join(home, ".attendctl.toml")
}

func defaultKeystorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".attendctl", "keys.db")
	}
	return filepath.Join(home, ".attendctl", "keys.db")
}

// LoadConfig reads path, filling defaults for keys that are absent. A
// missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServerURL:    "http://localhost:3000",
		KeystorePath: defaultKeystorePath(),
		TZOffset:     clock.DefaultOffset,
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func (c Config) validate() error {
	if c.ServerURL == "" {
		return errors.New("server_url is not set")
	}
	if c.ActorID == "" {
		return errors.New("actor_id is not set; run 'attendctl configure'")
	}
	if c.Token == "" {
		return errors.New("token is not set; run 'attendctl configure'")
	}
	return nil
}
