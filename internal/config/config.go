package config

import (
	"errors"
	"os"
	"path/filepath"
)

// UserConfigPath kullanıcı düzeyi yapılandırma dosyasının yolunu döner
// (~/.config/slidecast/config.toml). SLIDECAST_CONFIG tanımlıysa o kullanılır.
func UserConfigPath() (string, error) {
	if p := os.Getenv("SLIDECAST_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "slidecast", "config.toml"), nil
}

// LoadUserConfig kullanıcı yapılandırmasını okur. Dosya yoksa (nil, path, nil) döner.
func LoadUserConfig() (*ProjectConfig, string, error) {
	path, err := UserConfigPath()
	if err != nil {
		return nil, "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, path, nil
		}
		return nil, path, err
	}
	cfg, err := parseConfigFile(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Load proje ve kullanıcı yapılandırmalarını birleştirir; proje önceliklidir.
// Dönen yol listesi okunan dosyaları öncelik sırasıyla içerir.
func Load(currentDir string) (*ProjectConfig, []string, error) {
	project, projectPath, err := LoadProjectConfig(currentDir)
	if err != nil {
		return nil, nil, err
	}
	user, userPath, err := LoadUserConfig()
	if err != nil {
		return nil, nil, err
	}

	var paths []string
	if project != nil {
		paths = append(paths, projectPath)
	}
	if user != nil {
		paths = append(paths, userPath)
	}
	return project.Merge(user), paths, nil
}
