// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath - путь к файлу конфигурации по умолчанию
	DefaultPath = "~/.playlist.yaml"
	// DefaultHTTPTimeout - таймаут загрузки треков по HTTP
	DefaultHTTPTimeout = 60 * time.Second

	appDirName = "go-playlist"
)

// Config структура для хранения конфигурации приложения
type Config struct {
	LibraryDir  string        `yaml:"library_dir"`
	LogFile     string        `yaml:"log_file"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Profile     Profile       `yaml:"profile"`
	S3          S3            `yaml:"s3"`
}

// Profile - данные профиля, показываемые в заголовке
type Profile struct {
	DisplayName string `yaml:"display_name"`
	Avatar      string `yaml:"avatar"`
}

// S3 - доступ к хранилищу для импорта s3:// ссылок
type S3 struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Если файла нет, возвращаются значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	path, err := ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	config.applyDefaults()

	// Раскрываем тильду в путях
	if config.LibraryDir, err = ExpandHome(config.LibraryDir); err != nil {
		return nil, err
	}
	if config.LogFile, err = ExpandHome(config.LogFile); err != nil {
		return nil, err
	}
	if config.Profile.Avatar, err = ExpandHome(config.Profile.Avatar); err != nil {
		return nil, err
	}

	return config, nil
}

// S3Enabled сообщает, заданы ли ключи доступа к S3
func (c *Config) S3Enabled() bool {
	return c.S3.AccessKey != "" && c.S3.SecretKey != ""
}

func (c *Config) applyDefaults() {
	if c.LibraryDir == "" {
		c.LibraryDir = filepath.Join(xdg.DataHome, appDirName, "library")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(xdg.StateHome, appDirName, "playlist.log")
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

// ExpandHome заменяет ведущую тильду на домашний каталог
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("ошибка определения домашнего каталога: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
