package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/r2dtools/certman/internal/dn"
	"github.com/spf13/viper"
	"github.com/unknwon/com"
	"gopkg.in/yaml.v3"
)

const (
	defaultOpenSSLBin     = "openssl"
	defaultOpenSSLTimeout = 30 * time.Second
	configDirName         = "certman"
	configFileName        = "config.yaml"
	envPrefix             = "certman"
)

var Version string

type Config struct {
	StorePath      string
	KeyDir         string
	OpenSSLBin     string
	OpenSSLTimeout time.Duration
	RSATraditional bool
	Locking        bool
	Debug          bool
	LogFile        string
	Defaults       dn.DistinguishedName
	ConfigFilePath string
	Version        string
}

// GetConfig loads options from the YAML config file, CERTMAN_* environment
// variables and flags bound to viper. An empty path selects the default config file location.
func GetConfig(configFilePath string) (*Config, error) {
	if configFilePath == "" {
		path, err := DefaultConfigFilePath()

		if err != nil {
			return nil, err
		}

		configFilePath = path
	}

	wd, err := os.Getwd()

	if err != nil {
		return nil, err
	}

	viper.AddConfigPath(filepath.Dir(configFilePath))
	viper.SetConfigName(fileNameWithoutExt(configFilePath))
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)

	viper.SetDefault(StoreOpt, wd)
	viper.SetDefault(OpenSSLBinOpt, defaultOpenSSLBin)
	viper.SetDefault(OpenSSLTimeoutOpt, defaultOpenSSLTimeout)
	viper.SetDefault(RSATraditionalOpt, true)
	viper.SetDefault(LockingOpt, false)

	if com.IsFile(configFilePath) {
		configFile, err := os.OpenFile(configFilePath, os.O_RDONLY, 0644)

		if err != nil {
			return nil, err
		}

		defer configFile.Close()

		if err := viper.ReadConfig(configFile); err != nil {
			return nil, fmt.Errorf("could not read config file '%s': %v", configFilePath, err)
		}
	}

	if Version == "" {
		Version = "dev"
	}

	config := &Config{
		ConfigFilePath: configFilePath,
		Version:        Version,
	}

	if err := setDynamicParams(config); err != nil {
		return nil, err
	}

	if com.IsFile(configFilePath) {
		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			setDynamicParams(config)
		})
	}

	return config, nil
}

func DefaultConfigFilePath() (string, error) {
	configDir, err := os.UserConfigDir()

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, configDirName, configFileName), nil
}

func (c *Config) ToMap() map[string]string {
	settings := viper.AllSettings()
	options := make(map[string]string)

	for key, value := range settings {
		if strValue, ok := value.(string); ok {
			options[key] = strValue
		}
	}

	return options
}

func (c *Config) SetParam(name string, value any) error {
	data, err := os.ReadFile(c.ConfigFilePath)

	if err != nil {
		return err
	}

	confMap := make(map[string]any)
	err = yaml.Unmarshal(data, confMap)

	if err != nil {
		return err
	}

	confMap[name] = value
	data, err = yaml.Marshal(confMap)

	if err != nil {
		return err
	}

	return os.WriteFile(c.ConfigFilePath, data, 0644)
}

func CreateConfigFileIfNotExists(config *Config) error {
	if com.IsFile(config.ConfigFilePath) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(config.ConfigFilePath), 0755); err != nil {
		return err
	}

	file, err := os.Create(config.ConfigFilePath)

	if err != nil {
		return err
	}

	defer file.Close()

	return nil
}

func setDynamicParams(c *Config) error {
	storePath, err := filepath.Abs(viper.GetString(StoreOpt))

	if err != nil {
		return err
	}

	c.StorePath = storePath
	c.KeyDir = viper.GetString(KeyDirOpt)
	c.OpenSSLBin = viper.GetString(OpenSSLBinOpt)
	c.OpenSSLTimeout = viper.GetDuration(OpenSSLTimeoutOpt)
	c.RSATraditional = viper.GetBool(RSATraditionalOpt)
	c.Locking = viper.GetBool(LockingOpt)
	c.Debug = viper.GetBool(DebugOpt)
	c.LogFile = viper.GetString(LogFileOpt)

	var defaults dn.DistinguishedName

	if err := mapstructure.Decode(viper.GetStringMap(DefaultsOpt), &defaults); err != nil {
		return fmt.Errorf("invalid '%s' option: %v", DefaultsOpt, err)
	}

	c.Defaults = defaults

	return nil
}

func fileNameWithoutExt(path string) string {
	name := filepath.Base(path)

	return name[:len(name)-len(filepath.Ext(name))]
}
