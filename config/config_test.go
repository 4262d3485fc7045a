package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	viper.Reset()
	configFilePath := filepath.Join(t.TempDir(), "config.yaml")

	config, err := GetConfig(configFilePath)
	require.Nil(t, err)

	wd, err := os.Getwd()
	require.Nil(t, err)

	assert.Equal(t, wd, config.StorePath)
	assert.Equal(t, "openssl", config.OpenSSLBin)
	assert.Equal(t, 30*time.Second, config.OpenSSLTimeout)
	assert.True(t, config.RSATraditional)
	assert.False(t, config.Locking)
	assert.Equal(t, "", config.KeyDir)
	assert.True(t, config.Defaults.IsEmpty())
}

func TestGetConfigFromFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	configFilePath := filepath.Join(dir, "config.yaml")
	content := "store: " + dir + "/store\n" +
		"openssl_timeout: 5s\n" +
		"locking: true\n" +
		"defaults:\n" +
		"  country: DE\n" +
		"  organization: Example\n" +
		"  organization_units: [web, ops]\n"
	require.Nil(t, os.WriteFile(configFilePath, []byte(content), 0644))

	config, err := GetConfig(configFilePath)
	require.Nil(t, err)

	assert.Equal(t, filepath.Join(dir, "store"), config.StorePath)
	assert.Equal(t, 5*time.Second, config.OpenSSLTimeout)
	assert.True(t, config.Locking)
	assert.Equal(t, "DE", config.Defaults.Country)
	assert.Equal(t, "Example", config.Defaults.Organization)
	assert.Equal(t, []string{"web", "ops"}, config.Defaults.OrganizationUnits)
}

func TestGetConfigFromEnv(t *testing.T) {
	viper.Reset()
	t.Setenv("CERTMAN_OPENSSL_BIN", "/opt/openssl/bin/openssl")

	config, err := GetConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.Nil(t, err)
	assert.Equal(t, "/opt/openssl/bin/openssl", config.OpenSSLBin)
}

func TestSetParam(t *testing.T) {
	viper.Reset()
	configFilePath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config, err := GetConfig(configFilePath)
	require.Nil(t, err)

	require.Nil(t, CreateConfigFileIfNotExists(config))
	require.Nil(t, config.SetParam(KeyDirOpt, "/var/lib/certman/keys"))

	content, err := os.ReadFile(configFilePath)
	require.Nil(t, err)
	assert.Equal(t, "key_dir: /var/lib/certman/keys\n", string(content))
}
