package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("ESURAT_TEST_NAME", "arsip")
	path := writeFile(t, "name: ${ESURAT_TEST_NAME}\nport: 8080\n")

	var s sample
	require.NoError(t, Load(path, &s))
	assert.Equal(t, "arsip", s.Name)
	assert.Equal(t, 8080, s.Port)
}

func TestLoadRunsValidation(t *testing.T) {
	path := writeFile(t, "name: x\nport: 0\n")
	var s sample
	err := Load(path, &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be positive")
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	require.Error(t, Load(filepath.Join(t.TempDir(), "absent.yaml"), &s))
}

func TestLoadOptionalMissingKeepsDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 9000}
	require.NoError(t, LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s))
	assert.Equal(t, sample{Name: "default", Port: 9000}, s)
}

func TestLoadOptionalOverridesDefaults(t *testing.T) {
	s := sample{Name: "default", Port: 9000}
	path := writeFile(t, "port: 7000\n")
	require.NoError(t, LoadOptional(path, &s))
	assert.Equal(t, "default", s.Name)
	assert.Equal(t, 7000, s.Port)
}

func TestLoadOptionalValidatesDefaults(t *testing.T) {
	var s sample
	require.Error(t, LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s))
}
