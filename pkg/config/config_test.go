package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type testConf struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (c *testConf) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("port must be positive")
	}
	return nil
}

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_CONF_NAME", "from-env")
	path := writeConf(t, "name: ${TEST_CONF_NAME}\nport: 80\n")

	var c testConf
	if err := Load(path, &c); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Name != "from-env" {
		t.Errorf("name = %q, want from-env", c.Name)
	}
	if c.Port != 80 {
		t.Errorf("port = %d", c.Port)
	}
}

func TestLoad_ValidatorRejects(t *testing.T) {
	path := writeConf(t, "name: x\nport: -1\n")

	var c testConf
	if err := Load(path, &c); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var c testConf
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &c); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadIfPresent(t *testing.T) {
	var c testConf
	loaded, err := LoadIfPresent(filepath.Join(t.TempDir(), "absent.yaml"), &c)
	if err != nil || loaded {
		t.Fatalf("missing file: loaded = %v, err = %v", loaded, err)
	}

	path := writeConf(t, "name: here\nport: 9\n")
	loaded, err = LoadIfPresent(path, &c)
	if err != nil || !loaded {
		t.Fatalf("present file: loaded = %v, err = %v", loaded, err)
	}
	if c.Name != "here" {
		t.Errorf("name = %q", c.Name)
	}
}
