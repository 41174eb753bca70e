package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const testConfigYAML = `
circuits:
  weather:
    name: weather-api
    failure_threshold: 3
    open_timeout: 5s
    cache:
      key: "weather:london"
      ttl: 5m
      dir: /var/cache/weather
`

// TestLoadAndGet 测试加载配置文件并读取字段
func TestLoadAndGet(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "fuse.yaml", testConfigYAML)

	loader, err := New(
		WithConfigName("fuse"),
		WithConfigPaths(dir),
		WithEnvPrefix("FUSETEST"),
	)
	if err != nil {
		t.Fatalf("New should not fail: %v", err)
	}
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load should not fail: %v", err)
	}

	if got := loader.Get("circuits.weather.name"); got != "weather-api" {
		t.Errorf("expected 'weather-api', got %v", got)
	}
	if got := loader.Get("circuits.weather.failure_threshold"); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
}

// TestUnmarshalKey 测试将配置段反序列化到结构体（含时长字符串）
func TestUnmarshalKey(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "fuse.yaml", testConfigYAML)

	loader, err := New(WithConfigName("fuse"), WithConfigPaths(dir))
	if err != nil {
		t.Fatalf("New should not fail: %v", err)
	}
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load should not fail: %v", err)
	}

	var circuit struct {
		Name             string        `mapstructure:"name"`
		FailureThreshold int           `mapstructure:"failure_threshold"`
		OpenTimeout      time.Duration `mapstructure:"open_timeout"`
		Cache            struct {
			Key string        `mapstructure:"key"`
			TTL time.Duration `mapstructure:"ttl"`
			Dir string        `mapstructure:"dir"`
		} `mapstructure:"cache"`
	}
	if err := loader.UnmarshalKey("circuits.weather", &circuit); err != nil {
		t.Fatalf("UnmarshalKey should not fail: %v", err)
	}

	if circuit.Name != "weather-api" {
		t.Errorf("expected 'weather-api', got %q", circuit.Name)
	}
	if circuit.FailureThreshold != 3 {
		t.Errorf("expected threshold 3, got %d", circuit.FailureThreshold)
	}
	if circuit.OpenTimeout != 5*time.Second {
		t.Errorf("expected open_timeout 5s, got %v", circuit.OpenTimeout)
	}
	if circuit.Cache.TTL != 5*time.Minute {
		t.Errorf("expected cache ttl 5m, got %v", circuit.Cache.TTL)
	}
	if circuit.Cache.Key != "weather:london" {
		t.Errorf("expected cache key 'weather:london', got %q", circuit.Cache.Key)
	}
}

// TestEnvOverride 环境变量优先于配置文件
func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "fuse.yaml", testConfigYAML)

	t.Setenv("FUSEENV_CIRCUITS_WEATHER_NAME", "from-env")

	loader, err := New(
		WithConfigName("fuse"),
		WithConfigPaths(dir),
		WithEnvPrefix("fuseenv"),
	)
	if err != nil {
		t.Fatalf("New should not fail: %v", err)
	}
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load should not fail: %v", err)
	}

	if got := loader.Get("circuits.weather.name"); got != "from-env" {
		t.Errorf("env var should override file value, got %v", got)
	}
}

// TestValidateEmptyConfig 空配置验证失败
func TestValidateEmptyConfig(t *testing.T) {
	dir := t.TempDir()

	loader, err := New(WithConfigName("missing"), WithConfigPaths(dir))
	if err != nil {
		t.Fatalf("New should not fail: %v", err)
	}
	if err := loader.Load(context.Background()); err == nil {
		t.Error("Load should fail when no configuration source yields values")
	}
}

// TestWatch 配置文件变化时监听者收到事件
func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "fuse.yaml", testConfigYAML)

	loader, err := New(WithConfigName("fuse"), WithConfigPaths(dir))
	if err != nil {
		t.Fatalf("New should not fail: %v", err)
	}
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("Load should not fail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := loader.Watch(ctx, "circuits.weather.failure_threshold")
	if err != nil {
		t.Fatalf("Watch should not fail: %v", err)
	}

	updated := []byte(`
circuits:
  weather:
    name: weather-api
    failure_threshold: 7
    open_timeout: 5s
`)
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		t.Fatalf("failed to update config file: %v", err)
	}

	select {
	case event := <-ch:
		if event.Key != "circuits.weather.failure_threshold" {
			t.Errorf("unexpected event key: %s", event.Key)
		}
		if event.Value != 7 {
			t.Errorf("expected new value 7, got %v", event.Value)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config change event")
	}
}
