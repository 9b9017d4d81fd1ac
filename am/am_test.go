package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, "Scripts/Helpers", cfg.Generate.HelpersRoot)
	assert.True(t, cfg.Generate.TypeScript)
	assert.Equal(t, "JsAsync", cfg.Generate.AsyncSuffix)
	assert.Equal(t, "MonoBehaviour", cfg.Generate.BehaviourBase)
	assert.Equal(t, OnErrorFailFast, cfg.Generate.OnError)
	assert.Equal(t, time.Hour, cfg.Build.Timeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[generate]
helpers_root = "Helpers"
typescript = false
engines = ["SampleEngine"]

[build]
timeout_seconds = 60
`), DefaultFilePermissions))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Helpers", cfg.Generate.HelpersRoot)
	assert.False(t, cfg.Generate.TypeScript)
	assert.Equal(t, []string{"SampleEngine"}, cfg.Generate.Engines)
	assert.Equal(t, 60, cfg.Build.TimeoutSeconds)
	// untouched keys keep their defaults
	assert.Equal(t, "JsAsync", cfg.Generate.AsyncSuffix)
	assert.Equal(t, filepath.Join(dir, "Helpers"), cfg.Path(cfg.Generate.HelpersRoot))
}

func TestLoadFrom_ProjectConfigFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, DefaultDirPermissions))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName),
		[]byte("[generate]\nhelpers_root = \"H\"\n"), DefaultFilePermissions))

	cfg, err := LoadFrom(sub)
	require.NoError(t, err)

	assert.Equal(t, "H", cfg.Generate.HelpersRoot)
	assert.Equal(t, root, cfg.Dir)
}

func TestLoadFrom_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JSBIND_GENERATE_ASYNC_SUFFIX", "Async")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "Async", cfg.Generate.AsyncSuffix)
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("walks up directories", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test1", "subdir")
		require.NoError(t, os.MkdirAll(subDir, DefaultDirPermissions))
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1", ConfigFileName), nil, DefaultFilePermissions))

		result := FindProjectConfig(subDir)
		assert.True(t, filepath.IsAbs(result))
		assert.Equal(t, filepath.Join(tmpDir, "test1", ConfigFileName), result)
	})

	t.Run("no config found", func(t *testing.T) {
		subDir := filepath.Join(tmpDir, "test2", "subdir")
		require.NoError(t, os.MkdirAll(subDir, DefaultDirPermissions))

		assert.Empty(t, FindProjectConfig(subDir))
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		v := viper.New()
		SetDefaults(v)
		cfg, err := LoadWithViper(v)
		require.NoError(t, err)
		return *cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty helpers root", mutate: func(c *Config) { c.Generate.HelpersRoot = "" }, wantErr: true},
		{name: "empty async suffix", mutate: func(c *Config) { c.Generate.AsyncSuffix = "" }, wantErr: true},
		{name: "unknown on_error", mutate: func(c *Config) { c.Generate.OnError = "retry" }, wantErr: true},
		{name: "skip_engine accepted", mutate: func(c *Config) { c.Generate.OnError = OnErrorSkipEngine }},
		{name: "zero timeout", mutate: func(c *Config) { c.Build.TimeoutSeconds = 0 }, wantErr: true},
		{name: "negative debounce", mutate: func(c *Config) { c.Watch.DebounceMS = -1 }, wantErr: true},
		{name: "bad constraint", mutate: func(c *Config) { c.Requires = ">>> 1" }, wantErr: true},
		{name: "good constraint", mutate: func(c *Config) { c.Requires = ">= 0.1.0" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckRequires(t *testing.T) {
	cfg := &Config{Requires: ">= 0.2.0"}

	assert.NoError(t, cfg.CheckRequires("dev"))
	assert.NoError(t, cfg.CheckRequires("0.3.1"))
	assert.Error(t, cfg.CheckRequires("0.1.9"))
	assert.NoError(t, (&Config{}).CheckRequires("0.0.1"))
}

func TestUndecodedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[generate]
helpers_root = "H"
helper_root = "typo"

[bulid]
dev = true
`), DefaultFilePermissions))

	keys, err := UndecodedKeys(path)
	require.NoError(t, err)
	assert.Contains(t, keys, "generate.helper_root")
	assert.Contains(t, keys, "bulid.dev")
	assert.NotContains(t, keys, "generate.helpers_root")
}

func TestConfigWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[generate]\nhelpers_root = \"A\"\n"), DefaultFilePermissions))

	cw, err := NewConfigWatcher(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	cw.debouncePeriod = 10 * time.Millisecond
	t.Cleanup(func() { _ = cw.Stop() })

	reloaded := make(chan *Config, 4)
	cw.OnReload(func(c *Config) error {
		reloaded <- c
		return nil
	})
	cw.Start()

	require.NoError(t, os.WriteFile(path, []byte("[generate]\nhelpers_root = \"B\"\n"), DefaultFilePermissions))

	select {
	case c := <-reloaded:
		assert.Equal(t, "B", c.Generate.HelpersRoot)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestConfigWatcher_OwnWriteIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, nil, DefaultFilePermissions))

	cw, err := NewConfigWatcher(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cw.Stop() })

	cw.MarkOwnWrite()
	assert.True(t, cw.checkOwnWrite())
	assert.False(t, cw.checkOwnWrite())
}
