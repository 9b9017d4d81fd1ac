package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/jsbind/bundle"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/mask"
)

const projectToml = `[generate]
helpers_root = "Helpers"
typescript = true
engines = ["SampleEngine"]

[build]
raw_scripts_root = "Raw"
built_scripts_root = "Built"
command = "./builder.sh"
`

// newProject writes a jsbind.toml into a temp dir and returns its path
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Raw"), 0755))
	path := filepath.Join(dir, "jsbind.toml")
	require.NoError(t, os.WriteFile(path, []byte(projectToml), 0644))
	return path
}

// execute runs the CLI with args and returns what it printed to stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "jsbind", SilenceUsage: true, SilenceErrors: true}
	RegisterGlobalFlags(root)
	root.AddCommand(GenerateCmd, MaskCmd, UnmaskCmd, RunCmd, AmCmd, VersionCmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSelectEngines(t *testing.T) {
	roots, err := selectEngines(nil, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.Len(t, roots, len(engineNames()))
	assert.Equal(t, "SampleEngine", roots[0].Describe().Name)

	_, err = selectEngines([]string{"NoSuchEngine"}, zap.NewNop().Sugar())
	assert.True(t, errors.IsNotFoundError(err))
	assert.Contains(t, errors.FlattenHints(err), "SampleEngine")
}

func TestGenerateAndCheck(t *testing.T) {
	cfg := newProject(t)
	helpers := filepath.Join(filepath.Dir(cfg), "Helpers")

	_, err := execute(t, "generate", "--config", cfg)
	require.NoError(t, err)
	stub := filepath.Join(helpers, "Testbed", "Runtime", "Scripts", ".SampleEngine.ts")
	assert.FileExists(t, stub)
	assert.FileExists(t, filepath.Join(helpers, "Testbed", "Runtime", "Scripts", ".SampleClass.ts"))

	_, err = execute(t, "generate", "check", "--config", cfg)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(stub, []byte("// edited\n"), 0644))
	_, err = execute(t, "generate", "check", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differ")
}

func TestMaskAndUnmask(t *testing.T) {
	dir := t.TempDir()
	src := "import {SampleEngine} from './.SampleEngine';\nSampleEngine.Log('hi');\n"
	script := filepath.Join(dir, "main.js")
	plain := filepath.Join(dir, "plain.js")
	require.NoError(t, os.WriteFile(script, []byte(src), 0644))
	require.NoError(t, os.WriteFile(plain, []byte("let x = 1;\n"), 0644))

	_, err := execute(t, "mask", script, plain)
	require.NoError(t, err)
	data, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.True(t, mask.IsMasked(string(data)))

	_, err = execute(t, "unmask", script, plain)
	require.NoError(t, err)
	data, err = os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, src, string(data))

	_, err = execute(t, "mask", filepath.Join(dir, "missing.js"))
	assert.Error(t, err)
}

func TestUnmask_LeavesUnmaskedFiles(t *testing.T) {
	dir := t.TempDir()
	src := "let x = 1;\n//@masked this comment is mine\n"
	script := filepath.Join(dir, "notes.js")
	require.NoError(t, os.WriteFile(script, []byte(src), 0644))

	_, err := execute(t, "unmask", script)
	require.NoError(t, err)
	data, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, src, string(data))
}

func TestUnmaskRecovers(t *testing.T) {
	cfg := newProject(t)
	raw := filepath.Join(filepath.Dir(cfg), "Raw")
	src := "import {A} from './.A';\n"
	script := filepath.Join(raw, "main.js")
	require.NoError(t, os.WriteFile(script, []byte(src), 0644))

	// a bundler that outlived its wait leaves the sources masked
	err := bundle.WithMasked(raw, []string{script}, zap.NewNop().Sugar(), func(bundle.StartFunc) error {
		return errors.ErrBundlerTimeout
	})
	require.Error(t, err)
	require.FileExists(t, bundle.LockPath(raw))

	_, err = execute(t, "unmask", "--config", cfg)
	require.NoError(t, err)
	data, err := os.ReadFile(script)
	require.NoError(t, err)
	assert.Equal(t, src, string(data))
	assert.NoFileExists(t, bundle.LockPath(raw))

	// nothing left to recover
	_, err = execute(t, "unmask", "--config", cfg)
	assert.NoError(t, err)
}

func TestRunScript(t *testing.T) {
	cfg := newProject(t)
	script := filepath.Join(filepath.Dir(cfg), "main.js")
	require.NoError(t, os.WriteFile(script, []byte(`import {SampleEngine} from './.SampleEngine';
window.SetString('from script');
Promise.resolve(window.GetString() + '!');
`), 0644))

	out, err := execute(t, "run", script, "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "from script!\n", out)
}

func TestAmShowAndGet(t *testing.T) {
	cfg := newProject(t)

	out, err := execute(t, "am", "show", "--format", "json", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"helpers_root": "Helpers"`)

	out, err = execute(t, "am", "get", "build.raw_scripts_root", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Raw\n", out)

	_, err = execute(t, "am", "get", "build.nope", "--config", cfg)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = execute(t, "am", "show", "--format", "ini", "--config", cfg)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "jsbind dev")
}
