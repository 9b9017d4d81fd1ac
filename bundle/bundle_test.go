package bundle

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/mask"
)

const (
	mainScript  = "import {SampleEngine} from './.SampleEngine';\nSampleEngine.Log('hi');\n"
	plainScript = "const x = 1;\n"
	helperStub  = "export class SampleEngine {\n  static Log(message) {}\n}\n"
)

func writeFile(t *testing.T, p, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

// newRawRoot lays out a small raw scripts tree
func newRawRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.js"), mainScript)
	writeFile(t, filepath.Join(root, "plain.js"), plainScript)
	writeFile(t, filepath.Join(root, "Testbed", ".SampleEngine.js"), helperStub)
	writeFile(t, filepath.Join(root, "Testbed", ".SampleEngine.ts"), "export class SampleEngine {}\n")
	writeFile(t, filepath.Join(root, "node_modules", "lodash", "index.js"), plainScript)
	writeFile(t, filepath.Join(root, "webpack.config.babel.js"), plainScript)
	writeFile(t, filepath.Join(root, "README.md"), "# scripts\n")
	return root
}

func keys(scripts []Script) []string {
	out := make([]string, len(scripts))
	for i, s := range scripts {
		out[i] = s.Key
	}
	return out
}

func TestCollect(t *testing.T) {
	root := newRawRoot(t)

	scripts, err := Collect(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"./Testbed/.SampleEngine", "./main", "./plain"}, keys(scripts))
	assert.Equal(t, "./Testbed/.SampleEngine.js", scripts[0].Rel)
	assert.True(t, filepath.IsAbs(scripts[0].Path))

	scripts, err = Collect(root, true)
	require.NoError(t, err)
	assert.Len(t, scripts, 4)
	assert.Equal(t, map[string]string{
		"./Testbed/.SampleEngine": "./Testbed/.SampleEngine.ts",
		"./main":                  "./main.js",
		"./plain":                 "./plain.js",
	}, Entry(scripts))
}

func TestWriteMetadata(t *testing.T) {
	root := newRawRoot(t)
	built := filepath.Join(t.TempDir(), "built")

	scripts, err := Collect(root, false)
	require.NoError(t, err)
	require.NoError(t, WriteMetadata(root, built, scripts))

	assert.Equal(t,
		`{"./Testbed/.SampleEngine":"./Testbed/.SampleEngine.js","./main":"./main.js","./plain":"./plain.js"}`,
		readFile(t, filepath.Join(root, EntryFile)))

	var out Output
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(root, OutputFile))), &out))
	assert.Equal(t, filepath.ToSlash(built), out.Path)

	// metadata files are not scripts
	scripts, err = Collect(root, false)
	require.NoError(t, err)
	assert.Len(t, scripts, 3)
}

func TestWithMasked_RestoresOnSuccess(t *testing.T) {
	root := newRawRoot(t)
	main := filepath.Join(root, "main.js")
	plain := filepath.Join(root, "plain.js")
	stub := filepath.Join(root, "Testbed", ".SampleEngine.js")

	err := WithMasked(root, []string{main, plain, stub}, zaptest.NewLogger(t).Sugar(), func(started StartFunc) error {
		assert.True(t, mask.IsMasked(readFile(t, main)))
		assert.True(t, mask.IsMasked(readFile(t, stub)))
		assert.Equal(t, plainScript, readFile(t, plain))

		l, err := ReadLock(root)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{main, stub}, l.Files)
		assert.Zero(t, l.PID)

		started(4242)
		l, err = ReadLock(root)
		require.NoError(t, err)
		assert.Equal(t, 4242, l.PID)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, mainScript, readFile(t, main))
	assert.Equal(t, helperStub, readFile(t, stub))
	_, err = ReadLock(root)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestWithMasked_RestoresOnFailure(t *testing.T) {
	root := newRawRoot(t)
	main := filepath.Join(root, "main.js")

	err := WithMasked(root, []string{main}, nil, func(StartFunc) error {
		return errors.Wrap(errors.ErrBundlerStart, "webpack")
	})
	assert.True(t, errors.Is(err, errors.ErrBundlerStart))
	assert.Equal(t, mainScript, readFile(t, main))
	assert.NoFileExists(t, LockPath(root))
}

func TestWithMasked_RestoresOnPanic(t *testing.T) {
	root := newRawRoot(t)
	main := filepath.Join(root, "main.js")

	assert.PanicsWithValue(t, "bundler exploded", func() {
		_ = WithMasked(root, []string{main}, nil, func(StartFunc) error {
			panic("bundler exploded")
		})
	})
	assert.Equal(t, mainScript, readFile(t, main))
	assert.NoFileExists(t, LockPath(root))
}

func TestWithMasked_TimeoutKeepsMasked(t *testing.T) {
	root := newRawRoot(t)
	main := filepath.Join(root, "main.js")

	err := WithMasked(root, []string{main}, nil, func(started StartFunc) error {
		started(0)
		return errors.Wrap(errors.ErrBundlerTimeout, "pid 0 after 1s")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBundlerTimeout))
	assert.True(t, errors.Is(err, errors.ErrTimeout))
	assert.True(t, mask.IsMasked(readFile(t, main)))
	assert.FileExists(t, LockPath(root))

	// a second build refuses to mask over the first
	err = WithMasked(root, []string{main}, nil, func(StartFunc) error {
		t.Fatal("must not run")
		return nil
	})
	assert.True(t, errors.Is(err, errors.ErrAlreadyMasked))

	files, err := Recover(root, false, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{main}, files)
	assert.Equal(t, mainScript, readFile(t, main))
	assert.NoFileExists(t, LockPath(root))
}

func TestRecover(t *testing.T) {
	t.Run("no lock", func(t *testing.T) {
		_, err := Recover(t.TempDir(), false, nil)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("live bundler", func(t *testing.T) {
		root := newRawRoot(t)
		main := filepath.Join(root, "main.js")
		writeFile(t, main, mask.File(main, mainScript))
		require.NoError(t, writeLock(root, &Lock{ID: "b1", PID: os.Getpid(), Started: time.Now(), Files: []string{main}}))

		_, err := Recover(root, false, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "still running")
		assert.True(t, mask.IsMasked(readFile(t, main)))

		files, err := Recover(root, true, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{main}, files)
		assert.Equal(t, mainScript, readFile(t, main))
	})

	t.Run("edited since masking", func(t *testing.T) {
		root := newRawRoot(t)
		main := filepath.Join(root, "main.js")
		require.NoError(t, writeLock(root, &Lock{ID: "b2", Files: []string{main}}))

		// files that are no longer masked are left alone
		_, err := Recover(root, false, nil)
		require.NoError(t, err)
		assert.Equal(t, mainScript, readFile(t, main))
	})
}

func TestInvocationArgs(t *testing.T) {
	inv := Invocation{Command: `npx webpack --config "my config.js"`, Workspace: "/work/raw", Dev: true}
	args, err := inv.Args()
	require.NoError(t, err)
	assert.Equal(t, []string{"npx", "webpack", "--config", "my config.js", "/work/raw", "true"}, args)

	_, err = Invocation{Command: "  "}.Args()
	assert.True(t, errors.IsInvalidRequestError(err))

	_, err = Invocation{Command: `node "unterminated`}.Args()
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestExecRunner_StartFailure(t *testing.T) {
	r := &ExecRunner{Log: zaptest.NewLogger(t).Sugar()}
	called := false
	err := r.Run(context.Background(), Invocation{
		Command:   "jsbind-no-such-bundler-binary",
		Workspace: t.TempDir(),
	}, func(int) { called = true })

	assert.True(t, errors.Is(err, errors.ErrBundlerStart))
	assert.False(t, called)
}

type fakeRunner struct {
	inv Invocation
	run func(started StartFunc) error
}

func (f *fakeRunner) Run(_ context.Context, inv Invocation, started StartFunc) error {
	f.inv = inv
	if f.run == nil {
		return nil
	}
	return f.run(started)
}

func newPipeline(t *testing.T, runner Runner) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	raw := filepath.Join(dir, "Scripts")
	require.NoError(t, os.MkdirAll(raw, 0755))
	writeFile(t, filepath.Join(raw, "main.js"), mainScript)

	cfg := &am.Config{
		Dir: dir,
		Build: am.BuildConfig{
			RawScriptsRoot:   "Scripts",
			BuiltScriptsRoot: "Built",
			Command:          "npm run build --",
			TimeoutSeconds:   60,
			Dev:              true,
		},
	}
	return New(Options{Config: cfg, Runner: runner, Logger: zap.NewNop().Sugar()}), raw
}

func TestPipeline_Build(t *testing.T) {
	runner := &fakeRunner{}
	p, raw := newPipeline(t, runner)
	main := filepath.Join(raw, "main.js")

	runner.run = func(started StartFunc) error {
		started(99)
		assert.True(t, mask.IsMasked(readFile(t, main)))
		assert.FileExists(t, filepath.Join(raw, EntryFile))
		return nil
	}

	report, err := p.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scripts)
	assert.Equal(t, 1, report.Masked)

	assert.Equal(t, "npm run build --", runner.inv.Command)
	assert.Equal(t, raw, runner.inv.Workspace)
	assert.True(t, runner.inv.Dev)
	assert.Equal(t, time.Minute, runner.inv.Timeout)

	assert.Equal(t, mainScript, readFile(t, main))
	assert.NoFileExists(t, LockPath(raw))
}

func TestPipeline_BuildFailure(t *testing.T) {
	runner := &fakeRunner{run: func(StartFunc) error {
		return errors.Wrap(errors.ErrBundlerFailed, "exit status 2")
	}}
	p, raw := newPipeline(t, runner)

	report, err := p.Build(context.Background())
	assert.True(t, errors.Is(err, errors.ErrBundlerFailed))
	require.NotNil(t, report)
	assert.Equal(t, mainScript, readFile(t, filepath.Join(raw, "main.js")))
}

func TestPipeline_MissingRawRoot(t *testing.T) {
	p := New(Options{Config: &am.Config{Dir: t.TempDir(), Build: am.BuildConfig{RawScriptsRoot: "missing"}}})
	_, err := p.Build(context.Background())
	assert.True(t, errors.IsNotFoundError(err))
}
