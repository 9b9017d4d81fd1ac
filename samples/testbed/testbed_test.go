package testbed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/jsbind/engine"
	"github.com/teranos/jsbind/typegen"
	"github.com/teranos/jsbind/typegen/typescript"
)

const sampleScript = `import {window} from "./.SampleEngine";
import {SampleClass} from "./.SampleClass";

(async () => {
    let robot = new SampleClass(window, 'robot');
    await robot.MoveJsAsync(0.1, 0, 0);
    robot.Say("right");
    await robot.MoveJsAsync(-0.2, 0, 0);
    robot.Say("left");
    await window.LogThreeTimesJsAsync('one', 'two', 'three');
    return robot.GetPosition().x;
})();
`

func newSampleEngine(t *testing.T) (*engine.Engine, *SampleEngine) {
	t.Helper()
	host := NewSampleEngine(zap.NewNop().Sugar())
	host.Delay = 5 * time.Millisecond
	e, err := engine.New(host, engine.WithLogger(zap.NewNop().Sugar()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, host
}

func TestSampleScript(t *testing.T) {
	e, host := newSampleEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	v, err := e.RunDirectlyAndGetValue(ctx, sampleScript)
	require.NoError(t, err)
	x, err := e.Await(ctx, v)
	require.NoError(t, err)

	assert.InDelta(t, -0.1, x, 1e-5)
	assert.Equal(t, []string{"robot: right", "robot: left", "one", "two", "three"}, host.Messages())
}

func TestSampleEngineMembers(t *testing.T) {
	e, host := newSampleEngine(t)
	ctx := context.Background()

	v, err := e.RunDirectlyAndGetValue(ctx, `
		window.SetBoolean(true);
		window.SetString('abc');
		window.IntegerProp = window.SetInteger(4) + 1;
		[window.GetBoolean(), window.GetString(), window.GetInteger()].join(' ')`)
	require.NoError(t, err)

	assert.Equal(t, "true abc 5", v)
	assert.True(t, host.BooleanProp)
	assert.Equal(t, "abc", host.StringProp)
	assert.Equal(t, 5, host.IntegerProp)
}

func TestSampleCannotConstructValueType(t *testing.T) {
	e, _ := newSampleEngine(t)

	v, err := e.RunDirectlyAndGetValue(context.Background(), `typeof Vector3 + ' ' + typeof SampleClass`)
	require.NoError(t, err)
	assert.Equal(t, "undefined function", v)
}

func TestGenerateSampleStubs(t *testing.T) {
	root := t.TempDir()
	g := typegen.New(root, typescript.New(), typegen.WithLogger(zap.NewNop().Sugar()))

	res, err := g.Generate(NewSampleEngine(nil))
	require.NoError(t, err)

	mod, ok := res.Module("SampleEngine")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "Testbed", "Runtime", "Scripts", ".SampleEngine.ts"), mod.Path)
	assert.Contains(t, mod.Text, "import {JavascriptEngine} from '../../../Jsbind/Runtime/.JavascriptEngine';\n")
	assert.Contains(t, mod.Text, "import {SampleClass} from './.SampleClass';\n")
	assert.Contains(t, mod.Text, "class __class_SampleEngine extends JavascriptEngine {\n")
	assert.Contains(t, mod.Text, "\nBooleanProp: boolean = false;\n")
	assert.Contains(t, mod.Text, "\nIntegerProp: number = 0;\n")
	assert.Contains(t, mod.Text, "\nStringProp: string = '';\n")
	assert.Contains(t, mod.Text, "\nSetBoolean(value: boolean): boolean { return false; }\n")
	assert.Contains(t, mod.Text, "\nGetString(): string { return \"\"; }\n")
	assert.Contains(t, mod.Text, "\nLog(message: string): void {}\n")
	assert.Contains(t, mod.Text,
		"\nLogThreeTimesJsAsync(first: string,second: string,third: string): Promise<void> { return new Promise(() => {}); }\n")
	assert.Contains(t, mod.Text, "export const SampleEngine = new __class_SampleEngine();\n")

	class, ok := res.Module("SampleClass")
	require.True(t, ok)
	assert.Contains(t, class.Text, "constructor(jsEngine: JavascriptEngine,name: string) {}\n")
	assert.Contains(t, class.Text, "GetPosition(): Vector3 { return new Vector3(); }\n")
	assert.Contains(t, class.Text,
		"MoveJsAsync(relativeX: number,relativeY: number,relativeZ: number): Promise<void> { return new Promise(() => {}); }\n")

	_, ok = res.Module("Vector3")
	assert.False(t, ok)
}
