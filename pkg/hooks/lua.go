package hooks

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

// ScriptExt is the extension of hook scripts
const ScriptExt = ".lua"

// unsafeBaseFuncs are base library functions that reach the filesystem
var unsafeBaseFuncs = []string{"dofile", "loadfile"}

// LuaRunner runs <Dir>/<stage>.lua scripts.
//
// Each invocation gets a fresh Lua state with only the base, table, string
// and math libraries. The script sees the globals `vars` (the bindings) and
// `ctx` (`ctx.stage`, `ctx.output`) and may return
//
//	{ vars = { name = value }, files = { { path = "a.txt", content = "..." } } }
type LuaRunner struct {
	FS      types.FS
	Dir     string
	Timeout time.Duration
}

// NewLuaRunner creates a runner for the scripts in dir
func NewLuaRunner(fsys types.FS, dir string, timeout time.Duration) *LuaRunner {
	return &LuaRunner{FS: fsys, Dir: dir, Timeout: timeout}
}

// ScriptPath returns the script location for stage
func (r *LuaRunner) ScriptPath(stage Stage) string {
	return filepath.Join(r.Dir, string(stage)+ScriptExt)
}

// Run implements Runner. A stage without a script returns an empty result.
func (r *LuaRunner) Run(ctx context.Context, bindings types.Bindings, hctx Context) (*Result, error) {
	logger := logging.GetLogger("hooks.lua").With().Str("stage", string(hctx.Stage)).Logger()

	script := r.ScriptPath(hctx.Stage)
	src, err := r.FS.ReadFile(script)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Trace().Str("script", script).Msg("no hook for stage")
			return &Result{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read hook %s", script).
			WithDetail("script", script)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	done := logging.LogOperationStart(logger, "run hook")
	defer done()

	L, err := newSandbox()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrHookExecute, "failed to create hook sandbox")
	}
	defer L.Close()
	L.SetContext(ctx)

	L.SetGlobal("vars", toLuaTable(L, bindings))
	ctxTable := L.NewTable()
	ctxTable.RawSetString("stage", lua.LString(hctx.Stage))
	ctxTable.RawSetString("output", lua.LString(hctx.Output))
	L.SetGlobal("ctx", ctxTable)

	if err := L.DoString(string(src)); err != nil {
		return nil, errors.Wrapf(err, errors.ErrHookExecute, "hook %s failed", hctx.Stage).
			WithDetails(map[string]interface{}{
				"hook":   string(hctx.Stage),
				"script": script,
			})
	}

	var ret lua.LValue = lua.LNil
	if L.GetTop() > 0 {
		ret = L.Get(-1)
	}

	result, err := parseResult(ret)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrHookResult, "hook %s returned an invalid result", hctx.Stage).
			WithDetails(map[string]interface{}{
				"hook":   string(hctx.Stage),
				"script": script,
			})
	}

	logger.Debug().
		Int("vars", len(result.Vars)).
		Int("files", len(result.Files)).
		Msg("hook finished")
	return result, nil
}

func newSandbox() (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, pair := range []struct {
		n string
		f lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(pair.f),
			NRet:    0,
			Protect: true,
		}, lua.LString(pair.n)); err != nil {
			L.Close()
			return nil, err
		}
	}
	for _, name := range unsafeBaseFuncs {
		L.SetGlobal(name, lua.LNil)
	}
	return L, nil
}

func toLuaTable(L *lua.LState, b types.Bindings) *lua.LTable {
	t := L.NewTable()
	for _, name := range b.Names() {
		t.RawSetString(name, toLuaValue(b[name]))
	}
	return t
}

func toLuaValue(v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(t)
	case bool:
		return lua.LBool(t)
	case int64:
		return lua.LNumber(t)
	case int:
		return lua.LNumber(t)
	case float64:
		return lua.LNumber(t)
	default:
		return lua.LString(fmt.Sprint(t))
	}
}

func fromLuaValue(v lua.LValue) (any, error) {
	switch t := v.(type) {
	case lua.LString:
		return string(t), nil
	case lua.LBool:
		return bool(t), nil
	case lua.LNumber:
		f := float64(t)
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("number %v is not an integer", f)
		}
		// 2^63 is exactly representable; MaxInt64 is not
		if f < math.MinInt64 || f >= -math.MinInt64 {
			return nil, fmt.Errorf("number %v is out of integer range", f)
		}
		return int64(f), nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", v.Type())
	}
}

func parseResult(ret lua.LValue) (*Result, error) {
	result := &Result{}
	if ret == lua.LNil {
		return result, nil
	}

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected a table, got %s", ret.Type())
	}

	switch vars := tbl.RawGetString("vars").(type) {
	case *lua.LNilType:
	case *lua.LTable:
		result.Vars = types.Bindings{}
		var convErr error
		vars.ForEach(func(k, v lua.LValue) {
			if convErr != nil {
				return
			}
			key, ok := k.(lua.LString)
			if !ok {
				convErr = fmt.Errorf("vars keys must be strings, got %s", k.Type())
				return
			}
			value, err := fromLuaValue(v)
			if err != nil {
				convErr = fmt.Errorf("vars.%s: %w", key, err)
				return
			}
			result.Vars[string(key)] = value
		})
		if convErr != nil {
			return nil, convErr
		}
	default:
		return nil, fmt.Errorf("vars must be a table, got %s", vars.Type())
	}

	switch files := tbl.RawGetString("files").(type) {
	case *lua.LNilType:
	case *lua.LTable:
		for i := 1; i <= files.Len(); i++ {
			entry, ok := files.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("files[%d] must be a table", i)
			}
			p, ok := entry.RawGetString("path").(lua.LString)
			if !ok {
				return nil, fmt.Errorf("files[%d].path must be a string", i)
			}
			content, ok := entry.RawGetString("content").(lua.LString)
			if !ok {
				return nil, fmt.Errorf("files[%d].content must be a string", i)
			}
			result.Files = append(result.Files, File{Path: string(p), Content: []byte(content)})
		}
	default:
		return nil, fmt.Errorf("files must be a table, got %s", files.Type())
	}

	return result, nil
}
