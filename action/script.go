package action

import (
	"fmt"
	"maps"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/actskill/skill"
)

// ScriptAction runs a tengo script on the activation edges. The script must
// define on_create(engine, state) and on_release(engine, state); state is a
// map private to one activation and seeded with Params.
type ScriptAction struct {
	skill.ActionBase `yaml:",inline"`
	Script           string            `yaml:"script,omitempty"`
	Source           string            `yaml:"source,omitempty"`
	Params           map[string]string `yaml:"params,omitempty"`
}

func NewScriptAction() *ScriptAction {
	return &ScriptAction{ActionBase: skill.NewActionBase()}
}

const scriptDispatch = `
if __phase == "create" {
	on_create(__engine, __state)
} else if __phase == "release" {
	on_release(__engine, __state)
}
`

type scriptHandler struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

func (a *ScriptAction) Kind() string            { return KindScript }
func (a *ScriptAction) Base() *skill.ActionBase { return &a.ActionBase }

func (a *ScriptAction) name() string {
	if a.Script != "" {
		return a.Script
	}
	return "<inline>"
}

func (a *ScriptAction) source(host skill.Host) ([]byte, error) {
	if a.Source != "" {
		return []byte(a.Source), nil
	}
	if a.Script == "" {
		return nil, ErrNoScript
	}
	if host == nil {
		return nil, fmt.Errorf("action: load script %s: no host", a.Script)
	}
	src, err := host.LoadScript(a.Script)
	if err != nil {
		return nil, fmt.Errorf("action: load script %s: %w", a.Script, err)
	}
	return src, nil
}

// CreateHandler compiles the script for this activation and runs on_create.
// A handler is returned whenever compilation succeeded, so a failing
// on_create still gets its on_release.
func (a *ScriptAction) CreateHandler(host skill.Host) (skill.Handler, error) {
	src, err := a.source(host)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("action: compile script %s: %w", a.name(), err)
	}

	state := &tengo.Map{Value: make(map[string]tengo.Object, len(a.Params))}
	for k, v := range a.Params {
		state.Value[k] = &tengo.String{Value: v}
	}
	h := &scriptHandler{name: a.name(), compiled: compiled, state: state}
	if err := h.run("create", buildScriptEngine(host, h.name, a.Params)); err != nil {
		return h, fmt.Errorf("action: script %s on_create: %w", h.name, err)
	}
	return h, nil
}

func (a *ScriptAction) ReleaseHandler(host skill.Host, handler skill.Handler) {
	h, ok := handler.(*scriptHandler)
	if !ok || h == nil {
		return
	}
	if err := h.run("release", buildScriptEngine(host, h.name, a.Params)); err != nil && host != nil {
		host.Logger().Error("script on_release failed", "script", h.name, "err", err)
	}
}

func (h *scriptHandler) run(phase string, engine *tengo.ImmutableMap) error {
	if err := h.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := h.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := h.compiled.Set("__state", h.state); err != nil {
		return err
	}
	return h.compiled.Run()
}

func buildScriptEngine(host skill.Host, name string, params map[string]string) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["emit"] = &tengo.UserFunction{Name: "emit", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if host == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		typ := strings.TrimSpace(objectAsString(args[0]))
		if typ == "" {
			return tengo.FalseValue, nil
		}
		var payload map[string]any
		if len(args) > 1 {
			if m, ok := objectToAny(args[1]).(map[string]any); ok {
				payload = m
			}
		}
		host.Emit(skill.Event{Type: typ, Payload: payload})
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if host == nil {
			return tengo.UndefinedValue, nil
		}
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, objectAsString(arg))
		}
		host.Logger().Info(strings.Join(parts, " "), "script", name)
		return tengo.UndefinedValue, nil
	}}

	values["param"] = &tengo.UserFunction{Name: "param", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		v, ok := params[objectAsString(args[0])]
		if !ok {
			if len(args) > 1 {
				return args[1], nil
			}
			return tengo.UndefinedValue, nil
		}
		return &tengo.String{Value: v}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func (a *ScriptAction) Clone() skill.Action {
	c := *a
	c.Params = maps.Clone(a.Params)
	return &c
}

func (a *ScriptAction) CopyFrom(other skill.Action) bool {
	if other == nil {
		return false
	}
	a.CopyBase(other.Base())
	o, ok := other.(*ScriptAction)
	if !ok {
		return false
	}
	a.Script = o.Script
	a.Source = o.Source
	a.Params = maps.Clone(o.Params)
	return true
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	default:
		return nil
	}
}
