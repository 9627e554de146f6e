// Package levels loads the level table from a Lua script.
//
// A script returns an array of level tables:
//
//	return {
//	  { name = "...", rounds = 3, points = 100, mode = "superposition",
//	    intro = { es = "...", en = "..." } },
//	}
//
// Levels are numbered by position starting at 1. The script runs with only
// the base, table and string libraries and a one-second budget.
package levels

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lua "github.com/yuin/gopher-lua"
)

//go:embed levels.lua
var defaultScript string

// Mode is the game mechanic of a level.
type Mode string

const (
	ModeSuperposition Mode = "superposition"
	ModeNavigation    Mode = "navigation"
	ModeTunneling     Mode = "tunneling"
	ModeInterference  Mode = "interference"
)

// DefaultLang is the intro language used when a translation is missing.
const DefaultLang = "es"

// Level is one stage of the game.
type Level struct {
	Number int
	Name   string
	Rounds int
	// Points are awarded for every completed round.
	Points int
	Mode   Mode
	Intro  map[string]string
}

// IntroFor returns the intro in lang, falling back to DefaultLang.
func (l Level) IntroFor(lang string) string {
	if s, ok := l.Intro[lang]; ok && s != "" {
		return s
	}
	return l.Intro[DefaultLang]
}

var (
	errNoLevels   = errors.New("script returned no levels")
	errNotATable  = errors.New("script must return a table of levels")
	errBadLevel   = errors.New("invalid level")
	scriptTimeout = time.Second
)

// Default returns the built-in level table.
func Default() ([]Level, error) {
	return Parse("levels.lua", defaultScript)
}

// Load reads a level script from path.
func Load(path string) ([]Level, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	return Parse(filepath.Base(path), string(src))
}

// Parse runs src and converts its result. name labels errors.
func Parse(name, src string) ([]Level, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return nil, fmt.Errorf("levels %s: open %s: %w", name, lib.name, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()
	L.SetContext(ctx)

	fn, err := L.LoadString(src)
	if err != nil {
		return nil, fmt.Errorf("levels %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("levels %s: %w", name, err)
	}

	ret, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("levels %s: %w", name, errNotATable)
	}

	var out []Level
	for i := 1; i <= ret.Len(); i++ {
		entry, ok := ret.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("levels %s: %w %d: not a table", name, errBadLevel, i)
		}
		out = append(out, toLevel(i, entry))
	}

	if err := Validate(out); err != nil {
		return nil, fmt.Errorf("levels %s: %w", name, err)
	}
	return out, nil
}

func toLevel(number int, t *lua.LTable) Level {
	lv := Level{
		Number: number,
		Name:   lua.LVAsString(t.RawGetString("name")),
		Rounds: int(lua.LVAsNumber(t.RawGetString("rounds"))),
		Points: int(lua.LVAsNumber(t.RawGetString("points"))),
		Mode:   Mode(lua.LVAsString(t.RawGetString("mode"))),
		Intro:  map[string]string{},
	}

	switch intro := t.RawGetString("intro").(type) {
	case lua.LString:
		lv.Intro[DefaultLang] = string(intro)
	case *lua.LTable:
		intro.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				lv.Intro[string(ks)] = lua.LVAsString(v)
			}
		})
	}
	return lv
}

// Validate checks every level: known mode, a name, positive rounds,
// non-negative points, and contiguous numbers from 1.
func Validate(levels []Level) error {
	if len(levels) == 0 {
		return errNoLevels
	}
	for i, lv := range levels {
		switch {
		case lv.Number != i+1:
			return fmt.Errorf("%w %d: number %d out of sequence", errBadLevel, i+1, lv.Number)
		case lv.Name == "":
			return fmt.Errorf("%w %d: missing name", errBadLevel, lv.Number)
		case lv.Rounds <= 0:
			return fmt.Errorf("%w %d: rounds must be > 0: %d", errBadLevel, lv.Number, lv.Rounds)
		case lv.Points < 0:
			return fmt.Errorf("%w %d: points must be >= 0: %d", errBadLevel, lv.Number, lv.Points)
		}
		switch lv.Mode {
		case ModeSuperposition, ModeNavigation, ModeTunneling, ModeInterference:
		default:
			return fmt.Errorf("%w %d: unknown mode %q", errBadLevel, lv.Number, lv.Mode)
		}
	}
	return nil
}
