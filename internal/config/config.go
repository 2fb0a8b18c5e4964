// Package config loads compiler settings from an optional CUE file and the
// environment.
//
// Precedence, lowest first: schema defaults, the config file, TAPEC_*
// environment variables. Command-line flags are applied by the caller on
// top of the returned Config.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/xyproto/env/v2"

	"github.com/roach88/tapec/internal/emit"
	"github.com/roach88/tapec/internal/optimize"
)

//go:embed schema.cue
var schema string

// Environment variables consulted by Load.
const (
	EnvTapeSize   = "TAPEC_TAPE_SIZE"
	EnvTapeOrigin = "TAPEC_TAPE_ORIGIN"
	EnvMode       = "TAPEC_OPTIMIZE_MODE"
	EnvDecMove    = "TAPEC_DECMOVE"
)

// Config is the decoded #Config value.
type Config struct {
	Tape     Tape     `json:"tape" yaml:"tape"`
	Debug    Debug    `json:"debug" yaml:"debug"`
	Optimize Optimize `json:"optimize" yaml:"optimize"`
}

type Tape struct {
	Size   int `json:"size" yaml:"size"`
	Origin int `json:"origin" yaml:"origin"`
}

type Debug struct {
	WindowStart int `json:"window_start" yaml:"window_start"`
	WindowEnd   int `json:"window_end" yaml:"window_end"`
	BlockSize   int `json:"block_size" yaml:"block_size"`
	Budget      int `json:"budget" yaml:"budget"`
}

type Optimize struct {
	Mode       string `json:"mode" yaml:"mode"`
	Rounds     int    `json:"rounds" yaml:"rounds"`
	MaxRounds  int    `json:"max_rounds" yaml:"max_rounds"`
	Glider     bool   `json:"glider" yaml:"glider"`
	MemMove    bool   `json:"memmove" yaml:"memmove"`
	MemMoveMin int    `json:"memmove_min" yaml:"memmove_min"`
	DecMove    bool   `json:"decmove" yaml:"decmove"`
}

// ConfigError reports an invalid configuration, with the CUE source
// position when one is known.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration used when no file is given and no
// environment variable is set.
func Default() Config {
	cfg, err := decode(cuecontext.New(), nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema is invalid: %v", err))
	}
	return cfg
}

// Load reads the CUE file at path (empty path means none) and applies
// environment overrides.
func Load(path string) (Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return loadBytes(path, data)
}

func loadBytes(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()
	var overlays []func(cue.Value) (cue.Value, error)
	if data != nil {
		overlays = append(overlays, func(v cue.Value) (cue.Value, error) {
			user := ctx.CompileBytes(data, cue.Filename(path))
			if err := user.Err(); err != nil {
				return v, formatCUEError(err)
			}
			return v.Unify(user), nil
		})
	}
	overlays = append(overlays, fromEnv)
	return decode(ctx, overlays)
}

func decode(ctx *cue.Context, overlays []func(cue.Value) (cue.Value, error)) (Config, error) {
	root := ctx.CompileString(schema, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}
	v := root.LookupPath(cue.ParsePath("#Config"))

	for _, overlay := range overlays {
		var err error
		if v, err = overlay(v); err != nil {
			return Config{}, err
		}
	}

	if err := v.Validate(); err != nil {
		return Config{}, formatCUEError(err)
	}
	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(err)
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fromEnv fills values from TAPEC_* variables.
func fromEnv(v cue.Value) (cue.Value, error) {
	ints := []struct{ name, path string }{
		{EnvTapeSize, "tape.size"},
		{EnvTapeOrigin, "tape.origin"},
	}
	for _, e := range ints {
		if !env.Has(e.name) {
			continue
		}
		n := env.Int(e.name, -1)
		if n < 0 {
			return v, &ConfigError{Field: e.path, Message: fmt.Sprintf("%s must be a non-negative integer", e.name)}
		}
		v = v.FillPath(cue.ParsePath(e.path), n)
	}
	if env.Has(EnvMode) {
		v = v.FillPath(cue.ParsePath("optimize.mode"), env.Str(EnvMode))
	}
	if env.Has(EnvDecMove) {
		v = v.FillPath(cue.ParsePath("optimize.decmove"), env.Bool(EnvDecMove))
	}
	return v, nil
}

// check enforces relations the schema cannot express per field.
func (c Config) check() error {
	if c.Tape.Origin >= c.Tape.Size {
		return &ConfigError{Field: "tape.origin", Message: fmt.Sprintf("origin %d must be inside a tape of %d cells", c.Tape.Origin, c.Tape.Size)}
	}
	if c.Debug.WindowStart > c.Debug.WindowEnd {
		return &ConfigError{Field: "debug.window_start", Message: "window start is after window end"}
	}
	if c.Debug.WindowEnd > c.Tape.Size {
		return &ConfigError{Field: "debug.window_end", Message: fmt.Sprintf("window end %d is past the tape", c.Debug.WindowEnd)}
	}
	return nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	ce := &ConfigError{Field: "cue", Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}

// OptimizeConfig returns the pipeline settings.
func (c Config) OptimizeConfig() optimize.Config {
	return optimize.Config{
		Mode:       c.Optimize.Mode,
		Rounds:     c.Optimize.Rounds,
		MaxRounds:  c.Optimize.MaxRounds,
		Glider:     c.Optimize.Glider,
		MemMove:    c.Optimize.MemMove,
		MemMoveMin: c.Optimize.MemMoveMin,
		DecMove:    c.Optimize.DecMove,
	}
}

// EmitOptions returns the runtime layout for the C backend.
func (c Config) EmitOptions() emit.Options {
	return emit.Options{
		TapeSize:    c.Tape.Size,
		Origin:      c.Tape.Origin,
		DebugStart:  c.Debug.WindowStart,
		DebugEnd:    c.Debug.WindowEnd,
		DebugBlock:  c.Debug.BlockSize,
		DebugBudget: c.Debug.Budget,
	}
}

// CanonicalMap returns every setting that changes generated code, in a form
// ir.MarshalCanonical accepts. It is part of the artifact cache key.
func (c Config) CanonicalMap() map[string]any {
	return map[string]any{
		"tape": map[string]any{
			"size":   c.Tape.Size,
			"origin": c.Tape.Origin,
		},
		"debug": map[string]any{
			"window_start": c.Debug.WindowStart,
			"window_end":   c.Debug.WindowEnd,
			"block_size":   c.Debug.BlockSize,
			"budget":       c.Debug.Budget,
		},
		"optimize": map[string]any{
			"mode":        c.Optimize.Mode,
			"rounds":      c.Optimize.Rounds,
			"max_rounds":  c.Optimize.MaxRounds,
			"glider":      c.Optimize.Glider,
			"memmove":     c.Optimize.MemMove,
			"memmove_min": c.Optimize.MemMoveMin,
			"decmove":     c.Optimize.DecMove,
		},
	}
}
