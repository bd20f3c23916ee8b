package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Format is the source language of a configuration document.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", &ValidationError{
		Code:    CodeUnsupportedFile,
		Field:   path,
		Message: "expected a .cue, .yaml, .yml or .toml file, or a directory of .cue files",
	}
}

// Load reads and validates the configuration at path. A directory is
// loaded as a CUE package.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if info.IsDir() {
		return loadCUEDir(path)
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return Parse(data, format, path)
}

// Parse validates a configuration document held in memory. filename is
// used in error positions only.
func Parse(data []byte, format Format, filename string) (*Config, error) {
	ctx := cuecontext.New()
	var doc cue.Value
	switch format {
	case FormatCUE:
		doc = ctx.CompileBytes(data, cue.Filename(filename))
		if err := doc.Err(); err != nil {
			return nil, cueError(CodeDecode, err)
		}
	case FormatYAML:
		var raw rawConfig
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return nil, &ValidationError{Code: CodeDecode, Field: filename, Message: err.Error()}
		}
		doc = ctx.Encode(raw)
	case FormatTOML:
		var raw rawConfig
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return nil, &ValidationError{Code: CodeDecode, Field: filename, Message: tomlMessage(err)}
		}
		doc = ctx.Encode(raw)
	default:
		return nil, &ValidationError{Code: CodeUnsupportedFile, Field: filename, Message: fmt.Sprintf("unknown format %q", format)}
	}
	return fromValue(ctx, doc)
}

// loadCUEDir builds the CUE package in dir.
func loadCUEDir(dir string) (*Config, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &ValidationError{Code: CodeDecode, Field: dir, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, cueError(CodeDecode, inst.Err)
	}
	ctx := cuecontext.New()
	doc := ctx.BuildInstance(inst)
	if err := doc.Err(); err != nil {
		return nil, cueError(CodeDecode, err)
	}
	return fromValue(ctx, doc)
}

// fromValue unifies doc with the schema and converts it.
func fromValue(ctx *cue.Context, doc cue.Value) (*Config, error) {
	if err := doc.Err(); err != nil {
		return nil, cueError(CodeDecode, err)
	}
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("config: embedded schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(CodeSchema, err)
	}
	var raw rawConfig
	if err := v.Decode(&raw); err != nil {
		return nil, cueError(CodeDecode, err)
	}
	return convert(raw)
}

// cueError converts the first CUE error into a ValidationError carrying
// its source position.
func cueError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	ve := &ValidationError{
		Code:    code,
		Field:   strings.Join(first.Path(), "."),
		Message: first.Error(),
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ve.Pos = positions[0]
	}
	return ve
}

func tomlMessage(err error) string {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		return fmt.Sprintf("%d:%d: %s", row, col, derr.Error())
	}
	return err.Error()
}
