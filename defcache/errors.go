package defcache

import (
	"errors"
	"fmt"
)

// Stage tells which step of a load failed
type Stage string

const (
	StageResolve Stage = "resolve"
	StageRead    Stage = "read"
	StageDecode  Stage = "decode"
)

var errNoDefinition = errors.New("decoder returned no definition")

// LoadError wraps any failure of FetchOrLoad. Use errors.Is with
// fs.ErrNotExist to detect a missing file, or errors.As with
// *sam.DecodeError for malformed data.
type LoadError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
