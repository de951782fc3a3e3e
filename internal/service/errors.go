package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoFile               = errors.New("no file uploaded")
	ErrEmptyFilename        = errors.New("no file selected")
	ErrUnsupportedExtension = errors.New("only .csv files are supported")
	ErrModelUnavailable     = errors.New("model not loaded on server")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)

// MissingColumnsError reports feature columns required by the model but
// absent from the upload. At most the first 10 names are rendered.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "the uploaded file is missing required feature columns: " + e.List()
}

// List renders at most the first 10 missing names, with an ellipsis marker
// when more were missing.
func (e *MissingColumnsError) List() string {
	shown := e.Columns
	suffix := ""
	if len(shown) > 10 {
		shown = shown[:10]
		suffix = " ..."
	}
	return fmt.Sprintf("[%s]%s", strings.Join(shown, " "), suffix)
}

// FeatureCountError reports a width mismatch when the model carries no
// explicit feature name list.
type FeatureCountError struct {
	Expected int
	Actual   int
}

func (e *FeatureCountError) Error() string {
	return fmt.Sprintf("model expects %d features, but your file has %d", e.Expected, e.Actual)
}

// ParseError wraps a failure to read the upload as a rectangular CSV table.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not read csv: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PredictError wraps a failure inside the predictor call or the numeric
// conversion feeding it.
type PredictError struct {
	Err error
}

func (e *PredictError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictError) Unwrap() error { return e.Err }
