// Package tokens loads audio and source token lists from JSON.
//
// Only structure is checked: ids present and unique, idx non-negative,
// ranges well-formed. Token text is taken as is.
package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Mr-Dark-debug/interlinear/internal/align"
)

// Loader decodes and validates token files.
type Loader struct {
	v *validator.Validate
}

// NewLoader creates a loader whose error messages use JSON field names.
func NewLoader() *Loader {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		if i := strings.IndexByte(name, ','); i >= 0 {
			name = name[:i]
		}
		if name == "-" {
			return ""
		}
		return name
	})
	return &Loader{v: v}
}

// DecodeAudio reads a JSON array of audio tokens. The result is ordered by
// idx.
func (l *Loader) DecodeAudio(r io.Reader) ([]align.AudioToken, error) {
	var toks []align.AudioToken
	if err := json.NewDecoder(r).Decode(&toks); err != nil {
		return nil, fmt.Errorf("decoding audio tokens: %w", err)
	}
	seen := make(map[align.TokenID]struct{}, len(toks))
	for i := range toks {
		if err := l.check(&toks[i]); err != nil {
			return nil, fmt.Errorf("audio token %d: %w", i, err)
		}
		if _, dup := seen[toks[i].ID]; dup {
			return nil, fmt.Errorf("audio token %d: duplicate id %q", i, toks[i].ID)
		}
		seen[toks[i].ID] = struct{}{}
	}
	sort.SliceStable(toks, func(i, j int) bool { return toks[i].Idx < toks[j].Idx })
	return toks, nil
}

// DecodeSource reads a JSON array of source tokens. The result is ordered
// by idx.
func (l *Loader) DecodeSource(r io.Reader) ([]align.SourceToken, error) {
	var toks []align.SourceToken
	if err := json.NewDecoder(r).Decode(&toks); err != nil {
		return nil, fmt.Errorf("decoding source tokens: %w", err)
	}
	seen := make(map[align.TokenID]struct{}, len(toks))
	for i := range toks {
		if err := l.check(&toks[i]); err != nil {
			return nil, fmt.Errorf("source token %d: %w", i, err)
		}
		if _, dup := seen[toks[i].ID]; dup {
			return nil, fmt.Errorf("source token %d: duplicate id %q", i, toks[i].ID)
		}
		seen[toks[i].ID] = struct{}{}
	}
	sort.SliceStable(toks, func(i, j int) bool { return toks[i].Idx < toks[j].Idx })
	return toks, nil
}

// LoadFiles reads both token files.
func (l *Loader) LoadFiles(audioPath, sourcePath string) ([]align.AudioToken, []align.SourceToken, error) {
	af, err := os.Open(audioPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening audio tokens: %w", err)
	}
	defer af.Close()
	audio, err := l.DecodeAudio(af)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", audioPath, err)
	}

	sf, err := os.Open(sourcePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening source tokens: %w", err)
	}
	defer sf.Close()
	source, err := l.DecodeSource(sf)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	return audio, source, nil
}

// check validates one token and flattens validator errors into one message.
func (l *Loader) check(tok any) error {
	err := l.v.Struct(tok)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fieldPath(e), friendlyMessage(e)))
	}
	return align.Validation(strings.Join(msgs, "; "))
}

// fieldPath drops the struct name prefix, e.g. "AudioToken.audioRanges[0].end"
// becomes "audioRanges[0].end".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "gtefield":
		return fmt.Sprintf("must not be before %s", strings.ToLower(e.Param()))
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
