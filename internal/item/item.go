package item

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Issue is one diagnostic recorded against an item, tagged with the
// filename the item carried when the issue occurred.
type Issue struct {
	Filename string
	Message  string
}

func (i Issue) String() string {
	if i.Filename == "" {
		return i.Message
	}
	return fmt.Sprintf("%q: %s", i.Filename, i.Message)
}

// Item is the unit of work the pipeline moves between backends.
type Item struct {
	ID       string
	Filename string
	Data     []byte
	Warnings []Issue
	Errors   []Issue
	Info     map[string]any
}

// New constructs an item for the given logical filename and payload.
func New(filename string, data []byte) *Item {
	return &Item{
		ID:       uuid.NewString(),
		Filename: filename,
		Data:     data,
		Info:     make(map[string]any),
	}
}

// Clone returns a copy safe for a transform step to update. Diagnostic
// slices and the info map are copied; the payload is shared because steps
// replace Data wholesale rather than editing it in place.
func (it *Item) Clone() *Item {
	out := &Item{
		ID:       it.ID,
		Filename: it.Filename,
		Data:     it.Data,
		Warnings: append([]Issue(nil), it.Warnings...),
		Errors:   append([]Issue(nil), it.Errors...),
		Info:     make(map[string]any, len(it.Info)),
	}
	for k, v := range it.Info {
		if list, ok := v.([]string); ok {
			out.Info[k] = append([]string(nil), list...)
			continue
		}
		out.Info[k] = v
	}
	return out
}

// AddWarning appends a non-fatal diagnostic tagged with the current filename.
func (it *Item) AddWarning(message string) {
	it.Warnings = append(it.Warnings, Issue{Filename: it.Filename, Message: message})
}

// AddError appends a fatal diagnostic tagged with the current filename.
func (it *Item) AddError(message string) {
	it.Errors = append(it.Errors, Issue{Filename: it.Filename, Message: message})
}

// MergeInfo folds extra metadata into the item additively. Existing scalar
// keys are never overwritten; string-list values are concatenated.
func (it *Item) MergeInfo(extra map[string]any) {
	if it.Info == nil {
		it.Info = make(map[string]any, len(extra))
	}
	for k, v := range extra {
		existing, ok := it.Info[k]
		if !ok {
			if list, isList := v.([]string); isList {
				it.Info[k] = append([]string(nil), list...)
			} else {
				it.Info[k] = v
			}
			continue
		}
		have, haveList := existing.([]string)
		add, addList := v.([]string)
		if haveList && addList {
			it.Info[k] = append(have, add...)
		}
	}
}

// AppendInfoString appends value to the string list stored under key,
// creating the list if needed.
func (it *Item) AppendInfoString(key, value string) {
	if it.Info == nil {
		it.Info = make(map[string]any, 1)
	}
	list, _ := it.Info[key].([]string)
	it.Info[key] = append(list, value)
}

// ReplaceExtension rewrites the extension of filename, preserving the
// directory, basename, and any trailing ?query suffix. A final path segment
// with no extension is returned unchanged.
func ReplaceExtension(filename, ext string) string {
	base, query := filename, ""
	if i := strings.IndexByte(filename, '?'); i >= 0 {
		base, query = filename[:i], filename[i:]
	}
	sep := strings.LastIndexByte(base, '/')
	dot := strings.LastIndexByte(base, '.')
	if dot <= sep {
		return filename
	}
	return base[:dot+1] + ext + query
}

// IsRemote reports whether filename is a remote locator rather than a local
// path. Remote locators carry a scheme:// prefix; they have no meaningful
// local extension, so format-match checks are skipped for them.
func IsRemote(filename string) bool {
	i := strings.Index(filename, "://")
	if i <= 0 {
		return false
	}
	for n, r := range filename[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case n > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
