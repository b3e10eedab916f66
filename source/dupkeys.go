package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

type dupFrame struct {
	object    bool
	path      string
	keys      map[string]struct{}
	key       string
	expectKey bool
	index     int
}

// DuplicateKeys scans a JSON document and returns the JSON Pointer of every
// object key that repeats an earlier key of the same object, in document
// order. Decoders keep only the last occurrence, so callers that need to
// reject such documents must scan before decoding.
func DuplicateKeys(b []byte) ([]string, error) {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var (
		stack []*dupFrame
		dups  []string
	)
	// enter returns the pointer of the value starting at the current token
	// and advances the enclosing frame past it.
	enter := func() string {
		if len(stack) == 0 {
			return ""
		}
		top := stack[len(stack)-1]
		if top.object {
			top.expectKey = true
			return top.path + "/" + pointerEscaper.Replace(top.key)
		}
		p := top.path + "/" + strconv.Itoa(top.index)
		top.index++
		return p
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dups, fmt.Errorf("decode json: %w", err)
		}
		if s, ok := tok.(string); ok && len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.object && top.expectKey {
				if _, seen := top.keys[s]; seen {
					dups = append(dups, top.path+"/"+pointerEscaper.Replace(s))
				}
				top.keys[s] = struct{}{}
				top.key = s
				top.expectKey = false
				continue
			}
		}
		switch tok {
		case j.Delim('{'):
			stack = append(stack, &dupFrame{object: true, path: enter(), keys: map[string]struct{}{}, expectKey: true})
		case j.Delim('['):
			stack = append(stack, &dupFrame{path: enter()})
		case j.Delim('}'), j.Delim(']'):
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			enter()
		}
	}
	if len(stack) > 0 {
		return dups, fmt.Errorf("decode json: %w", io.ErrUnexpectedEOF)
	}
	return dups, nil
}
