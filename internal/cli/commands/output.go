package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	goshape "github.com/reoring/goshape"
	"github.com/reoring/goshape/internal/cli/config"
	"github.com/reoring/goshape/reqtree"
)

// ErrIssuesFound is returned by check when the document has issues. The
// issues themselves have already been written to stdout.
var ErrIssuesFound = errors.New("document has issues")

type issueJSON struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// renderTree prints a requirement tree as canonical DSL text or JSON.
func renderTree(w io.Writer, mode string, t reqtree.Tree) error {
	if mode == config.OutputJSON {
		if t == nil {
			t = reqtree.Tree{}
		}
		return writeJSON(w, t)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// renderIssues prints issues as a table (text) or a JSON array.
func renderIssues(w io.Writer, mode string, iss goshape.Issues) error {
	if mode == config.OutputJSON {
		out := make([]issueJSON, 0, len(iss))
		for _, it := range iss {
			out = append(out, issueJSON{Path: it.Path, Code: it.Code, Message: it.Message, Hint: it.Hint, Params: it.Params})
		}
		return writeJSON(w, out)
	}
	if len(iss) == 0 {
		_, _ = fmt.Fprintln(w, "ok")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Path", "Code", "Message"})
	for _, it := range iss {
		t.AppendRow(table.Row{it.Path, it.Code, it.Message})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d issues)\n", len(iss))
	return nil
}

// renderNames prints a sorted list of names as a single-column table.
func renderNames(w io.Writer, header string, names []string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{header})
	for _, n := range sorted {
		t.AppendRow(table.Row{n})
	}
	t.Render()
}
