package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the manifest patched in every new project.
const FileName = "package.json"

// PatchStatus tags the outcome of Patch.
type PatchStatus int

const (
	// PatchApplied means the name was rewritten.
	PatchApplied PatchStatus = iota
	// PatchSkipped means the project has no manifest.
	PatchSkipped
	// PatchFailed means the manifest could not be read, parsed or written.
	PatchFailed
)

func (s PatchStatus) String() string {
	switch s {
	case PatchApplied:
		return "applied"
	case PatchSkipped:
		return "skipped"
	case PatchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PatchResult describes what Patch did.
type PatchResult struct {
	Status PatchStatus
	Path   string
	// Err is set when Status is PatchFailed.
	Err error
	// Issues lists npm rule violations found in the patched manifest.
	Issues []ValidationIssue
}

var errNotObject = errors.New("manifest is not a JSON object")

// Patch sets the "name" member of targetDir/package.json to name. Member
// order and the raw bytes of every other value are kept; the document is
// re-indented with two spaces. Patch never returns an error: failures are
// reported through the result.
func Patch(targetDir, name string) *PatchResult {
	path := filepath.Join(targetDir, FileName)
	res := &PatchResult{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			res.Status = PatchSkipped
			return res
		}
		return res.fail(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return res.fail(fmt.Errorf("reading %s: %w", path, err))
	}

	obj, err := parseObject(data)
	if err != nil {
		return res.fail(fmt.Errorf("parsing %s: %w", path, err))
	}

	nameJSON, err := marshalString(name)
	if err != nil {
		return res.fail(err)
	}
	obj.set("name", nameJSON)

	out, err := obj.marshalIndent()
	if err != nil {
		return res.fail(fmt.Errorf("encoding %s: %w", path, err))
	}

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return res.fail(fmt.Errorf("writing %s: %w", path, err))
	}
	res.Status = PatchApplied

	if vr, err := Validate(out); err == nil && !vr.Valid {
		res.Issues = vr.Issues
	}
	return res
}

func (r *PatchResult) fail(err error) *PatchResult {
	r.Status = PatchFailed
	r.Err = err
	return r
}

// Engines returns the "engines" map of targetDir/package.json, or nil when
// the manifest is absent, malformed or declares none.
func Engines(targetDir string) map[string]string {
	data, err := os.ReadFile(filepath.Join(targetDir, FileName))
	if err != nil {
		return nil
	}
	var pkg struct {
		Engines map[string]string `json:"engines"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}
	return pkg.Engines
}

// member is one key/value pair of a JSON object, value kept verbatim.
type member struct {
	key   string
	value json.RawMessage
}

// object is a JSON object that remembers member order.
type object struct {
	members []member
}

// parseObject decodes a top-level JSON object without reordering members.
// Trailing data after the object is rejected.
func parseObject(data []byte) (*object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	obj := &object{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		obj.set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level object")
	}
	return obj, nil
}

// set replaces the value of key in place, or appends key when absent.
// A repeated key keeps its first position and its last value.
func (o *object) set(key string, value json.RawMessage) {
	for i := range o.members {
		if o.members[i].key == key {
			o.members[i].value = value
			return
		}
	}
	o.members = append(o.members, member{key: key, value: value})
}

// marshalIndent renders the object with two-space indentation and no
// trailing newline.
func (o *object) marshalIndent() ([]byte, error) {
	if len(o.members) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, m := range o.members {
		key, err := marshalString(m.key)
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(&buf, m.value, "  ", "  "); err != nil {
			return nil, err
		}
		if i < len(o.members)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return []byte(strings.TrimSuffix(buf.String(), "\n")), nil
}
