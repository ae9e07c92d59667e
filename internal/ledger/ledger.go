package ledger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/agentx-labs/monogen/internal/errors"
	"github.com/agentx-labs/monogen/internal/logging"
)

// Store is the append-only view of one ledger file.
type Store interface {
	// HasSection reports whether the ledger already carries a section for id.
	HasSection(id string) (bool, error)
	// AppendSection appends text as id's section. It is a no-op when the
	// section already exists.
	AppendSection(id, text string) error
}

// Kind identifies which shared file a ledger represents.
type Kind string

const (
	KindManifest Kind = "manifest"
	KindBuild    Kind = "build"
	KindCI       Kind = "ci"
)

// File is a Store backed by one file on an afero filesystem.
type File struct {
	fs   afero.Fs
	path string
	kind Kind
	seed string
}

// Option customizes a File ledger.
type Option func(*File)

// WithSeed sets the content written before the first section when the file
// does not exist yet.
func WithSeed(seed string) Option {
	return func(f *File) { f.seed = seed }
}

// New returns a file-backed ledger of the given kind at path.
func New(fsys afero.Fs, kind Kind, path string, opts ...Option) *File {
	f := &File{fs: fsys, path: path, kind: kind}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Path returns the ledger's file path.
func (f *File) Path() string { return f.path }

// Kind returns the ledger kind.
func (f *File) Kind() Kind { return f.kind }

// Marker returns the line that identifies id's section in this ledger.
func (f *File) Marker(id string) string {
	return Marker(f.kind, id)
}

// Marker returns the section marker line for a ledger kind. The manifest uses
// the Poetry dependency-group table header; the build and CI files use a
// comment line.
func Marker(kind Kind, id string) string {
	switch kind {
	case KindManifest:
		return "[tool.poetry.group." + id + "]"
	default:
		return "# --- " + id + " ---"
	}
}

// HasSection reports whether a line equal to id's marker exists.
// A missing file has no sections.
func (f *File) HasSection(id string) (bool, error) {
	content, err := f.read()
	if err != nil {
		return false, err
	}
	return containsLine(content, f.Marker(id)), nil
}

// Check verifies that appending text for id would be accepted: the text must
// carry the marker, and the resulting file must still parse for structured
// ledgers. It writes nothing.
func (f *File) Check(id, text string) error {
	if !containsLine([]byte(text), f.Marker(id)) {
		return errors.NewWithDetails(errors.ELedgerInvalid,
			fmt.Sprintf("%s section for %q does not contain its marker line", f.kind, id),
			map[string]string{"file": f.path, "marker": f.Marker(id)})
	}
	content, err := f.read()
	if err != nil {
		return err
	}
	if containsLine(content, f.Marker(id)) {
		return nil
	}
	if content == nil {
		content = []byte(f.seed)
	}
	combined := joinSection(content, text)
	if err := validate(f.kind, combined); err != nil {
		return errors.WrapWithDetails(errors.ELedgerInvalid,
			fmt.Sprintf("appending %s section for %q would leave an unparsable file", f.kind, id),
			err, map[string]string{"file": f.path})
	}
	return nil
}

// AppendSection appends text for id unless its marker is already present.
func (f *File) AppendSection(id, text string) error {
	_, err := f.Ensure(id, text)
	return err
}

// Ensure is AppendSection that also reports whether a write happened.
func (f *File) Ensure(id, text string) (bool, error) {
	if err := f.Check(id, text); err != nil {
		return false, err
	}

	content, err := f.read()
	if err != nil {
		return false, err
	}
	if containsLine(content, f.Marker(id)) {
		logging.Debug().Str("ledger", string(f.kind)).Str("file", f.path).Str("unit", id).Msg("section present, skipping")
		return false, nil
	}

	var suffix string
	if content == nil {
		if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return false, errors.Wrap(errors.EIO, "creating directory for "+f.path, err)
		}
		suffix = string(joinSection([]byte(f.seed), text))
	} else {
		suffix = string(joinSection(content, text)[len(content):])
	}

	file, err := f.fs.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, errors.Wrap(errors.EIO, "opening "+f.path+" for append", err)
	}
	defer file.Close()

	if _, err := file.WriteString(suffix); err != nil {
		return false, errors.Wrap(errors.EIO, "writing to "+f.path, err)
	}
	logging.Debug().Str("ledger", string(f.kind)).Str("file", f.path).Str("unit", id).Msg("section appended")
	return true, nil
}

// Verify reports whether the ledger file exists and, for structured
// ledgers, whether it parses. A missing file is not an error.
func (f *File) Verify() (bool, error) {
	content, err := f.read()
	if err != nil {
		return false, err
	}
	if content == nil {
		return false, nil
	}
	if err := validate(f.kind, content); err != nil {
		return true, errors.WrapWithDetails(errors.ELedgerInvalid,
			fmt.Sprintf("%s does not parse", f.path), err, map[string]string{"file": f.path})
	}
	return true, nil
}

// read returns the file content, or nil when the file does not exist.
func (f *File) read() ([]byte, error) {
	content, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.EIO, "reading "+f.path, err)
	}
	if content == nil {
		content = []byte{}
	}
	return content, nil
}

// joinSection returns content followed by a blank separator line and text,
// always ending with a newline. Existing bytes are kept verbatim.
func joinSection(content []byte, text string) []byte {
	var b bytes.Buffer
	b.Write(content)
	if len(content) > 0 {
		if !bytes.HasSuffix(content, []byte("\n")) {
			b.WriteByte('\n')
		}
		if !bytes.HasSuffix(content, []byte("\n\n")) {
			b.WriteByte('\n')
		}
	}
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func containsLine(content []byte, line string) bool {
	for _, l := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}

// validate parses structured ledgers. The build file is line-oriented and
// has no parser.
func validate(kind Kind, content []byte) error {
	switch kind {
	case KindManifest:
		var doc map[string]any
		return toml.Unmarshal(content, &doc)
	case KindCI:
		var doc any
		return yaml.Unmarshal(content, &doc)
	default:
		return nil
	}
}
