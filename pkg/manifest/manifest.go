// Package manifest loads, inspects and writes package.json manifests.
//
// A Manifest is an immutable snapshot of a file's bytes. Transformations
// produce a new snapshot (see WithContent) that is persisted with Write.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fulmenhq/yarnpin/pkg/logger"
	"github.com/fulmenhq/yarnpin/pkg/safeio"
)

const (
	// FileName is the conventional manifest file name inside a package folder.
	FileName = "package.json"

	// SourceFileName is the upstream manifest recording the published version,
	// looked up in the working directory.
	SourceFileName = "original.package.json"
)

// Manifest sections read or rewritten by pinning.
const (
	SectionDependencies    = "dependencies"
	SectionDevDependencies = "devDependencies"
	SectionResolutions     = "resolutions"
)

// Manifest is a validated, read-only view of a package manifest.
type Manifest struct {
	path   string
	raw    []byte
	fields map[string]json.RawMessage
}

// Load reads and validates the target manifest at path.
func Load(path string) (*Manifest, error) {
	raw, err := readManifest(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, raw)
}

// Parse validates raw as a target manifest. path is only used for reporting and Write.
func Parse(path string, raw []byte) (*Manifest, error) {
	if !json.Valid(raw) {
		return nil, newError(path, ErrMalformedManifest, errors.New("invalid JSON"))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, newError(path, ErrMalformedManifest, errors.New("top-level value must be an object"))
	}

	violations, err := ValidateBytes(raw, SchemaTarget)
	if err != nil {
		return nil, newError(path, ErrMalformedManifest, err)
	}
	if len(violations) > 0 {
		return nil, newError(path, ErrMalformedManifest, errors.New(describeViolations(violations)))
	}

	return &Manifest{
		path:   path,
		raw:    append([]byte(nil), raw...),
		fields: fields,
	}, nil
}

// ReadSourceVersion returns the version field of the source manifest at path.
func ReadSourceVersion(path string) (string, error) {
	raw, err := readManifest(path)
	if err != nil {
		return "", err
	}
	if !json.Valid(raw) {
		return "", newError(path, ErrMalformedManifest, errors.New("invalid JSON"))
	}

	violations, err := ValidateBytes(raw, SchemaSource)
	if err != nil {
		return "", newError(path, ErrMalformedManifest, err)
	}
	if len(violations) > 0 {
		return "", newError(path, ErrMalformedManifest, errors.New(describeViolations(violations)))
	}

	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return "", newError(path, ErrMalformedManifest, err)
	}

	logger.Debug("Read source version", logger.String("file", path), logger.String("version", pkg.Version))
	return pkg.Version, nil
}

func readManifest(path string) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, newError(path, ErrManifestNotFound, err)
	}

	data, err := os.ReadFile(absPath) // #nosec G304 - operator supplied build path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(path, ErrManifestNotFound, nil)
		}
		return nil, newError(path, ErrIOFailure, err)
	}
	return data, nil
}

// Path returns the file the manifest was loaded from and will be written to.
func (m *Manifest) Path() string { return m.path }

// Bytes returns a copy of the manifest content.
func (m *Manifest) Bytes() []byte { return append([]byte(nil), m.raw...) }

// Name returns the package name, or "" when the manifest has none.
func (m *Manifest) Name() string {
	var name string
	if raw, ok := m.fields["name"]; ok {
		_ = json.Unmarshal(raw, &name)
	}
	return name
}

// Has reports whether the top-level key is present (even if null).
func (m *Manifest) Has(key string) bool {
	_, ok := m.fields[key]
	return ok
}

// Section decodes one of the string mapping sections. Absent or null sections,
// and a resolutions section of any other shape, yield a nil map.
func (m *Manifest) Section(name string) map[string]string {
	raw, ok := m.fields[name]
	if !ok {
		return nil
	}
	var section map[string]string
	if err := json.Unmarshal(raw, &section); err != nil {
		return nil
	}
	return section
}

// SectionKeys returns the member names of an object section in document
// order. Repeated names are listed each time they occur.
func (m *Manifest) SectionKeys(name string) []string {
	raw, ok := m.fields[name]
	if !ok {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, _ := tok.(string)
		keys = append(keys, key)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return keys
		}
	}
	return keys
}

// WithContent returns a new snapshot for the same path holding raw.
func (m *Manifest) WithContent(raw []byte) (*Manifest, error) {
	return Parse(m.path, raw)
}

// Write persists m over its path atomically.
func Write(m *Manifest) error {
	if err := safeio.WriteFileAtomic(m.path, m.raw); err != nil {
		return newError(m.path, ErrIOFailure, err)
	}
	logger.Info("Wrote manifest", logger.String("file", m.path), logger.Int("bytes", len(m.raw)))
	return nil
}

// TargetPath returns the manifest path for a package folder relative to root.
func TargetPath(root, folder, fileName string) string {
	if fileName == "" {
		fileName = FileName
	}
	return filepath.Join(root, folder, fileName)
}

// String implements fmt.Stringer for log output.
func (m *Manifest) String() string {
	return fmt.Sprintf("%s (%d bytes)", m.path, len(m.raw))
}
