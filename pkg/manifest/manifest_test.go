package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "package.json", `{
  "name": "mosaic-1",
  "dependencies": {"@scope/a": "^1.0.0", "other-pkg": "^2.0.0"},
  "devDependencies": null
}`)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, m.Path())
	assert.Equal(t, "mosaic-1", m.Name())
	assert.True(t, m.Has(SectionDependencies))
	assert.True(t, m.Has(SectionDevDependencies))
	assert.False(t, m.Has(SectionResolutions))
	assert.Equal(t, map[string]string{"@scope/a": "^1.0.0", "other-pkg": "^2.0.0"}, m.Section(SectionDependencies))
	assert.Nil(t, m.Section(SectionDevDependencies))
	assert.Nil(t, m.Section(SectionResolutions))
	assert.Equal(t, []string{"@scope/a", "other-pkg"}, m.SectionKeys(SectionDependencies))
	assert.Nil(t, m.SectionKeys(SectionDevDependencies))
	assert.Nil(t, m.SectionKeys(SectionResolutions))
}

func TestSectionKeys_RepeatedNames(t *testing.T) {
	m, err := Parse("package.json", []byte(`{"dependencies": {"b": "1", "@scope/a": "1", "b": "2"}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "@scope/a", "b"}, m.SectionKeys(SectionDependencies))
	assert.Equal(t, map[string]string{"b": "2", "@scope/a": "1"}, m.Section(SectionDependencies))
}

func TestParse_ResolutionsAnyShape(t *testing.T) {
	for _, content := range []string{
		`{"resolutions": {"foo": {"bar": "1.0.0"}}}`,
		`{"resolutions": ["x"]}`,
		`{"resolutions": "1.0.0"}`,
	} {
		m, err := Parse("package.json", []byte(content))
		require.NoError(t, err, content)
		assert.True(t, m.Has(SectionResolutions))
		assert.Nil(t, m.Section(SectionResolutions), content)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing", "package.json"))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsMalformed(err))

	var merr *ManifestError
	require.True(t, errors.As(err, &merr))
	assert.Contains(t, merr.Path, "missing")
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid JSON", content: `{"name": `},
		{name: "array at top level", content: `[1, 2]`},
		{name: "null at top level", content: `null`},
		{name: "dependencies not an object", content: `{"dependencies": ["a"]}`},
		{name: "non-string specifier", content: `{"devDependencies": {"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "package.json", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, IsMalformed(err), "expected malformed manifest, got %v", err)
		})
	}
}

func TestLoad_IgnoresUnrelatedContent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "package.json", `{"scripts": {"test": 3}, "version": 7, "files": null}`)
	_, err := Load(path)
	require.NoError(t, err)
}

func TestReadSourceVersion(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "original.package.json", `{"name": "@photic/web3", "version": "1.4.7"}`)

	version, err := ReadSourceVersion(path)
	require.NoError(t, err)
	assert.Equal(t, "1.4.7", version)
}

func TestReadSourceVersion_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantCheck func(error) bool
	}{
		{name: "missing version", content: `{"name": "x"}`, wantCheck: IsMalformed},
		{name: "empty version", content: `{"version": ""}`, wantCheck: IsMalformed},
		{name: "numeric version", content: `{"version": 1}`, wantCheck: IsMalformed},
		{name: "invalid JSON", content: `version=1.0.0`, wantCheck: IsMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "original.package.json", tt.content)
			_, err := ReadSourceVersion(path)
			require.Error(t, err)
			assert.True(t, tt.wantCheck(err), "unexpected error kind: %v", err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadSourceVersion(filepath.Join(t.TempDir(), "original.package.json"))
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestWithContentAndWrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "package.json", `{"name": "a"}`)
	m, err := Load(path)
	require.NoError(t, err)

	next, err := m.WithContent([]byte(`{"name": "b"}`))
	require.NoError(t, err)
	assert.Equal(t, "a", m.Name(), "original snapshot must not change")
	assert.Equal(t, "b", next.Name())

	require.NoError(t, Write(next))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "b"}`, string(data))
}

func TestWrite_IOFailure(t *testing.T) {
	m, err := Parse(filepath.Join(t.TempDir(), "gone", "package.json"), []byte(`{}`))
	require.NoError(t, err)

	err = Write(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIOFailure))
}

func TestBytesReturnsCopy(t *testing.T) {
	m, err := Parse("package.json", []byte(`{"name":"a"}`))
	require.NoError(t, err)

	b := m.Bytes()
	b[0] = 'X'
	assert.Equal(t, `{"name":"a"}`, string(m.Bytes()))
}

func TestTargetPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/work", "mosaic-1", "package.json"), TargetPath("/work", "mosaic-1", ""))
	assert.Equal(t, filepath.Join("/work", "app", "manifest.json"), TargetPath("/work", "app", "manifest.json"))
}

func TestManifestError_Message(t *testing.T) {
	err := &ManifestError{Path: "a/package.json", Kind: ErrMalformedManifest, Err: errors.New("boom")}
	assert.Equal(t, "malformed manifest: a/package.json: boom", err.Error())

	bare := &ManifestError{Path: "a/package.json", Kind: ErrManifestNotFound}
	assert.Equal(t, "manifest not found: a/package.json", bare.Error())
}
