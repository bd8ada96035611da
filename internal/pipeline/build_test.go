package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidoc/internal/diag"
	"apidoc/internal/fragment"
	"apidoc/internal/openapi"
	"apidoc/internal/source"
)

func goFile(path string, comments ...string) source.File {
	var b bytes.Buffer
	b.WriteString("package api\n")
	for _, c := range comments {
		b.WriteString("\n")
		b.WriteString(c)
		b.WriteString("\nfunc _() {}\n")
	}
	return source.File{Path: path, Content: b.Bytes()}
}

func files(fs ...source.File) []source.File { return fs }

func build(t *testing.T, fs []source.File, opts Options) (*Result, error) {
	t.Helper()
	return Build(slices.Values(fs), opts)
}

func encodeJSON(t *testing.T, doc *openapi.Document) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, openapi.Encode(&buf, doc, openapi.FormatJSON))
	return buf.String()
}

func TestBuild_RedefinedInfo(t *testing.T) {
	res, err := build(t, files(
		goFile("a.go", "// @openapi info {title: \"X\", version: 1.0.0}"),
		goFile("b.go", "// @openapi info {title: \"Y\", version: 2.0.0}"),
	), Options{Verbose: true})
	require.NoError(t, err)

	title, _ := res.Document.Info.Get("title")
	assert.Equal(t, "X", title)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diag.SevWarning, res.Diagnostics[0].Severity)
	assert.Equal(t, diag.RedefinedSingleton, res.Diagnostics[0].Code)
	assert.Equal(t, "b.go", res.Diagnostics[0].Origin.File)
}

func TestBuild_IdenticalSchemas(t *testing.T) {
	pet := "// @openapi schema\n// name: Pet\n// schema:\n//   type: object\n//   properties:\n//     name: {type: string}"
	res, err := build(t, files(goFile("a.go", pet), goFile("b.go", pet)), Options{Verbose: true, ThrowLevel: diag.ThrowInfo})
	require.NoError(t, err)

	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, []string{"Pet"}, res.Document.Components.Schemas.Keys())
}

func TestBuild_DuplicateOperationReportedOnce(t *testing.T) {
	op := "// @openapi path-operation {method: get, path: /pets, responses: {200: {description: %s}}}"
	res, err := build(t, files(
		goFile("a.go", fmt.Sprintf(op, "first")),
		goFile("b.go", fmt.Sprintf(op, "second")),
		goFile("c.go", fmt.Sprintf(op, "third")),
	), Options{Verbose: true, ThrowLevel: diag.ThrowNever})
	require.NoError(t, err)

	var dups []diag.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Code == diag.DuplicateIdentity {
			dups = append(dups, d)
		}
	}
	require.Len(t, dups, 1)
	assert.Equal(t, "b.go", dups[0].Origin.File)

	out := encodeJSON(t, res.Document)
	assert.Contains(t, out, `"first"`)
	assert.NotContains(t, out, `"second"`)
	assert.NotContains(t, out, `"third"`)
}

func TestBuild_ThrowLevel(t *testing.T) {
	// One warning (upper-case method) and nothing else.
	op := "// @openapi path-operation {method: GET, path: /pets, operationId: listPets, responses: {200: {description: ok}}}"
	fs := files(goFile("pets.go", op))

	t.Run("warn fails at warn", func(t *testing.T) {
		res, err := build(t, fs, Options{ThrowLevel: diag.ThrowWarn})
		assert.Nil(t, res)
		var agg *diag.AggregateError
		require.True(t, errors.As(err, &agg))
		assert.Equal(t, diag.ThrowWarn, agg.Threshold)
		require.Len(t, agg.Diagnostics, 1)
		assert.Equal(t, diag.NonCanonicalShape, agg.Diagnostics[0].Code)
		assert.Contains(t, err.Error(), `throw level "warn": 0 error(s), 1 warning(s), 0 info`)
	})

	t.Run("warn passes at error", func(t *testing.T) {
		res, err := build(t, fs, Options{ThrowLevel: diag.ThrowError})
		require.NoError(t, err)
		_, ok := res.Document.Operation("/pets", "get")
		assert.True(t, ok)
		assert.Nil(t, res.Diagnostics, "diagnostics are only returned in verbose mode")
	})

	t.Run("verbose returns the warnings", func(t *testing.T) {
		res, err := build(t, fs, Options{ThrowLevel: diag.ThrowError, Verbose: true})
		require.NoError(t, err)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, diag.SevWarning, res.Diagnostics[0].Severity)
	})

	t.Run("never", func(t *testing.T) {
		broken := goFile("broken.go", "// @openapi path-operation {method: get}")
		res, err := build(t, files(broken), Options{ThrowLevel: diag.ThrowNever, Verbose: true})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Document.Paths.Len())
		require.NotEmpty(t, res.Diagnostics)
		assert.Equal(t, diag.MalformedFragment, res.Diagnostics[0].Code)
	})
}

func TestBuild_ErrorsDoNotStopTheRun(t *testing.T) {
	_, err := build(t, files(
		goFile("a.go",
			"// @openapi bogus {x: 1}",
			"// @openapi tag {name: pet",
			"// @openapi tag {name: store}",
		),
		goFile("b.go", "// @openapi tag {name: user}"),
	), Options{})

	var agg *diag.AggregateError
	require.True(t, errors.As(err, &agg))
	codes := make([]diag.Code, len(agg.Diagnostics))
	for i, d := range agg.Diagnostics {
		codes[i] = d.Code
	}
	assert.Equal(t, []diag.Code{diag.UnknownKind, diag.MalformedFragment}, codes)
}

type stubExtractor map[string]any

func (s stubExtractor) Extract(path string, _ []byte) ([]fragment.Raw, error) {
	switch v := s[path].(type) {
	case error:
		return nil, v
	case []fragment.Raw:
		return v, nil
	}
	return nil, nil
}

func TestBuild_ExtractFailed(t *testing.T) {
	ext := stubExtractor{
		"bad.go": errors.New("boom"),
		"good.go": []fragment.Raw{
			{Kind: "tag", Body: "{name: pet}", Origin: diag.Location{File: "good.go", Line: 1}},
		},
	}
	fs := files(source.File{Path: "bad.go"}, source.File{Path: "good.go"})

	_, err := build(t, fs, Options{Extractor: ext})
	var agg *diag.AggregateError
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Diagnostics, 1)
	assert.Equal(t, diag.ExtractFailed, agg.Diagnostics[0].Code)
	assert.Equal(t, "bad.go", agg.Diagnostics[0].Origin.String())

	res, err := build(t, fs, Options{Extractor: ext, ThrowLevel: diag.ThrowNever})
	require.NoError(t, err)
	_, ok := res.Document.Tag("pet")
	assert.True(t, ok, "other files are still merged")
}

func TestBuild_FileOrderDecides(t *testing.T) {
	a := goFile("a.go", "// @openapi path-operation {method: get, path: /pets, operationId: fromA, responses: {200: {description: a}}}")
	b := goFile("b.go", "// @openapi path-operation {method: get, path: /pets, operationId: fromB, responses: {200: {description: b}}}")

	for _, tc := range []struct {
		name  string
		order []source.File
		want  string
	}{
		{"a first", files(a, b), "fromA"},
		{"b first", files(b, a), "fromB"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := build(t, tc.order, Options{})
			var agg *diag.AggregateError
			require.True(t, errors.As(err, &agg))
			require.Len(t, agg.Diagnostics, 1)
			assert.Equal(t, diag.DuplicateIdentity, agg.Diagnostics[0].Code)

			res, err := build(t, tc.order, Options{ThrowLevel: diag.ThrowNever})
			require.NoError(t, err)
			op, ok := res.Document.Operation("/pets", "get")
			require.True(t, ok)
			assert.Equal(t, tc.want, op.OperationID)
		})
	}
}

func TestBuild_Idempotent(t *testing.T) {
	fs := files(
		goFile("a.go",
			"// @openapi info {title: Petstore, version: 1.0.0}",
			"// @openapi tag {name: pet, description: Pets}",
		),
		goFile("b.go",
			"// @openapi path-operation\n// method: get\n// path: /pet/{petId}\n// operationId: getPetById\n// tags: [pet]\n// responses:\n//   200: {description: ok}\n//   default: {description: unexpected error}",
			"// @openapi schema {name: Pet, schema: {type: object}}",
			"// @openapi security-scheme {name: api_key, scheme: {type: apiKey, name: api_key, in: header}}",
		),
	)

	first, err := build(t, fs, Options{})
	require.NoError(t, err)
	second, err := build(t, fs, Options{})
	require.NoError(t, err)

	out := encodeJSON(t, first.Document)
	assert.Equal(t, out, encodeJSON(t, second.Document))
	assert.Contains(t, out, `"openapi": "3.0.3"`)
	assert.Contains(t, out, `"default": {`)
}

func TestBuild_Options(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res, err := build(t, files(goFile("a.go", "// @openapi info {title: X}")), Options{
		OpenAPIVersion: "3.1.0",
		Logger:         logger,
	})
	require.NoError(t, err)
	assert.Equal(t, "3.1.0", res.Document.OpenAPI)
	assert.Contains(t, logs.String(), "msg=\"file scanned\" path=a.go annotations=1")
	assert.Contains(t, logs.String(), "msg=\"build finished\" files=1 annotations=1 fragments=1 errors=0")
}
