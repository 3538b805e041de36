package fixer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/gnolang/tokpat/internal/cache"
	"github.com/gnolang/tokpat/rewrite"
)

func testEngine(t *testing.T) *rewrite.Engine {
	t.Helper()
	e, err := rewrite.Compile([]rewrite.Rule{
		{Name: "unwrap", Match: "$x:ident.unwrap()", Replace: "$x:ident?"},
	}, zap.NewNop())
	require.NoError(t, err)
	return e
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
		edits    int
		dryRun   bool
	}{
		{
			name:     "single edit",
			input:    "fn main() {\n    let a = foo.unwrap();\n}\n",
			expected: "fn main() {\n    let a = foo?;\n}\n",
			edits:    1,
		},
		{
			name:     "several edits keep layout",
			input:    "let a = x.unwrap();\n\n\tlet b = y.unwrap();  // keep\n",
			expected: "let a = x?;\n\n\tlet b = y?;  // keep\n",
			edits:    2,
		},
		{
			name:     "nothing to do",
			input:    "let a = 1;\n",
			expected: "let a = 1;\n",
		},
		{
			name:     "dry run leaves the file alone",
			input:    "a.unwrap()",
			expected: "a.unwrap()",
			edits:    1,
			dryRun:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "main.rs")
			writeFile(t, path, tt.input)

			f := New(testEngine(t), zaptest.NewLogger(t))
			f.DryRun = tt.dryRun
			f.Out = &bytes.Buffer{}

			res, err := f.Fix(path)
			require.NoError(t, err)
			assert.Len(t, res.Edits, tt.edits)
			assert.Equal(t, tt.expected, readFile(t, path))
		})
	}
}

func TestFixDryRunOutput(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "main.rs")
	writeFile(t, path, "let a = foo.unwrap();\n")

	var out bytes.Buffer
	f := New(testEngine(t), nil)
	f.DryRun = true
	f.Out = &out

	_, err := f.Fix(path)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[unwrap]")
	assert.Contains(t, out.String(), "- foo.unwrap()")
	assert.Contains(t, out.String(), "+ foo?")
}

func TestFixUsesCache(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c, err := cache.New(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	path := filepath.Join(dir, "main.rs")
	writeFile(t, path, "let a = 1;\n")

	f := New(testEngine(t), nil)
	f.Cache = c

	res, err := f.Fix(path)
	require.NoError(t, err)
	assert.False(t, res.Cached)

	res, err = f.Fix(path)
	require.NoError(t, err)
	assert.True(t, res.Cached)

	writeFile(t, path, "let a = b.unwrap();\n")
	res, err = f.Fix(path)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Len(t, res.Edits, 1)
}

func TestFixErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	f := New(testEngine(t), nil)

	_, err := f.Fix(filepath.Join(dir, "missing.rs"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.rs")
	writeFile(t, bad, "fn main() {")
	_, err = f.Fix(bad)
	assert.Error(t, err)
}

func TestFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"a.rs", "sub/b.rs", "vendor/c.rs", "notes.txt", "gen_x.rs"} {
		writeFile(t, filepath.Join(dir, name), "")
	}
	explicit := filepath.Join(dir, "notes.txt")

	f := New(testEngine(t), nil)
	f.Exclude = []string{"vendor", "gen_*"}

	files, err := f.Files([]string{dir, explicit, filepath.Join(dir, "a.rs")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.rs"),
		explicit,
		filepath.Join(dir, "sub/b.rs"),
	}, files)

	_, err = f.Files([]string{filepath.Join(dir, "nope")})
	assert.Error(t, err)
}

func TestProcessPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rs"), "x.unwrap()")
	writeFile(t, filepath.Join(dir, "b.rs"), "y")
	writeFile(t, filepath.Join(dir, "sub/c.rs"), "f(z.unwrap(), w.unwrap())")
	writeFile(t, filepath.Join(dir, "sub/d.rs"), "(")

	f := New(testEngine(t), zaptest.NewLogger(t))
	f.Concurrency = 2

	summary, err := f.ProcessPaths(context.Background(), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Changed)
	assert.Equal(t, 3, summary.Edits)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, filepath.Join(dir, "a.rs"), summary.Results[0].Path)

	assert.Equal(t, "x?", readFile(t, filepath.Join(dir, "a.rs")))
	assert.Equal(t, "f(z?, w?)", readFile(t, filepath.Join(dir, "sub/c.rs")))
}

func TestProcessPathsCanceled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rs"), "x.unwrap()")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testEngine(t), nil).ProcessPaths(ctx, []string{dir})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "x.unwrap()", readFile(t, filepath.Join(dir, "a.rs")))
}

func TestWatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.rs")

	f := New(testEngine(t), zap.NewNop())
	fixed := make(chan Result, 16)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.Watch(ctx, []string{dir}, func(res Result) {
			select {
			case fixed <- res:
			default:
			}
		})
	}()

	// keep writing until the watcher is up and has fixed the file
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		if err == nil && string(data) == "a?" {
			return true
		}
		_ = os.WriteFile(path, []byte("a.unwrap()"), 0o644)
		return false
	}, 10*time.Second, 200*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	select {
	case res := <-fixed:
		assert.Equal(t, path, res.Path)
	default:
		t.Fatal("no fix reported")
	}
}
