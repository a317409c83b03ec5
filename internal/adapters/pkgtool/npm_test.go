package pkgtool

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger records warnings for assertions.
type testLogger struct {
	warnings []string
}

func (l *testLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (l *testLogger) Warn(_ context.Context, msg string, _ map[string]interface{}) {
	l.warnings = append(l.warnings, msg)
}

type call struct {
	dir  string
	name string
	args []string
}

// fakeRunner records invocations and returns canned output.
type fakeRunner struct {
	calls []call
	out   string
	err   error
}

func (f *fakeRunner) run(_ context.Context, dir, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{dir: dir, name: name, args: args})
	return f.out, f.err
}

func TestNpmLerna_BumpMajor(t *testing.T) {
	runner := &fakeRunner{out: "v3.0.0\n"}
	tool := NewNpmLerna("/work", runner.run, &testLogger{})

	version, err := tool.BumpMajor(context.Background(), "./packages/projectA")

	require.NoError(t, err)
	assert.Equal(t, "3.0.0", version)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, call{
		dir:  filepath.Join("/work", "packages/projectA"),
		name: "npm",
		args: []string{"version", "major"},
	}, runner.calls[0])
}

func TestNpmLerna_BumpMajor_AbsoluteDir(t *testing.T) {
	runner := &fakeRunner{out: "v1.0.0"}
	tool := NewNpmLerna("/work", runner.run, &testLogger{})

	_, err := tool.BumpMajor(context.Background(), "/elsewhere/pkg")

	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/pkg", runner.calls[0].dir)
}

func TestNpmLerna_BumpMajor_UnparseableOutput(t *testing.T) {
	runner := &fakeRunner{out: "> preversion hook\nsomething odd\n"}
	log := &testLogger{}
	tool := NewNpmLerna("/work", runner.run, log)

	version, err := tool.BumpMajor(context.Background(), "pkg")

	require.NoError(t, err)
	assert.Empty(t, version)
	assert.Len(t, log.warnings, 1)
}

func TestNpmLerna_BumpMajor_Failure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("npm version major failed: exit status 1")}
	tool := NewNpmLerna("/work", runner.run, &testLogger{})

	version, err := tool.BumpMajor(context.Background(), "pkg")

	require.Error(t, err)
	assert.Empty(t, version)
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestNpmLerna_VersionWorkspace(t *testing.T) {
	runner := &fakeRunner{out: "lerna success version finished\n"}
	tool := NewNpmLerna("/work", runner.run, &testLogger{})

	err := tool.VersionWorkspace(context.Background())

	require.NoError(t, err)
	assert.Equal(t, call{
		dir:  "/work",
		name: "yarn",
		args: []string{"lerna", "version", "minor", "--yes"},
	}, runner.calls[0])
}

func TestNpmLerna_VersionWorkspace_Failure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("lerna ERR! ENOGIT")}
	tool := NewNpmLerna("/work", runner.run, &testLogger{})

	err := tool.VersionWorkspace(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENOGIT")
}

func TestParseVersionOutput(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{name: "with v prefix", out: "v2.0.0\n", want: "2.0.0"},
		{name: "without prefix", out: "2.0.0", want: "2.0.0"},
		{name: "hook output before version", out: "> lint\nok\nv4.0.0\n", want: "4.0.0"},
		{name: "prerelease", out: "v3.0.0-rc.1", want: "3.0.0-rc.1"},
		{name: "empty", out: "", wantErr: true},
		{name: "not a version", out: "done", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVersionOutput(tt.out)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecRunner(t *testing.T) {
	out, err := ExecRunner(context.Background(), t.TempDir(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	_, err = ExecRunner(context.Background(), t.TempDir(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
