package cmd

import (
	"bytes"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/petsview/internal/config"
	"github.com/oakwood-commons/petsview/internal/petservice"
	"github.com/oakwood-commons/petsview/pkg/settings"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = orig
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("copy: %v", err)
	}
	_ = r.Close()
	return buf.String()
}

func resetRootCmdState() {
	configFile = ""
	noColor = false
	debug = false
	logFile = ""
	renderSnapshot = false
	snapshotWidth = 0
	snapshotHeight = 0
	configOutput = "yaml"

	rootCmd.SetArgs(nil)
	for _, c := range []*cobra.Command{rootCmd, configGetCmd, serveCmd} {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

func runCLIErr(t *testing.T, args []string) (string, error) {
	t.Helper()
	resetRootCmdState()
	// Isolate from user config by pointing XDG_CONFIG_HOME to a temp dir.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PETSVIEW_PET_SERVICE_URL", "")
	t.Setenv("PETSVIEW_STAGE", "")
	_ = os.Unsetenv("PETSVIEW_PET_SERVICE_URL")
	_ = os.Unsetenv("PETSVIEW_STAGE")

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = args

	var err error
	out := captureOutput(t, func() {
		err = Execute()
	})
	return out, err
}

func runCLI(t *testing.T, args []string) string {
	t.Helper()
	out, err := runCLIErr(t, args)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	return out
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCLI_Version(t *testing.T) {
	out := runCLI(t, []string{"petsview", "version"})
	assert.True(t, strings.HasPrefix(out, settings.CliBinaryName+" "), out)
	assert.Contains(t, out, settings.VersionInformation.BuildVersion)
}

func TestCLI_ConfigGetYAML(t *testing.T) {
	path := writeConfig(t, "config.json", `{"petServiceUrl": "http://localhost:7000/pets/v1/data", "stage": "dev"}`)
	out := runCLI(t, []string{"petsview", "config", "get", "--config-file", path})
	assert.Equal(t, "petServiceUrl: http://localhost:7000/pets/v1/data\nstage: dev\n", out)
}

func TestCLI_ConfigGetJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.toml", "petServiceUrl = \"http://a/pets\"\nstage = \"dev\"\n")
	resetRootCmdState()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PETSVIEW_STAGE", "prod")
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"petsview", "config", "get", "--config-file", path, "-o", "json"}

	var err error
	out := captureOutput(t, func() { err = Execute() })
	require.NoError(t, err)
	assert.JSONEq(t, `{"petServiceUrl":"http://a/pets","stage":"prod"}`, out)
}

func TestCLI_ConfigGetUnknownOutput(t *testing.T) {
	path := writeConfig(t, "config.yaml", "stage: dev\n")
	_, err := runCLIErr(t, []string{"petsview", "config", "get", "--config-file", path, "-o", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestCLI_ConfigGetMissingFile(t *testing.T) {
	_, err := runCLIErr(t, []string{"petsview", "config", "get", "--config-file", filepath.Join(t.TempDir(), "nope.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
}

func TestCLI_SnapshotAgainstFixtureService(t *testing.T) {
	svc := petservice.New(petservice.Options{Hostname: "test", Logger: logr.Discard()})
	ts := httptest.NewServer(svc.Router())
	defer ts.Close()

	path := writeConfig(t, "config.json", `{"petServiceUrl": "`+ts.URL+petservice.DataPath+`", "stage": "e2e"}`)
	out := runCLI(t, []string{"petsview", "--snapshot", "--no-color", "--config-file", path, "--width", "110", "--height", "20"})

	assert.Equal(t, int64(1), svc.Calls())
	for _, want := range []string{"stage: e2e", "NAME", "KIND", "AGE", "PIC", "Medor", "Labrador Retriever", "8 pets"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[")
}

func TestCLI_SnapshotReportsServiceError(t *testing.T) {
	svc := petservice.New(petservice.Options{ErrorEvery: 1, Logger: logr.Discard()})
	ts := httptest.NewServer(svc.Router())
	defer ts.Close()

	path := writeConfig(t, "config.yaml", "petServiceUrl: "+ts.URL+petservice.DataPath+"\n")
	out, err := runCLIErr(t, []string{"petsview", "--snapshot", "--no-color", "--config-file", path, "--width", "80", "--height", "12"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
	assert.Contains(t, out, "fetch error")
}

func TestCLI_RejectsArgs(t *testing.T) {
	_, err := runCLIErr(t, []string{"petsview", "extra"})
	require.Error(t, err)
}

func TestRenderConfigFormats(t *testing.T) {
	cfg := config.Configuration{PetServiceURL: "http://a", Stage: "dev"}
	_, err := renderConfig(cfg, "YAML")
	require.NoError(t, err)
	out, err := renderConfig(cfg, "json")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestLogOutput(t *testing.T) {
	run := settings.NewCliParams()
	w, err := logOutput(run)
	require.NoError(t, err)
	assert.Equal(t, io.Discard, w)

	run.Interactive = false
	w, err = logOutput(run)
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)

	run.LogFile = filepath.Join(t.TempDir(), "petsview.log")
	w, err = logOutput(run)
	require.NoError(t, err)
	f, ok := w.(*os.File)
	require.True(t, ok)
	require.NoError(t, f.Close())
	assert.FileExists(t, run.LogFile)

	run.LogFile = filepath.Join(t.TempDir(), "missing", "petsview.log")
	_, err = logOutput(run)
	assert.Error(t, err)
}

func TestCLI_LogFileClosedAfterExecute(t *testing.T) {
	cfgPath := writeConfig(t, "config.yaml", "stage: dev\n")
	logPath := filepath.Join(t.TempDir(), "petsview.log")
	runCLI(t, []string{"petsview", "config", "get", "--config-file", cfgPath, "--log-file", logPath})

	assert.Nil(t, logFileHandle)
	assert.FileExists(t, logPath)
}

func TestCloseLogFile(t *testing.T) {
	first, err := os.Create(filepath.Join(t.TempDir(), "a.log"))
	require.NoError(t, err)
	second, err := os.Create(filepath.Join(t.TempDir(), "b.log"))
	require.NoError(t, err)

	setLogFile(first)
	setLogFile(second)
	_, err = first.WriteString("x")
	require.ErrorIs(t, err, os.ErrClosed, "replacing the handle closes the old one")

	closeLogFile()
	assert.Nil(t, logFileHandle)
	_, err = second.WriteString("x")
	require.ErrorIs(t, err, os.ErrClosed)

	assert.NotPanics(t, closeLogFile)
}

func TestRootIsInteractiveOnlyWithoutSubcommand(t *testing.T) {
	path := writeConfig(t, "config.yaml", "stage: dev\n")
	runCLI(t, []string{"petsview", "config", "get", "--config-file", path})

	run, ok := settings.FromContext(rootCtx)
	require.True(t, ok)
	assert.False(t, run.Interactive)
}

func TestSnapshotSizeFlags(t *testing.T) {
	origTermGetSize := termGetSize
	defer func() { termGetSize = origTermGetSize }()
	termGetSize = func(int) (int, int, error) { return 132, 40, nil }

	resetRootCmdState()
	w, h := snapshotSize()
	assert.Equal(t, 132, w)
	assert.Equal(t, 40, h)

	snapshotWidth = 90
	w, h = snapshotSize()
	assert.Equal(t, 90, w)
	assert.Equal(t, 40, h)

	termGetSize = func(int) (int, int, error) { return 0, 0, os.ErrInvalid }
	snapshotWidth = 0
	w, h = snapshotSize()
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)
}
