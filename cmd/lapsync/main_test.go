package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lapsync/internal/history"
	"lapsync/internal/services"
	"lapsync/internal/testsupport"
)

type cliTestEnv struct {
	base       string
	configPath string
	stateDir   string
}

func setupCLITestEnv(t *testing.T, ffmpegBody string) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("LAPSYNC_FFMPEG", "")

	ffmpeg := testsupport.WriteScript(t, filepath.Join(base, "bin"), "ffmpeg", ffmpegBody)
	ffprobe := testsupport.WriteScript(t, filepath.Join(base, "bin"), "ffprobe", "echo 'ffprobe version test'\n")
	env := &cliTestEnv{
		base:       base,
		configPath: filepath.Join(base, "config.toml"),
		stateDir:   filepath.Join(base, "state"),
	}
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
state_dir = %q

[encoder]
ffmpeg_binary = %q
ffprobe_binary = %q
`, filepath.Join(base, "out"), filepath.Join(base, "logs"), env.stateDir, ffmpeg, ffprobe)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

const encodersStub = `case " $* " in
  *" -encoders "*)
    printf 'Encoders:\n ------\n V....D libx264   H.264\n V....D hevc_nvenc   NVENC hevc\n'
    exit 0 ;;
  *" -version "*)
    echo "ffmpeg version 6.1-test"
    exit 0 ;;
esac
exit 1
`

func TestConfigInitShowValidate(t *testing.T) {
	env := setupCLITestEnv(t, encodersStub)

	target := filepath.Join(env.base, "sample", "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# source: "+env.configPath)
	requireContains(t, out, env.stateDir)

	out, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestInvalidConfigIsConfigurationError(t *testing.T) {
	env := setupCLITestEnv(t, encodersStub)
	if err := os.WriteFile(env.configPath, []byte("[render]\nlayout = \"diagonal\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) || services.ExitCode(err) != 2 {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestEncodersCommand(t *testing.T) {
	env := setupCLITestEnv(t, encodersStub)
	out, _, err := runCLI(t, []string{"encoders"}, env.configPath)
	if err != nil {
		t.Fatalf("encoders: %v", err)
	}
	requireContains(t, out, "hevc_nvenc")
	requireContains(t, out, "libx264")
	if strings.Index(out, "hevc_nvenc") > strings.Index(out, "libx264") {
		t.Fatalf("expected hardware encoder listed before the software fallback:\n%s", out)
	}
}

func TestDoctorReportsMissingBinary(t *testing.T) {
	env := setupCLITestEnv(t, encodersStub)
	content, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	broken := strings.Replace(string(content), "[encoder]\n", "[encoder]\nffprobe_binary = \"/nonexistent/ffprobe\"\n", 1)
	broken = strings.Replace(broken, "ffprobe_binary = \""+filepath.Join(env.base, "bin", "ffprobe")+"\"\n", "", 1)
	if err := os.WriteFile(env.configPath, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected doctor to fail, got %v", err)
	}
	requireContains(t, out, "FAIL")
	requireContains(t, out, "FFprobe")
}

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t, encodersStub)
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No renders recorded yet")

	ctx := context.Background()
	store, err := history.OpenPath(ctx, filepath.Join(env.stateDir, "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	if _, err := store.Begin(ctx, history.Run{ID: "r1", Output: "/videos/a_vs_b.mp4", FramesTotal: 1200}); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Finish(ctx, "r1", history.Outcome{Encoder: "libx264", FramesWritten: 1200}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	_ = store.Close()

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Completed")
	requireContains(t, out, "1,200/1,200")

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var entries []historyEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(entries) != 1 || entries[0].Encoder != "libx264" || entries[0].Status != "completed" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestRenderRequiresInputs(t *testing.T) {
	env := setupCLITestEnv(t, encodersStub)
	_, _, err := runCLI(t, []string{"render", "--primary-video", "a.mp4"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "required flag") {
		t.Fatalf("expected missing flag error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"render",
		"--primary-video", "a.mp4", "--primary-csv", "a.csv",
		"--secondary-video", "b.mp4", "--secondary-csv", "b.csv",
		"--range", "9:3",
	}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for an inverted range, got %v", err)
	}
}
