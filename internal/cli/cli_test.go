package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kal997/file-interest-server/internal/api"
	"github.com/kal997/file-interest-server/internal/interest"
	"github.com/kal997/file-interest-server/internal/logger"
	"github.com/kal997/file-interest-server/internal/notifier"
	"github.com/kal997/file-interest-server/internal/service"
	"github.com/kal997/file-interest-server/internal/storage"
)

func init() {
	// Assertions compare plain text
	color.NoColor = true
}

func newTestServer(t *testing.T) (string, *notifier.Hub) {
	t.Helper()

	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	log := logger.Discard()
	hub := notifier.NewHub(log)
	svc := service.New(store, interest.NewRegistry(), hub, log)
	srv := httptest.NewServer(api.NewContainer(api.NewHandler(svc, 1<<20, log), hub, log))
	t.Cleanup(func() {
		_ = hub.Close()
		srv.Close()
	})
	return srv.URL, hub
}

// run executes fileclient with args and returns what it printed
func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCLI_UploadListDownload(t *testing.T) {
	server, _ := newTestServer(t)
	dir := t.TempDir()
	ctx := context.Background()

	src := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("remember the milk\n"), 0644))

	out, err := run(t, ctx, "--server", server, "upload", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded notes.txt (18 bytes)")
	assert.Contains(t, out, "0 subscriber(s) notified")

	out, err = run(t, ctx, "--server", server, "upload", src, "--name", "renamed.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded renamed.txt")

	out, err = run(t, ctx, "--server", server, "list")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt\nrenamed.txt\n", out)

	dst := filepath.Join(dir, "copy.txt")
	out, err = run(t, ctx, "--server", server, "download", "renamed.txt", "-o", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "Downloaded renamed.txt to "+dst)
	assert.Contains(t, out, "sha256:")

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "remember the milk\n", string(content))

	out, err = run(t, ctx, "--server", server, "download", "notes.txt", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "remember the milk\n", out)
}

func TestCLI_ListEmpty(t *testing.T) {
	server, _ := newTestServer(t)

	out, err := run(t, context.Background(), "--server", server, "list")
	require.NoError(t, err)
	assert.Equal(t, "No files found\n", out)
}

func TestCLI_ServerFromEnvironment(t *testing.T) {
	server, _ := newTestServer(t)
	t.Setenv("FILECLIENT_SERVER", server)

	out, err := run(t, context.Background(), "list")
	require.NoError(t, err)
	assert.Equal(t, "No files found\n", out)
}

func TestCLI_Interest(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	out, err := run(t, ctx, "--server", server, "interest", "register", "later.bin", "--duration", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered interest in later.bin")

	_, err = run(t, ctx, "--server", server, "interest", "register", "later.bin")
	require.NoError(t, err)

	out, err = run(t, ctx, "--server", server, "interest", "pending", "later.bin")
	require.NoError(t, err)
	assert.Equal(t, "2 active interest(s) in later.bin\n", out)

	out, err = run(t, ctx, "--server", server, "interest", "cancel", "later.bin")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled 2 interest(s) in later.bin\n", out)
}

func TestCLI_Errors(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "download missing file",
			args:    []string{"--server", server, "download", "missing.txt"},
			wantErr: "file not found",
		},
		{
			name:    "register zero duration",
			args:    []string{"--server", server, "interest", "register", "f", "--duration", "0"},
			wantErr: "INVALID_DURATION",
		},
		{
			name:    "upload unreadable path",
			args:    []string{"--server", server, "upload", filepath.Join(t.TempDir(), "nope")},
			wantErr: "failed to read",
		},
		{
			name:    "bad server URL",
			args:    []string{"--server", "ftp://example.com", "list"},
			wantErr: "scheme must be http or https",
		},
		{
			name:    "missing argument",
			args:    []string{"--server", server, "download"},
			wantErr: "accepts 1 arg(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, ctx, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCLI_Watch(t *testing.T) {
	server, hub := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewRootCommand()
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--server", server, "watch", "wanted.txt"})

	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err := run(t, context.Background(), "--server", server, "interest", "register", "wanted.txt")
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "wanted.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))
	_, err = run(t, context.Background(), "--server", server, "upload", src)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return bytes.Contains(out.Bytes(), []byte("wanted.txt is available"))
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestExecute_PrintsError(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--server", "ftp://example.com", "list"})

	assert.Equal(t, 1, Execute(cmd))
	assert.Contains(t, out.String(), "Error: ")
}
