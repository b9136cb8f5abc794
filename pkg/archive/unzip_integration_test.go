// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
)

const unzipTestTimeout = 2 * time.Minute

// checkTestcontainersAvailable safely checks if testcontainers can be used.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestArchive_UnzipInterop checks that archives are accepted by a stock unzip
// implementation (busybox) running in a container.
func TestArchive_UnzipInterop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping unzip interop test: testcontainers provider not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), unzipTestTimeout)
	defer cancel()

	tmpDir := t.TempDir()
	for _, method := range []StorageMethod{Deflated, Stored} {
		zipPath := filepath.Join(tmpDir, method.String()+".zip")
		if _, err := mustNew(t, WithMethod(method)).CompressBytesToFile(zipPath, map[string][]byte{
			"state.json":    []byte(stateJSON),
			"dir/notes.txt": []byte(strings.Repeat("note ", 300)),
		}); err != nil {
			t.Fatalf("CompressBytesToFile(%s) failed: %v", method, err)
		}
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "alpine:3.20",
			Cmd:   []string{"sleep", "300"},
			Files: []testcontainers.ContainerFile{
				{HostFilePath: filepath.Join(tmpDir, "deflated.zip"), ContainerFilePath: "/work/deflated.zip", FileMode: 0o644},
				{HostFilePath: filepath.Join(tmpDir, "stored.zip"), ContainerFilePath: "/work/stored.zip", FileMode: 0o644},
			},
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping unzip interop test: failed to start container: %v", err)
	}
	defer func() {
		if termErr := container.Terminate(context.Background()); termErr != nil {
			t.Logf("warning: failed to terminate container: %v", termErr)
		}
	}()

	for _, name := range []string{"deflated", "stored"} {
		t.Run(name, func(t *testing.T) {
			zipPath := "/work/" + name + ".zip"

			listing := execOutput(ctx, t, container, "unzip", "-l", zipPath)
			for _, entry := range []string{"state.json", "dir/notes.txt"} {
				if !strings.Contains(listing, entry) {
					t.Errorf("unzip -l output missing %s:\n%s", entry, listing)
				}
			}

			if got := execOutput(ctx, t, container, "unzip", "-p", zipPath, "state.json"); got != stateJSON {
				t.Errorf("unzip -p state.json = %q, want %q", got, stateJSON)
			}
		})
	}
}

func execOutput(ctx context.Context, t *testing.T, c testcontainers.Container, cmd ...string) string {
	t.Helper()
	code, reader, err := c.Exec(ctx, cmd, tcexec.Multiplexed())
	if err != nil {
		t.Fatalf("exec %v failed: %v", cmd, err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading output of %v: %v", cmd, err)
	}
	if code != 0 {
		t.Fatalf("%v exited with %d:\n%s", cmd, code, out)
	}
	return string(out)
}
