// SPDX-License-Identifier: MPL-2.0

package output

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/assetgen/assetgen/internal/issue"
)

func TestFileSinkWrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var sink FileSink

	got, err := sink.Write(root, "lib/generated/assets.dart", "first\n")
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if want := filepath.Join(root, "lib", "generated", "assets.dart"); got != want {
		t.Errorf("Write() path = %q, want %q", got, want)
	}

	if _, err := sink.Write(root, "lib/generated/assets.dart", "second\n"); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}
	content, err := sink.Read(root, "lib/generated/assets.dart")
	if err != nil || content != "second\n" {
		t.Errorf("Read() = %q, %v; want second", content, err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "lib", "generated"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFileSinkReadMissing(t *testing.T) {
	t.Parallel()

	content, err := FileSink{}.Read(t.TempDir(), "lib/generated/assets.dart")
	if err != nil || content != "" {
		t.Errorf("Read() = %q, %v; want empty and nil", content, err)
	}
}

func TestFileSinkWriteFailure(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("directory permissions differ on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	lib := filepath.Join(root, "lib")
	if err := os.Mkdir(lib, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(lib, 0o755) })

	_, err := FileSink{}.Write(root, "lib/generated/assets.dart", "x")
	if issue.KindOf(err) != issue.KindOutputWrite {
		t.Errorf("Write() error = %v, want output_write", err)
	}
}

func TestFileSinkWriteOverDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "lib", "generated", "assets.dart", "x"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := FileSink{}.Write(root, "lib/generated/assets.dart", "x")
	if issue.KindOf(err) != issue.KindOutputWrite {
		t.Errorf("Write() error = %v, want output_write", err)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	if got := Diff("same\n", "same\n"); got != "" {
		t.Errorf("Diff(equal) = %q, want empty", got)
	}

	got := Diff("a\nb\nc\n", "a\nB\nc\nd\n")
	for _, want := range []string{" a\n", "-b\n", "+B\n", " c\n", "+d\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("Diff() missing %q:\n%s", want, got)
		}
	}

	got = Diff("", "new\n")
	if got != "+new\n" {
		t.Errorf("Diff(empty, new) = %q", got)
	}
}
