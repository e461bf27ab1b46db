package copybackend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mesos-agent/rootfsprovisioner/internal/provision"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestProvisionEmptyLayers(t *testing.T) {
	root := t.TempDir()
	rootfs := filepath.Join(root, "rootfs")

	b := New()
	err := b.Provision(context.Background(), nil, rootfs, filepath.Join(root, "backend"))
	if err != provision.ErrEmptyLayers {
		t.Fatalf("err = %v, want ErrEmptyLayers", err)
	}
	if _, statErr := os.Stat(rootfs); !os.IsNotExist(statErr) {
		t.Error("rootfs should not have been created")
	}
}

func TestProvisionAlreadyProvisioned(t *testing.T) {
	root := t.TempDir()
	rootfs := filepath.Join(root, "rootfs")
	if err := os.MkdirAll(rootfs, 0755); err != nil {
		t.Fatal(err)
	}

	layer := filepath.Join(root, "layerA")
	writeFile(t, filepath.Join(layer, "a"), "A")

	b := New()
	err := b.Provision(context.Background(), []string{layer}, rootfs, filepath.Join(root, "backend"))
	if err != provision.ErrAlreadyProvisioned {
		t.Fatalf("err = %v, want ErrAlreadyProvisioned", err)
	}
}

// S1: two layers overriding the same file — top wins.
func TestOverrideAcrossLayers(t *testing.T) {
	root := t.TempDir()
	rootfs := filepath.Join(root, "rootfs")

	layerA := filepath.Join(root, "A")
	layerB := filepath.Join(root, "B")
	writeFile(t, filepath.Join(layerA, "a"), "A")
	writeFile(t, filepath.Join(layerB, "a"), "B")

	b := New()
	if err := b.Provision(context.Background(), []string{layerA, layerB}, rootfs, filepath.Join(root, "backend")); err != nil {
		t.Fatalf("provision: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(rootfs, "a"))
	if err != nil {
		t.Fatalf("read a: %v", err)
	}
	if string(data) != "B" {
		t.Errorf("a = %q, want %q", data, "B")
	}
}

// S2: a whiteout file deletes a sibling and itself from the merged tree.
func TestWhiteoutFile(t *testing.T) {
	root := t.TempDir()
	rootfs := filepath.Join(root, "rootfs")

	layerA := filepath.Join(root, "A")
	layerB := filepath.Join(root, "B")
	writeFile(t, filepath.Join(layerA, "d", "f"), "x")
	writeFile(t, filepath.Join(layerB, "d", ".wh.f"), "")

	b := New()
	if err := b.Provision(context.Background(), []string{layerA, layerB}, rootfs, filepath.Join(root, "backend")); err != nil {
		t.Fatalf("provision: %v", err)
	}

	if _, err := os.Stat(filepath.Join(rootfs, "d", "f")); !os.IsNotExist(err) {
		t.Error("d/f should have been removed by the whiteout")
	}
	info, err := os.Stat(filepath.Join(rootfs, "d"))
	if err != nil || !info.IsDir() {
		t.Fatalf("d should exist as a directory: %v", err)
	}
	assertNoWhiteoutMarkers(t, rootfs)
}

// S3: an opaque whiteout discards all lower-layer siblings in that directory.
func TestOpaqueWhiteoutDirectory(t *testing.T) {
	root := t.TempDir()
	rootfs := filepath.Join(root, "rootfs")

	layerA := filepath.Join(root, "A")
	layerB := filepath.Join(root, "B")
	writeFile(t, filepath.Join(layerA, "dir", "x"), "x")
	writeFile(t, filepath.Join(layerA, "dir", "y"), "y")
	writeFile(t, filepath.Join(layerA, "dir", "z"), "z")
	writeFile(t, filepath.Join(layerB, "dir", OpaqueWhiteoutMarker), "")
	writeFile(t, filepath.Join(layerB, "dir", "w"), "w")

	b := New()
	if err := b.Provision(context.Background(), []string{layerA, layerB}, rootfs, filepath.Join(root, "backend")); err != nil {
		t.Fatalf("provision: %v", err)
	}

	for _, gone := range []string{"x", "y", "z"} {
		if _, err := os.Stat(filepath.Join(rootfs, "dir", gone)); !os.IsNotExist(err) {
			t.Errorf("dir/%s should have been wiped by the opaque whiteout", gone)
		}
	}
	data, err := os.ReadFile(filepath.Join(rootfs, "dir", "w"))
	if err != nil || string(data) != "w" {
		t.Fatalf("dir/w = %q, %v, want %q", data, err, "w")
	}
	assertNoWhiteoutMarkers(t, rootfs)
}

// Kind change: a directory in a lower layer becomes a regular file on top.
func TestKindChangeDirectoryToFile(t *testing.T) {
	root := t.TempDir()
	rootfs := filepath.Join(root, "rootfs")

	layerA := filepath.Join(root, "A")
	layerB := filepath.Join(root, "B")
	writeFile(t, filepath.Join(layerA, "x", "inner"), "inner")
	writeFile(t, filepath.Join(layerB, "x"), "file")

	b := New()
	if err := b.Provision(context.Background(), []string{layerA, layerB}, rootfs, filepath.Join(root, "backend")); err != nil {
		t.Fatalf("provision: %v", err)
	}

	info, err := os.Lstat(filepath.Join(rootfs, "x"))
	if err != nil {
		t.Fatalf("lstat x: %v", err)
	}
	if info.IsDir() {
		t.Fatal("x should be a regular file, not a directory")
	}
	data, err := os.ReadFile(filepath.Join(rootfs, "x"))
	if err != nil || string(data) != "file" {
		t.Fatalf("x = %q, %v, want %q", data, err, "file")
	}
}

// S4: a symlink to a regular file is replaced by a real directory on top —
// never dereferenced, and the symlink's former target is untouched.
func TestSymlinkToFileReplacedByDirectory(t *testing.T) {
	root := t.TempDir()
	rootfs := filepath.Join(root, "rootfs")

	targetFile := filepath.Join(root, "target.txt")
	writeFile(t, targetFile, "original")

	layerA := filepath.Join(root, "A")
	layerB := filepath.Join(root, "B")
	if err := os.MkdirAll(layerA, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(targetFile, filepath.Join(layerA, "bad")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(layerB, "bad", "inner"), "i")

	b := New()
	if err := b.Provision(context.Background(), []string{layerA, layerB}, rootfs, filepath.Join(root, "backend")); err != nil {
		t.Fatalf("provision: %v", err)
	}

	info, err := os.Lstat(filepath.Join(rootfs, "bad"))
	if err != nil {
		t.Fatalf("lstat bad: %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Fatal("bad should no longer be a symlink")
	}
	data, err := os.ReadFile(filepath.Join(rootfs, "bad", "inner"))
	if err != nil || string(data) != "i" {
		t.Fatalf("bad/inner = %q, %v, want %q", data, err, "i")
	}

	// The symlink's former target must be untouched.
	targetData, err := os.ReadFile(targetFile)
	if err != nil || string(targetData) != "original" {
		t.Fatalf("symlink target was modified: %q, %v", targetData, err)
	}
}

// A symlink-to-directory is caught only by the second (symlink) check,
// since the first (stat-based) check sees a directory on both sides.
// Exercises the two-step check verbatim.
func TestSymlinkToDirectoryReplaced(t *testing.T) {
	root := t.TempDir()
	rootfs := filepath.Join(root, "rootfs")

	realDir := filepath.Join(root, "real")
	writeFile(t, filepath.Join(realDir, "untouched"), "keep-me")

	layerA := filepath.Join(root, "A")
	layerB := filepath.Join(root, "B")
	if err := os.MkdirAll(layerA, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(realDir, filepath.Join(layerA, "bad")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(layerB, "bad", "inner"), "i")

	b := New()
	if err := b.Provision(context.Background(), []string{layerA, layerB}, rootfs, filepath.Join(root, "backend")); err != nil {
		t.Fatalf("provision: %v", err)
	}

	info, err := os.Lstat(filepath.Join(rootfs, "bad"))
	if err != nil {
		t.Fatalf("lstat bad: %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Fatal("bad should have been replaced, not left as a symlink")
	}
	data, err := os.ReadFile(filepath.Join(rootfs, "bad", "inner"))
	if err != nil || string(data) != "i" {
		t.Fatalf("bad/inner = %q, %v, want %q", data, err, "i")
	}

	// realDir itself (the former symlink target) must be untouched.
	keepData, err := os.ReadFile(filepath.Join(realDir, "untouched"))
	if err != nil || string(keepData) != "keep-me" {
		t.Fatalf("symlink target directory was modified: %q, %v", keepData, err)
	}
}

// S5: provision then destroy leaves rootfs absent; destroy on a nonexistent
// rootfs fails.
func TestProvisionThenDestroy(t *testing.T) {
	root := t.TempDir()
	rootfs := filepath.Join(root, "rootfs")
	backendDir := filepath.Join(root, "backend")

	layer := filepath.Join(root, "A")
	writeFile(t, filepath.Join(layer, "a"), "A")

	b := New()
	if err := b.Provision(context.Background(), []string{layer}, rootfs, backendDir); err != nil {
		t.Fatalf("provision: %v", err)
	}

	ok, err := b.Destroy(context.Background(), rootfs, backendDir)
	if err != nil || !ok {
		t.Fatalf("destroy: ok=%v err=%v", ok, err)
	}
	if _, statErr := os.Stat(rootfs); !os.IsNotExist(statErr) {
		t.Error("rootfs should no longer exist after destroy")
	}

	if _, err := b.Destroy(context.Background(), rootfs, backendDir); err == nil {
		t.Error("destroy on nonexistent rootfs should fail")
	}
}

func assertNoWhiteoutMarkers(t *testing.T, rootfs string) {
	t.Helper()
	err := filepath.WalkDir(rootfs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), WhiteoutPrefix) {
			t.Errorf("whiteout marker survived at %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}
