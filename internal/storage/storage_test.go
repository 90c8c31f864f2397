package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalSaveAndOpen(t *testing.T) {
	backend := NewLocal(t.TempDir(), "/media/")

	name, err := backend.Save("garments/1/photo.jpg", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	if name != "garments/1/photo.jpg" {
		t.Errorf("Expected stored name garments/1/photo.jpg, got %s", name)
	}

	exists, err := backend.Exists(name)
	if err != nil {
		t.Fatalf("Failed to check existence: %v", err)
	}
	if !exists {
		t.Error("Expected saved file to exist")
	}

	f, err := backend.Open(name)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Errorf("Unexpected file content: %s", data)
	}

	size, err := backend.Size(name)
	if err != nil {
		t.Fatalf("Failed to get size: %v", err)
	}
	if size != int64(len("fake image bytes")) {
		t.Errorf("Expected size %d, got %d", len("fake image bytes"), size)
	}
}

func TestLocalSaveDoesNotOverwrite(t *testing.T) {
	backend := NewLocal(t.TempDir(), "/media/")

	first, err := backend.Save("photo.jpg", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("Failed to save first file: %v", err)
	}

	second, err := backend.Save("photo.jpg", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("Failed to save second file: %v", err)
	}

	if first == second {
		t.Errorf("Expected a distinct name for the second save, got %s twice", first)
	}
	if second != "photo_1.jpg" {
		t.Errorf("Expected photo_1.jpg, got %s", second)
	}

	f, err := backend.Open(first)
	if err != nil {
		t.Fatalf("Failed to open first file: %v", err)
	}
	defer f.Close()

	data, _ := io.ReadAll(f)
	if string(data) != "first" {
		t.Errorf("First file was overwritten, got content %s", data)
	}
}

func TestLocalRejectsPathTraversal(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "uploads")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatalf("Failed to create uploads dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "secret.txt"), []byte("db password"), 0o644); err != nil {
		t.Fatalf("Failed to write file outside the root: %v", err)
	}

	backend := NewLocal(root, "/media/")

	names := []string{
		"../secret.txt",
		"/../secret.txt",
		"garments/../../secret.txt",
		"..",
	}
	for _, name := range names {
		if _, err := backend.Open(name); err == nil {
			t.Errorf("Open(%q) escaped the storage root", name)
		}
		if _, err := backend.Save(name, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) escaped the storage root", name)
		}
		if err := backend.Delete(name); err == nil {
			t.Errorf("Delete(%q) escaped the storage root", name)
		}
		if _, err := backend.Size(name); err == nil {
			t.Errorf("Size(%q) escaped the storage root", name)
		}
	}
}

func TestSFTPRejectsPathTraversal(t *testing.T) {
	backend := &SFTP{root: "/srv/uploads"}

	for _, name := range []string{"../secret.txt", "/../secret.txt", "a/../../etc/passwd"} {
		if _, err := backend.remotePath(name); err == nil {
			t.Errorf("remotePath(%q) escaped the storage root", name)
		}
	}

	full, err := backend.remotePath("/garments/1/photo.jpg")
	if err != nil {
		t.Fatalf("Failed to resolve a valid name: %v", err)
	}
	if full != "/srv/uploads/garments/1/photo.jpg" {
		t.Errorf("Unexpected remote path: %s", full)
	}
}

func TestLocalDeleteMissingFile(t *testing.T) {
	backend := NewLocal(t.TempDir(), "/media/")

	if err := backend.Delete("does/not/exist.jpg"); err != nil {
		t.Errorf("Deleting a missing file should not error, got %v", err)
	}
}

func TestLocalURL(t *testing.T) {
	backend := NewLocal(t.TempDir(), "/media/")

	if got := backend.URL("garments/1/photo.jpg"); got != "/media/garments/1/photo.jpg" {
		t.Errorf("Unexpected URL: %s", got)
	}
}

func TestLocalListDir(t *testing.T) {
	backend := NewLocal(t.TempDir(), "/media/")

	if _, err := backend.Save("garments/1/a.jpg", strings.NewReader("a")); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	if _, err := backend.Save("garments/2/b.jpg", strings.NewReader("b")); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}
	if _, err := backend.Save("garments/index.txt", strings.NewReader("idx")); err != nil {
		t.Fatalf("Failed to save file: %v", err)
	}

	dirs, files, err := backend.ListDir("garments")
	if err != nil {
		t.Fatalf("Failed to list directory: %v", err)
	}

	if len(dirs) != 2 || dirs[0] != "1" || dirs[1] != "2" {
		t.Errorf("Unexpected dirs: %v", dirs)
	}
	if len(files) != 1 || files[0] != "index.txt" {
		t.Errorf("Unexpected files: %v", files)
	}
}
