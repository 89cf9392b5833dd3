package safefile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCreateExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")

	f, err := CreateExclusive(path, 0600)
	if err != nil {
		t.Fatalf("CreateExclusive failed: %v", err)
	}
	f.Close()

	if _, err := CreateExclusive(path, 0600); err == nil {
		t.Error("second CreateExclusive should fail on an existing file")
	}
}

func TestCreateExclusive_RejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink protection is unix-only")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	if _, err := CreateExclusive(link, 0600); err == nil {
		t.Error("CreateExclusive should refuse a symlink")
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("symlink target was created")
	}
}

func TestOpenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.txt")
	if err := os.WriteFile(path, []byte("hi"), 0600); err != nil {
		t.Fatal(err)
	}

	f, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead failed: %v", err)
	}
	f.Close()

	if _, err := OpenRead(path + ".missing"); !os.IsNotExist(err) {
		t.Errorf("OpenRead missing file error = %v, want not-exist", err)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.pdf")

	err := WriteAtomic(dst, func(f *os.File) error {
		_, err := f.Write([]byte("content"))
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "content" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestWriteAtomic_FailureKeepsNothing(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.pdf")

	err := WriteAtomic(dst, func(f *os.File) error {
		return os.ErrInvalid
	})
	if err == nil {
		t.Fatal("WriteAtomic should propagate the write error")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty dir, got %d entries", len(entries))
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"note.pdf", "note.pdf"},
		{"My Notes.pdf", "My Notes.pdf"},
		{"../../etc/passwd", "etc-passwd"},
		{"a/b\\c", "a-b-c"},
		{"what?*.pdf", "what-.pdf"},
		{"bad\x00name", "badname"},
		{"", "fallback.pdf"},
		{"///", "fallback.pdf"},
		{"..", "fallback.pdf"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in, "fallback.pdf"); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
