package stamp

import (
	"errors"
	"testing"

	"github.com/firefly-engineering/espbox/internal/system"
)

const root = "/home/user/fw"

func TestStore_ReadMissing(t *testing.T) {
	s := New(system.NewMockFS(), root, 3)

	v, ok, err := s.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if ok || v != 0 {
		t.Errorf("Read() = (%d, %v), want (0, false)", v, ok)
	}
}

func TestStore_WriteRead(t *testing.T) {
	fsys := system.NewMockFS()
	s := New(fsys, root, 3)

	if err := s.Write(); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, ok := fsys.GetFile(root + "/.espbox-version")
	if !ok {
		t.Fatal("stamp file not written")
	}
	if string(data) != "3\n" {
		t.Errorf("stamp content = %q, want %q", data, "3\n")
	}

	v, ok, err := s.Read()
	if err != nil || !ok || v != 3 {
		t.Errorf("Read() = (%d, %v, %v), want (3, true, nil)", v, ok, err)
	}
}

func TestStore_WriteOverwrites(t *testing.T) {
	fsys := system.NewMockFS()
	fsys.AddFile(root+"/.espbox-version", []byte("1\n"), 0644)

	s := New(fsys, root, 3)
	if err := s.Write(); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := s.Read(); v != 3 {
		t.Errorf("Read() = %d, want 3", v)
	}
}

func TestStore_ReadCorrupt(t *testing.T) {
	fsys := system.NewMockFS()
	fsys.AddFile(root+"/.espbox-version", []byte("three"), 0644)

	_, ok, err := New(fsys, root, 3).Read()
	if !ok {
		t.Error("a corrupt stamp still exists")
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Read() error = %v, want ErrCorrupt", err)
	}
}

func TestStore_Clear(t *testing.T) {
	fsys := system.NewMockFS()
	fsys.AddFile(root+"/.espbox-version", []byte("3\n"), 0644)
	s := New(fsys, root, 3)

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if fsys.Exists(s.Path()) {
		t.Error("stamp should be gone")
	}

	// Clearing again is a no-op.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestStore_ClearError(t *testing.T) {
	fsys := system.NewMockFS()
	fsys.RemoveErr = errors.New("read-only file system")

	if err := New(fsys, root, 3).Clear(); err == nil {
		t.Error("Clear() should surface removal failures")
	}
}

func TestStore_IsStale(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means no stamp file
		want    bool
	}{
		{"no stamp", "", false},
		{"matching", "3\n", false},
		{"matching without newline", "3", false},
		{"older", "2\n", true},
		{"newer", "4\n", true},
		{"corrupt", "garbage", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := system.NewMockFS()
			if tt.content != "" {
				fsys.AddFile(root+"/.espbox-version", []byte(tt.content), 0644)
			}

			got, err := New(fsys, root, 3).IsStale()
			if err != nil {
				t.Fatalf("IsStale() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_IsStale_ReadError(t *testing.T) {
	fsys := system.NewMockFS()
	fsys.ReadFileErr = errors.New("permission denied")

	if _, err := New(fsys, root, 3).IsStale(); err == nil {
		t.Error("IsStale() should surface read failures")
	}
}
