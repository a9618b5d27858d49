package csvio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/johan-st/datatable/internal/testutil"
)

func fileNames(files []*File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.ToSlash(f.Name)
	}
	return names
}

func TestDiscovery_Scan(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "b.csv", "id\n1\n")
	testutil.WriteFile(t, dir, "a.CSV", "id\n1\n")
	testutil.WriteFile(t, dir, "notes.txt", "ignore me")
	testutil.WriteFile(t, dir, "nested/deep/c.csv", "id\n1\n")

	tests := []struct {
		pattern string
		want    []string
	}{
		{pattern: "", want: []string{"b.csv", "nested/deep/c.csv"}},
		{pattern: "*", want: []string{"a.CSV", "b.csv"}},
		{pattern: "nested/**/*.csv", want: []string{"nested/deep/c.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			d, err := NewDiscovery(dir, tt.pattern, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer d.Stop()

			if err := d.Refresh(); err != nil {
				t.Fatalf("Refresh: %v", err)
			}
			got := fileNames(d.Files())
			if len(got) != len(tt.want) {
				t.Fatalf("files = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("files = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestDiscovery_FileInfo(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "data.csv", "id,name\n1,Ann\n")

	d, err := NewDiscovery(dir, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Stop()
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}

	files := d.Files()
	if len(files) != 1 {
		t.Fatalf("got %d files", len(files))
	}
	abs, _ := filepath.Abs(path)
	if files[0].Path != abs || files[0].Size != 14 {
		t.Errorf("file = %+v", files[0])
	}
}

func TestDiscovery_MissingDir(t *testing.T) {
	d, err := NewDiscovery(filepath.Join(t.TempDir(), "nope"), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Stop()
	if err := d.Start(); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestDiscovery_WatchesForNewFiles(t *testing.T) {
	dir := t.TempDir()

	d, err := NewDiscovery(dir, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	added := make(chan []*File, 4)
	d.OnChange(func(a, _ []*File) {
		if len(a) > 0 {
			added <- a
		}
	})
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "new.csv"), []byte("id\n1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case files := <-added:
		if files[0].Name != "new.csv" {
			t.Errorf("added = %v", fileNames(files))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification for new file")
	}
}

func TestDiscovery_WatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()

	d, err := NewDiscovery(dir, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	added := make(chan []*File, 4)
	d.OnChange(func(a, _ []*File) {
		if len(a) > 0 {
			added <- a
		}
	})
	if err := d.Start(); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "incoming")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(sub)
	deadline := time.Now().Add(5 * time.Second)
	for !d.isWatched(abs) {
		if time.Now().After(deadline) {
			t.Fatal("new subdirectory was not watched")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := os.WriteFile(filepath.Join(sub, "late.csv"), []byte("id\n1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case files := <-added:
		if got := filepath.ToSlash(files[0].Name); got != "incoming/late.csv" {
			t.Errorf("added = %v", fileNames(files))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification for file in new subdirectory")
	}
}

func TestDiscovery_SetSource(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	testutil.WriteFile(t, first, "one.csv", "id\n1\n")
	testutil.WriteFile(t, second, "two.csv", "id\n2\n")

	d, err := NewDiscovery(first, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Stop()
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}

	if err := d.SetSource(second, ""); err != nil {
		t.Fatal(err)
	}
	if got := fileNames(d.Files()); len(got) != 1 || got[0] != "two.csv" {
		t.Errorf("files after SetSource = %v", got)
	}
	oldAbs, _ := filepath.Abs(first)
	newAbs, _ := filepath.Abs(second)
	if d.isWatched(oldAbs) {
		t.Error("previous source is still watched")
	}
	if !d.isWatched(newAbs) {
		t.Error("new source is not watched")
	}
	d.Stop()
	d.Stop()
}
