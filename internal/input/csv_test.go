package input

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "titles.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestReadTitles_Basic(t *testing.T) {
	path := writeCSV(t, "id,title,notes\n1,Deep Learning,x\n2,Transformers,y\n")

	titles, err := ReadTitles(path)
	if err != nil {
		t.Fatalf("ReadTitles() error = %v", err)
	}
	if len(titles) != 2 || titles[0] != "Deep Learning" || titles[1] != "Transformers" {
		t.Errorf("ReadTitles() = %v", titles)
	}
}

func TestReadTitles_HeaderCaseInsensitive(t *testing.T) {
	path := writeCSV(t, "Title\nDeep Learning\n")

	titles, err := ReadTitles(path)
	if err != nil {
		t.Fatalf("ReadTitles() error = %v", err)
	}
	if len(titles) != 1 {
		t.Errorf("ReadTitles() = %v, want one title", titles)
	}
}

func TestReadTitles_BOMHeader(t *testing.T) {
	path := writeCSV(t, "\ufefftitle\nDeep Learning\n")

	titles, err := ReadTitles(path)
	if err != nil {
		t.Fatalf("ReadTitles() error = %v", err)
	}
	if len(titles) != 1 {
		t.Errorf("ReadTitles() = %v, want one title", titles)
	}
}

func TestReadTitles_SkipsBlankTitles(t *testing.T) {
	path := writeCSV(t, "title\nDeep Learning\n\n   \nTransformers\n")

	titles, err := ReadTitles(path)
	if err != nil {
		t.Fatalf("ReadTitles() error = %v", err)
	}
	if len(titles) != 2 {
		t.Errorf("ReadTitles() = %v, want 2 titles", titles)
	}
}

func TestReadTitles_KeepsDuplicatesAndOrder(t *testing.T) {
	path := writeCSV(t, "title\nB\nA\nB\n")

	titles, err := ReadTitles(path)
	if err != nil {
		t.Fatalf("ReadTitles() error = %v", err)
	}
	want := []string{"B", "A", "B"}
	if len(titles) != len(want) {
		t.Fatalf("ReadTitles() = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("ReadTitles()[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestReadTitles_MissingColumn(t *testing.T) {
	path := writeCSV(t, "id,name\n1,x\n")

	if _, err := ReadTitles(path); err == nil {
		t.Error("ReadTitles() expected error for missing title column")
	}
}

func TestReadTitles_MissingFile(t *testing.T) {
	if _, err := ReadTitles(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("ReadTitles() expected error for missing file")
	}
}

func TestReadTitles_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	if _, err := ReadTitles(path); err == nil {
		t.Error("ReadTitles() expected error for empty file")
	}
}
