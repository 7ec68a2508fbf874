package validate

import (
	"strings"
	"testing"
)

func TestFilesAcceptsSupportedBatch(t *testing.T) {
	batch := []File{
		{Name: "policy.pdf", Size: 1024},
		{Name: "CLAIM.DOCX", Size: 2 * 1024 * 1024},
		{Name: "adjuster.eml", Size: 12},
	}
	if err := Files(batch); err != nil {
		t.Fatalf("Files rejected valid batch: %v", err)
	}
}

func TestFilesReportsBothViolationKinds(t *testing.T) {
	batch := []File{
		{Name: "x.txt", Size: 1024},
		{Name: "y.pdf", Size: 11 * 1024 * 1024},
	}
	err := Files(batch)
	if err == nil {
		t.Fatal("Files accepted invalid batch")
	}
	if len(err.WrongType) != 1 || err.WrongType[0] != "x.txt" {
		t.Fatalf("WrongType=%v, want [x.txt]", err.WrongType)
	}
	if len(err.Oversized) != 1 || err.Oversized[0] != "y.pdf" {
		t.Fatalf("Oversized=%v, want [y.pdf]", err.Oversized)
	}
	msg := err.Error()
	if !strings.Contains(msg, "x.txt") || !strings.Contains(msg, "y.pdf") {
		t.Fatalf("error message missing filenames: %q", msg)
	}
}

func TestFilesSingleFileCanViolateBoth(t *testing.T) {
	err := Files([]File{{Name: "dump.zip", Size: 20 * 1024 * 1024}})
	if err == nil {
		t.Fatal("Files accepted invalid file")
	}
	if len(err.WrongType) != 1 || len(err.Oversized) != 1 {
		t.Fatalf("both lists should name the file: %+v", err)
	}
}

func TestFilesSizeBoundary(t *testing.T) {
	if err := Files([]File{{Name: "exact.pdf", Size: MaxFileSize}}); err != nil {
		t.Fatalf("exactly 10MB should pass: %v", err)
	}
	if err := Files([]File{{Name: "over.pdf", Size: MaxFileSize + 1}}); err == nil {
		t.Fatal("10MB+1 should fail")
	}
}

func TestCanQuery(t *testing.T) {
	if CanQuery(nil) {
		t.Fatal("CanQuery(nil) should be false")
	}
	if CanQuery([]string{}) {
		t.Fatal("CanQuery(empty) should be false")
	}
	if !CanQuery([]string{"policy.pdf"}) {
		t.Fatal("CanQuery with files should be true")
	}
}
