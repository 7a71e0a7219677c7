package extractor

import (
	"context"
	"strings"
	"testing"
)

func TestRegistrySupportsKnownFormatsCaseInsensitively(t *testing.T) {
	reg := NewRegistry()

	supported := []string{"syllabus.md", "notes.TXT", "Week_02/rubric.pdf", "schedule.csv", "grades.XLSX"}
	for _, p := range supported {
		if !reg.Supports(p) {
			t.Fatalf("expected %s to be supported", p)
		}
	}
	for _, p := range []string{"image.png", "archive.zip", "noext"} {
		if reg.Supports(p) {
			t.Fatalf("expected %s to be unsupported", p)
		}
	}
}

func TestExtractMarkdownReturnsTrimmedText(t *testing.T) {
	reg := NewRegistry()

	texts, err := reg.Extract(context.Background(), "syllabus.md", strings.NewReader("\n# Syllabus\n\nGrading scale below.\n"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(texts) != 1 {
		t.Fatalf("expected 1 text, got %d", len(texts))
	}
	if !strings.HasPrefix(texts[0], "# Syllabus") {
		t.Fatalf("unexpected text: %q", texts[0])
	}
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Extract(context.Background(), "bad.txt", strings.NewReader("ok\xff\xfe"))
	if err == nil {
		t.Fatalf("expected error for invalid utf-8")
	}
}

func TestExtractCSVYieldsOneTextPerRow(t *testing.T) {
	reg := NewRegistry()
	csvData := "Assignment,Points,Due\nPolicy Memo,300,Oct 10\nFinal Exam,500,Dec 15\n"

	texts, err := reg.Extract(context.Background(), "grades.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("expected 2 row texts, got %d", len(texts))
	}
	if texts[0] != "Assignment: Policy Memo\nPoints: 300\nDue: Oct 10" {
		t.Fatalf("unexpected row text: %q", texts[0])
	}
	if !strings.Contains(texts[1], "Final Exam") {
		t.Fatalf("unexpected second row: %q", texts[1])
	}
}

func TestExtractCSVSkipsBlankCellsAndUnnamedColumns(t *testing.T) {
	reg := NewRegistry()
	csvData := "Week,,Topic\n1,ignored-header-is-empty,Intro\n,,\n"

	texts, err := reg.Extract(context.Background(), "schedule.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(texts) != 1 {
		t.Fatalf("expected the all-blank row to be dropped, got %d texts", len(texts))
	}
	if !strings.Contains(texts[0], "column_2: ignored-header-is-empty") {
		t.Fatalf("unnamed column must fall back to positional name: %q", texts[0])
	}
}

func TestExtractEmptyCSVYieldsNothing(t *testing.T) {
	reg := NewRegistry()

	texts, err := reg.Extract(context.Background(), "empty.csv", strings.NewReader(""))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(texts) != 0 {
		t.Fatalf("expected no texts, got %d", len(texts))
	}
}

func TestFormatTag(t *testing.T) {
	if got := Format("Week_02/rubric.PDF"); got != "pdf" {
		t.Fatalf("Format() = %q, want pdf", got)
	}
	if got := Format("README"); got != "" {
		t.Fatalf("Format() = %q, want empty", got)
	}
}
