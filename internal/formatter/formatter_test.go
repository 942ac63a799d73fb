package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"livecrawl/internal/models"
)

const bom = "\xEF\xBB\xBF"

var testRecords = []models.StreamRecord{
	{Title: "口袋48直播 190305 (2019-03-05)", URL: "https://www.bilibili.com/video/av1", Date: "2019-03-05"},
	{Title: "口袋48直播 回放 () (2021-08-15)", URL: "https://www.bilibili.com/video/av3", Date: "2021-08-15"},
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, testRecords); err != nil {
		t.Fatalf("WriteMarkdown() error = %v", err)
	}

	want := bom +
		"[口袋48直播 190305 (2019-03-05)](https://www.bilibili.com/video/av1)\n" +
		"[口袋48直播 回放 () (2021-08-15)](https://www.bilibili.com/video/av3)\n"

	if got := buf.String(); got != want {
		t.Errorf("WriteMarkdown() = \n%q\nwant \n%q", got, want)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, "直播", testRecords); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	want := bom + "直播\n\n" +
		"口袋48直播 190305 (2019-03-05)\nhttps://www.bilibili.com/video/av1\n\n" +
		"口袋48直播 回放 () (2021-08-15)\nhttps://www.bilibili.com/video/av3\n\n"

	if got := buf.String(); got != want {
		t.Errorf("WriteText() = \n%q\nwant \n%q", got, want)
	}
}

func TestWriteFiles_Backup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	files := FileSet{
		MarkdownPath: filepath.Join(dir, "直播.md"),
		TextPath:     filepath.Join(dir, "直播.txt"),
		TextHeader:   "直播",
		CreateBackup: true,
	}

	if err := WriteFiles(files, testRecords[:1]); err != nil {
		t.Fatalf("first WriteFiles() error = %v", err)
	}

	if err := WriteFiles(files, testRecords); err != nil {
		t.Fatalf("second WriteFiles() error = %v", err)
	}

	current, err := os.ReadFile(files.MarkdownPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got := strings.Count(string(current), "\n"); got != 2 {
		t.Errorf("current markdown has %d lines, want 2", got)
	}

	backup, err := os.ReadFile(files.MarkdownPath + ".bak")
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}

	if got := strings.Count(string(backup), "\n"); got != 1 {
		t.Errorf("backup markdown has %d lines, want 1", got)
	}

	text, err := os.ReadFile(files.TextPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if !strings.HasPrefix(string(text), bom+"直播\n\n") {
		t.Errorf("text listing header = %q", string(text)[:20])
	}
}

func TestPreview(t *testing.T) {
	records := []models.StreamRecord{
		{Title: "口袋48直播", URL: "u1", Date: "2019-03-05"},
		{Title: "short", URL: "u2", Date: "2021-08-15"},
	}

	got := Preview(records, 5, 0)
	want := strings.Join([]string{
		"| Date       | Title      | URL |",
		"| ---------- | ---------- | --- |",
		"| 2019-03-05 | 口袋48直播 | u1  |",
		"| 2021-08-15 | short      | u2  |",
	}, "\n")

	if got != want {
		t.Errorf("Preview() = \n%s\nwant \n%s", got, want)
	}
}

func TestPreview_TruncatesAndLimits(t *testing.T) {
	records := []models.StreamRecord{
		{Title: "口袋48直播回放特别篇", URL: "u1", Date: "2019-03-05"},
		{Title: "second", URL: "u2", Date: "2021-08-15"},
	}

	got := Preview(records, 1, 8)
	lines := strings.Split(got, "\n")

	if len(lines) != 3 {
		t.Fatalf("Expected header, separator and 1 row, got %d lines:\n%s", len(lines), got)
	}

	if !strings.Contains(lines[2], "口袋48…") {
		t.Errorf("title not truncated to 8 columns: %s", lines[2])
	}

	if Preview(records, 0, 8) != "" {
		t.Error("Preview with n=0 should be empty")
	}
}
