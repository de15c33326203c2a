package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"career-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var contentExts = []string{".txt", ".pdf"}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestListFiles_NonMatchingTypesYieldNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.docx", "x")
	writeFile(t, dir, "image.png", "x")
	writeFile(t, dir, "README", "x")

	assert.Empty(t, ListFiles(dir, contentExts))

	docs, err := LoadDirectory(context.Background(), dir, contentExts)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestListFiles_MissingOrEmptyDirectory(t *testing.T) {
	assert.Empty(t, ListFiles(filepath.Join(t.TempDir(), "missing"), contentExts))
	assert.Empty(t, ListFiles(t.TempDir(), contentExts))

	docs, err := LoadDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), contentExts)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestListFiles_NonRecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "b")
	writeFile(t, dir, "A.TXT", "a")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "c.txt", "c")

	files := ListFiles(dir, contentExts)
	assert.Equal(t, []string{filepath.Join(dir, "A.TXT"), filepath.Join(dir, "b.txt")}, files)
}

func TestLoadDirectory_Text(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "tips.txt", "Research the company before the interview.")

	docs, err := LoadDirectory(context.Background(), dir, contentExts)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, p, docs[0].Source)
	assert.Equal(t, "Research the company before the interview.", docs[0].Content)
}

func TestLoadDirectory_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tips.txt", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadDirectory(ctx, dir, contentExts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFile_Unsupported(t *testing.T) {
	p := writeFile(t, t.TempDir(), "slides.pptx", "x")
	_, err := LoadFile(p)
	assert.Error(t, err)
}

func TestLoadFile_Markdown(t *testing.T) {
	p := writeFile(t, t.TempDir(), "guide.md", "# Interview Guide\n\nSome *bold* advice.\n\n- first\n- second\n")

	docs, err := LoadFile(p)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	got := docs[0].Content
	assert.Contains(t, got, "Interview Guide")
	assert.Contains(t, got, "Some bold advice.")
	assert.Contains(t, got, "first\nsecond")
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "*")
}

func TestLoadFile_XLSX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "skills.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Skill"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Level"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Go"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "Expert"))
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	docs, err := LoadFile(p)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1, docs[0].Page)
	assert.Contains(t, docs[0].Content, "Skill\tLevel\n")
	assert.Contains(t, docs[0].Content, "Go\tExpert\n")
}

func TestReadArtifact(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadArtifact("")
	assert.True(t, errors.Is(err, models.ErrMissingInput))

	_, err = ReadArtifact(filepath.Join(dir, "missing.docx"))
	assert.True(t, errors.Is(err, models.ErrMissingInput))

	empty := writeFile(t, dir, "empty.txt", "  \n")
	_, err = ReadArtifact(empty)
	assert.True(t, errors.Is(err, models.ErrMissingInput))

	jd := writeFile(t, dir, "jd", "  5+ years of Go\n")
	got, err := ReadArtifact(jd)
	require.NoError(t, err)
	assert.Equal(t, "5+ years of Go", got)

	md := writeFile(t, dir, "resume.md", "## Experience\n\nBackend engineer")
	got, err = ReadArtifact(md)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "Experience"))
}

func TestDocxText(t *testing.T) {
	body := `<w:body><w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go &amp; SQL</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p></w:body>`

	assert.Equal(t, "Jane Doe\nSkills:\tGo & SQL\nLine one\nLine two", docxText(body))
}
