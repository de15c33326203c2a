package parser

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"career-advisor/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

type loaderFunc func(filePath string) ([]models.Document, error)

var loaders = map[string]loaderFunc{
	".txt":  parseText,
	".pdf":  parsePDF,
	".md":   parseMarkdown,
	".xlsx": parseXLSX,
	".docx": parseDOCX,
}

// ListFiles returns the files directly inside dir whose extension is one of exts,
// sorted by name. A missing or unreadable directory yields no files.
func ListFiles(dir string, exts []string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("Content directory not readable")
		return nil
	}

	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if want[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files
}

// LoadDirectory loads every matching file in dir into documents, in file order.
func LoadDirectory(ctx context.Context, dir string, exts []string) ([]models.Document, error) {
	files := ListFiles(dir, exts)
	log.Debug().Str("dir", dir).Int("files", len(files)).Msg("Listed content files")

	var docs []models.Document
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loaded, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}

// LoadFile turns one file into one or more documents based on its extension.
func LoadFile(filePath string) ([]models.Document, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	load, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
	docs, err := load(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filePath, err)
	}
	return docs, nil
}

// ReadArtifact reads an upstream artifact such as a resume as plain text.
func ReadArtifact(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("%w: artifact path is empty", models.ErrMissingInput)
	}
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrMissingInput, err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if _, ok := loaders[ext]; !ok {
		ext = ".txt"
	}
	docs, err := loaders[ext](filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	content := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if content == "" {
		return "", fmt.Errorf("%w: %s is empty", models.ErrMissingInput, filePath)
	}
	return content, nil
}

func parseText(filePath string) ([]models.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return []models.Document{{Source: filePath, Content: string(data)}}, nil
}

func parsePDF(filePath string) ([]models.Document, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []models.Document
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		docs = append(docs, models.Document{Source: filePath, Content: pageText, Page: i})
	}
	return docs, nil
}

func parseMarkdown(filePath string) ([]models.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return []models.Document{{Source: filePath, Content: markdownToText(data)}}, nil
}

// one document per sheet, cells tab separated
func parseXLSX(filePath string) ([]models.Document, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var docs []models.Document
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var b strings.Builder
		b.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
		if len(rows) == 0 {
			continue
		}
		docs = append(docs, models.Document{Source: filePath, Content: b.String(), Page: sheetNum + 1})
	}
	return docs, nil
}

func parseDOCX(filePath string) ([]models.Document, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := docxText(r.Editable().GetContent())
	return []models.Document{{Source: filePath, Content: content}}, nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	docxBreak        = regexp.MustCompile(`<w:(br|cr)\s*/>`)
	docxTab          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
	blankLines       = regexp.MustCompile(`\n{3,}`)
)

// docxText recovers paragraph text from the raw word/document.xml body.
func docxText(xmlContent string) string {
	s := docxParagraphEnd.ReplaceAllString(xmlContent, "\n")
	s = docxBreak.ReplaceAllString(s, "\n")
	s = docxTab.ReplaceAllString(s, "\t")
	s = xmlTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// markdownToText renders markdown source as plain text, one block per line and
// a blank line after paragraphs, headings and code blocks.
func markdownToText(src []byte) string {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	ensureBreak := func(n int) {
		s := b.String()
		if s == "" {
			return
		}
		trailing := len(s) - len(strings.TrimRight(s, "\n"))
		for ; trailing < n; trailing++ {
			b.WriteByte('\n')
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
			return ast.WalkContinue, nil
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(src))
				}
			}
		}

		if !entering && n.Type() == ast.TypeBlock {
			switch n.Kind() {
			case ast.KindParagraph, ast.KindHeading, ast.KindCodeBlock, ast.KindFencedCodeBlock:
				ensureBreak(2)
			default:
				ensureBreak(1)
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}
