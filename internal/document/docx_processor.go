package document

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// documentPart Word 正文所在的包内路径
const documentPart = "word/document.xml"

// DocxProcessor processes DOCX documents.
//
// Only the main document part is parsed; every other package part is copied
// through unchanged on Render.
type DocxProcessor struct {
	logger *zap.Logger
}

// docxSource keeps what Render needs to rebuild the package.
type docxSource struct {
	data []byte
	tree *xmlNode
}

// docxRun is the opaque Style of a DOCX run: the w:r element and the text it
// had when parsed.
type docxRun struct {
	node *xmlNode
	text string
}

// NewDocxProcessor creates a new DOCX processor
func NewDocxProcessor(logger *zap.Logger) *DocxProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocxProcessor{logger: logger}
}

// GetFormat returns the format type
func (p *DocxProcessor) GetFormat() Format {
	return FormatDOCX
}

// Parse reads a DOCX package into paragraphs and tables in document order.
func (p *DocxProcessor) Parse(ctx context.Context, input io.Reader) (*Document, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read DOCX: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("failed to read DOCX: %s not found", documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", documentPart, err)
	}
	defer rc.Close()

	tree, err := parseXMLTree(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", documentPart, err)
	}

	body, err := findBody(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", documentPart, err)
	}

	doc := &Document{
		Format: FormatDOCX,
		Body:   p.blocks(body),
		native: &docxSource{data: data, tree: tree},
	}

	p.logger.Debug("parsed DOCX",
		zap.Int("parts", len(zr.File)),
		zap.Int("paragraphs", len(doc.Paragraphs())))

	return doc, nil
}

// blocks collects paragraphs and tables directly under body or a table cell.
// Content controls (w:sdt) are flattened into their parent.
func (p *DocxProcessor) blocks(container *xmlNode) []Block {
	var out []Block
	for _, c := range container.children {
		switch {
		case c.is("p"):
			out = append(out, p.paragraph(c))
		case c.is("tbl"):
			out = append(out, p.table(c))
		case c.is("sdt"):
			for _, sc := range c.children {
				if sc.is("sdtContent") {
					out = append(out, p.blocks(sc)...)
				}
			}
		}
	}
	return out
}

func (p *DocxProcessor) table(tbl *xmlNode) *Table {
	t := &Table{}
	for _, tr := range tbl.children {
		if !tr.is("tr") {
			continue
		}
		row := &Row{}
		for _, tc := range tr.children {
			if tc.is("tc") {
				row.Cells = append(row.Cells, &Cell{Blocks: p.blocks(tc)})
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (p *DocxProcessor) paragraph(para *xmlNode) *Paragraph {
	out := &Paragraph{}
	collectRuns(para, out)
	return out
}

// collectRuns gathers w:r elements of a paragraph, descending into hyperlinks,
// tracked insertions and smart tags.
func collectRuns(n *xmlNode, para *Paragraph) {
	for _, c := range n.children {
		switch {
		case c.is("r"):
			text := runText(c)
			para.Runs = append(para.Runs, &Run{
				Text:  text,
				Style: &docxRun{node: c, text: text},
			})
		case c.is("hyperlink"), c.is("ins"), c.is("smartTag"):
			collectRuns(c, para)
		}
	}
}

// runText concatenates the text content of a run. w:tab reads as "\t", w:cr and
// text-wrapping w:br read as "\n".
func runText(r *xmlNode) string {
	var b strings.Builder
	for _, c := range r.children {
		if text, ok := runContent(c); ok {
			b.WriteString(text)
		}
	}
	return b.String()
}

// runContent reports whether c carries run text, and the text it stands for.
// Page and column breaks are layout, not text.
func runContent(c *xmlNode) (string, bool) {
	switch {
	case c.is("t"):
		return c.text(), true
	case c.is("tab"):
		return "\t", true
	case c.is("cr"):
		return "\n", true
	case c.is("br"):
		if typ := c.attr("type"); typ == "" || typ == "textWrapping" {
			return "\n", true
		}
	}
	return "", false
}

// setRunText replaces the text content of the run. The new content goes where
// the first text element was, with "\t" and "\n" written back as w:tab and
// w:br. Properties, page breaks and drawings stay in place.
func setRunText(r *xmlNode, text string) {
	at := -1
	kept := make([]*xmlNode, 0, len(r.children))
	for _, c := range r.children {
		if _, ok := runContent(c); ok {
			if at < 0 {
				at = len(kept)
			}
			continue
		}
		kept = append(kept, c)
	}
	if at < 0 {
		at = len(kept)
	}

	content := textNodes(r.start.Name.Space, text)
	children := make([]*xmlNode, 0, len(kept)+len(content))
	children = append(children, kept[:at]...)
	children = append(children, content...)
	children = append(children, kept[at:]...)
	r.children = children
}

// textNodes splits text into w:t, w:tab and w:br elements.
func textNodes(prefix, text string) []*xmlNode {
	var out []*xmlNode
	var seg strings.Builder
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		t := newWordNode(prefix, "t")
		t.setText(seg.String())
		out = append(out, t)
		seg.Reset()
	}

	for _, ch := range text {
		switch ch {
		case '\t':
			flush()
			out = append(out, newWordNode(prefix, "tab"))
		case '\n':
			flush()
			out = append(out, newWordNode(prefix, "br"))
		default:
			seg.WriteRune(ch)
		}
	}
	flush()
	return out
}

// Render writes the package back. Parts other than the main document are
// copied as-is, keeping their original compression.
func (p *DocxProcessor) Render(ctx context.Context, doc *Document, output io.Writer) error {
	src, ok := doc.native.(*docxSource)
	if !ok {
		return fmt.Errorf("original DOCX data not found in document")
	}

	changed := 0
	_ = doc.Walk(func(para *Paragraph) error {
		for _, run := range para.Runs {
			ref, ok := run.Style.(*docxRun)
			if !ok || run.Text == ref.text {
				continue
			}
			setRunText(ref.node, run.Text)
			ref.text = run.Text
			changed++
		}
		return nil
	})

	body, err := writeXMLTree(src.tree)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", documentPart, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(src.data), int64(len(src.data)))
	if err != nil {
		return fmt.Errorf("failed to read DOCX: %w", err)
	}

	zw := zip.NewWriter(output)
	for _, f := range zr.File {
		if f.Name != documentPart {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("failed to copy %s: %w", f.Name, err)
			}
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", f.Name, err)
		}
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish DOCX: %w", err)
	}

	p.logger.Debug("rendered DOCX", zap.Int("runs_changed", changed))
	return nil
}
