package document

import "strings"

// Format 文档格式
type Format string

const (
	FormatText    Format = "text"
	FormatDOCX    Format = "docx"
	FormatUnknown Format = "unknown"
)

// Document 层次化的文档：段落与表格按文档顺序排列
type Document struct {
	Format Format
	Body   []Block

	// native 处理器私有的原始数据，Render 时使用
	native interface{}
}

// Block 段落或表格
type Block interface {
	isBlock()
}

// Paragraph 由若干独立样式的文本片段组成
type Paragraph struct {
	Runs []*Run
}

// Run 段落中的一段连续同格式文本
type Run struct {
	Text string

	// Style 格式信息，对改写过程不透明
	Style interface{}
}

// Table 表格
type Table struct {
	Rows []*Row
}

// Row 表格行
type Row struct {
	Cells []*Cell
}

// Cell 单元格，内容同样是段落与（嵌套）表格
type Cell struct {
	Blocks []Block
}

func (*Paragraph) isBlock() {}
func (*Table) isBlock()     {}

// Text 段落的完整文本
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Walk 按文档顺序访问所有段落，包括表格中的段落
func (d *Document) Walk(fn func(p *Paragraph) error) error {
	return walkBlocks(d.Body, fn)
}

func walkBlocks(blocks []Block, fn func(p *Paragraph) error) error {
	for _, b := range blocks {
		switch v := b.(type) {
		case *Paragraph:
			if err := fn(v); err != nil {
				return err
			}
		case *Table:
			for _, row := range v.Rows {
				for _, cell := range row.Cells {
					if err := walkBlocks(cell.Blocks, fn); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// Paragraphs 按文档顺序返回全部段落
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	_ = d.Walk(func(p *Paragraph) error {
		out = append(out, p)
		return nil
	})
	return out
}

// Text 全部段落文本，以换行连接
func (d *Document) Text() string {
	paras := d.Paragraphs()
	lines := make([]string, len(paras))
	for i, p := range paras {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}
