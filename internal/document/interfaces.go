// Package document 文本与 Word 文档的解析、改写与回写
package document

import (
	"context"
	"io"
)

// Processor 文档处理器
type Processor interface {
	// Parse 解析输入流为文档结构
	Parse(ctx context.Context, input io.Reader) (*Document, error)

	// Render 将文档写回原格式
	Render(ctx context.Context, doc *Document, output io.Writer) error

	// GetFormat 返回处理器支持的格式
	GetFormat() Format
}
