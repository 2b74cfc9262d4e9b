package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextProcessor 纯文本处理器
//
// 整个文件作为一个只有一个片段的段落，抽取在全文上进行一次；输出总是 UTF-8。
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor 创建文本处理器
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{logger: logger}
}

// GetFormat 返回格式类型
func (p *TextProcessor) GetFormat() Format {
	return FormatText
}

// Parse 读取并解码文本
func (p *TextProcessor) Parse(ctx context.Context, input io.Reader) (*Document, error) {
	content, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	text, name := DecodeText(content)
	p.logger.Debug("decoded text input",
		zap.String("encoding", name),
		zap.Int("bytes", len(content)))

	return &Document{
		Format: FormatText,
		Body:   []Block{&Paragraph{Runs: []*Run{{Text: text}}}},
	}, nil
}

// Render 写出全部段落文本
func (p *TextProcessor) Render(ctx context.Context, doc *Document, output io.Writer) error {
	if _, err := io.WriteString(output, doc.Text()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// candidateEncodings 非 UTF-8 输入时依次尝试
var candidateEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"gb18030", simplifiedchinese.GB18030},
	{"gbk", simplifiedchinese.GBK},
	{"big5", traditionalchinese.Big5},
	{"utf-16le", xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM)},
	{"utf-16be", xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM)},
}

// DecodeText 检测编码并转成 UTF-8，返回文本和识别出的编码名
//
// 都不合理时原样返回，编码名为 "binary"。
func DecodeText(data []byte) (string, string) {
	if len(data) == 0 {
		return "", "utf-8"
	}

	// 检查 BOM
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), "utf-8-bom"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		if s, ok := decodeWith(xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM), data[2:]); ok {
			return s, "utf-16le"
		}
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		if s, ok := decodeWith(xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM), data[2:]); ok {
			return s, "utf-16be"
		}
	}

	if utf8.Valid(data) {
		return string(data), "utf-8"
	}

	for _, c := range candidateEncodings {
		if s, ok := decodeWith(c.enc, data); ok && isReasonableText(s) {
			return s, c.name
		}
	}

	return string(data), "binary"
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	res, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil || !utf8.Valid(res) {
		return "", false
	}
	return string(res), true
}

// isReasonableText 可打印字符超过 90%，且没有替换字符
func isReasonableText(text string) bool {
	if len(text) == 0 {
		return false
	}

	printable, total := 0, 0
	for _, r := range text {
		total++
		if r == utf8.RuneError {
			return false
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable)/float64(total) > 0.9
}
