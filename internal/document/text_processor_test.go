package document

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	xunicode "golang.org/x/text/encoding/unicode"
)

func encode(t *testing.T, enc encoding.Encoding, s string) []byte {
	t.Helper()
	b, err := enc.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestDecodeText(t *testing.T) {
	const sample = "患者张三，男，45岁。\n主诉：头痛三天。"

	tests := []struct {
		name     string
		data     []byte
		encoding string
	}{
		{"utf-8", []byte(sample), "utf-8"},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, sample...), "utf-8-bom"},
		{"gbk", encode(t, simplifiedchinese.GBK, sample), "gb18030"},
		{"utf-16le bom", append([]byte{0xFF, 0xFE}, encode(t, xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM), sample)...), "utf-16le"},
		{"utf-16be bom", append([]byte{0xFE, 0xFF}, encode(t, xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM), sample)...), "utf-16be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, name := DecodeText(tt.data)
			assert.Equal(t, sample, text)
			assert.Equal(t, tt.encoding, name)
		})
	}
}

func TestDecodeTextEmpty(t *testing.T) {
	text, name := DecodeText(nil)
	assert.Equal(t, "", text)
	assert.Equal(t, "utf-8", name)
}

func TestTextProcessorRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewTextProcessor(zap.NewNop())
	assert.Equal(t, FormatText, p.GetFormat())

	gbk := encode(t, simplifiedchinese.GBK, "患者张三\n电话13812345678")
	doc, err := p.Parse(ctx, bytes.NewReader(gbk))
	require.NoError(t, err)

	paras := doc.Paragraphs()
	require.Len(t, paras, 1)
	require.Len(t, paras[0].Runs, 1)

	Redistribute(paras[0], strings.Replace(paras[0].Text(), "张三", "[姓名]", 1))

	var out bytes.Buffer
	require.NoError(t, p.Render(ctx, doc, &out))
	assert.Equal(t, "患者[姓名]\n电话13812345678", out.String())
}
