package document

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// WordprocessingML 主命名空间（过渡版与严格版）
const (
	wordNamespace       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	wordStrictNamespace = "http://purl.oclc.org/ooxml/wordprocessingml/main"
)

// xmlNode document.xml 的原始 token 树
//
// 元素节点保留原始前缀与属性顺序，其余 token（文本、注释、处理指令）挂在 tok 上，
// 回写时未修改的部分逐 token 还原。
type xmlNode struct {
	start *xml.StartElement
	// word 元素前缀绑定到 WordprocessingML 命名空间
	word     bool
	tok      xml.Token
	children []*xmlNode
}

func (n *xmlNode) is(local string) bool {
	return n.word && n.start.Name.Local == local
}

// attr 按本地名取属性值，不区分前缀
func (n *xmlNode) attr(local string) string {
	for _, a := range n.start.Attr {
		if a.Name.Local == local && a.Name.Space != "xmlns" {
			return a.Value
		}
	}
	return ""
}

// newWordNode 用给定前缀新建 WordprocessingML 元素
func newWordNode(prefix, local string) *xmlNode {
	return &xmlNode{
		start: &xml.StartElement{Name: xml.Name{Space: prefix, Local: local}},
		word:  true,
	}
}

func isWordNamespace(uri string) bool {
	return uri == wordNamespace || uri == wordStrictNamespace
}

// declareNamespaces 在父作用域上叠加元素自身的 xmlns 声明，没有声明时直接复用父作用域
func declareNamespaces(parent map[string]string, attrs []xml.Attr) map[string]string {
	scope := parent
	copied := false
	for _, a := range attrs {
		var prefix string
		switch {
		case a.Name.Space == "xmlns":
			prefix = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			prefix = ""
		default:
			continue
		}
		if !copied {
			scope = make(map[string]string, len(parent)+1)
			for k, v := range parent {
				scope[k] = v
			}
			copied = true
		}
		scope[prefix] = a.Value
	}
	return scope
}

// parseXMLTree 读取完整的 token 树，根节点本身不对应任何元素
//
// 元素前缀按作用域内的 xmlns 声明解析，WordprocessingML 可以绑定任意前缀。
func parseXMLTree(r io.Reader) (*xmlNode, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	root := &xmlNode{}
	stack := []*xmlNode{root}
	scopes := []map[string]string{nil}
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		parent := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			start := t.Copy()
			scope := declareNamespaces(scopes[len(scopes)-1], start.Attr)
			node := &xmlNode{start: &start, word: isWordNamespace(scope[start.Name.Space])}
			parent.children = append(parent.children, node)
			stack = append(stack, node)
			scopes = append(scopes, scope)
		case xml.EndElement:
			if len(stack) == 1 {
				return nil, fmt.Errorf("unexpected end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]
		default:
			parent.children = append(parent.children, &xmlNode{tok: xml.CopyToken(t)})
		}
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("unclosed element %s", stack[len(stack)-1].start.Name.Local)
	}
	return root, nil
}

// writeXMLTree 把 token 树写回字节
func writeXMLTree(root *xmlNode) ([]byte, error) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	for _, c := range root.children {
		if err := writeNode(w, c); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// 文本只转义必要字符，换行与制表符原样保留
var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;")
)

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func writeNode(w *bufio.Writer, n *xmlNode) error {
	if n.start == nil {
		return writeToken(w, n.tok)
	}

	name := qualified(n.start.Name)
	w.WriteByte('<')
	w.WriteString(name)
	for _, a := range n.start.Attr {
		w.WriteByte(' ')
		w.WriteString(qualified(a.Name))
		w.WriteString(`="`)
		attrEscaper.WriteString(w, a.Value)
		w.WriteByte('"')
	}
	if len(n.children) == 0 {
		_, err := w.WriteString("/>")
		return err
	}
	w.WriteByte('>')
	for _, c := range n.children {
		if err := writeNode(w, c); err != nil {
			return err
		}
	}
	w.WriteString("</")
	w.WriteString(name)
	_, err := w.WriteString(">")
	return err
}

func writeToken(w *bufio.Writer, tok xml.Token) error {
	var err error
	switch t := tok.(type) {
	case xml.CharData:
		_, err = textEscaper.WriteString(w, string(t))
	case xml.Comment:
		w.WriteString("<!--")
		w.Write(t)
		_, err = w.WriteString("-->")
	case xml.ProcInst:
		w.WriteString("<?")
		w.WriteString(t.Target)
		if len(t.Inst) > 0 {
			w.WriteByte(' ')
			w.Write(t.Inst)
		}
		_, err = w.WriteString("?>")
	case xml.Directive:
		w.WriteString("<!")
		w.Write(t)
		_, err = w.WriteString(">")
	}
	return err
}

// findBody 定位 document/body，前缀不限
func findBody(root *xmlNode) (*xmlNode, error) {
	for _, top := range root.children {
		if !top.is("document") {
			continue
		}
		for _, c := range top.children {
			if c.is("body") {
				return c, nil
			}
		}
	}
	return nil, errors.New("WordprocessingML body not found")
}

// text 元素内全部字符数据
func (n *xmlNode) text() string {
	var b bytes.Buffer
	for _, c := range n.children {
		if cd, ok := c.tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return b.String()
}

// setText 用单个字符数据替换元素内容，并声明保留空白
func (n *xmlNode) setText(s string) {
	n.children = []*xmlNode{{tok: xml.CharData(s)}}

	for i, a := range n.start.Attr {
		if a.Name.Space == "xml" && a.Name.Local == "space" {
			n.start.Attr[i].Value = "preserve"
			return
		}
	}
	n.start.Attr = append(n.start.Attr, xml.Attr{
		Name:  xml.Name{Space: "xml", Local: "space"},
		Value: "preserve",
	})
}
