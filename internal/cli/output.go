package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

// maxOriginalWidth 表格中原文列的最大显示宽度
const maxOriginalWidth = 32

// renderEntityTable 渲染实体表
func renderEntityTable(w io.Writer, entities []entity.Entity) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	tw.AppendHeader(table.Row{"#", "类型", "原文", "占位符", "位置"})
	for i, e := range entities {
		tw.AppendRow(table.Row{i + 1, e.Kind, truncate(e.Original), e.Replacement, span(e)})
	}
	tw.AppendFooter(table.Row{"", "合计", len(entities), "", ""})

	tw.SetStyle(table.StyleLight)
	tw.Render()
}

func span(e entity.Entity) string {
	if !e.HasSpan() {
		return "-"
	}
	return fmt.Sprintf("%d-%d", e.Span.Start, e.Span.End)
}

// truncate 按显示宽度截断，中文按两列计
func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return runewidth.Truncate(s, maxOriginalWidth, "…")
}

// highlightPlaceholders 给脱敏文本中的占位符着色；非终端输出时 color 自动关闭
func highlightPlaceholders(text string, entities []entity.Entity) string {
	if color.NoColor || len(entities) == 0 {
		return text
	}

	mark := color.New(color.FgYellow, color.Bold)
	seen := make(map[string]bool)
	var pairs []string
	for _, e := range entities {
		if e.Replacement == "" || seen[e.Replacement] {
			continue
		}
		seen[e.Replacement] = true
		pairs = append(pairs, e.Replacement, mark.Sprint(e.Replacement))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
