// Package lang 提供粗粒度的语言与医疗文本判断
package lang

import "strings"

// 语言代码
const (
	Chinese = "zh"
	English = "en"
)

// medicalKeywords 医疗相关关键词
var medicalKeywords = []string{
	"患者", "医生", "护士", "病人", "医院", "诊所", "药物", "治疗", "疾病", "症状",
	"病历", "手术", "检查", "化验", "诊断", "用药", "住院", "出院", "病房", "门诊",
	"急诊", "医嘱", "护理", "康复", "病史", "血压", "体温", "心率", "呼吸",
}

// isHan 匹配 CJK 统一表意文字基本区
func isHan(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}

// IsChinese 中文字符占比超过一半时返回 true
func IsChinese(text string) bool {
	total, han := 0, 0
	for _, r := range text {
		total++
		if isHan(r) {
			han++
		}
	}
	if total == 0 {
		return false
	}
	return float64(han)/float64(total) > 0.5
}

// Detect 返回 "zh" 或 "en"
func Detect(text string) string {
	if IsChinese(text) {
		return Chinese
	}
	return English
}

// IsMedical 文本包含任一医疗关键词时返回 true
func IsMedical(text string) bool {
	for _, kw := range medicalKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
