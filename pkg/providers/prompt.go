package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

// reasoningBlock 推理模型在正文前输出的思考段落
var reasoningBlock = regexp2.MustCompile(`(?is)<(think|reasoning|analysis|思考|思路|推理|分析)>.*?</\1>`, regexp2.None)

// SystemPrompt 聊天类后端使用的系统提示
const SystemPrompt = "你是医疗文本隐私脱敏助手，只输出 JSON，不做任何解释。"

// BuildPrompt 构造实体识别提示词
func BuildPrompt(text string) string {
	kinds := make([]string, 0, len(entity.Kinds()))
	for _, k := range entity.Kinds() {
		kinds = append(kinds, string(k))
	}

	return fmt.Sprintf(`识别下面医疗文本中的个人隐私信息（姓名、证件号、联系方式、地址、机构、病历编号等）。
只返回一个 JSON 数组，每一项包含：
- "original": 文本中原样出现的片段
- "type": 以下之一：%s

待分析文本：
%s

只返回 JSON 数组。示例：[{"original":"张三","type":"NAME"}]`,
		strings.Join(kinds, ", "), text)
}

type detection struct {
	Original    string `json:"original"`
	Type        string `json:"type"`
	Replacement string `json:"replacement,omitempty"`
}

// StripReasoning 去掉 <think> 一类的推理段落
func StripReasoning(content string) string {
	out, err := reasoningBlock.Replace(content, "", -1, -1)
	if err != nil {
		return content
	}
	return strings.TrimSpace(out)
}

// ParseEntities 从模型回复中截取第一个 '[' 到最后一个 ']' 并解析
func ParseEntities(content string) ([]entity.Entity, error) {
	raw := StripReasoning(content)
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, NewError("parse_error", "no JSON array in model response")
	}

	var detections []detection
	if err := json.Unmarshal([]byte(raw[start:end+1]), &detections); err != nil {
		return nil, fmt.Errorf("detection parse error: %w", err)
	}

	entities := make([]entity.Entity, 0, len(detections))
	for _, d := range detections {
		if d.Original == "" {
			continue
		}
		kind := entity.Kind(strings.ToUpper(strings.TrimSpace(d.Type)))
		if kind == "" {
			kind = entity.KindName
		}
		entities = append(entities, entity.New(kind, d.Original, d.Replacement))
	}
	return entities, nil
}
