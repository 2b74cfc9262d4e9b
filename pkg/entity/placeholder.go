package entity

// Placeholders 类别到占位符的映射
type Placeholders map[Kind]string

// DefaultPlaceholders 返回默认占位符表
//
// 结构化类别使用 "[KIND]"，分词类别与领域扩展类别使用中文标签。
func DefaultPlaceholders() Placeholders {
	p := Placeholders{
		KindName:          "[姓名]",
		KindPlace:         "[地址]",
		KindOrganization:  "[机构]",
		KindDrugName:      "[药品名]",
		KindLabValue:      "[检验值]",
		KindMedicalDevice: "[医疗器械]",
		KindSurgeryName:   "[手术名称]",
	}
	for _, k := range Kinds() {
		if _, ok := p[k]; !ok {
			p[k] = "[" + string(k) + "]"
		}
	}
	return p
}

// For 返回类别的占位符，未配置的类别退回 "[KIND]"
func (p Placeholders) For(kind Kind) string {
	if v, ok := p[kind]; ok && v != "" {
		return v
	}
	return "[" + string(kind) + "]"
}

// With 返回叠加 overrides 之后的新表，原表不变
func (p Placeholders) With(overrides Placeholders) Placeholders {
	out := make(Placeholders, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
