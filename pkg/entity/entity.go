// Package entity 定义隐私实体记录及其类别
package entity

import (
	"encoding/json"
	"fmt"
)

// Kind 隐私实体类别
type Kind string

// 结构化信息类别
const (
	KindIDCard             Kind = "ID_CARD"
	KindPhone              Kind = "PHONE"
	KindEmail              Kind = "EMAIL"
	KindBankCard           Kind = "BANK_CARD"
	KindPatientID          Kind = "PATIENT_ID"
	KindMedicalRecordNo    Kind = "MEDICAL_RECORD_NO"
	KindAdmissionNo        Kind = "ADMISSION_NO"
	KindMedicalInsuranceNo Kind = "MEDICAL_INSURANCE_NO"
	KindSocialSecurityNo   Kind = "SOCIAL_SECURITY_NO"
	KindMedicalExpenses    Kind = "MEDICAL_EXPENSES"
	KindDoctorName         Kind = "DOCTOR_NAME"
	KindDate               Kind = "DATE"
	KindTime               Kind = "TIME"
	KindLocation           Kind = "LOCATION"
)

// 分词词性识别出的类别
const (
	KindName         Kind = "NAME"
	KindPlace        Kind = "PLACE"
	KindOrganization Kind = "ORGANIZATION"
)

// 领域扩展类别
const (
	KindDrugName      Kind = "DRUG_NAME"
	KindLabValue      Kind = "LABORATORY_VALUE"
	KindMedicalDevice Kind = "MEDICAL_DEVICE"
	KindSurgeryName   Kind = "SURGERY_NAME"
)

// Kinds 返回全部已知类别
func Kinds() []Kind {
	return []Kind{
		KindIDCard, KindPhone, KindEmail, KindBankCard,
		KindPatientID, KindMedicalRecordNo, KindAdmissionNo,
		KindMedicalInsuranceNo, KindSocialSecurityNo, KindMedicalExpenses,
		KindDoctorName, KindDate, KindTime, KindLocation,
		KindName, KindPlace, KindOrganization,
		KindDrugName, KindLabValue, KindMedicalDevice, KindSurgeryName,
	}
}

// Known 判断类别是否在已知目录中
func (k Kind) Known() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Span 实体在被抽取文本中的字节区间 [Start, End)
type Span struct {
	Start int
	End   int
}

// Entity 一次抽取得到的隐私实体
//
// Span 只对抽取时的那份文本有效，任何改变文本长度的替换之后都不能再使用。
type Entity struct {
	Kind        Kind
	Original    string
	Replacement string
	Span        *Span
}

// New 创建不带位置信息的实体
func New(kind Kind, original, replacement string) Entity {
	return Entity{Kind: kind, Original: original, Replacement: replacement}
}

// At 创建带位置信息的实体，End 由 original 的字节长度推出
func At(kind Kind, original, replacement string, start int) Entity {
	return Entity{
		Kind:        kind,
		Original:    original,
		Replacement: replacement,
		Span:        &Span{Start: start, End: start + len(original)},
	}
}

// HasSpan 是否带有位置信息
func (e Entity) HasSpan() bool {
	return e.Span != nil
}

func (e Entity) String() string {
	if e.Span == nil {
		return fmt.Sprintf("%s(%q→%s)", e.Kind, e.Original, e.Replacement)
	}
	return fmt.Sprintf("%s(%q→%s @%d:%d)", e.Kind, e.Original, e.Replacement, e.Span.Start, e.Span.End)
}

// record 实体的 JSON 形式
type record struct {
	Type        Kind   `json:"type"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Start       *int   `json:"start,omitempty"`
	End         *int   `json:"end,omitempty"`
}

// MarshalJSON 输出 {type, original, replacement, start?, end?}
func (e Entity) MarshalJSON() ([]byte, error) {
	r := record{Type: e.Kind, Original: e.Original, Replacement: e.Replacement}
	if e.Span != nil {
		start, end := e.Span.Start, e.Span.End
		r.Start, r.End = &start, &end
	}
	return json.Marshal(r)
}

// UnmarshalJSON 读取 MarshalJSON 的输出
func (e *Entity) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*e = Entity{Kind: r.Type, Original: r.Original, Replacement: r.Replacement}
	if r.Start != nil && r.End != nil {
		e.Span = &Span{Start: *r.Start, End: *r.End}
	}
	return nil
}
