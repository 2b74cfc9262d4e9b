package extract

import (
	"github.com/dlclark/regexp2"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

// Rule 一条带类别的结构化规则
//
// ChineseOnly 的规则只在文本以中文为主时生效。
type Rule struct {
	Kind        entity.Kind
	Pattern     *regexp2.Regexp
	ChineseOnly bool
}

// Catalog 有序规则目录，顺序即抽取顺序，也决定兜底替换的先后
type Catalog []Rule

// NewRule 编译规则；表达式在构建期固定，编译失败直接 panic
func NewRule(kind entity.Kind, expr string) Rule {
	return Rule{Kind: kind, Pattern: regexp2.MustCompile(expr, regexp2.None)}
}

// CompileRule 编译调用方提供的规则
func CompileRule(kind entity.Kind, expr string) (Rule, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return Rule{}, err
	}
	return Rule{Kind: kind, Pattern: re}, nil
}

// Append 返回追加规则后的新目录
func (c Catalog) Append(rules ...Rule) Catalog {
	out := make(Catalog, 0, len(c)+len(rules))
	out = append(out, c...)
	return append(out, rules...)
}

// Kinds 按目录顺序返回类别
func (c Catalog) Kinds() []entity.Kind {
	kinds := make([]entity.Kind, len(c))
	for i, r := range c {
		kinds[i] = r.Kind
	}
	return kinds
}

const han = `一-龥`

var baseRules = Catalog{
	// 个人信息
	NewRule(entity.KindIDCard, `[1-9]\d{5}(?:19|20)\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01])\d{3}[\dXx]`),
	NewRule(entity.KindPhone, `(?:13[0-9]|14[01456879]|15[0-35-9]|16[2567]|17[0-8]|18[0-9]|19[0-35-9])\d{8}`),
	NewRule(entity.KindEmail, `[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`),
	NewRule(entity.KindBankCard, `(?:62|4|5)\d{14,18}`),

	// 医疗编号
	NewRule(entity.KindPatientID, `门诊号[：:]?\s*(\d{6,12})|住院号[：:]?\s*(\d{6,12})|病案号[：:]?\s*(\d{6,12})`),
	NewRule(entity.KindMedicalRecordNo, `病历号[：:]?\s*([A-Za-z0-9]+)|病案号[：:]?\s*([A-Za-z0-9]+)|门诊号[：:]?\s*([A-Za-z0-9]+)`),
	NewRule(entity.KindAdmissionNo, `住院号[：:]?\s*([A-Za-z0-9]+)`),
	NewRule(entity.KindMedicalInsuranceNo, `医保号[：:]?\s*([A-Za-z0-9]+)`),
	NewRule(entity.KindSocialSecurityNo, `社保号[：:]?\s*(\d{10,20})`),
	NewRule(entity.KindMedicalExpenses, `(?:医疗费用|总费用|自费金额)[：:]?\s*[¥￥]?(\d+(?:\.\d+)?)`),
	NewRule(entity.KindDoctorName, `(?:主治|主管|经治|值班|记录)医师[：:]?\s*([张李王赵刘陈杨黄周吴徐孙马朱胡林郭何高罗郑梁谢宋唐许邓冯韩曹曾彭萧蒋蔡沈韦江童陆姜戴崔邹潘`+
		`薛叶阎余袁侯贺龚顾毛郝龙邵钱汪石井廖洪姚欧艾熊孟贾范宁庄马苏何傅俞`+
		`章萧程于舒康齐吕金陶沈伍刘][`+han+`]{1,2})`),

	// 时间与地址
	NewRule(entity.KindDate, `(\d{4}[-/年]\d{1,2}[-/月]\d{1,2}[日]?)`),
	NewRule(entity.KindTime, `(\d{1,2}[:：]\d{1,2}(?:[:：]\d{1,2})?)`),
	NewRule(entity.KindLocation, `(?:地址|住址|家庭住址|现住址)[：:]\s*([`+han+`]+(?:省|市|区|县|镇|乡|村|路|街|号|室)(?:[`+han+`]*(?:省|市|区|县|镇|乡|村|路|街|号|室)){0,5}[`+han+`\d]*)`),
}

var domainRules = Catalog{
	NewRule(entity.KindDrugName, `(?:服用|用药|药品名称|处方)[：:]\s*([`+han+`]{2,10}(?:片|胶囊|注射液|口服液|滴剂|溶液|喷雾剂|贴剂|粉剂|颗粒|混悬液))`),
	NewRule(entity.KindLabValue, `(?:血糖|血压|体温|心率|呼吸|血红蛋白|白细胞|血小板|肌酐|尿素氮)[：:]\s*(\d+(?:\.\d+)?(?:\s*[-~～至]\s*\d+(?:\.\d+)?)?(?:\s*[a-zA-Z/%]+)?)`),
	NewRule(entity.KindMedicalDevice, `(?:使用|植入|置入)[：:]\s*([`+han+`]{2,15}(?:导管|支架|起搏器|呼吸机|监护仪|泵|针|管|器))`),
	NewRule(entity.KindSurgeryName, `(?:手术名称|手术|术式)[：:]\s*([`+han+`]{2,20}(?:手术|切除术|成形术|修复术|置换术|重建术|吻合术|固定术|摘除术|造瘘术))`),
}

func init() {
	for i := range domainRules {
		domainRules[i].ChineseOnly = true
	}
}

// BaseCatalog 返回基础目录：证件、联系方式、医疗编号、费用、医师、日期时间、地址
func BaseCatalog() Catalog {
	return Catalog{}.Append(baseRules...)
}

// DomainRules 返回领域扩展规则：药品、检验值、医疗器械、手术名称
func DomainRules() Catalog {
	return Catalog{}.Append(domainRules...)
}

// DomainCatalog 返回基础目录后接领域扩展规则
func DomainCatalog() Catalog {
	return BaseCatalog().Append(domainRules...)
}
