package redactor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nerdneilsfield/go-privacy-redactor/internal/document"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/extract"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/providers"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/tagger"
)

type fakeAnalyzer struct {
	entities []entity.Entity
	err      error
	calls    int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string) ([]entity.Entity, error) {
	f.calls++
	return f.entities, f.err
}

func testDeps(words map[string]string) Deps {
	if words == nil {
		words = map[string]string{"张三": tagger.PosPerson, "杭州市": tagger.PosPlace}
	}
	dict := tagger.NewDictionary(words)
	return Deps{
		NewTagger: func() (tagger.Tagger, error) { return dict, nil },
		Logger:    zap.NewNop(),
	}
}

func newTestRedactor(t *testing.T, opts Options, deps Deps) *Redactor {
	t.Helper()
	r, err := New(opts, nil, deps)
	require.NoError(t, err)
	return r
}

func TestNewUnknownStrategy(t *testing.T) {
	_, err := New(Options{Strategy: "medcal"}, nil, testDeps(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.True(t, IsConfigError(err))

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "strategy", ce.Field)
	assert.Equal(t, "medcal", ce.Value)
	assert.Equal(t, StrategyMedical, ce.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "medical"`)

	_, err = New(Options{Strategy: "zzzzzzzz"}, nil, testDeps(nil))
	require.ErrorAs(t, err, &ce)
	assert.Empty(t, ce.Suggestion)
}

func TestDefaultRegistryIDs(t *testing.T) {
	assert.Equal(t,
		[]string{"domain", "hybrid", "lexical", "llm", "medical", "regex"},
		DefaultRegistry().IDs())
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	noop := func(Options, Deps) (extract.Extractor, error) {
		return extract.Func(func(context.Context, string) ([]entity.Entity, error) { return nil, nil }), nil
	}

	require.NoError(t, r.Register("noop", noop))
	assert.Error(t, r.Register("noop", noop))
	assert.Error(t, r.Register("", noop))
	assert.Error(t, r.Register("nil", nil))

	_, ok := r.Lookup("noop")
	assert.True(t, ok)
	assert.Equal(t, []string{"noop"}, r.IDs())
}

func TestCustomStrategy(t *testing.T) {
	reg := DefaultRegistry()
	require.NoError(t, reg.Register("nicknames", func(opts Options, deps Deps) (extract.Extractor, error) {
		return extract.Func(func(_ context.Context, text string) ([]entity.Entity, error) {
			return []entity.Entity{entity.New("NICKNAME", "小明", "[昵称]")}, nil
		}), nil
	}))

	r, err := New(Options{Strategy: "nicknames"}, reg, testDeps(nil))
	require.NoError(t, err)
	assert.Equal(t, "nicknames", r.Strategy())

	res, err := r.RedactText(context.Background(), "小明和小明")
	require.NoError(t, err)
	assert.Equal(t, "[昵称]和[昵称]", res.Text)

	// 调用方注册表互不影响
	_, err = New(Options{Strategy: "nicknames"}, nil, testDeps(nil))
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestRedactTextScenarios(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		strategy string
		input    string
		want     string
		first    entity.Entity
	}{
		{
			name:     "id card",
			strategy: StrategyRegex,
			input:    "身份证号码330102197508124567",
			want:     "身份证号码[ID_CARD]",
			first:    entity.At(entity.KindIDCard, "330102197508124567", "[ID_CARD]", 15),
		},
		{
			name:     "phone",
			strategy: StrategyMedical,
			input:    "联系电话13812345678",
			want:     "联系电话[PHONE]",
			first:    entity.At(entity.KindPhone, "13812345678", "[PHONE]", 12),
		},
		{
			name:     "drug name",
			strategy: StrategyDomain,
			input:    "服用：阿莫西林胶囊",
			want:     "服用：[药品名]",
			first:    entity.At(entity.KindDrugName, "阿莫西林胶囊", "[药品名]", 9),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRedactor(t, Options{Strategy: tt.strategy}, testDeps(nil))
			res, err := r.RedactText(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Text)
			require.NotEmpty(t, res.Entities)
			assert.Equal(t, tt.first, res.Entities[0])
			assert.Equal(t, tt.first.Original, res.Audit[tt.first.Replacement])
		})
	}
}

func TestRedactTextMedical(t *testing.T) {
	r := newTestRedactor(t, DefaultOptions(), testDeps(nil))
	assert.Equal(t, StrategyMedical, r.Strategy())

	res, err := r.RedactText(context.Background(), "患者张三，住杭州市，电话13812345678。张三复诊。")
	require.NoError(t, err)
	assert.Equal(t, "患者[姓名]，住[地址]，电话[PHONE]。[姓名]复诊。", res.Text)

	var originals []string
	for _, e := range res.Entities {
		originals = append(originals, e.Original)
	}
	assert.Equal(t, []string{"13812345678", "张三", "杭州市"}, originals)
}

func TestRedactTextNoEntitiesIsIdentity(t *testing.T) {
	r := newTestRedactor(t, DefaultOptions(), testDeps(nil))
	for _, input := range []string{"", "   ", "今日查房，一般情况可。"} {
		res, err := r.RedactText(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, input, res.Text)
		assert.Empty(t, res.Entities)
	}
}

func TestEntitiesDoesNotMutate(t *testing.T) {
	r := newTestRedactor(t, DefaultOptions(), testDeps(nil))
	found, err := r.Entities(context.Background(), "患者张三")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, entity.KindName, found[0].Kind)
}

func TestPlaceholderOverrides(t *testing.T) {
	opts := DefaultOptions()
	opts.Placeholders = entity.Placeholders{entity.KindPhone: "<TEL>", entity.KindName: "某某"}

	r := newTestRedactor(t, opts, testDeps(nil))
	res, err := r.RedactText(context.Background(), "张三电话13812345678")
	require.NoError(t, err)
	assert.Equal(t, "某某电话<TEL>", res.Text)
}

func TestVocabularyOverlay(t *testing.T) {
	deps := testDeps(map[string]string{"林可": tagger.PosPerson})
	opts := DefaultOptions()
	opts.Vocabulary = []string{"林可霉素"}

	r := newTestRedactor(t, opts, deps)
	found, err := r.Entities(context.Background(), "静滴林可霉素")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestTaggerErrorOnlyForLexicalStrategies(t *testing.T) {
	boom := errors.New("dictionary missing")
	deps := Deps{NewTagger: func() (tagger.Tagger, error) { return nil, boom }}

	_, err := New(DefaultOptions(), nil, deps)
	assert.ErrorIs(t, err, boom)

	r, err := New(Options{Strategy: StrategyRegex}, nil, deps)
	require.NoError(t, err)
	res, err := r.RedactText(context.Background(), "电话13812345678")
	require.NoError(t, err)
	assert.Equal(t, "电话[PHONE]", res.Text)
}

func TestLLMAugmentation(t *testing.T) {
	analyzer := &fakeAnalyzer{entities: []entity.Entity{
		entity.New(entity.KindOrganization, "浙江省人民医院", ""),
		entity.New(entity.KindName, "不存在", ""),
	}}
	deps := testDeps(nil)
	deps.Analyzer = analyzer

	opts := DefaultOptions()
	opts.EnableLLM = true
	r := newTestRedactor(t, opts, deps)

	res, err := r.RedactText(context.Background(), "张三就诊于浙江省人民医院")
	require.NoError(t, err)
	assert.Equal(t, "[姓名]就诊于[机构]", res.Text)
	assert.Equal(t, 1, analyzer.calls)

	// 未启用时不调用
	opts.EnableLLM = false
	r = newTestRedactor(t, opts, deps)
	_, err = r.RedactText(context.Background(), "张三就诊于浙江省人民医院")
	require.NoError(t, err)
	assert.Equal(t, 1, analyzer.calls)
}

func TestLLMFailureContributesNothing(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	deps := testDeps(nil)
	deps.Logger = zap.New(core)
	deps.Analyzer = &fakeAnalyzer{err: errors.New("connection refused")}

	opts := DefaultOptions()
	opts.Strategy = StrategyHybrid
	opts.EnableLLM = true
	r := newTestRedactor(t, opts, deps)

	res, err := r.RedactText(context.Background(), "张三，电话13812345678")
	require.NoError(t, err)
	assert.Equal(t, "[姓名]，电话[PHONE]", res.Text)
	assert.Equal(t, 1, logs.Len())
}

func TestRedactTextLogsTextTraits(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	deps := testDeps(nil)
	deps.Logger = zap.New(core)
	r := newTestRedactor(t, DefaultOptions(), deps)

	_, err := r.RedactText(context.Background(), "患者张三入院治疗")
	require.NoError(t, err)
	_, err = r.RedactText(context.Background(), "meeting at noon")
	require.NoError(t, err)

	entries := logs.FilterMessage("text redacted").All()
	require.Len(t, entries, 2)
	first, second := entries[0].ContextMap(), entries[1].ContextMap()
	assert.Equal(t, "zh", first["language"])
	assert.Equal(t, true, first["medical"])
	assert.Equal(t, "en", second["language"])
	assert.Equal(t, false, second["medical"])
}

func TestLLMStrategyBuildsAnalyzerFromOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = StrategyLLM
	r, err := New(opts, nil, testDeps(nil))
	require.NoError(t, err)
	assert.Equal(t, StrategyLLM, r.Strategy())

	opts.LLM.Backend = "nonexistent"
	_, err = New(opts, nil, testDeps(nil))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	opts.LLM.Backend = ""
	opts.LLM.Model = ""
	_, err = New(opts, nil, testDeps(nil))
	assert.Error(t, err)
}

func TestDefaultOutputPath(t *testing.T) {
	tests := map[string]string{
		"notes.txt":             "notes_redacted.txt",
		"/data/出院小结.docx":       "/data/出院小结_redacted.docx",
		"dir.v2/report.tar.txt": "dir.v2/report.tar_redacted.txt",
		"noext":                 "noext_redacted",
	}
	for in, want := range tests {
		assert.Equal(t, want, DefaultOutputPath(in), in)
	}
}

func TestRedactTextFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(input, []byte("患者张三\n电话13812345678\n"), 0o644))

	r := newTestRedactor(t, DefaultOptions(), testDeps(nil))
	res, err := r.RedactFile(context.Background(), input, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "notes_redacted.txt"), res.OutputPath)
	assert.Equal(t, document.FormatText, res.Format)
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Entities, 2)

	out, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "患者[姓名]\n电话[PHONE]\n", string(out))

	// 原文件不变
	orig, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, "患者张三\n电话13812345678\n", string(orig))
}

func TestRedactFileExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.TXT")
	require.NoError(t, os.WriteFile(input, []byte("电话13812345678"), 0o644))
	output := filepath.Join(dir, "out", "nested", "b.txt")

	r := newTestRedactor(t, Options{Strategy: StrategyRegex}, testDeps(nil))
	res, err := r.RedactFile(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, output, res.OutputPath)

	out, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "电话[PHONE]", string(out))
}

func TestRedactFileUnsupported(t *testing.T) {
	r := newTestRedactor(t, DefaultOptions(), testDeps(nil))

	// 文件不存在也先报扩展名错误
	_, err := r.RedactFile(context.Background(), "/nonexistent/report.pdf", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.True(t, IsConfigError(err))

	_, err = r.RedactFile(context.Background(), "/nonexistent/report.txt", "")
	require.Error(t, err)
	assert.False(t, IsConfigError(err))

	_, err = r.InspectFile(context.Background(), "scan.png")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func writeDocx(t *testing.T, path, body string) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
		body+`</w:body></w:document>`)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestRedactDocxFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "小结.docx")
	writeDocx(t, input,
		`<w:p><w:r><w:t>患者</w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>张三</w:t></w:r></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>电话13812345678</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`+
			`<w:p><w:r><w:t>一般情况可</w:t></w:r></w:p>`)

	r := newTestRedactor(t, DefaultOptions(), testDeps(nil))
	ctx := context.Background()

	inspected, err := r.InspectFile(ctx, input)
	require.NoError(t, err)
	assert.Len(t, inspected, 2)

	res, err := r.RedactFile(ctx, input, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "小结_redacted.docx"), res.OutputPath)
	assert.Equal(t, document.FormatDOCX, res.Format)
	assert.Len(t, res.Entities, 2)

	f, err := os.Open(res.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	doc, err := document.NewDocxProcessor(nil).Parse(ctx, f)
	require.NoError(t, err)

	var texts []string
	for _, p := range doc.Paragraphs() {
		texts = append(texts, p.Text())
	}
	assert.Equal(t, []string{"患者[姓名]", "电话[PHONE]", "一般情况可"}, texts)
}

func TestProviderConfigEndpoint(t *testing.T) {
	tests := []struct {
		backend string
		url     string
		want    string
	}{
		{providers.BackendOllama, "", "http://127.0.0.1:11434"},
		{providers.BackendOpenAI, "", ""},
		{providers.BackendCompatible, "", ""},
		{providers.BackendOpenAI, "http://gateway.local/v1", "http://gateway.local/v1"},
	}
	for _, tt := range tests {
		t.Run(tt.backend+"/"+tt.url, func(t *testing.T) {
			opts := DefaultOptions()
			opts.LLM.Backend = tt.backend
			opts.LLM.URL = tt.url
			assert.Equal(t, tt.want, opts.providerConfig().APIEndpoint)
		})
	}
}
