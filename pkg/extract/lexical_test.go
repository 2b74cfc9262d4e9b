package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/tagger"
)

// staticTagger 返回固定词元，不支持词汇注入
type staticTagger []tagger.Token

func (s staticTagger) Tag(string) []tagger.Token { return s }

func newTestDictionary() *tagger.Dictionary {
	return tagger.NewDictionary(map[string]string{
		"张三":      tagger.PosPerson,
		"王":       tagger.PosPerson,
		"杭州市":     tagger.PosPlace,
		"杭州市人民医院": tagger.PosOrganization,
	})
}

func TestLexicalEveryOccurrence(t *testing.T) {
	text := "张三住杭州市，张三的母亲在杭州市人民医院"
	l, err := NewLexical(newTestDictionary(), nil)
	require.NoError(t, err)

	entities, err := l.Extract(context.Background(), text)
	require.NoError(t, err)

	// 张三 出现两次成词，每次都报告全部两处
	assert.Equal(t, []entity.Entity{
		entity.At(entity.KindName, "张三", "[姓名]", 0),
		entity.At(entity.KindName, "张三", "[姓名]", 21),
		entity.At(entity.KindPlace, "杭州市", "[地址]", 9),
		entity.At(entity.KindPlace, "杭州市", "[地址]", 39),
		entity.At(entity.KindName, "张三", "[姓名]", 0),
		entity.At(entity.KindName, "张三", "[姓名]", 21),
		entity.At(entity.KindOrganization, "杭州市人民医院", "[机构]", 39),
	}, entities)

	for _, e := range entities {
		assert.Equal(t, e.Original, text[e.Span.Start:e.Span.End])
	}
}

func TestLexicalSkipsSingleCharacterNames(t *testing.T) {
	l, err := NewLexical(newTestDictionary(), nil)
	require.NoError(t, err)

	entities, err := l.Extract(context.Background(), "王说没事")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestLexicalIgnoresOtherTags(t *testing.T) {
	l, err := NewLexical(staticTagger{
		{Text: "头痛", POS: "n"},
		{Text: "", POS: tagger.PosPerson},
		{Text: "三天", POS: "m"},
	}, nil)
	require.NoError(t, err)

	entities, err := l.Extract(context.Background(), "头痛三天")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestLexicalVocabularyOverlay(t *testing.T) {
	base := map[string]string{"高血": tagger.PosPerson}

	without, err := NewLexical(tagger.NewDictionary(base), nil)
	require.NoError(t, err)
	entities, err := without.Extract(context.Background(), "既往高血压")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "高血", entities[0].Original)

	with, err := NewLexical(tagger.NewDictionary(base), MedicalTerms)
	require.NoError(t, err)
	entities, err = with.Extract(context.Background(), "既往高血压")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestLexicalVocabularyIsInstanceLocal(t *testing.T) {
	base := map[string]string{"高血": tagger.PosPerson}
	shared := tagger.NewDictionary(base)
	other := tagger.NewDictionary(base)

	_, err := NewLexical(shared, []string{"高血压"})
	require.NoError(t, err)

	l, err := NewLexical(other, nil)
	require.NoError(t, err)
	entities, err := l.Extract(context.Background(), "高血压")
	require.NoError(t, err)
	assert.Len(t, entities, 1)
}

func TestLexicalRejectsBadInput(t *testing.T) {
	_, err := NewLexical(nil, nil)
	assert.Error(t, err)

	_, err = NewLexical(tagger.NewDictionary(nil), []string{""})
	assert.Error(t, err)

	// 不支持注入的标注器直接忽略词汇
	_, err = NewLexical(staticTagger{}, MedicalTerms)
	assert.NoError(t, err)
}

func TestLexicalEmptyText(t *testing.T) {
	l, err := NewLexical(newTestDictionary(), nil)
	require.NoError(t, err)
	entities, err := l.Extract(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestLexicalPlaceholderOverride(t *testing.T) {
	l, err := NewLexical(newTestDictionary(), nil,
		WithLexicalPlaceholders(entity.DefaultPlaceholders().With(entity.Placeholders{entity.KindName: "某某"})))
	require.NoError(t, err)

	entities, err := l.Extract(context.Background(), "张三")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "某某", entities[0].Replacement)
}
