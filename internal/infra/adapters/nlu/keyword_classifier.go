package nlu

import (
	"context"
	"strings"

	"gourmet-dialog-bot/internal/config"
	"gourmet-dialog-bot/internal/domain/model"
	"gourmet-dialog-bot/internal/domain/ports/adapter"
)

var _ adapter.IntentClassifier = (*KeywordClassifier)(nil)

// KeywordClassifier performs offline heuristics for local/dev runs and
// tests: substring matching against small configured vocabularies. Unmatched
// text yields an empty result, which is the engine's echo path.
type KeywordClassifier struct {
	queryIntent string
	keywords    []string
	areas       []string
	categories  []string
}

func NewKeywordClassifier(cfg config.NLUConfig, queryIntent string) *KeywordClassifier {
	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = []string{"レストラン", "探して", "食べたい", "restaurant", "eat"}
	}
	areas := cfg.Areas
	if len(areas) == 0 {
		areas = []string{"東京", "大阪", "京都", "北海道", "沖縄"}
	}
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = []string{"イタリアン", "フレンチ", "中華", "寿司", "ラーメン", "焼肉"}
	}
	return &KeywordClassifier{
		queryIntent: queryIntent,
		keywords:    keywords,
		areas:       areas,
		categories:  categories,
	}
}

func (c *KeywordClassifier) Classify(ctx context.Context, text string) (*model.IntentResult, error) {
	res := &model.IntentResult{}
	if v, ok := findAny(text, c.areas); ok {
		res.Entities = append(res.Entities, model.Entity{Name: model.SlotArea, Value: v})
	}
	if v, ok := findAny(text, c.categories); ok {
		res.Entities = append(res.Entities, model.Entity{Name: model.SlotGourmetCategory, Value: v})
	}
	if _, cued := findAny(text, c.keywords); cued || len(res.Entities) > 0 {
		res.Intents = []model.Intent{{Name: c.queryIntent, Confidence: 0.9}}
	}
	return res, nil
}

func findAny(text string, needles []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return n, true
		}
	}
	return "", false
}
