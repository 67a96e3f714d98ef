package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/internal/infrastructure/persistence/milvus"
	"story-weaver-api/pkg/utils"
)

// styleSeed 一条待入库的叙事风格
type styleSeed struct {
	ID          string
	TextFile    string
	StyleName   string
	Description string
	Keywords    []string
}

var defaultSeeds = []styleSeed{
	{
		ID:          narration.VoiceGeet,
		TextFile:    "geet_narration_example.txt",
		StyleName:   "Geet - Spunky Bollywood Queen",
		Description: "A very spunky, witty, energetic, and modern Bollywood-inspired narration. Think vibrant dialogue, a touch of irreverence, and the feel of a modern Indian rom-com. Prioritize lively banter and character voice.",
		Keywords:    []string{"spunky", "witty", "bollywood", "energetic", "modern rom-com", "vibrant dialogue", "hindi-english mix (subtle)", "geet"},
	},
	{
		ID:        narration.VoiceBennetRegency,
		TextFile:  "bennet.txt",
		StyleName: "Bennet (Regency Romance)",
		Description: "A classic Regency romance style, focusing on societal intricacies, duty, and heartfelt emotions. " +
			"Features eloquent prose and detailed character introspection.\n" +
			"SPECIFIC GUIDELINES FOR THIS 'Bennet (Regency Romance)' STYLE:\n" +
			"- Steer clear of feathery, purple prose. Especially avoid repetitive phrases and flourishes.\n" +
			"- Avoid directly lifting concepts from popular Regency tropes like 'diamond of the first water' (e.g., from Julia Quinn).\n" +
			"- Avoid stock characterization. Instead, follow the 'Chekhov's gun' principle: every significant character introduced " +
			"should ideally prove important to the plot later.",
		Keywords: []string{"regency", "historical romance", "jane austen", "eloquent", "emotional", "bennet", "historical fiction", "chekhovs gun", "originality"},
	},
}

// loadedSeed 读入示例文本后的风格
type loadedSeed struct {
	styleSeed
	Text string
}

// snippet 取示例文本前 500 字符，超长时追加省略号
func snippet(text string) string {
	s := strings.TrimSpace(utils.TruncateRunes(text, entity.MaxSnippetRunes))
	if utf8.RuneCountInString(text) > entity.MaxSnippetRunes {
		s += "..."
	}
	return s
}

// loadSeeds 读取示例文本；缺失或为空的风格跳过并返回原因
func loadSeeds(dir string, seeds []styleSeed) (loaded []loadedSeed, skipped []string) {
	for _, seed := range seeds {
		path := filepath.Join(dir, seed.TextFile)
		raw, err := os.ReadFile(path)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("%s: %v", seed.ID, err))
			continue
		}
		text := string(raw)
		if strings.TrimSpace(text) == "" {
			skipped = append(skipped, fmt.Sprintf("%s: %s is empty", seed.ID, path))
			continue
		}
		loaded = append(loaded, loadedSeed{styleSeed: seed, Text: text})
	}
	return loaded, skipped
}

// toDocument 组装 Milvus 风格记录
func (s loadedSeed) toDocument(vector []float32) *milvus.StyleDocument {
	return &milvus.StyleDocument{
		StyleID:           s.ID,
		Vector:            vector,
		StyleName:         s.StyleName,
		Description:       s.Description,
		Keywords:          s.Keywords,
		SourceTextSnippet: snippet(s.Text),
	}
}
