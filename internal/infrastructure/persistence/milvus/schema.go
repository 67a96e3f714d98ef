package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionNarrationStyles 叙事风格集合
	CollectionNarrationStyles = "narration_styles"

	// DefaultVectorDimension 默认向量维度
	DefaultVectorDimension = 1536
)

// 字段名
const (
	FieldStyleID     = "style_id"
	FieldVector      = "vector"
	FieldStyleName   = "style_name"
	FieldDescription = "description"
	FieldKeywords    = "keywords_json"
	FieldSnippet     = "source_text_snippet"
)

// 字段长度上限
const (
	maxStyleIDLen     = 128
	maxStyleNameLen   = 256
	maxDescriptionLen = 8192
	maxKeywordsLen    = 2048
	maxSnippetLen     = 4096
)

func varCharField(name string, maxLen int) *entity.Field {
	return &entity.Field{
		Name:     name,
		DataType: entity.FieldTypeVarChar,
		TypeParams: map[string]string{
			"max_length": strconv.Itoa(maxLen),
		},
	}
}

// NarrationStylesSchema 叙事风格 Collection Schema
func NarrationStylesSchema(collection string, dim int) *entity.Schema {
	if dim <= 0 {
		dim = DefaultVectorDimension
	}
	pk := varCharField(FieldStyleID, maxStyleIDLen)
	pk.PrimaryKey = true
	pk.AutoID = false

	return &entity.Schema{
		CollectionName: collection,
		Description:    "Narration style metadata with source text embeddings",
		Fields: []*entity.Field{
			pk,
			{
				Name:     FieldVector,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(dim),
				},
			},
			varCharField(FieldStyleName, maxStyleNameLen),
			varCharField(FieldDescription, maxDescriptionLen),
			varCharField(FieldKeywords, maxKeywordsLen),
			varCharField(FieldSnippet, maxSnippetLen),
		},
	}
}

// StyleDocument 叙事风格记录
type StyleDocument struct {
	StyleID           string    `json:"style_id"`
	Vector            []float32 `json:"vector"`
	StyleName         string    `json:"style_name"`
	Description       string    `json:"description"`
	Keywords          []string  `json:"keywords"`
	SourceTextSnippet string    `json:"source_text_snippet"`
}

// outputFields Fetch 返回的标量字段
var outputFields = []string{FieldStyleID, FieldStyleName, FieldDescription, FieldKeywords, FieldSnippet}
