package milvus

import (
	"context"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"story-weaver-api/internal/config"
)

func TestIDExpr_EscapesQuotes(t *testing.T) {
	assert.Equal(t, `style_id == "GEET"`, idExpr("GEET"))
	assert.Equal(t, `style_id == "a\"b\\c"`, idExpr(`a"b\c`))
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "narration_styles", collectionName("", CollectionNarrationStyles))
	assert.Equal(t, "dev_narration_styles", collectionName("dev", CollectionNarrationStyles))
}

func TestNarrationStylesSchema(t *testing.T) {
	s := NarrationStylesSchema("narration_styles", 0)
	require.Len(t, s.Fields, 6)
	assert.True(t, s.Fields[0].PrimaryKey)
	assert.Equal(t, FieldStyleID, s.Fields[0].Name)
	assert.Equal(t, "1536", s.Fields[1].TypeParams["dim"])

	s = NarrationStylesSchema("narration_styles", 8)
	assert.Equal(t, "8", s.Fields[1].TypeParams["dim"])
}

func TestMetadataFromResult(t *testing.T) {
	rs := client.ResultSet{
		entity.NewColumnVarChar(FieldStyleID, []string{"GEET"}),
		entity.NewColumnVarChar(FieldStyleName, []string{"Geet"}),
		entity.NewColumnVarChar(FieldDescription, []string{"Bubbly first person"}),
		entity.NewColumnVarChar(FieldKeywords, []string{`["bubbly","dramatic"]`}),
		entity.NewColumnVarChar(FieldSnippet, []string{"Main apni favourite hoon!"}),
	}

	meta, err := metadataFromResult(rs)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Geet", meta.StyleName)
	assert.Equal(t, "Bubbly first person", meta.Description)
	assert.Equal(t, []string{"bubbly", "dramatic"}, meta.Keywords)
	assert.Equal(t, "Main apni favourite hoon!", meta.SourceTextSnippet)
}

func TestMetadataFromResult_Empty(t *testing.T) {
	meta, err := metadataFromResult(client.ResultSet{
		entity.NewColumnVarChar(FieldStyleID, []string{}),
	})
	require.NoError(t, err)
	assert.Nil(t, meta)

	meta, err = metadataFromResult(nil)
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestMetadataFromResult_BadKeywords(t *testing.T) {
	_, err := metadataFromResult(client.ResultSet{
		entity.NewColumnVarChar(FieldStyleID, []string{"X"}),
		entity.NewColumnVarChar(FieldKeywords, []string{"not json"}),
	})
	assert.Error(t, err)
}

func TestStyleColumns(t *testing.T) {
	docs := []*StyleDocument{
		{StyleID: "A", Vector: []float32{1, 0}, StyleName: "a", Keywords: []string{"k"}},
		{StyleID: "B", Vector: []float32{0, 1}, StyleName: "b"},
	}
	cols, err := styleColumns(docs, 2)
	require.NoError(t, err)
	require.Len(t, cols, 6)
	assert.Equal(t, 2, cols[0].Len())

	kw, ok := cols[4].(*entity.ColumnVarChar)
	require.True(t, ok)
	assert.Equal(t, []string{`["k"]`, "null"}, kw.Data())

	_, err = styleColumns([]*StyleDocument{{StyleID: "A", Vector: []float32{1}}}, 2)
	assert.Error(t, err)

	_, err = styleColumns([]*StyleDocument{{Vector: []float32{1, 2}}}, 2)
	assert.Error(t, err)
}

func TestIndexParams_Defaults(t *testing.T) {
	cfg := &config.MilvusConfig{}
	assert.Equal(t, entity.COSINE, metricType(cfg))
	assert.Equal(t, 16, hnswM(cfg))
	assert.Equal(t, 200, hnswEf(cfg))

	cfg = &config.MilvusConfig{MetricType: "ip", HNSWM: 32, HNSWEfConstruction: 64}
	assert.Equal(t, entity.IP, metricType(cfg))
	assert.Equal(t, 32, hnswM(cfg))
	assert.Equal(t, 64, hnswEf(cfg))
}

func TestStyleRepository_NotConfigured(t *testing.T) {
	var repo *StyleRepository
	_, err := repo.Fetch(context.Background(), "GEET")
	assert.Error(t, err)
}
