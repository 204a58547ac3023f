package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

func TestNormalizeNames(t *testing.T) {
	assert.Equal(t, "BlogPost", NormalizeTypeName("blog post"))
	assert.Equal(t, "heroImage", NormalizeFieldName("Hero image"))
	assert.Equal(t, "heroImage", NormalizeFieldName("heroImage"))
}

func TestValidateFieldName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"ok", "heroImage", false},
		{"empty", "", true},
		{"reserved column", "metaTitle", true},
		{"reserved keyword any case", "Select", true},
		{"not identifier", "hero-image", true},
		{"leading digit", "1hero", true},
		{"max length", strings.Repeat("a", common.FieldNameMaxLength), false},
		{"too long", strings.Repeat("a", common.FieldNameMaxLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFieldName(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrorValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateTypeName(t *testing.T) {
	require.NoError(t, ValidateTypeName("Article"))
	require.ErrorIs(t, ValidateTypeName("Node"), common.ErrorValidation)
	require.ErrorIs(t, ValidateTypeName(strings.Repeat("A", common.NodeTypeNameMaxLength+1)), common.ErrorValidation)
}

func TestValidateNodeType(t *testing.T) {
	nt := articleType()
	require.NoError(t, ValidateNodeType(nt))

	dup := articleType()
	dup.Fields = append(dup.Fields, &models.NodeTypeField{Name: "HeroImage", Type: models.FieldString})
	require.ErrorIs(t, ValidateNodeType(dup), common.ErrAlreadyExists)

	badType := articleType()
	badType.Fields[0].Type = "blob"
	require.ErrorIs(t, ValidateNodeType(badType), common.ErrorValidation)

	badBounds := articleType()
	badBounds.Fields[0].MinLength = 10
	badBounds.Fields[0].MaxLength = 5
	require.ErrorIs(t, ValidateNodeType(badBounds), common.ErrorValidation)
}

func articleType() *models.NodeType {
	return &models.NodeType{
		Name:        "Article",
		DisplayName: "Article",
		Visible:     true,
		Reachable:   true,
		Fields: []*models.NodeTypeField{
			{Name: "subtitle", Label: "Subtitle", Type: models.FieldString, Position: 2, MaxLength: 20, Versioned: true},
			{Name: "heroImage", Label: "Hero image", Type: models.FieldDocuments, Position: 1},
			{Name: "rating", Label: "Rating", Type: models.FieldInteger, Position: 3, Indexed: true},
			{Name: "kind", Label: "Kind", Type: models.FieldEnum, Position: 4, DefaultValues: []string{"news", "story"}, Required: true},
			{Name: "body", Label: "Body", Type: models.FieldMarkdown, Position: 5, ExcludeFromSearch: true, Universal: true},
		},
	}
}
