package services

import (
	"testing"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(nt *models.NodeType) []string {
	out := make([]string, len(nt.Fields))
	for i, f := range nt.Fields {
		out[i] = f.Name
	}
	return out
}

func TestSchemaService_CreateNodeType(t *testing.T) {
	e := newEnv(t)

	nt, err := e.schema.CreateNodeType(e.ctx, &models.NodeType{
		Name: "blog post",
		Fields: []*models.NodeTypeField{
			field("Hero image", models.FieldDocuments),
			field("body", models.FieldMarkdown),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "BlogPost", nt.Name)
	assert.Equal(t, []string{"heroImage", "body"}, fieldNames(nt))
	assert.Equal(t, 1.0, nt.Fields[0].Position)
	assert.Equal(t, 2.0, nt.Fields[1].Position)

	_, err = e.schema.CreateNodeType(e.ctx, &models.NodeType{Name: "BlogPost"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
	_, err = e.schema.CreateNodeType(e.ctx, &models.NodeType{Name: "Node"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = e.schema.CreateNodeType(e.ctx, &models.NodeType{Name: "Broken", Fields: []*models.NodeTypeField{field("x", "blob")}})
	assert.ErrorIs(t, err, common.ErrorValidation)

	d, err := e.schema.descriptor(e.ctx, "BlogPost")
	require.NoError(t, err)
	assert.NotNil(t, d.Field("heroImage"))
}

func TestSchemaService_Fields(t *testing.T) {
	e := newEnv(t)
	e.nodeType(t, "Article", field("title", models.FieldString), field("body", models.FieldText))

	added, err := e.schema.AddField(e.ctx, "Article", field("Lead text", models.FieldText))
	require.NoError(t, err)
	assert.Equal(t, "leadText", added.Name)
	assert.Equal(t, 3.0, added.Position)

	_, err = e.schema.AddField(e.ctx, "Article", field("body", models.FieldText))
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	require.NoError(t, e.schema.MoveField(e.ctx, "Article", "leadText", "title"))
	nt, err := e.schema.registry.GetNodeType(e.ctx, "Article")
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "leadText", "body"}, fieldNames(nt))

	upd := field("body", models.FieldMarkdown)
	upd.Label = "Body copy"
	require.NoError(t, e.schema.UpdateField(e.ctx, "Article", upd))
	assert.ErrorIs(t, e.schema.UpdateField(e.ctx, "Article", field("missing", models.FieldText)), common.ErrUnknownField)

	nt, err = e.schema.registry.GetNodeType(e.ctx, "Article")
	require.NoError(t, err)
	body := nt.Fields[2]
	assert.Equal(t, "Body copy", body.Label)
	assert.Equal(t, models.FieldMarkdown, body.Type)
	assert.Equal(t, 2.0, body.Position)

	require.NoError(t, e.schema.RemoveField(e.ctx, "Article", "leadText"))
	assert.ErrorIs(t, e.schema.RemoveField(e.ctx, "Article", "leadText"), common.ErrUnknownField)
	nt, err = e.schema.registry.GetNodeType(e.ctx, "Article")
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "body"}, fieldNames(nt))
}

func TestSchemaService_UpdateAndDeleteNodeType(t *testing.T) {
	e := newEnv(t)
	e.translation(t, "en")
	e.nodeType(t, "Page")
	e.nodeType(t, "Unused")
	e.node(t, "home", "Page", nil)

	require.NoError(t, e.schema.UpdateNodeType(e.ctx, &models.NodeType{Name: "Page", DisplayName: "Web page", DefaultTTL: 60}))
	nt, err := e.schema.registry.GetNodeType(e.ctx, "Page")
	require.NoError(t, err)
	assert.Equal(t, "Web page", nt.DisplayName)
	assert.Equal(t, 60, nt.DefaultTTL)

	assert.ErrorIs(t, e.schema.DeleteNodeType(e.ctx, "Page"), common.ErrorValidation)
	require.NoError(t, e.schema.DeleteNodeType(e.ctx, "Unused"))
	_, err = e.schema.registry.GetNodeType(e.ctx, "Unused")
	assert.ErrorIs(t, err, common.ErrUnknownNodeType)
}
