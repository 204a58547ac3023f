package schema

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
)

const pageYAML = `
name: Page
displayName: Page
visible: true
reachable: true
fields:
  - name: content
    label: Content
    type: markdown
    position: 1
`

const listYAML = `
nodeTypes:
  - name: Folder
    displayName: Folder
    hidingNodes: true
  - name: Event
    displayName: Event
    fields:
      - name: startsAt
        label: Starts at
        type: datetime
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadStaticRegistry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.yaml", pageYAML)
	writeFile(t, dir, "more.yml", listYAML)
	writeFile(t, dir, "README.md", "ignored")

	reg, err := LoadStaticRegistry(dir, nil)
	require.NoError(t, err)

	types, err := reg.ListNodeTypes(context.Background())
	require.NoError(t, err)
	var names []string
	for _, nt := range types {
		names = append(names, nt.Name)
	}
	assert.Equal(t, []string{"Event", "Folder", "Page"}, names)

	page, err := reg.GetNodeType(context.Background(), "Page")
	require.NoError(t, err)
	require.NotNil(t, GetFieldByName(page, "content"))
	assert.Nil(t, GetFieldByName(page, "missing"))

	page.Fields[0].Label = "mutated"
	again, _ := reg.GetNodeType(context.Background(), "Page")
	assert.Equal(t, "Content", again.Fields[0].Label)

	_, err = reg.GetNodeType(context.Background(), "Nope")
	require.ErrorIs(t, err, common.ErrUnknownNodeType)
}

func TestLoadStaticRegistry_Errors(t *testing.T) {
	_, err := LoadStaticRegistry(filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", pageYAML)
	writeFile(t, dir, "b.yaml", pageYAML)
	_, err = LoadStaticRegistry(dir, nil)
	require.Error(t, err)

	bad := t.TempDir()
	writeFile(t, bad, "bad.yaml", "name: Bad\nfields:\n  - name: title\n    type: string\n")
	_, err = LoadStaticRegistry(bad, nil)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestDecorators(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "decorators.yaml", `
decorators:
  - path: Article.subtitle
    property: label
    value: Strapline
  - path: Article.subtitle
    property: maxLength
    value: 80
  - path: Article.body
    property: universal
    value: false
  - path: Article
    property: displayName
    value: News article
  - path: Article.ghost
    property: label
    value: skipped
  - path: Page.content
    property: label
    value: other type
`)
	ds, err := LoadDecorators(path)
	require.NoError(t, err)
	require.Len(t, ds, 6)

	nt := articleType()
	require.NoError(t, ds.Apply(nt))
	assert.Equal(t, "News article", nt.DisplayName)
	assert.Equal(t, "Strapline", GetFieldByName(nt, "subtitle").Label)
	assert.Equal(t, 80, GetFieldByName(nt, "subtitle").MaxLength)
	assert.False(t, GetFieldByName(nt, "body").Universal)

	none, err := LoadDecorators("")
	require.NoError(t, err)
	assert.Nil(t, none)

	bad := Decorators{{Path: "Article.subtitle", Property: "label", Value: 3}}
	require.ErrorIs(t, bad.Apply(articleType()), common.ErrorValidation)
	unknown := Decorators{{Path: "Article", Property: "weight", Value: 3}}
	require.ErrorIs(t, unknown.Apply(articleType()), common.ErrorValidation)

	assert.Equal(t, []string{"Article.ghost", "Page.content"}, ds.Unmatched([]*models.NodeType{articleType()}))
}

func TestStaticRegistry_AppliesDecorators(t *testing.T) {
	ds := Decorators{{Path: "Article.subtitle", Property: "placeholder", Value: "Say more"}}
	reg, err := NewStaticRegistry([]*models.NodeType{articleType()}, ds)
	require.NoError(t, err)

	d, err := Resolve(context.Background(), reg, "Article")
	require.NoError(t, err)
	assert.Equal(t, "Say more", d.Field("subtitle").Placeholder)
	assert.Equal(t, "Article", d.Name())
}

type fakeStore struct {
	types map[string]*models.NodeType
	err   error
}

func (s *fakeStore) GetByName(_ context.Context, name string) (*models.NodeType, error) {
	if s.err != nil {
		return nil, s.err
	}
	nt, ok := s.types[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return nt, nil
}

func (s *fakeStore) List(_ context.Context) ([]*models.NodeType, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.NodeType
	for _, nt := range s.types {
		out = append(out, nt)
	}
	return out, nil
}

func TestDatabaseRegistry(t *testing.T) {
	store := &fakeStore{types: map[string]*models.NodeType{"Article": articleType()}}
	ds := Decorators{{Path: "Article.subtitle", Property: "label", Value: "Decorated"}}
	reg := NewDatabaseRegistry(store, ds)

	nt, err := reg.GetNodeType(context.Background(), "Article")
	require.NoError(t, err)
	assert.Equal(t, "Decorated", GetFieldByName(nt, "subtitle").Label)
	assert.Equal(t, "Subtitle", GetFieldByName(store.types["Article"], "subtitle").Label)

	_, err = reg.GetNodeType(context.Background(), "Missing")
	require.ErrorIs(t, err, common.ErrUnknownNodeType)

	list, err := reg.ListNodeTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	store.err = assert.AnError
	_, err = reg.GetNodeType(context.Background(), "Article")
	require.ErrorIs(t, err, assert.AnError)
}

func TestChainRegistry(t *testing.T) {
	first, err := NewStaticRegistry([]*models.NodeType{{Name: "Page", DisplayName: "first"}}, nil)
	require.NoError(t, err)
	second, err := NewStaticRegistry([]*models.NodeType{
		{Name: "Page", DisplayName: "second"},
		{Name: "Folder", DisplayName: "Folder"},
	}, nil)
	require.NoError(t, err)

	chain := NewChainRegistry(first, second)

	page, err := chain.GetNodeType(context.Background(), "Page")
	require.NoError(t, err)
	assert.Equal(t, "first", page.DisplayName)

	folder, err := chain.GetNodeType(context.Background(), "Folder")
	require.NoError(t, err)
	assert.Equal(t, "Folder", folder.Name)

	_, err = chain.GetNodeType(context.Background(), "Missing")
	require.ErrorIs(t, err, common.ErrUnknownNodeType)

	list, err := chain.ListNodeTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Folder", list[0].Name)
	assert.Equal(t, "first", list[1].DisplayName)

	failing := NewChainRegistry(NewDatabaseRegistry(&fakeStore{err: assert.AnError}, nil), second)
	_, err = failing.GetNodeType(context.Background(), "Folder")
	require.ErrorIs(t, err, assert.AnError)
}

func TestExportRoundTripAndDiff(t *testing.T) {
	ctx := context.Background()
	src, err := NewStaticRegistry([]*models.NodeType{articleType()}, nil)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "export")
	paths, err := Export(ctx, src, dir)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "Article.yaml", filepath.Base(paths[0]))

	loaded, err := LoadStaticRegistry(dir, nil)
	require.NoError(t, err)

	diffs, err := Diff(ctx, src, loaded)
	require.NoError(t, err)
	assert.Empty(t, diffs)

	changed := articleType()
	changed.Fields = changed.Fields[1:]
	changed.Fields[0].Type = models.FieldNodes
	changed.Fields = append(changed.Fields, &models.NodeTypeField{Name: "extra", Type: models.FieldString})
	other, err := NewStaticRegistry([]*models.NodeType{changed, {Name: "Page"}}, nil)
	require.NoError(t, err)

	diffs, err = Diff(ctx, src, other)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"- Article.subtitle",
		"~ Article.heroImage: documents -> nodes",
		"+ Article.extra",
		"+ Page",
	}, diffs)
}
