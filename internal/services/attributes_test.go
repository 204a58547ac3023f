package services

import (
	"testing"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeService_CreateAttribute(t *testing.T) {
	e := newEnv(t)
	en := e.basic(t)

	group, err := e.attributes.CreateGroup(e.ctx, "Dimensions")
	require.NoError(t, err)
	require.NoError(t, e.attributes.SetGroupName(e.ctx, group.ID, en.ID, "Dimensions"))

	a, err := e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "Shoe Size", Type: models.AttributeInteger, GroupID: &group.ID})
	require.NoError(t, err)
	assert.Equal(t, "shoe-size", a.Code)

	_, err = e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "shoe size", Type: models.AttributeString})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
	_, err = e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "x", Type: "money"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "y", Type: models.AttributeString, GroupID: models.UUIDPtr(uuid.New())})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	got, err := e.attributes.GetAttribute(e.ctx, "Shoe Size")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestAttributeService_Values(t *testing.T) {
	e := newEnv(t)
	en := e.basic(t)
	fr := e.translation(t, "fr")
	n := e.node(t, "shoe", "Page", nil)

	colour, err := e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "colour", Type: models.AttributeEnum})
	require.NoError(t, err)
	require.NoError(t, e.attributes.SetAttributeTranslation(e.ctx, colour.ID, en.ID, "Colour", []string{"red", "blue"}))
	require.NoError(t, e.attributes.SetAttributeTranslation(e.ctx, colour.ID, fr.ID, "Couleur", []string{"rouge", "bleu"}))

	weight, err := e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "weight", Type: models.AttributeDecimal, Universal: true})
	require.NoError(t, err)
	assert.ErrorIs(t, e.attributes.SetAttributeTranslation(e.ctx, weight.ID, en.ID, "Weight", []string{"1"}), common.ErrorValidation)

	cv, err := e.attributes.AddValue(e.ctx, n.ID, colour.ID, nil)
	require.NoError(t, err)
	wv, err := e.attributes.AddValue(e.ctx, n.ID, weight.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cv.Position)
	assert.Equal(t, 2.0, wv.Position)

	red := "red"
	rouge := "rouge"
	require.NoError(t, e.attributes.SetValue(e.ctx, cv.ID, en.ID, &red))
	require.NoError(t, e.attributes.SetValue(e.ctx, cv.ID, fr.ID, &rouge))
	assert.ErrorIs(t, e.attributes.SetValue(e.ctx, cv.ID, fr.ID, &red), common.ErrorValidation)

	got, err := e.attributes.GetValue(e.ctx, cv.ID, fr.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "rouge", *got)

	// universal values are written and read on the default translation
	kilos := "1.50"
	require.NoError(t, e.attributes.SetValue(e.ctx, wv.ID, fr.ID, &kilos))
	for _, tr := range []*models.Translation{en, fr} {
		got, err := e.attributes.GetValue(e.ctx, wv.ID, tr.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "1.5", *got)
	}

	require.NoError(t, e.attributes.SetValue(e.ctx, cv.ID, en.ID, nil))
	got, err = e.attributes.GetValue(e.ctx, cv.ID, en.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, e.attributes.MoveValue(e.ctx, wv.ID, nil))
	values, err := e.attributes.ListValues(e.ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, wv.ID, values[0].ID)

	require.NoError(t, e.attributes.RemoveValue(e.ctx, wv.ID))
	values, err = e.attributes.ListValues(e.ctx, n.ID)
	require.NoError(t, err)
	assert.Len(t, values, 1)
}

func TestAttributeService_AddValue_Rules(t *testing.T) {
	e := newEnv(t)
	e.translation(t, "en")
	_, err := e.schema.CreateNodeType(e.ctx, &models.NodeType{Name: "Plain"})
	require.NoError(t, err)
	e.nodeType(t, "Page")
	plain := e.node(t, "plain", "Plain", nil)
	page := e.node(t, "page", "Page", nil)

	realm, err := e.realms.CreateRealm(e.ctx, RealmInput{Name: "staff", Type: models.RealmRole, Role: "ROLE_STAFF"})
	require.NoError(t, err)
	a, err := e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "secret", Type: models.AttributeString, DefaultRealmID: &realm.ID})
	require.NoError(t, err)

	_, err = e.attributes.AddValue(e.ctx, plain.ID, a.ID, nil)
	assert.ErrorIs(t, err, common.ErrorValidation)

	v, err := e.attributes.AddValue(e.ctx, page.ID, a.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, v.RealmID)
	assert.Equal(t, realm.ID, *v.RealmID)
}

func TestAttributeService_ListValues_ByWeight(t *testing.T) {
	e := newEnv(t)
	e.translation(t, "en")
	_, err := e.schema.CreateNodeType(e.ctx, &models.NodeType{Name: "Product", Attributable: true, SortingAttributesByWeight: true})
	require.NoError(t, err)
	n := e.node(t, "p", "Product", nil)

	light, err := e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "light", Type: models.AttributeString, Weight: 1})
	require.NoError(t, err)
	heavy, err := e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "heavy", Type: models.AttributeString, Weight: 10})
	require.NoError(t, err)
	_, err = e.attributes.AddValue(e.ctx, n.ID, light.ID, nil)
	require.NoError(t, err)
	_, err = e.attributes.AddValue(e.ctx, n.ID, heavy.ID, nil)
	require.NoError(t, err)

	values, err := e.attributes.ListValues(e.ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, heavy.ID, values[0].AttributeID)
	assert.Equal(t, light.ID, values[1].AttributeID)
}

func TestAttributeService_Documents(t *testing.T) {
	e := newEnv(t)
	e.basic(t)
	manual, err := e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "manual", Type: models.AttributeDocuments})
	require.NoError(t, err)
	text, err := e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "note", Type: models.AttributeString})
	require.NoError(t, err)
	doc, err := e.sources.CreateDocument(e.ctx, "manual.pdf", "application/pdf")
	require.NoError(t, err)

	require.NoError(t, e.attributes.AttachAttributeDocument(e.ctx, manual.ID, doc.ID))
	assert.ErrorIs(t, e.attributes.AttachAttributeDocument(e.ctx, text.ID, doc.ID), common.ErrorValidation)

	docs, err := e.attributes.ListAttributeDocuments(e.ctx, manual.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "manual.pdf", docs[0].Filename)
}

func TestAttributeService_MoveValue_RebalancesWhenExhausted(t *testing.T) {
	e := newEnv(t)
	e.basic(t)
	n := e.node(t, "shoe", "Page", nil)
	size, err := e.attributes.CreateAttribute(e.ctx, AttributeInput{Code: "size", Type: models.AttributeString})
	require.NoError(t, err)

	first, err := e.attributes.AddValue(e.ctx, n.ID, size.ID, nil)
	require.NoError(t, err)
	last, err := e.attributes.AddValue(e.ctx, n.ID, size.ID, nil)
	require.NoError(t, err)

	const moves = 80
	for i := 0; i < moves; i++ {
		v, err := e.attributes.AddValue(e.ctx, n.ID, size.ID, nil)
		require.NoError(t, err)
		if err := e.attributes.MoveValue(e.ctx, v.ID, &first.ID); err != nil {
			t.Fatalf("move value %d: %v", i, err)
		}
	}

	values, err := e.attributes.ListValues(e.ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, values, moves+2)
	assert.Equal(t, first.ID, values[0].ID)
	assert.Equal(t, last.ID, values[len(values)-1].ID)
	for i := 1; i < len(values); i++ {
		if values[i-1].Position >= values[i].Position {
			t.Fatalf("value positions not strictly increasing at %d: %v >= %v", i, values[i-1].Position, values[i].Position)
		}
	}
}
