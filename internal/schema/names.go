package schema

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/models"
	"github.com/dmitrijs2005/nodestore/internal/textx"
)

// Field names that collide with core source columns or SQL keywords.
var reservedFieldNames = toSet(
	// core source and node properties
	"id", "node", "nodeId", "translation", "translationId", "publishedAt",
	"metaTitle", "metaDescription", "noIndex", "discriminator", "fields", "createdAt",
	"updatedAt", "parent", "position", "status", "urlAliases", "identifier",
	"nodeName", "nodeType", "nodeTypeName", "tags", "attributeValues", "realm",
	// SQL keywords
	"all", "alter", "and", "as", "by", "case", "create", "default", "delete",
	"distinct", "drop", "else", "end", "false", "from", "group", "having", "in",
	"index", "insert", "is", "join", "key", "like", "limit", "not", "null",
	"offset", "or", "order", "primary", "references", "select", "table", "then",
	"true", "union", "update", "user", "when", "where",
)

// Type names that collide with core entities.
var reservedTypeNames = toSet(
	"Node", "Nodes", "NodesSources", "NodeType", "NodeTypeField", "Translation",
	"Tag", "Document", "CustomForm", "Attribute", "AttributeValue", "Realm",
	"RealmNode", "User", "Group", "Role", "UrlAlias",
)

func toSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[strings.ToLower(n)] = struct{}{}
	}
	return s
}

// NormalizeTypeName turns free text into a type name: "blog post" → "BlogPost".
func NormalizeTypeName(name string) string {
	return textx.Classify(name)
}

// NormalizeFieldName turns free text into a field name: "Hero image" → "heroImage".
func NormalizeFieldName(name string) string {
	return textx.Variablize(name)
}

// ValidateTypeName checks an already normalized type name.
func ValidateTypeName(name string) error {
	return validateName("node type name", name, common.NodeTypeNameMaxLength, reservedTypeNames)
}

// ValidateFieldName checks an already normalized field name.
func ValidateFieldName(name string) error {
	return validateName("field name", name, common.FieldNameMaxLength, reservedFieldNames)
}

func validateName(what, name string, max int, reserved map[string]struct{}) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: %s is empty", common.ErrorValidation, what)
	case utf8.RuneCountInString(name) > max:
		return fmt.Errorf("%w: %s %q is longer than %d characters", common.ErrorValidation, what, name, max)
	case !textx.IsIdentifier(name):
		return fmt.Errorf("%w: %s %q is not a latin identifier", common.ErrorValidation, what, name)
	}
	if _, ok := reserved[strings.ToLower(name)]; ok {
		return fmt.Errorf("%w: %s %q is reserved", common.ErrorValidation, what, name)
	}
	return nil
}

// ValidateNodeType checks a whole definition: its name, every field name and
// type, and field name uniqueness.
func ValidateNodeType(nt *models.NodeType) error {
	if err := ValidateTypeName(nt.Name); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(nt.Fields))
	for _, f := range nt.Fields {
		if err := ValidateField(f); err != nil {
			return fmt.Errorf("%s: %w", nt.Name, err)
		}
		key := strings.ToLower(f.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s.%s is declared twice", common.ErrAlreadyExists, nt.Name, f.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ValidateField checks one field definition.
func ValidateField(f *models.NodeTypeField) error {
	if err := ValidateFieldName(f.Name); err != nil {
		return err
	}
	if !f.Type.Valid() {
		return fmt.Errorf("%w: field %q has unknown type %q", common.ErrorValidation, f.Name, f.Type)
	}
	if f.MinLength < 0 || f.MaxLength < 0 || (f.MaxLength > 0 && f.MinLength > f.MaxLength) {
		return fmt.Errorf("%w: field %q has invalid length bounds", common.ErrorValidation, f.Name)
	}
	return nil
}
