package common

// Storage limits shared by validation and the SQL schema.
const (
	// NodeTypeNameMaxLength caps type names and discriminators (indexed columns).
	NodeTypeNameMaxLength = 30
	// FieldNameMaxLength caps field names, also used as side-table keys.
	FieldNameMaxLength = 50
	// NodeNameMaxLength caps node slugs and url aliases.
	NodeNameMaxLength = 255
	// AttributeCodeMaxLength caps attribute codes.
	AttributeCodeMaxLength = 255
)
