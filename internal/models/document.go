package models

import "github.com/google/uuid"

// Document is a reference to a stored file. Storage and processing live in
// an external collaborator; the store only keeps what relations need.
type Document struct {
	ID       uuid.UUID
	Filename string
	MimeType string
	Timestamps
}

// CustomForm is a reference to a form managed outside the store.
type CustomForm struct {
	ID          uuid.UUID
	Name        string
	DisplayName string
	Timestamps
}
