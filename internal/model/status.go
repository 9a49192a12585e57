package model

// Status is the soft-delete flag shared by every backend record.
type Status string

const (
	StatusActive   Status = "ATIVO"
	StatusInactive Status = "INATIVO"
)

// Inactive reports whether the record has been soft-deleted.
func (s Status) Inactive() bool {
	return s == StatusInactive
}
