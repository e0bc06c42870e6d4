package domain

import "fmt"

// Partition names one of the role-partitioned account collections.
type Partition string

const (
	PartitionAdmins     Partition = "admins"
	PartitionLibrarians Partition = "librarians"
	PartitionUsers      Partition = "users"
)

// Partitions lists every account partition, highest role first.
var Partitions = []Partition{PartitionAdmins, PartitionLibrarians, PartitionUsers}

// ParsePartition validates a partition name supplied by a caller.
func ParsePartition(s string) (Partition, error) {
	switch p := Partition(s); p {
	case PartitionAdmins, PartitionLibrarians, PartitionUsers:
		return p, nil
	}
	return "", fmt.Errorf("unknown account collection %q: %w", s, ErrInvalidTarget)
}

// Role returns the role held by accounts stored in p.
func (p Partition) Role() Role {
	switch p {
	case PartitionAdmins:
		return RoleAdmin
	case PartitionLibrarians:
		return RoleLibrarian
	default:
		return RoleUser
	}
}

// Account is an admin, librarian or user record. Email is not unique at the
// storage level; lookups take the first match. LibraryID is empty for users.
type Account struct {
	AccountID string `json:"id" dynamodbav:"account_id" firestore:"-"`
	Email     string `json:"email" dynamodbav:"email" firestore:"email"`
	LibraryID string `json:"library_id,omitempty" dynamodbav:"library_id,omitempty" firestore:"libraryId,omitempty"`
	IsDeleted bool   `json:"is_deleted" dynamodbav:"is_deleted" firestore:"isDeleted"`
}

// SameLibrary reports whether a and b belong to the same tenant.
func (a *Account) SameLibrary(b *Account) bool {
	return a.LibraryID == b.LibraryID
}
