package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccessList names the principals allowed to decrypt keys under its
// namespace. Membership is a set; insertion order is preserved only for
// observability.
type AccessList struct {
	ID          string
	Name        string
	Members     []string
	Attachments map[string]struct{} // opaque byte-string key -> marker
	CreatedAt   time.Time
}

// AdminCapability is bound to exactly one access list at creation and never
// re-bound. Possession is the sole authorization to mutate that list; if the
// capability is lost the list is permanently immutable.
type AdminCapability struct {
	ID           string
	AccessListID string
	CreatedAt    time.Time
}

// Controls reports whether the capability is the admin handle for list.
func (c AdminCapability) Controls(list *AccessList) bool {
	return list != nil && c.AccessListID != "" && c.AccessListID == list.ID
}

// Namespace derives the stable byte prefix every request identifier scoped to
// this list must start with: the raw 16 bytes of the list's UUID.
func (l *AccessList) Namespace() ([]byte, error) {
	id, err := uuid.Parse(l.ID)
	if err != nil {
		return nil, err
	}
	raw := [16]byte(id)
	return raw[:], nil
}

func (l *AccessList) HasMember(principal string) bool {
	for _, m := range l.Members {
		if m == principal {
			return true
		}
	}
	return false
}

// AddMember appends a principal. Duplicates fail; the caller has already
// proven capability ownership.
func (l *AccessList) AddMember(principal string) error {
	if l.HasMember(principal) {
		return ErrDuplicateMember
	}
	l.Members = append(l.Members, principal)
	return nil
}

// RemoveMember deletes a principal. Removing an absent principal is a no-op.
func (l *AccessList) RemoveMember(principal string) {
	for i, m := range l.Members {
		if m == principal {
			l.Members = append(l.Members[:i], l.Members[i+1:]...)
			return
		}
	}
}

// Attach records an opaque marker key on the list.
func (l *AccessList) Attach(key []byte) {
	if l.Attachments == nil {
		l.Attachments = make(map[string]struct{})
	}
	l.Attachments[string(key)] = struct{}{}
}
