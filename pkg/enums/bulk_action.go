package enums

import "fmt"

// BulkAction enumerates the operations applied to a batch of users.
type BulkAction string

const (
	BulkActionActivate   BulkAction = "activate"
	BulkActionDeactivate BulkAction = "deactivate"
	BulkActionDelete     BulkAction = "delete"
)

var validBulkActions = []BulkAction{
	BulkActionActivate,
	BulkActionDeactivate,
	BulkActionDelete,
}

// String implements fmt.Stringer.
func (a BulkAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known BulkAction.
func (a BulkAction) IsValid() bool {
	for _, candidate := range validBulkActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseBulkAction converts raw input into a BulkAction.
func ParseBulkAction(value string) (BulkAction, error) {
	for _, candidate := range validBulkActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bulk action %q", value)
}
