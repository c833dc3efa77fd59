package workflow

import (
	"fmt"
	"strings"
)

// AccountType is the role a user holds in the business.
type AccountType string

const (
	SuperAdmin AccountType = "SuperAdmin"
	Admin      AccountType = "Admin"
	Graphics   AccountType = "Graphics"
	Cutout     AccountType = "Cutout"
	Accounts   AccountType = "Accounts"
	Display    AccountType = "Display"
)

var accountTypes = []AccountType{SuperAdmin, Admin, Graphics, Cutout, Accounts, Display}

// AllAccountTypes returns every account type.
func AllAccountTypes() []AccountType {
	out := make([]AccountType, len(accountTypes))
	copy(out, accountTypes)
	return out
}

// ParseAccountType matches raw case-insensitively against the known account types.
func ParseAccountType(raw string) (AccountType, error) {
	for _, t := range accountTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(raw)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown account type %q", raw)
}

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	for _, known := range accountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsAdmin reports whether t has supervisory rights over every stage.
func (t AccountType) IsAdmin() bool {
	return t == SuperAdmin || t == Admin
}

// ownerMatches reports whether a user of type t satisfies a stage owned by owner.
// SuperAdmin stands in for Admin.
func ownerMatches(owner, t AccountType) bool {
	if owner == t {
		return true
	}
	return owner == Admin && t == SuperAdmin
}
