package domain

import (
	"strings"
	"unicode"
)

// MaxAccountLen is the longest account identity the vault accepts.
const MaxAccountLen = 64

// reservedAccounts name the vault itself and its operators. No user holds them.
var reservedAccounts = []string{"vault", "admin", "root", "system"}

// ValidAccount returns ErrInvalidAccount unless account can hold a vault balance.
//
// An account identity is non-empty, at most MaxAccountLen bytes, made of
// letters and digits only and not one of the reserved names in any case.
func ValidAccount(account string) error {
	if account == "" || len(account) > MaxAccountLen {
		return ErrInvalidAccount
	}

	for _, r := range account {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrInvalidAccount
		}
	}

	for _, name := range reservedAccounts {
		if strings.EqualFold(account, name) {
			return ErrInvalidAccount
		}
	}

	return nil
}
