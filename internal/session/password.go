package session

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordScheme controls how account passwords are stored and compared.
type PasswordScheme interface {
	Encode(password string) (string, error)
	Matches(stored, supplied string) bool
}

// Scheme names accepted by SchemeByName.
const (
	SchemePlain  = "plain"
	SchemeBcrypt = "bcrypt"
)

// PlainText stores and compares passwords verbatim. It is the default so that
// persisted accounts stay readable by existing clients; it offers no protection.
type PlainText struct{}

func (PlainText) Encode(password string) (string, error) {
	return password, nil
}

func (PlainText) Matches(stored, supplied string) bool {
	return stored == supplied
}

// Bcrypt stores salted bcrypt hashes.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Encode(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (Bcrypt) Matches(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// SchemeByName resolves a configured scheme name.
func SchemeByName(name string) (PasswordScheme, error) {
	switch name {
	case SchemePlain, "":
		return PlainText{}, nil
	case SchemeBcrypt:
		return Bcrypt{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", name)
	}
}
