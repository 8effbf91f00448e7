package paths

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidORB is returned for a malformed owner,repo,branch triple
var ErrInvalidORB = errors.New("invalid ORB")

// Repo identifies a branch of a GitHub repository
type Repo struct {
	Owner  string
	Name   string
	Branch string
}

func (r Repo) String() string {
	return fmt.Sprintf("%s/%s:%s", r.Owner, r.Name, r.Branch)
}

// ParseORB parses "owner,repo,branch"
func ParseORB(orb string) (Repo, error) {
	parts := strings.Split(orb, ",")
	if len(parts) != 3 {
		return Repo{}, fmt.Errorf("%w: must contain exactly 3 parts: owner,repo,branch", ErrInvalidORB)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	r := Repo{Owner: parts[0], Name: parts[1], Branch: parts[2]}
	if r.Owner == "" || r.Name == "" || r.Branch == "" {
		return Repo{}, fmt.Errorf("%w: owner, repo, and branch cannot be empty", ErrInvalidORB)
	}
	if !validName(r.Owner) {
		return Repo{}, fmt.Errorf("%w: invalid characters in owner name", ErrInvalidORB)
	}
	if !validName(r.Name) {
		return Repo{}, fmt.Errorf("%w: invalid characters in repository name", ErrInvalidORB)
	}
	return r, nil
}

func validName(s string) bool {
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}
	return true
}
