// Package intern provides the shared string-intern table used by both
// the compiler (for string and identifier constants) and the VM (for
// concatenation results): canonicalizing every equal-by-content string
// to a single heap object so that equality is pointer identity.
//
// Rather than have the compiler and VM each keep a private table.Table
// and reach into a shared global, Strings is built once by the entry
// point and passed explicitly to both, so multiple independent VMs
// never accidentally share or fight over interned state.
package intern

import (
	"github.com/mna/ember/lang/table"
	"github.com/mna/ember/lang/value"
)

// Strings is the intern table. Its zero value is ready to use.
type Strings struct {
	t        table.Table
	objects  []*value.String
}

// New returns a ready-to-use intern table.
func New() *Strings { return &Strings{} }

// Intern returns the canonical *value.String for chars, allocating and
// registering a new one only if this content has never been interned
// before.
func (s *Strings) Intern(chars string) *value.String {
	hash := value.FNVHash(chars)
	if found := s.t.FindString(chars, hash); found != nil {
		return found
	}
	str := value.NewString(chars)
	s.t.Set(str, value.Bool(true), false)
	s.objects = append(s.objects, str)
	return str
}

// Objects returns every interned string, in allocation order.
func (s *Strings) Objects() []*value.String { return s.objects }
