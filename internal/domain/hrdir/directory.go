// Package hrdir loads HR records and resolves sales-system names to them.
package hrdir

import (
	"fmt"
	"strings"

	"github.com/okian/salesdash/internal/domain/model"
)

// Directory resolves employee names from the sales export to HR profiles.
// It is immutable once built.
type Directory struct {
	byName  map[string]model.HRProfile
	aliases map[string]string
	size    int
}

// New indexes profiles by upper-cased full name. aliases maps sales names to
// HR full names. The first profile wins on duplicate names.
func New(profiles []model.HRProfile, aliases map[string]string) *Directory {
	d := &Directory{
		byName:  make(map[string]model.HRProfile, len(profiles)),
		aliases: make(map[string]string, len(aliases)),
	}
	for _, p := range profiles {
		key := normalize(p.FullName)
		if key == "" {
			continue
		}
		if _, dup := d.byName[key]; !dup {
			d.byName[key] = p
		}
	}
	for sales, hr := range aliases {
		if k := normalize(sales); k != "" {
			d.aliases[k] = normalize(hr)
		}
	}
	d.size = len(d.byName)
	return d
}

// Lookup tries an exact case-insensitive match on full name, then the alias
// table. A miss returns ErrMissingHRMatch.
func (d *Directory) Lookup(salesName string) (model.HRProfile, error) {
	if d == nil {
		return model.HRProfile{}, fmt.Errorf("%q: %w", salesName, model.ErrMissingHRMatch)
	}
	key := normalize(salesName)
	if p, ok := d.byName[key]; ok {
		return p, nil
	}
	if hr, ok := d.aliases[key]; ok {
		if p, ok := d.byName[hr]; ok {
			return p, nil
		}
	}
	return model.HRProfile{}, fmt.Errorf("%q: %w", salesName, model.ErrMissingHRMatch)
}

// Len returns the number of indexed profiles.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return d.size
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
