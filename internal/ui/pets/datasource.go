package pets

import "github.com/oakwood-commons/petsview/internal/petclient"

// Pet is one opaque row as returned by the pet service.
type Pet = petclient.Pet

// DataSource holds the rows of one successful fetch. A refresh builds a new
// DataSource rather than mutating the current one.
type DataSource struct {
	data []Pet
}

// NewDataSource copies data so later changes by the caller are not observed.
func NewDataSource(data []Pet) *DataSource {
	cp := make([]Pet, len(data))
	copy(cp, data)
	return &DataSource{data: cp}
}

// Data returns the rows. A nil DataSource has none.
func (d *DataSource) Data() []Pet {
	if d == nil {
		return []Pet{}
	}
	return d.data
}

func (d *DataSource) Len() int {
	if d == nil {
		return 0
	}
	return len(d.data)
}

// At returns row i.
func (d *DataSource) At(i int) (Pet, bool) {
	if d == nil || i < 0 || i >= len(d.data) {
		return nil, false
	}
	return d.data[i], true
}
