// Package extract turns a loaded profile page into a structured, best-effort record.
package extract

// Field names a single extracted profile attribute.
type Field string

// Profile fields produced by the default probes.
const (
	FieldFullName   Field = "full_name"
	FieldHeadline   Field = "headline"
	FieldAbout      Field = "about"
	FieldExperience Field = "experience"
)

// AllFields lists every record field in extraction order.
var AllFields = []Field{FieldFullName, FieldHeadline, FieldAbout, FieldExperience}

// UnknownName is the absent marker for FullName. The other fields use the empty string.
const UnknownName = "Unknown"

// AbsentValue returns the explicit absent marker for a field.
func AbsentValue(f Field) string {
	if f == FieldFullName {
		return UnknownName
	}
	return ""
}

// Record is the structured result of scraping one profile page.
// Fields that could not be extracted hold their AbsentValue and are listed in Missing.
type Record struct {
	Identifier string  `json:"identifier"`
	FullName   string  `json:"full_name"`
	Headline   string  `json:"headline"`
	About      string  `json:"about"`
	Experience string  `json:"experience"`
	Missing    []Field `json:"missing,omitempty"`
}

// NewRecord returns a record for identifier with every field absent.
func NewRecord(identifier string) Record {
	r := Record{Identifier: identifier}
	for _, f := range AllFields {
		r.set(f, AbsentValue(f))
	}
	r.Missing = append([]Field(nil), AllFields...)
	return r
}

// LowConfidence reports whether the name could not be extracted. Such records are
// still persisted; the caller decides whether to capture diagnostics.
func (r Record) LowConfidence() bool {
	return r.FullName == "" || r.FullName == UnknownName
}

// Get returns the value stored for f.
func (r Record) Get(f Field) string {
	switch f {
	case FieldFullName:
		return r.FullName
	case FieldHeadline:
		return r.Headline
	case FieldAbout:
		return r.About
	case FieldExperience:
		return r.Experience
	}
	return ""
}

func (r *Record) set(f Field, v string) {
	switch f {
	case FieldFullName:
		r.FullName = v
	case FieldHeadline:
		r.Headline = v
	case FieldAbout:
		r.About = v
	case FieldExperience:
		r.Experience = v
	}
}

// fill stores a found value and removes f from Missing.
func (r *Record) fill(f Field, v string) {
	r.set(f, v)
	kept := r.Missing[:0]
	for _, m := range r.Missing {
		if m != f {
			kept = append(kept, m)
		}
	}
	r.Missing = kept
}
