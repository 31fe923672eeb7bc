package types

// Collection names a repeatable section of the document.
type Collection string

// Collections of the document, keyed by their JSON names.
const (
	CollectionEducation      Collection = "education"
	CollectionWorkExperience Collection = "workExperience"
	CollectionSkills         Collection = "skills"
	CollectionLanguages      Collection = "languages"
	CollectionProjects       Collection = "projects"
)

// ScalarField names a top-level free-text field of the document.
type ScalarField string

// Scalar fields of the document.
const (
	FieldName      ScalarField = "name"
	FieldSurname   ScalarField = "surname"
	FieldPhone     ScalarField = "phone"
	FieldEmail     ScalarField = "email"
	FieldInterests ScalarField = "interests"
	FieldGitHub    ScalarField = "github"
	FieldLinkedIn  ScalarField = "linkedin"
)

// EntryField names a field of a collection entry. Which names are valid
// depends on the collection; see Collection.Fields.
type EntryField string

// Entry fields across all collections.
const (
	EntrySchool           EntryField = "school"
	EntryDegree           EntryField = "degree"
	EntryDates            EntryField = "dates"
	EntryAdditionalInfo   EntryField = "additionalInfo"
	EntryCompany          EntryField = "company"
	EntryRole             EntryField = "role"
	EntryDescription      EntryField = "description"
	EntryValue            EntryField = "value"
	EntryName             EntryField = "name"
	EntryProficiencyLevel EntryField = "proficiencyLevel"
)

var collectionOrder = []Collection{
	CollectionEducation,
	CollectionWorkExperience,
	CollectionProjects,
	CollectionSkills,
	CollectionLanguages,
}

var scalarOrder = []ScalarField{
	FieldName, FieldSurname, FieldPhone, FieldEmail, FieldGitHub, FieldLinkedIn, FieldInterests,
}

// accessor binds one collection to typed operations on a Document.
type accessor struct {
	fields []EntryField
	label  string
	length func(d *Document) int
	add    func(d *Document)
	remove func(d *Document, i int)
	get    func(d *Document, i int, f EntryField) string
	set    func(d *Document, i int, f EntryField, v string)
}

var accessors = map[Collection]accessor{
	CollectionEducation: {
		fields: []EntryField{EntrySchool, EntryDegree, EntryDates, EntryAdditionalInfo},
		label:  "Education",
		length: func(d *Document) int { return len(d.Education) },
		add:    func(d *Document) { d.Education = append(d.Education, Education{}) },
		remove: func(d *Document, i int) { d.Education = removeAt(d.Education, i) },
		get: func(d *Document, i int, f EntryField) string {
			e := d.Education[i]
			switch f {
			case EntrySchool:
				return e.School
			case EntryDegree:
				return e.Degree
			case EntryDates:
				return e.Dates
			case EntryAdditionalInfo:
				return e.AdditionalInfo
			}
			return ""
		},
		set: func(d *Document, i int, f EntryField, v string) {
			e := &d.Education[i]
			switch f {
			case EntrySchool:
				e.School = v
			case EntryDegree:
				e.Degree = v
			case EntryDates:
				e.Dates = v
			case EntryAdditionalInfo:
				e.AdditionalInfo = v
			}
		},
	},
	CollectionWorkExperience: {
		fields: []EntryField{EntryCompany, EntryRole, EntryDates, EntryDescription},
		label:  "Work Experience",
		length: func(d *Document) int { return len(d.WorkExperience) },
		add:    func(d *Document) { d.WorkExperience = append(d.WorkExperience, WorkExperience{}) },
		remove: func(d *Document, i int) { d.WorkExperience = removeAt(d.WorkExperience, i) },
		get: func(d *Document, i int, f EntryField) string {
			w := d.WorkExperience[i]
			switch f {
			case EntryCompany:
				return w.Company
			case EntryRole:
				return w.Role
			case EntryDates:
				return w.Dates
			case EntryDescription:
				return w.Description
			}
			return ""
		},
		set: func(d *Document, i int, f EntryField, v string) {
			w := &d.WorkExperience[i]
			switch f {
			case EntryCompany:
				w.Company = v
			case EntryRole:
				w.Role = v
			case EntryDates:
				w.Dates = v
			case EntryDescription:
				w.Description = v
			}
		},
	},
	CollectionSkills: {
		fields: []EntryField{EntryValue},
		label:  "Skill",
		length: func(d *Document) int { return len(d.Skills) },
		add:    func(d *Document) { d.Skills = append(d.Skills, Skill{}) },
		remove: func(d *Document, i int) { d.Skills = removeAt(d.Skills, i) },
		get: func(d *Document, i int, f EntryField) string {
			if f == EntryValue {
				return d.Skills[i].Value
			}
			return ""
		},
		set: func(d *Document, i int, f EntryField, v string) {
			if f == EntryValue {
				d.Skills[i].Value = v
			}
		},
	},
	CollectionLanguages: {
		fields: []EntryField{EntryName, EntryProficiencyLevel},
		label:  "Language",
		length: func(d *Document) int { return len(d.Languages) },
		add:    func(d *Document) { d.Languages = append(d.Languages, Language{}) },
		remove: func(d *Document, i int) { d.Languages = removeAt(d.Languages, i) },
		get: func(d *Document, i int, f EntryField) string {
			l := d.Languages[i]
			switch f {
			case EntryName:
				return l.Name
			case EntryProficiencyLevel:
				return l.ProficiencyLevel
			}
			return ""
		},
		set: func(d *Document, i int, f EntryField, v string) {
			l := &d.Languages[i]
			switch f {
			case EntryName:
				l.Name = v
			case EntryProficiencyLevel:
				l.ProficiencyLevel = v
			}
		},
	},
	CollectionProjects: {
		fields: []EntryField{EntryName, EntryDescription},
		label:  "Project",
		length: func(d *Document) int { return len(d.Projects) },
		add:    func(d *Document) { d.Projects = append(d.Projects, Project{}) },
		remove: func(d *Document, i int) { d.Projects = removeAt(d.Projects, i) },
		get: func(d *Document, i int, f EntryField) string {
			p := d.Projects[i]
			switch f {
			case EntryName:
				return p.Name
			case EntryDescription:
				return p.Description
			}
			return ""
		},
		set: func(d *Document, i int, f EntryField, v string) {
			p := &d.Projects[i]
			switch f {
			case EntryName:
				p.Name = v
			case EntryDescription:
				p.Description = v
			}
		},
	},
}

// removeAt returns a new slice without element i. The input is not modified.
func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// Collections returns every collection in document layout order.
func Collections() []Collection {
	return append([]Collection(nil), collectionOrder...)
}

// ScalarFields returns every scalar field in form order.
func ScalarFields() []ScalarField {
	return append([]ScalarField(nil), scalarOrder...)
}

// ParseCollection maps a wire name to a Collection.
func ParseCollection(name string) (Collection, error) {
	c := Collection(name)
	if _, ok := accessors[c]; !ok {
		return "", &UnknownCollectionError{Name: name}
	}
	return c, nil
}

// ParseScalarField maps a wire name to a ScalarField.
func ParseScalarField(name string) (ScalarField, error) {
	for _, f := range scalarOrder {
		if string(f) == name {
			return f, nil
		}
	}
	return "", &UnknownFieldError{Field: name}
}

// Fields returns the entry fields of the collection in form order.
func (c Collection) Fields() []EntryField {
	return append([]EntryField(nil), accessors[c].fields...)
}

// Label is the singular human-readable name used on form buttons.
func (c Collection) Label() string {
	return accessors[c].label
}

// ParseField maps a wire name to one of the collection's entry fields.
func (c Collection) ParseField(name string) (EntryField, error) {
	for _, f := range accessors[c].fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", &UnknownFieldError{Collection: string(c), Field: name}
}

// Valid reports whether c is one of the document's collections.
func (c Collection) Valid() bool {
	_, ok := accessors[c]
	return ok
}

// HasField reports whether f is an entry field of c.
func (c Collection) HasField(f EntryField) bool {
	for _, known := range accessors[c].fields {
		if known == f {
			return true
		}
	}
	return false
}

// Len returns the number of entries in the collection, 0 for an unknown one.
func (d *Document) Len(c Collection) int {
	if !c.Valid() {
		return 0
	}
	return accessors[c].length(d)
}

// AppendEntry adds an entry with every field empty to the end of the
// collection. Unknown collections are ignored.
func (d *Document) AppendEntry(c Collection) {
	if c.Valid() {
		accessors[c].add(d)
	}
}

// RemoveEntry deletes entry i. The caller checks bounds.
func (d *Document) RemoveEntry(c Collection, i int) {
	if c.Valid() {
		accessors[c].remove(d, i)
	}
}

// EntryValue reads one field of entry i. The caller checks bounds.
func (d *Document) EntryValue(c Collection, i int, f EntryField) string {
	if !c.Valid() {
		return ""
	}
	return accessors[c].get(d, i, f)
}

// SetEntryValue replaces one field of entry i. The caller checks bounds.
func (d *Document) SetEntryValue(c Collection, i int, f EntryField, v string) {
	if c.Valid() {
		accessors[c].set(d, i, f, v)
	}
}

// Scalar reads a top-level field.
func (d *Document) Scalar(f ScalarField) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldSurname:
		return d.Surname
	case FieldPhone:
		return d.Phone
	case FieldEmail:
		return d.Email
	case FieldInterests:
		return d.Interests
	case FieldGitHub:
		return d.GitHub
	case FieldLinkedIn:
		return d.LinkedIn
	}
	return ""
}

// SetScalar replaces a top-level field.
func (d *Document) SetScalar(f ScalarField, v string) {
	switch f {
	case FieldName:
		d.Name = v
	case FieldSurname:
		d.Surname = v
	case FieldPhone:
		d.Phone = v
	case FieldEmail:
		d.Email = v
	case FieldInterests:
		d.Interests = v
	case FieldGitHub:
		d.GitHub = v
	case FieldLinkedIn:
		d.LinkedIn = v
	}
}
