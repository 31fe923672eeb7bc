// Package types provides type definitions for the résumé document edited by the CV builder.
package types

// Education is one entry of the education section.
type Education struct {
	School         string `json:"school"`
	Degree         string `json:"degree"`
	Dates          string `json:"dates"`
	AdditionalInfo string `json:"additionalInfo"`
}

// WorkExperience is one entry of the work experience section.
type WorkExperience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Dates       string `json:"dates"`
	Description string `json:"description"`
}

// Skill is one entry of the skills section.
type Skill struct {
	Value string `json:"value"`
}

// Language is one entry of the languages section.
type Language struct {
	Name             string `json:"name"`
	ProficiencyLevel string `json:"proficiencyLevel"`
}

// Project is one entry of the projects section.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Document is the full in-memory résumé being edited.
// Collections are ordered; position is significant and there is no uniqueness constraint.
type Document struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Interests string `json:"interests"`
	GitHub    string `json:"github"`
	LinkedIn  string `json:"linkedin"`

	Education      []Education      `json:"education"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Skills         []Skill          `json:"skills"`
	Languages      []Language       `json:"languages"`
	Projects       []Project        `json:"projects"`
}

// NewDocument returns an empty document with every collection initialized,
// so it serializes with [] instead of null.
func NewDocument() Document {
	return Document{
		Education:      []Education{},
		WorkExperience: []WorkExperience{},
		Skills:         []Skill{},
		Languages:      []Language{},
		Projects:       []Project{},
	}
}

// Clone returns a deep copy of the document. Entries hold only strings,
// so copying the slices is enough.
func (d Document) Clone() Document {
	out := d
	out.Education = append(make([]Education, 0, len(d.Education)), d.Education...)
	out.WorkExperience = append(make([]WorkExperience, 0, len(d.WorkExperience)), d.WorkExperience...)
	out.Skills = append(make([]Skill, 0, len(d.Skills)), d.Skills...)
	out.Languages = append(make([]Language, 0, len(d.Languages)), d.Languages...)
	out.Projects = append(make([]Project, 0, len(d.Projects)), d.Projects...)
	return out
}

// Normalize replaces nil collections with empty ones.
func (d Document) Normalize() Document {
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.WorkExperience == nil {
		d.WorkExperience = []WorkExperience{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Languages == nil {
		d.Languages = []Language{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	return d
}

// FullName joins name and surname the way the preview heading shows them.
func (d Document) FullName() string {
	switch {
	case d.Name == "":
		return d.Surname
	case d.Surname == "":
		return d.Name
	default:
		return d.Name + " " + d.Surname
	}
}
