package rendering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// PageData is passed to the full page template.
type PageData struct {
	Title   string
	Version uint64
	Colors  []string
	Fonts   []string
	Form    FormView
	Preview PreviewView
}

// FormView is the editable side of the page.
type FormView struct {
	Shape    string
	Scalars  []FormInput
	Sections []FormSection
}

// FormSection is one collection with its entries and add/delete controls.
type FormSection struct {
	Collection types.Collection
	Title      string
	Label      string
	Entries    []FormEntry
}

// FormEntry is the input group of one collection entry.
type FormEntry struct {
	Index  int
	Inputs []FormInput
}

// FormInput is one text input bound to one document field.
type FormInput struct {
	Name       string
	Label      string
	Value      string
	Multiline  bool
	Collection string
	Index      int
	Field      string
}

// PreviewView is the read-only document side of the page.
type PreviewView struct {
	Document types.Document
	Style    types.Style
	Skills   string
}

var sectionTitles = map[types.Collection]string{
	types.CollectionEducation:      "Education",
	types.CollectionWorkExperience: "Work Experience",
	types.CollectionProjects:       "Projects",
	types.CollectionSkills:         "Skills",
	types.CollectionLanguages:      "Languages",
}

var scalarLabels = map[types.ScalarField]string{
	types.FieldName:      "Name",
	types.FieldSurname:   "Surname",
	types.FieldPhone:     "Phone",
	types.FieldEmail:     "Email",
	types.FieldGitHub:    "GitHub",
	types.FieldLinkedIn:  "LinkedIn",
	types.FieldInterests: "Interests",
}

type fieldKey struct {
	c types.Collection
	f types.EntryField
}

var entryLabels = map[fieldKey]string{
	{types.CollectionEducation, types.EntrySchool}:           "School",
	{types.CollectionEducation, types.EntryDegree}:           "Degree",
	{types.CollectionEducation, types.EntryDates}:            "Dates",
	{types.CollectionEducation, types.EntryAdditionalInfo}:   "Additional Information",
	{types.CollectionWorkExperience, types.EntryCompany}:     "Company",
	{types.CollectionWorkExperience, types.EntryRole}:        "Role",
	{types.CollectionWorkExperience, types.EntryDates}:       "Dates",
	{types.CollectionWorkExperience, types.EntryDescription}: "Job Description",
	{types.CollectionSkills, types.EntryValue}:               "Skill",
	{types.CollectionLanguages, types.EntryName}:             "Language",
	{types.CollectionLanguages, types.EntryProficiencyLevel}: "Proficiency Level",
	{types.CollectionProjects, types.EntryName}:              "Project Name",
	{types.CollectionProjects, types.EntryDescription}:       "Description",
}

// BuildForm derives the form inputs from the document through the field
// tables in package types, so every field gets exactly one input.
func BuildForm(doc types.Document) FormView {
	view := FormView{Shape: Shape(doc)}

	for _, f := range types.ScalarFields() {
		view.Scalars = append(view.Scalars, FormInput{
			Name:      string(f),
			Label:     scalarLabels[f],
			Value:     doc.Scalar(f),
			Multiline: f == types.FieldInterests,
			Field:     string(f),
		})
	}

	for _, c := range types.Collections() {
		section := FormSection{
			Collection: c,
			Title:      sectionTitles[c],
			Label:      c.Label(),
		}
		for i := 0; i < doc.Len(c); i++ {
			entry := FormEntry{Index: i}
			for _, f := range c.Fields() {
				entry.Inputs = append(entry.Inputs, FormInput{
					Name:       fmt.Sprintf("%s[%d].%s", c, i, f),
					Label:      entryLabels[fieldKey{c, f}],
					Value:      doc.EntryValue(c, i, f),
					Collection: string(c),
					Index:      i,
					Field:      string(f),
				})
			}
			section.Entries = append(section.Entries, entry)
		}
		view.Sections = append(view.Sections, section)
	}

	return view
}

// BuildPreview prepares the preview template data.
func BuildPreview(doc types.Document, style types.Style) PreviewView {
	skills := make([]string, 0, len(doc.Skills))
	for _, s := range doc.Skills {
		skills = append(skills, s.Value)
	}
	return PreviewView{
		Document: doc,
		Style:    style,
		Skills:   strings.Join(skills, ", "),
	}
}

// Shape summarizes the entry count of every collection, e.g. "1,0,2,3,0".
// The page re-renders its form only when the shape changes.
func Shape(doc types.Document) string {
	parts := make([]string, 0, len(types.Collections()))
	for _, c := range types.Collections() {
		parts = append(parts, strconv.Itoa(doc.Len(c)))
	}
	return strings.Join(parts, ",")
}
