package models

// HierarchyOption is one selectable entry in a cascading dropdown.
type HierarchyOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// HierarchyOptions feeds the cascading course → year → semester → unit
// selectors: courses are always present, the other levels only when their
// parent was supplied.
type HierarchyOptions struct {
	Courses   []HierarchyOption `json:"courses"`
	Years     []HierarchyOption `json:"years"`
	Semesters []HierarchyOption `json:"semesters"`
	Units     []HierarchyOption `json:"units"`
}

// HierarchyOptionsQuery scopes the dependent levels of the options payload.
type HierarchyOptionsQuery struct {
	CourseID   *int64
	YearID     *int64
	SemesterID *int64
}
