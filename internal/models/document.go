package models

import "time"

// DocumentType classifies stored files by their MIME type.
type DocumentType string

const (
	DocumentTypePDF   DocumentType = "PDF"
	DocumentTypeDOCX  DocumentType = "DOCX"
	DocumentTypeTXT   DocumentType = "TXT"
	DocumentTypeMD    DocumentType = "MD"
	DocumentTypeOther DocumentType = "OTHER"
)

// Document is an uploaded file attached to one node of the hierarchy. The
// bytes live in blob storage under FileKey; this row only carries metadata.
// At least one of the four context pointers is always non-null.
type Document struct {
	ID          int64        `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description,omitempty"`
	Filename    string       `db:"filename" json:"filename"`
	FileURL     string       `db:"file_url" json:"fileUrl"`
	FileKey     string       `db:"file_key" json:"fileKey"`
	FileType    DocumentType `db:"file_type" json:"fileType"`
	FileSize    int64        `db:"file_size" json:"fileSize"`
	CourseID    *int64       `db:"course_id" json:"courseId,omitempty"`
	YearID      *int64       `db:"year_id" json:"yearId,omitempty"`
	SemesterID  *int64       `db:"semester_id" json:"semesterId,omitempty"`
	UnitID      *int64       `db:"unit_id" json:"unitId,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`

	Course   *Course   `json:"course,omitempty"`
	Year     *Year     `json:"year,omitempty"`
	Semester *Semester `json:"semester,omitempty"`
	Unit     *Unit     `json:"unit,omitempty"`

	Context *DocumentContext `json:"context,omitempty"`
}

// DocumentContext identifies the most specific hierarchy node a document is
// attached to, used for display grouping.
type DocumentContext struct {
	Level string `json:"level"`
	ID    int64  `json:"id"`
}

// ResolveContext picks the most specific non-null pointer (unit > semester >
// year > course). Returns nil only for rows violating the context invariant.
func (d *Document) ResolveContext() *DocumentContext {
	switch {
	case d.UnitID != nil:
		return &DocumentContext{Level: "unit", ID: *d.UnitID}
	case d.SemesterID != nil:
		return &DocumentContext{Level: "semester", ID: *d.SemesterID}
	case d.YearID != nil:
		return &DocumentContext{Level: "year", ID: *d.YearID}
	case d.CourseID != nil:
		return &DocumentContext{Level: "course", ID: *d.CourseID}
	default:
		return nil
	}
}

// HasContext reports whether any context pointer is set.
func (d *Document) HasContext() bool {
	return d.CourseID != nil || d.YearID != nil || d.SemesterID != nil || d.UnitID != nil
}

// DocumentFilter narrows document listings by context pointers.
type DocumentFilter struct {
	CourseID   *int64
	YearID     *int64
	SemesterID *int64
	UnitID     *int64
}
