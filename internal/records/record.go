// Package records looks up court case records by identifier.
//
// A [Store] resolves a normalised identifier such as "CWP-1234-2023" to a
// [Record]. Implementations read a JSON file ([MemStore]), a remote case
// service ([HTTPStore]) or PostgreSQL (package postgres); [Cached] memoises
// successful lookups for the lifetime of the process.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NotFoundText is spoken when a lookup finds nothing.
const NotFoundText = "Case not found."

// Text is a string field that also accepts JSON numbers, so exports that
// store case_no or case_year as integers decode cleanly.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("records: field must be a string or number: %w", err)
	}
	*t = Text(n.String())
	return nil
}

// String returns the trimmed text.
func (t Text) String() string { return strings.TrimSpace(string(t)) }

// Record is the union of the fields case exports carry. Older exports key
// records by case_number (or case_id, or "case number") and carry a title,
// court and judge; newer ones split the identifier into case_type, case_no
// and case_year and add the parties and the next hearing.
type Record struct {
	CaseNumber       Text `json:"case_number,omitempty"`
	CaseID           Text `json:"case_id,omitempty"`
	CaseNumberSpaced Text `json:"case number,omitempty"`

	Case  Text `json:"case,omitempty"`
	Title Text `json:"title,omitempty"`

	CaseType Text `json:"case_type,omitempty"`
	CaseNo   Text `json:"case_no,omitempty"`
	CaseYear Text `json:"case_year,omitempty"`

	CourtNumber Text `json:"court_number,omitempty"`
	JudgeName   Text `json:"judge_name,omitempty"`

	PetitionerName Text `json:"petitioner_name,omitempty"`
	RespondentName Text `json:"respondent_name,omitempty"`
	AdvocateName   Text `json:"advocate_name,omitempty"`
	Status         Text `json:"status,omitempty"`
	NextDate       Text `json:"next_date,omitempty"`
}

// Key returns the identifier the record is filed under. Records that only
// carry the split fields are keyed TYPE-NO-YEAR.
func (r *Record) Key() string {
	for _, k := range []Text{r.CaseNumber, r.CaseID, r.CaseNumberSpaced} {
		if s := k.String(); s != "" {
			return strings.ToUpper(s)
		}
	}
	if r.CaseType.String() == "" || r.CaseNo.String() == "" {
		return ""
	}
	key := r.CaseType.String() + "-" + r.CaseNo.String()
	if y := r.CaseYear.String(); y != "" {
		key += "-" + y
	}
	return strings.ToUpper(key)
}

// Heading returns the case title, falling back to "petitioner vs. respondent".
func (r *Record) Heading() string {
	if s := r.Case.String(); s != "" {
		return s
	}
	if s := r.Title.String(); s != "" {
		return s
	}
	if p, q := r.PetitionerName.String(), r.RespondentName.String(); p != "" && q != "" {
		return p + " vs. " + q
	}
	return ""
}

// Detailed reports whether the record carries the split identifier fields.
func (r *Record) Detailed() bool {
	return r.CaseType.String() != "" && r.CaseNo.String() != ""
}

// Narration returns the English announcement for the record. A nil record
// narrates as [NotFoundText].
func (r *Record) Narration() string {
	if r == nil {
		return NotFoundText
	}
	if !r.Detailed() {
		return fmt.Sprintf("Case Number: %s, Case Title: %s, Court Number: %s, Judge Name: %s",
			r.Key(), r.Heading(), r.CourtNumber, r.JudgeName)
	}
	return fmt.Sprintf("Your case details are as follows: Case Type - %s, Case Number - %s, and Filing Year - %s. "+
		"The petitioner in this case is %s, while the respondent is %s. "+
		"The case is being represented by Advocate %s. Currently, the case status is %s. "+
		"The next hearing is scheduled for %s. Thank you.",
		r.CaseType, r.CaseNo, r.CaseYear,
		r.PetitionerName, r.RespondentName,
		r.AdvocateName, r.Status,
		r.NextDate)
}
