package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionSetNormalization(t *testing.T) {
	set := NewPermissionSet([]string{" Links.Read_All ", "exports.create", "", "  "})

	assert.True(t, set.Has("links.read_all"))
	assert.True(t, set.Has("LINKS.READ_ALL"))
	assert.True(t, set.Has("exports.create"))
	assert.False(t, set.Has(""))
	assert.Len(t, set.List(), 2)
}

func TestPermissionSetPredicates(t *testing.T) {
	set := NewPermissionSet([]string{"links.read_own", "candidates.manage"})

	assert.True(t, set.HasAll("links.read_own", "candidates.manage"))
	assert.False(t, set.HasAll("links.read_own", "links.read_all"))
	assert.True(t, set.HasAny("links.read_all", "links.read_own"))
	assert.False(t, set.HasAny("exports.create"))
}

func TestApplicantFullNameAndEditable(t *testing.T) {
	a := Applicant{
		EditableApplicantInfo: EditableApplicantInfo{
			FirstName:      "ROSA",
			LastName:       "QUISPE",
			SecondLastName: "MAMANI",
		},
		Status: ApplicantStatusDraft,
	}
	assert.Equal(t, "QUISPE MAMANI ROSA", a.FullName())
	assert.True(t, a.IsEditable())

	a.SecondLastName = ""
	assert.Equal(t, "QUISPE ROSA", a.FullName())

	a.Status = ApplicantStatusVerifiedOK
	assert.False(t, a.IsEditable())
}
