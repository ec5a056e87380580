package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lavodnos/stafflink/internal/model"
)

func TestValidateDocument(t *testing.T) {
	cases := []struct {
		name    string
		docType string
		number  string
		wantErr bool
	}{
		{"valid dni", "dni", "12345678", false},
		{"dni too short", "dni", "1234567", true},
		{"dni too long", "dni", "123456789", true},
		{"dni with letters", "dni", "1234567A", true},
		{"dni lower-case input trimmed", "dni", " 12345678 ", false},
		{"valid ce 9 chars", "ce", "CE1234567", false},
		{"valid ce 12 chars", "ce", "CE1234567890", false},
		{"ce wrong length", "ce", "CE12345", true},
		{"unknown type", "passport", "AB123456", true},
		{"empty type", "", "12345678", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDocument(tc.docType, tc.number)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDocumentKind(t *testing.T) {
	for _, kind := range model.DocumentKinds {
		assert.NoError(t, ValidateDocumentKind(kind))
	}
	assert.Error(t, ValidateDocumentKind("selfie"))
	assert.Error(t, ValidateDocumentKind(""))
}

func TestApplicantStatusForDecision(t *testing.T) {
	assert.Equal(t, model.ApplicantStatusVerifiedOK, model.ApplicantStatusForDecision(model.VerificationStatusApproved))
	assert.Equal(t, model.ApplicantStatusObserved, model.ApplicantStatusForDecision(model.VerificationStatusObserved))
	assert.Equal(t, model.ApplicantStatusRejected, model.ApplicantStatusForDecision(model.VerificationStatusRejected))
	assert.Equal(t, model.ApplicantStatusRejected, model.ApplicantStatusForDecision("whatever"))
}

func TestWriteExportCSV(t *testing.T) {
	content, err := WriteExportCSV([]ExportRow{
		{DocumentNumber: "12345678", FullName: "QUISPE MAMANI ROSA", CampaignName: "Lima Norte Intake"},
	})
	assert.NoError(t, err)
	assert.Equal(t,
		"document_number,full_name,campaign\n12345678,QUISPE MAMANI ROSA,Lima Norte Intake\n",
		string(content))
}
