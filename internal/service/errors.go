// Package service implements the intake, verification and export workflows
// on top of the database models.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors surfaced by the workflow functions. Controllers map these
// onto HTTP statuses.
var (
	ErrLinkClosed         = errors.New("the application link is no longer accepting submissions")
	ErrDuplicateApplicant = errors.New("an application with this document already exists for this link")
	ErrBlacklisted        = errors.New("this document number is not eligible for hiring")
	ErrNotEditable        = errors.New("the application can no longer be modified")
	ErrConsentRequired    = errors.New("data processing consent is required before submitting")
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MissingDocumentsError lists the document kinds still required before submit.
type MissingDocumentsError struct {
	Kinds []string
}

func (e *MissingDocumentsError) Error() string {
	return "missing required documents: " + strings.Join(e.Kinds, ", ")
}

// NotEligibleError reports applicants blocking an all-or-nothing export.
type NotEligibleError struct {
	ApplicantIDs []string
}

func (e *NotEligibleError) Error() string {
	return "applicants not eligible for export: " + strings.Join(e.ApplicantIDs, ", ")
}
