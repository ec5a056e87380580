package model

// MigrateAble is array of model instance, use for migrating database
var MigrateAble []interface{}

func init() {
	MigrateAble = append(
		MigrateAble,
		&Campaign{},
		&RecruitmentLink{},
		&Applicant{},
		&ApplicantDocument{},
		&ApplicantProcess{},
		&ApplicantChecklist{},
		&ApplicantAssignment{},
		&Verification{},
		&Blacklist{},
		&SmartExportBatch{},
		&SmartExportBatchItem{},
		&AuditLog{},
	)
}
