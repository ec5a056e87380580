package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "github.com/Lavodnos/stafflink/internal/model"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context) error

// Exported seeded records for tests
var (
	TestCampaign1 m.Campaign
	TestCampaign2 m.Campaign

	TestLinkActive  m.RecruitmentLink
	TestLinkExpired m.RecruitmentLink
	TestLinkRevoked m.RecruitmentLink

	// TestRecruiter1 owns the seeded links, TestRecruiter2 owns none
	TestRecruiter1ID = uuid.MustParse("6f1c2f7e-0000-4000-8000-000000000001")
	TestRecruiter2ID = uuid.MustParse("6f1c2f7e-0000-4000-8000-000000000002")
	TestAdminID      = uuid.MustParse("6f1c2f7e-0000-4000-8000-0000000000ff")

	// TestBlacklistedDNI is seeded as an active blacklist entry
	TestBlacklistedDNI = "99999999"
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample campaigns, links and a blacklist entry if empty.
func seedTestData(db *DBinstanceStruct) error {
	var campaignCount int64
	if err := db.Model(&m.Campaign{}).Count(&campaignCount).Error; err != nil {
		return err
	}
	if campaignCount > 0 {
		return loadTestData(db)
	}

	campaigns := []m.Campaign{
		{
			Code: "CAMP-LIMA-01",
			EditableCampaignInfo: m.EditableCampaignInfo{
				Name:        "Lima Norte Intake",
				SiteName:    "Lima Norte",
				Description: "Seasonal field staff hiring for the Lima Norte site.",
			},
		},
		{
			Code: "CAMP-AQP-01",
			EditableCampaignInfo: m.EditableCampaignInfo{
				Name:        "Arequipa Intake",
				SiteName:    "Arequipa",
				Description: "Store staff hiring for the Arequipa branch.",
			},
		},
	}
	if err := db.Create(&campaigns).Error; err != nil {
		return err
	}
	TestCampaign1 = campaigns[0]
	TestCampaign2 = campaigns[1]

	workWeek := 48
	quota := 25
	links := []m.RecruitmentLink{
		{
			CampaignID: TestCampaign1.ID,
			Slug:       "lima-norte-field-staff",
			OwnerID:    TestRecruiter1ID,
			OwnerName:  "Rosa Quispe",
			Status:     m.LinkStatusActive,
			EditableLinkInfo: m.EditableLinkInfo{
				Title:               "Field Staff - Lima Norte",
				Modality:            m.ModalityOnsite,
				EmploymentCondition: m.ConditionPayroll,
				PeriodLabel:         "2026-Q3",
				RestDay:             "sunday",
				WorkWeek:            &workWeek,
				Quota:               &quota,
				ExpiresAt:           time.Now().AddDate(0, 1, 0),
				CompanyName:         "Stafflink Outsourcing SAC",
				Compensation:        "1500 PEN",
				ContractRole:        "Field Promoter",
			},
		},
		{
			CampaignID: TestCampaign1.ID,
			Slug:       "lima-norte-closed",
			OwnerID:    TestRecruiter1ID,
			OwnerName:  "Rosa Quispe",
			Status:     m.LinkStatusActive,
			EditableLinkInfo: m.EditableLinkInfo{
				Title:               "Closed Intake - Lima Norte",
				Modality:            m.ModalityOnsite,
				EmploymentCondition: m.ConditionPayroll,
				ExpiresAt:           time.Now().Add(-time.Hour),
			},
		},
		{
			CampaignID: TestCampaign2.ID,
			Slug:       "arequipa-revoked",
			OwnerID:    TestRecruiter1ID,
			OwnerName:  "Rosa Quispe",
			Status:     m.LinkStatusRevoked,
			EditableLinkInfo: m.EditableLinkInfo{
				Title:     "Revoked Intake - Arequipa",
				ExpiresAt: time.Now().AddDate(0, 1, 0),
			},
		},
	}
	if err := db.Create(&links).Error; err != nil {
		return err
	}
	TestLinkActive = links[0]
	TestLinkExpired = links[1]
	TestLinkRevoked = links[2]

	blacklist := m.Blacklist{
		DocumentNumber: TestBlacklistedDNI,
		Status:         m.BlacklistStatusActive,
		Reason:         "Terminated for cause in a previous campaign",
		AddedByName:    "seed",
	}
	if err := db.Create(&blacklist).Error; err != nil {
		return err
	}

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	if err := db.First(&TestCampaign1, "code = ?", "CAMP-LIMA-01").Error; err != nil {
		return err
	}
	if err := db.First(&TestCampaign2, "code = ?", "CAMP-AQP-01").Error; err != nil {
		return err
	}
	if err := db.First(&TestLinkActive, "slug = ?", "lima-norte-field-staff").Error; err != nil {
		return err
	}
	if err := db.First(&TestLinkExpired, "slug = ?", "lima-norte-closed").Error; err != nil {
		return err
	}
	return db.First(&TestLinkRevoked, "slug = ?", "arequipa-revoked").Error
}
