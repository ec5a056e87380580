// Command-line tool to register a hiring campaign without going through the API.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/model"
)

// generateRandomString creates a random hex string of length n
func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(bytes)
}

func main() {
	name := flag.String("name", "", "campaign name (required)")
	code := flag.String("code", "", "campaign code; generated when omitted")
	site := flag.String("site", "", "site name")
	description := flag.String("description", "", "campaign description")
	flag.Parse()

	if *name == "" {
		log.Fatal("-name is required")
	}

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}

	campaignCode := *code
	if campaignCode == "" {
		campaignCode = "CAMP-" + strings.ToUpper(generateRandomString(4))
	}

	campaign := model.Campaign{
		Code: campaignCode,
		EditableCampaignInfo: model.EditableCampaignInfo{
			Name:        *name,
			SiteName:    *site,
			Description: *description,
		},
	}
	if err := db.Create(&campaign).Error; err != nil {
		log.Fatal("failed to create campaign: ", err)
	}

	fmt.Println("Campaign created successfully!")
	fmt.Println("======================================")
	fmt.Printf("ID:   %s\n", campaign.ID)
	fmt.Printf("Code: %s\n", campaign.Code)
	fmt.Printf("Name: %s\n", campaign.Name)
	fmt.Println("======================================")
}
