// Command-line tool to close recruitment links past their deadline.
// Intended to run from cron; the public endpoints also conceal overdue links,
// so the sweep only keeps the stored status in line.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/service"
)

func main() {
	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}

	count, err := service.ExpireDueLinks(db.DB, time.Now())
	if err != nil {
		log.Fatal("failed to expire links: ", err)
	}

	fmt.Printf("Expired %d link(s).\n", count)
}
