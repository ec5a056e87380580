package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"github.com/Lavodnos/stafflink/internal/database"
	"github.com/Lavodnos/stafflink/internal/iam"
	"github.com/Lavodnos/stafflink/internal/storage"
)

// MyServer holds the dependencies shared by every route handler.
type MyServer struct {
	DB            *database.DBinstanceStruct
	Authenticator *iam.Authenticator
	Storage       storage.Backend
}

// NewServer constructs the HTTP server with database, IAM client and storage
// backend resolved from the environment.
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %s", err)
	}

	backend, err := storage.FromEnv()
	if err != nil {
		log.Fatalf("Storage backend failed to initialize: %s", err)
	}

	myServer := &MyServer{
		DB:            db,
		Authenticator: iam.NewAuthenticator(iam.NewClientFromEnv()),
		Storage:       backend,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      myServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
