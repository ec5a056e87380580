// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	"github.com/Lavodnos/stafflink/internal/auth"
	"github.com/Lavodnos/stafflink/internal/controller/blacklist"
	"github.com/Lavodnos/stafflink/internal/controller/campaign"
	"github.com/Lavodnos/stafflink/internal/controller/candidate"
	"github.com/Lavodnos/stafflink/internal/controller/export"
	"github.com/Lavodnos/stafflink/internal/controller/link"
	"github.com/Lavodnos/stafflink/internal/controller/public"
	"github.com/Lavodnos/stafflink/internal/controller/verification"
	"github.com/Lavodnos/stafflink/internal/middleware"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOrginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrgins := strings.Split(allowOrginsStr, ",")

	authController := auth.NewAuthController(s.Authenticator)
	publicController := public.NewPublicController(s.DB, s.Storage)
	campaignController := campaign.NewCampaignController(s.DB)
	linkController := link.NewLinkController(s.DB)
	candidateController := candidate.NewCandidateController(s.DB)
	verificationController := verification.NewVerificationController(s.DB)
	exportController := export.NewExportController(s.DB, s.Storage)
	blacklistController := blacklist.NewBlacklistController(s.DB)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrgins, // Add your frontend URL
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // Enable cookies/auth
	}))
	r.Use(middleware.SafeHeader())

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	{
		// Unauthenticated intake surface, rate limited by IP
		publicRoute := v1.Group("/public")
		{
			publicRoute.Use(middleware.EnvRateLimitMiddleware())
			publicRoute.GET("links/:slug", publicController.GetLink)
			publicRoute.POST("applicants", publicController.CreateApplicant)
			publicRoute.PATCH("applicants/:id", publicController.UpdateApplicant)
			publicRoute.POST("applicants/:id/submit", publicController.SubmitApplicant)
			publicRoute.POST("applicants/:id/documents", middleware.SizeLimit(10<<20), publicController.UploadDocument)
		}

		authRoute := v1.Group("/auth")
		{
			authRoute.POST("login", authController.LoginHandler)
			authRoute.POST("logout", authController.LogoutHandler)
			authRoute.GET("session", authController.SessionHandler)
			authRoute.POST("session", authController.SessionCheckHandler)
		}

		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.Authenticator))

			campaignRoute := needAuth.Group("/campaigns")
			{
				campaignRoute.GET("", middleware.RequirePermissions(middleware.PermissionsAll, "campaigns.read"), campaignController.ListCampaigns)
				campaignRoute.GET(":id", middleware.RequirePermissions(middleware.PermissionsAll, "campaigns.read"), campaignController.GetCampaign)
				campaignRoute.POST("", middleware.RequirePermissions(middleware.PermissionsAll, "campaigns.manage"), campaignController.CreateCampaign)
				campaignRoute.PATCH(":id", middleware.RequirePermissions(middleware.PermissionsAll, "campaigns.manage"), campaignController.EditCampaign)
			}

			linkRoute := needAuth.Group("/links")
			{
				linkRoute.GET("", middleware.RequirePermissions(middleware.PermissionsAny, "links.read_all", "links.read_own"), linkController.ListLinks)
				linkRoute.GET(":id", middleware.RequirePermissions(middleware.PermissionsAny, "links.read_all", "links.read_own"), linkController.GetLink)
				linkRoute.POST("", middleware.RequirePermissions(middleware.PermissionsAll, "links.create"), linkController.CreateLink)
				linkRoute.PATCH(":id", middleware.RequirePermissions(middleware.PermissionsAny, "links.update_all", "links.update_own"), linkController.EditLink)
				linkRoute.DELETE(":id", middleware.RequirePermissions(middleware.PermissionsAll, "links.update_all"), linkController.DeleteLink)
				linkRoute.POST(":id/expire", middleware.RequirePermissions(middleware.PermissionsAny, "links.expire", "links.expire_own"), linkController.ExpireLink)
				linkRoute.POST(":id/revoke", middleware.RequirePermissions(middleware.PermissionsAny, "links.revoke", "links.revoke_own"), linkController.RevokeLink)
				linkRoute.POST(":id/activate", middleware.RequirePermissions(middleware.PermissionsAny, "links.activate", "links.activate_own"), linkController.ActivateLink)
			}

			candidateRoute := needAuth.Group("/candidates")
			{
				candidateRoute.GET("", middleware.RequirePermissions(middleware.PermissionsAny, "candidates.read_all", "candidates.read_own"), candidateController.ListCandidates)
				candidateRoute.GET(":id", middleware.RequirePermissions(middleware.PermissionsAny, "candidates.read_all", "candidates.read_own"), candidateController.GetCandidate)
				candidateRoute.POST("", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.manage"), candidateController.CreateCandidate)
				candidateRoute.PATCH(":id", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.manage"), candidateController.EditCandidate)
				candidateRoute.PATCH(":id/process", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.process"), candidateController.EditProcess)
				candidateRoute.PATCH(":id/documents", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.process"), candidateController.EditChecklist)
				candidateRoute.PATCH(":id/assignment", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.contract"), candidateController.EditAssignment)
			}

			verificationRoute := needAuth.Group("/verification")
			{
				verificationRoute.GET("queue", middleware.RequirePermissions(middleware.PermissionsAny, "verification.read_all", "verification.read_own"), verificationController.GetQueue)
				verificationRoute.GET(":id", middleware.RequirePermissions(middleware.PermissionsAny, "verification.read_all", "verification.read_own"), verificationController.GetDetail)
				verificationRoute.POST(":id/start", middleware.RequirePermissions(middleware.PermissionsAll, "verification.decide"), verificationController.StartReview)
				verificationRoute.PATCH(":id", middleware.RequirePermissions(middleware.PermissionsAll, "candidates.update_controlled"), verificationController.EditContactFields)
				verificationRoute.POST(":id/decision", middleware.RequirePermissions(middleware.PermissionsAll, "verification.decide"), verificationController.Decide)
				verificationRoute.POST(":id/request-correction", middleware.RequirePermissions(middleware.PermissionsAll, "verification.request_correction"), verificationController.RequestCorrection)
			}

			exportRoute := needAuth.Group("/exports")
			{
				exportRoute.GET("", middleware.RequirePermissions(middleware.PermissionsAll, "exports.read"), exportController.ListBatches)
				exportRoute.GET(":id", middleware.RequirePermissions(middleware.PermissionsAll, "exports.read"), exportController.GetBatch)
				exportRoute.POST("", middleware.RequirePermissions(middleware.PermissionsAll, "exports.create"), exportController.CreateBatch)
				exportRoute.GET(":id/file", middleware.RequirePermissions(middleware.PermissionsAll, "exports.download"), exportController.DownloadFile)
				exportRoute.POST(":id/mark-delivered", middleware.RequirePermissions(middleware.PermissionsAll, "exports.deliver"), exportController.MarkDelivered)
			}

			blacklistRoute := needAuth.Group("/blacklist")
			{
				blacklistRoute.GET("", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.read"), blacklistController.ListEntries)
				blacklistRoute.GET(":id", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.read"), blacklistController.GetEntry)
				blacklistRoute.POST("", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.manage"), blacklistController.CreateEntry)
				blacklistRoute.PATCH(":id", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.manage"), blacklistController.EditEntry)
				blacklistRoute.DELETE(":id", middleware.RequirePermissions(middleware.PermissionsAll, "blacklist.manage"), blacklistController.DeleteEntry)
			}
		}
	}

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
