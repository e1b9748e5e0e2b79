package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecohub-backend/controllers"
	"ecohub-backend/middleware"
	"ecohub-backend/rbac"
)

func SetupRoutes(r *gin.Engine, ctl *controllers.Controller) {
	auth := middleware.AuthMiddleware(ctl.Tokens)
	perm := func(obj, act string) gin.HandlerFunc {
		return middleware.RequirePerm(ctl.Enforcer, obj, act)
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the EcoHub API.")
	})
	r.Static("/uploads", ctl.UploadDir)

	// Public event routes
	events := r.Group("/events")
	{
		events.GET("", ctl.Home)
		events.GET("/upcoming/:page", ctl.UpcomingEvents)
		events.GET("/past/:page", ctl.PastEvents)
		events.GET("/sorting/:page", ctl.SortedEvents)
		events.GET("/details/:id", ctl.EventDetails)
		events.GET("/similar-events/:id", ctl.SimilarEvents)
		events.GET("/categories", ctl.Categories)
		events.GET("/type", ctl.Types)
		events.GET("/locations", ctl.Locations)
		events.GET("/statuses", ctl.Statuses)
	}

	// SIGNUPS
	signups := r.Group("/events", auth, perm(rbac.ResourceEvents, rbac.ActionSignup))
	{
		signups.GET("/check-signup", ctl.CheckSignup)
		signups.POST("/signup", ctl.SignUp)
		signups.DELETE("/withdraw", ctl.Withdraw)
		signups.GET("/all-user-signup", ctl.UserSignups)
	}

	user := r.Group("/user")
	{
		user.POST("/register", ctl.Register)
		user.POST("/login", ctl.Login)
		user.POST("/google-login", ctl.GoogleLogin)
		user.GET("/auth", auth, ctl.Auth)

		manage := perm(rbac.ResourceUsers, rbac.ActionManage)
		user.GET("/users", auth, manage, ctl.ListUsers)
		user.POST("/users", auth, manage, ctl.CreateUser)
		user.GET("/users/:id", auth, ctl.GetUser)
		user.POST("/users/:id", auth, ctl.UpdateUser)
		user.DELETE("/users/:id", auth, manage, ctl.DeleteUser)
	}

	admin := r.Group("/admin", auth, perm(rbac.ResourceAdmin, rbac.ActionManage))
	{
		admin.GET("/proposals", ctl.AdminListProposals)
		admin.GET("/proposals/:id", ctl.AdminGetProposal)
		admin.PUT("/proposals/:id", ctl.AdminReviewProposal)

		admin.GET("/event", ctl.AdminListEvents)
		admin.POST("/event", ctl.AdminCreateEvent)
		admin.GET("/event/:id", ctl.AdminGetEvent)
		admin.PUT("/event/:id", ctl.AdminUpdateEvent)
		admin.DELETE("/event/:id", ctl.AdminDeleteEvent)

		// ATTENDANCE
		admin.GET("/event/:id/attendance", ctl.ListAttendance)
		admin.PUT("/event/:id/attendance", ctl.UpdateAttendance)

		admin.GET("/users", ctl.ListUsers)
	}

	organiser := r.Group("/organiser", auth, perm(rbac.ResourceOrganiser, rbac.ActionManage))
	{
		organiser.GET("/proposal", ctl.OrganiserListProposals)
		organiser.POST("/proposal", ctl.OrganiserCreateProposal)
		organiser.GET("/proposal/:id", ctl.OrganiserGetProposal)
		organiser.PUT("/proposal/:id", ctl.OrganiserUpdateProposal)
		organiser.DELETE("/proposal/:id", ctl.OrganiserDeleteProposal)

		organiser.GET("/event", ctl.OrganiserListEvents)
		organiser.GET("/event/:id", ctl.OrganiserGetEvent)
		organiser.PUT("/event/:id", ctl.OrganiserUpdateEvent)
		organiser.DELETE("/event/:id", ctl.OrganiserDeleteEvent)

		// ATTENDANCE
		organiser.GET("/event/:id/attendance", ctl.ListAttendance)
		organiser.PUT("/event/:id/attendance", ctl.UpdateAttendance)
	}

	rewards := r.Group("/rewards")
	{
		manage := []gin.HandlerFunc{auth, perm(rbac.ResourceRewards, rbac.ActionManage)}
		claim := []gin.HandlerFunc{auth, perm(rbac.ResourceRewards, rbac.ActionClaim)}

		rewards.GET("", ctl.ListRewards)
		rewards.GET("/details/:id", ctl.RewardDetails)
		rewards.POST("/filtered", ctl.FilteredRewards)
		rewards.GET("/types", ctl.RewardTypes)
		rewards.GET("/categories", ctl.RewardCategories)
		rewards.GET("/viewtags/:id", ctl.RewardTags)

		rewards.POST("", append(manage, ctl.AddReward)...)
		rewards.DELETE("", append(manage, ctl.DeleteReward)...)
		rewards.PUT("/update/:id", append(manage, ctl.UpdateReward)...)
		rewards.POST("/types", append(manage, ctl.AddRewardType)...)
		rewards.POST("/addcategory", append(manage, ctl.AssignRewardTag)...)

		rewards.POST("/claimreward", append(claim, ctl.ClaimReward)...)
		rewards.GET("/viewclaimedrewards/:user_id", append(claim, ctl.ClaimedRewards)...)
	}

	r.POST("/file/upload", auth, ctl.UploadFile)
}
