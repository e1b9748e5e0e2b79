package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ecohub-backend/controllers"
	"ecohub-backend/database"
	"ecohub-backend/models"
	"ecohub-backend/rbac"
	"ecohub-backend/routes"
	"ecohub-backend/utils"
	"ecohub-backend/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	// cheap hashes keep the suite fast
	utils.ArgonTime = 1
	utils.ArgonMemory = 8 * 1024
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeGoogle struct {
	identity *utils.GoogleIdentity
	err      error
}

func (f *fakeGoogle) Verify(ctx context.Context, credential string) (*utils.GoogleIdentity, error) {
	return f.identity, f.err
}

type harness struct {
	t      *testing.T
	db     *gorm.DB
	ctl    *controllers.Controller
	router *gin.Engine
	google *fakeGoogle
	reward models.Reward
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db, "", ""))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	en, err := rbac.NewEnforcer()
	require.NoError(t, err)
	google := &fakeGoogle{}
	ctl := controllers.New(db, utils.NewTokenIssuer("test-secret", time.Hour), en, google, t.TempDir())
	r := gin.New()
	routes.SetupRoutes(r, ctl)

	reward := models.Reward{RewardName: "Tote bag", RewardsTypeID: 3, RewardQuantity: 10, RewardDuration: 30, RewardDescription: "A reusable bag"}
	require.NoError(t, db.Create(&reward).Error)

	return &harness{t: t, db: db, ctl: ctl, router: r, google: google, reward: reward}
}

// user stores an account with password "password1" and returns a token for it.
func (h *harness) user(username string, role uint) (models.User, string) {
	h.t.Helper()
	hash, err := utils.HashPassword("password1")
	require.NoError(h.t, err)
	u := models.User{
		UserTypeID: role,
		FirstName:  "Test",
		LastName:   "User",
		Email:      username + "@ecohub.test",
		Username:   username,
		PhoneNo:    "91234567",
		Password:   hash,
		Location:   "Singapore",
	}
	require.NoError(h.t, h.db.Create(&u).Error)
	token, _, err := h.ctl.Tokens.GenerateToken(&u)
	require.NoError(h.t, err)
	return u, token
}

func (h *harness) event(title string, owner uint, start time.Time, cat, status uint) models.Event {
	h.t.Helper()
	ev := models.Event{
		EventTypeID:      1,
		EventTitle:       title,
		EventStartTime:   start.Format(models.ClockLayout),
		EventEndTime:     "23:59",
		EventLocationID:  models.LocationOnline,
		RewardID:         h.reward.RewardID,
		EventDescription: "All about " + title,
		EventCatID:       cat,
		EventDate:        start,
		EventStatusID:    status,
		UserID:           owner,
	}
	require.NoError(h.t, h.db.Create(&ev).Error)
	return ev
}

func (h *harness) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

type eventPage struct {
	Events      []models.Event `json:"events"`
	Proposals   []models.Event `json:"proposals"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalRows   int64          `json:"totalRows"`
}

func ids(events []models.Event) []uint {
	out := make([]uint, 0, len(events))
	for _, e := range events {
		out = append(out, e.EventID)
	}
	return out
}

func eventBody(day time.Time, status uint) map[string]interface{} {
	return map[string]interface{}{
		"event_cat_id":      1,
		"event_type_id":     2,
		"event_location_id": 1,
		"reward_id":         1,
		"event_title":       "River Cleanup",
		"event_description": "Pick up litter along the river",
		"event_date":        day.Format(models.DateLayout),
		"event_start_time":  "09:00",
		"event_end_time":    "12:00",
		"event_status_id":   status,
		"signup_limit":      20,
	}
}

func TestWelcome(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "EcoHub")
}

func TestUpcomingAndPastBuckets(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()
	future := h.event("Beach Cleanup", 1, now.Add(48*time.Hour), 3, models.StatusActive)
	past := h.event("Tree Planting", 1, now.Add(-48*time.Hour), 2, models.StatusActive)
	h.event("Pending Talk", 1, now.Add(48*time.Hour), 4, models.StatusPending)

	var up, down eventPage
	w := h.do(http.MethodGet, "/events/upcoming/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &up)
	assert.Equal(t, []uint{future.EventID}, ids(up.Events))

	w = h.do(http.MethodGet, "/events/past/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &down)
	assert.Equal(t, []uint{past.EventID}, ids(down.Events))

	var home struct {
		UpcomingEvents []models.Event `json:"upcomingEvents"`
		PastEvents     []models.Event `json:"pastEvents"`
	}
	w = h.do(http.MethodGet, "/events", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &home)
	assert.Equal(t, []uint{future.EventID}, ids(home.UpcomingEvents))
	assert.Equal(t, []uint{past.EventID}, ids(home.PastEvents))
	require.NotNil(t, home.UpcomingEvents[0].EventCategory)
	assert.Equal(t, "Community Cleanup", home.UpcomingEvents[0].EventCategory.EventCatDescription)
}

func TestPastMostRecentFirst(t *testing.T) {
	h := newHarness(t)
	day := time.Now().UTC().Truncate(24 * time.Hour)
	at := func(daysAgo int, clock string) time.Time {
		c, err := time.Parse(models.ClockLayout, clock)
		require.NoError(t, err)
		return day.AddDate(0, 0, -daysAgo).Add(time.Duration(c.Hour()) * time.Hour)
	}
	oldest := h.event("Oldest", 1, at(20, "09:00"), 1, models.StatusActive)
	morning := h.event("Morning", 1, at(10, "08:00"), 1, models.StatusActive)
	recent := h.event("Recent", 1, at(3, "09:00"), 1, models.StatusActive)
	afternoon := h.event("Afternoon", 1, at(10, "15:00"), 1, models.StatusActive)

	var page eventPage
	w := h.do(http.MethodGet, "/events/past/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Equal(t, []uint{recent.EventID, afternoon.EventID, morning.EventID, oldest.EventID}, ids(page.Events))

	var home struct {
		PastEvents []models.Event `json:"pastEvents"`
	}
	decode(t, h.do(http.MethodGet, "/events", "", nil), &home)
	assert.Equal(t, []uint{recent.EventID, afternoon.EventID, morning.EventID}, ids(home.PastEvents))
}

func TestPaginationBeyondLastPage(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()
	for i := 1; i <= 12; i++ {
		h.event(fmt.Sprintf("Event %02d", i), 1, now.AddDate(0, 0, i), 1, models.StatusActive)
	}

	var page eventPage
	decode(t, h.do(http.MethodGet, "/events/upcoming/2", "", nil), &page)
	assert.Len(t, page.Events, 2)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.EqualValues(t, 12, page.TotalRows)

	for _, p := range []string{"2", "3", "50", "1152921504606846977"} {
		w := h.do(http.MethodGet, "/events/sorting/"+p, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var pg eventPage
		decode(t, w, &pg)
		if p == "2" {
			assert.Len(t, pg.Events, 2)
			continue
		}
		assert.NotNil(t, pg.Events)
		assert.Empty(t, pg.Events)
	}
	assert.Contains(t, h.do(http.MethodGet, "/events/upcoming/50", "", nil).Body.String(), `"events":[]`)

	var lenient eventPage
	decode(t, h.do(http.MethodGet, "/events/upcoming/abc", "", nil), &lenient)
	assert.Equal(t, 1, lenient.CurrentPage)
	assert.Len(t, lenient.Events, 10)
	assert.Equal(t, "Event 01", lenient.Events[0].EventTitle)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()
	beach := h.event("Beach Cleanup", 1, now.AddDate(0, 0, 1), 3, models.StatusActive)
	h.event("Composting Workshop", 1, now.AddDate(0, 0, 2), 1, models.StatusActive)

	var page eventPage
	decode(t, h.do(http.MethodGet, "/events/sorting/1?search=bEaCh", "", nil), &page)
	assert.Equal(t, []uint{beach.EventID}, ids(page.Events))

	decode(t, h.do(http.MethodGet, "/events/sorting/1?category=1", "", nil), &page)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "Composting Workshop", page.Events[0].EventTitle)

	w := h.do(http.MethodGet, "/events/sorting/1?category=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventDetailsAndLookups(t *testing.T) {
	h := newHarness(t)
	ev := h.event("Beach Cleanup", 1, time.Now().UTC().AddDate(0, 0, 1), 3, models.StatusActive)
	pending := h.event("Hidden", 1, time.Now().UTC().AddDate(0, 0, 1), 3, models.StatusPending)

	w := h.do(http.MethodGet, fmt.Sprintf("/events/details/%d", ev.EventID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Event
	decode(t, w, &got)
	assert.Equal(t, "Beach Cleanup", got.EventTitle)
	require.NotNil(t, got.Reward)
	assert.Equal(t, "Tote bag", got.Reward.RewardName)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, fmt.Sprintf("/events/details/%d", pending.EventID), "", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/events/details/999", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/events/details/x", "", nil).Code)

	var cats []models.EventCategory
	decode(t, h.do(http.MethodGet, "/events/categories", "", nil), &cats)
	assert.Len(t, cats, 5)
	var locs []models.EventLocation
	decode(t, h.do(http.MethodGet, "/events/locations", "", nil), &locs)
	assert.Equal(t, "Online", locs[4].EventLocationDescription)
	var types []models.EventType
	decode(t, h.do(http.MethodGet, "/events/type", "", nil), &types)
	assert.Len(t, types, 4)
	var statuses []models.EventStatus
	decode(t, h.do(http.MethodGet, "/events/statuses", "", nil), &statuses)
	assert.Len(t, statuses, 3)
}

func TestSimilarEvents(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()
	current := h.event("Current", 1, now.AddDate(0, 0, 1), 1, models.StatusActive)
	same := h.event("Same Category", 1, now.AddDate(0, 0, 3), 1, models.StatusActive)
	h.event("Same But Past", 1, now.AddDate(0, 0, -3), 1, models.StatusActive)
	other2 := h.event("Category Two", 1, now.AddDate(0, 0, 2), 2, models.StatusActive)
	h.event("Category Two Later", 1, now.AddDate(0, 0, 9), 2, models.StatusActive)
	other3 := h.event("Category Three", 1, now.AddDate(0, 0, 4), 3, models.StatusActive)
	h.event("Category Four", 1, now.AddDate(0, 0, 5), 4, models.StatusActive)

	var got []models.Event
	w := h.do(http.MethodGet, fmt.Sprintf("/events/similar-events/%d", current.EventID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Equal(t, []uint{same.EventID, other2.EventID, other3.EventID}, ids(got))

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/events/similar-events/999", "", nil).Code)
}

func TestSignupScenario(t *testing.T) {
	h := newHarness(t)
	owner, _ := h.user("organiser", models.RoleOrganiser)
	u := models.User{UserID: 5, UserTypeID: models.RoleUser, FirstName: "Five", LastName: "User", Email: "five@ecohub.test", Username: "five"}
	require.NoError(t, h.db.Create(&u).Error)
	token, _, err := h.ctl.Tokens.GenerateToken(&u)
	require.NoError(t, err)
	ev := models.Event{
		EventID: 12, EventTypeID: 1, EventTitle: "Twelve", EventStartTime: "10:00", EventEndTime: "12:00",
		EventLocationID: models.LocationOnline, RewardID: h.reward.RewardID, EventDescription: "event twelve",
		EventCatID: 1, EventDate: time.Now().UTC().AddDate(0, 0, 7), EventStatusID: models.StatusActive, UserID: owner.UserID,
	}
	require.NoError(t, h.db.Create(&ev).Error)

	w := h.do(http.MethodPost, "/events/signup", token, map[string]uint{"userId": 5, "eventId": 12})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var rows []models.EventSignUp
	require.NoError(t, h.db.Where("user_id = ? AND event_id = ?", 5, 12).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, models.SignUpRegistered, rows[0].Status)
	assert.Equal(t, models.AttendanceNotMarked, rows[0].Attendance)

	w = h.do(http.MethodGet, "/events/check-signup?userId=5&eventId=12", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hasSignedUp":true}`, w.Body.String())
}

func TestSignupWithdrawToggle(t *testing.T) {
	h := newHarness(t)
	u, token := h.user("alice", models.RoleUser)
	ev := h.event("Beach Cleanup", 1, time.Now().UTC().AddDate(0, 0, 2), 3, models.StatusActive)
	q := fmt.Sprintf("?userId=%d&eventId=%d", u.UserID, ev.EventID)
	body := map[string]uint{"userId": u.UserID, "eventId": ev.EventID}

	assert.JSONEq(t, `{"hasSignedUp":false}`, h.do(http.MethodGet, "/events/check-signup"+q, token, nil).Body.String())
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/events/signup", token, body).Code)
	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/events/signup", token, body).Code)

	var page struct {
		Signups []models.EventSignUp `json:"signups"`
	}
	decode(t, h.do(http.MethodGet, "/events/all-user-signup", token, nil), &page)
	require.Len(t, page.Signups, 1)
	require.NotNil(t, page.Signups[0].Event)
	assert.Equal(t, "Beach Cleanup", page.Signups[0].Event.EventTitle)

	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/events/withdraw"+q, token, nil).Code)
	assert.JSONEq(t, `{"hasSignedUp":false}`, h.do(http.MethodGet, "/events/check-signup"+q, token, nil).Body.String())

	var count int64
	require.NoError(t, h.db.Model(&models.EventSignUp{}).Count(&count).Error)
	assert.Zero(t, count)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/events/withdraw"+q, token, nil).Code)
}

func TestSignupRules(t *testing.T) {
	h := newHarness(t)
	alice, aliceToken := h.user("alice", models.RoleUser)
	bob, bobToken := h.user("bob", models.RoleUser)
	_, adminToken := h.user("admin", models.RoleAdmin)
	now := time.Now().UTC()

	limited := h.event("Small Workshop", 1, now.AddDate(0, 0, 2), 1, models.StatusActive)
	require.NoError(t, h.db.Model(&models.Event{}).Where("event_id = ?", limited.EventID).Update("signup_limit", 1).Error)
	past := h.event("Old", 1, now.AddDate(0, 0, -2), 1, models.StatusActive)
	pending := h.event("Pending", 1, now.AddDate(0, 0, 2), 1, models.StatusPending)

	sign := func(token string, userID, eventID uint) int {
		return h.do(http.MethodPost, "/events/signup", token, map[string]uint{"userId": userID, "eventId": eventID}).Code
	}

	assert.Equal(t, http.StatusCreated, sign(aliceToken, alice.UserID, limited.EventID))
	assert.Equal(t, http.StatusConflict, sign(bobToken, bob.UserID, limited.EventID))
	assert.Equal(t, http.StatusConflict, sign(bobToken, bob.UserID, past.EventID))
	assert.Equal(t, http.StatusConflict, sign(bobToken, bob.UserID, pending.EventID))
	assert.Equal(t, http.StatusNotFound, sign(bobToken, bob.UserID, 999))

	// acting for someone else needs admin rights
	assert.Equal(t, http.StatusForbidden, sign(bobToken, alice.UserID, pending.EventID))
	other := h.event("Open", 1, now.AddDate(0, 0, 3), 1, models.StatusActive)
	assert.Equal(t, http.StatusCreated, sign(adminToken, bob.UserID, other.EventID))

	assert.Equal(t, http.StatusUnauthorized, sign("", bob.UserID, other.EventID))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	body := map[string]string{
		"first_name": "Alice",
		"last_name":  "Tan",
		"username":   "alice",
		"email":      "Alice@EcoHub.test",
		"password":   "secret123",
		"phone_no":   "91234567",
		"location":   "Tampines",
	}
	w := h.do(http.MethodPost, "/user/register", "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string        `json:"accessToken"`
		User        utils.Profile `json:"user"`
	}
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "alice@ecohub.test", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.UserTypeID)

	body["username"] = "alice2"
	body["email"] = "alice@ecohub.test"
	w = h.do(http.MethodPost, "/user/register", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email already exists")

	var count int64
	require.NoError(t, h.db.Model(&models.User{}).Where("email = ?", "alice@ecohub.test").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	body["email"] = "not-an-email"
	body["password"] = "short"
	w = h.do(http.MethodPost, "/user/register", "", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var verr struct {
		Errors []validation.FieldError `json:"errors"`
	}
	decode(t, w, &verr)
	fields := map[string]bool{}
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestLoginAndAuth(t *testing.T) {
	h := newHarness(t)
	u, _ := h.user("alice", models.RoleOrganiser)

	w := h.do(http.MethodPost, "/user/login", "", map[string]string{"email": u.Email, "password": "wrongpass1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email or password is not correct.")

	w = h.do(http.MethodPost, "/user/login", "", map[string]string{"email": "nobody@ecohub.test", "password": "password1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/user/login", "", map[string]string{"email": strings.ToUpper(u.Email), "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, w, &resp)

	w = h.do(http.MethodGet, "/user/auth", resp.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		User utils.Profile `json:"user"`
	}
	decode(t, w, &me)
	assert.Equal(t, u.UserID, me.User.ID)
	assert.Equal(t, models.RoleOrganiser, me.User.UserTypeID)
	assert.Equal(t, "alice", me.User.Username)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/user/auth", "", nil).Code)
}

func TestGoogleLogin(t *testing.T) {
	h := newHarness(t)
	h.google.identity = &utils.GoogleIdentity{Email: "green.fan@gmail.com", EmailVerified: true, GivenName: "Green", FamilyName: "Fan"}

	for i := 0; i < 2; i++ {
		w := h.do(http.MethodPost, "/user/google-login", "", map[string]string{"credential": "token"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	var users []models.User
	require.NoError(t, h.db.Where("email = ?", "green.fan@gmail.com").Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "green_fan", users[0].Username)
	assert.Equal(t, models.RoleUser, users[0].UserTypeID)

	// a Google account cannot be used with the password login
	w := h.do(http.MethodPost, "/user/login", "", map[string]string{"email": "green.fan@gmail.com", "password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h.google.identity = &utils.GoogleIdentity{Email: "x@gmail.com", EmailVerified: false}
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/user/google-login", "", map[string]string{"credential": "token"}).Code)

	h.google.err = utils.ErrGoogleNotConfigured
	assert.Equal(t, http.StatusServiceUnavailable, h.do(http.MethodPost, "/user/google-login", "", map[string]string{"credential": "token"}).Code)
}

func TestUserManagement(t *testing.T) {
	h := newHarness(t)
	alice, aliceToken := h.user("alice", models.RoleUser)
	bob, _ := h.user("bob", models.RoleUser)
	_, adminToken := h.user("admin", models.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/user/users", aliceToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, fmt.Sprintf("/user/users/%d", bob.UserID), aliceToken, nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, fmt.Sprintf("/user/users/%d", alice.UserID), aliceToken, nil).Code)

	var page struct {
		Users      []models.User `json:"users"`
		TotalPages int           `json:"totalPages"`
	}
	w := h.do(http.MethodGet, "/admin/users?search=BOB", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	require.Len(t, page.Users, 1)
	assert.Equal(t, bob.UserID, page.Users[0].UserID)
	assert.NotContains(t, w.Body.String(), "argon2id")

	decode(t, h.do(http.MethodGet, fmt.Sprintf("/user/users?role=%d", models.RoleAdmin), adminToken, nil), &page)
	assert.Len(t, page.Users, 1)

	update := map[string]interface{}{
		"first_name": "Alicia", "last_name": "Tan", "username": "alice",
		"email": alice.Email, "phone_no": "98765432", "location": "Jurong", "user_type_id": models.RoleAdmin,
	}
	w = h.do(http.MethodPost, fmt.Sprintf("/user/users/%d", alice.UserID), aliceToken, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stored models.User
	require.NoError(t, h.db.First(&stored, alice.UserID).Error)
	assert.Equal(t, "Alicia", stored.FirstName)
	assert.Equal(t, models.RoleUser, stored.UserTypeID, "users cannot promote themselves")

	update["username"] = "bob"
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, fmt.Sprintf("/user/users/%d", alice.UserID), aliceToken, update).Code)

	create := map[string]interface{}{
		"first_name": "Olive", "last_name": "Org", "username": "olive", "email": "olive@ecohub.test",
		"password": "secret123", "phone_no": "91112222", "location": "Bedok", "user_type_id": models.RoleOrganiser,
	}
	w = h.do(http.MethodPost, "/user/users", adminToken, create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var olive models.User
	require.NoError(t, h.db.Where("username = ?", "olive").First(&olive).Error)
	assert.Equal(t, models.RoleOrganiser, olive.UserTypeID)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodDelete, fmt.Sprintf("/user/users/%d", bob.UserID), aliceToken, nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, fmt.Sprintf("/user/users/%d", bob.UserID), adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, fmt.Sprintf("/user/users/%d", bob.UserID), adminToken, nil).Code)

	h.event("Olive's Event", olive.UserID, time.Now().UTC().AddDate(0, 0, 1), 1, models.StatusActive)
	assert.Equal(t, http.StatusConflict, h.do(http.MethodDelete, fmt.Sprintf("/user/users/%d", olive.UserID), adminToken, nil).Code)
}

func TestRoleGuards(t *testing.T) {
	h := newHarness(t)
	_, userToken := h.user("alice", models.RoleUser)
	_, orgToken := h.user("olive", models.RoleOrganiser)
	_, adminToken := h.user("admin", models.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/admin/proposals", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/admin/proposals", userToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/admin/proposals", orgToken, nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/admin/proposals", adminToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/organiser/proposal", userToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/organiser/proposal", adminToken, nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/organiser/proposal", orgToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/rewards", userToken, map[string]string{}).Code)
}

func TestProposalLifecycle(t *testing.T) {
	h := newHarness(t)
	_, orgToken := h.user("olive", models.RoleOrganiser)
	_, adminToken := h.user("admin", models.RoleAdmin)
	day := time.Now().UTC().AddDate(0, 0, 10)

	// organisers cannot publish directly
	w := h.do(http.MethodPost, "/organiser/proposal", orgToken, eventBody(day, models.StatusActive))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var proposal models.Event
	decode(t, w, &proposal)
	assert.Equal(t, models.StatusPending, proposal.EventStatusID)

	var home struct {
		UpcomingEvents []models.Event `json:"upcomingEvents"`
	}
	decode(t, h.do(http.MethodGet, "/events", "", nil), &home)
	assert.Empty(t, home.UpcomingEvents)

	var pending eventPage
	decode(t, h.do(http.MethodGet, "/admin/proposals", adminToken, nil), &pending)
	assert.Equal(t, []uint{proposal.EventID}, ids(pending.Proposals))

	path := fmt.Sprintf("/admin/proposals/%d", proposal.EventID)
	w = h.do(http.MethodGet, path, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, path, adminToken, map[string]int{"event_status_id": 7}).Code)

	// reject, resubmit, then accept
	require.Equal(t, http.StatusOK, h.do(http.MethodPut, path, adminToken, map[string]int{"event_status_id": int(models.StatusRejected)}).Code)
	body := eventBody(day, models.StatusActive)
	body["event_title"] = "River Cleanup v2"
	w = h.do(http.MethodPut, fmt.Sprintf("/organiser/proposal/%d", proposal.EventID), orgToken, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stored models.Event
	require.NoError(t, h.db.First(&stored, proposal.EventID).Error)
	assert.Equal(t, models.StatusPending, stored.EventStatusID)
	assert.Equal(t, "River Cleanup v2", stored.EventTitle)

	require.Equal(t, http.StatusOK, h.do(http.MethodPut, path, adminToken, map[string]int{"event_status_id": int(models.StatusActive)}).Code)
	decode(t, h.do(http.MethodGet, "/events", "", nil), &home)
	assert.Equal(t, []uint{proposal.EventID}, ids(home.UpcomingEvents))

	// approved events are no longer proposals
	assert.Equal(t, http.StatusConflict, h.do(http.MethodDelete, fmt.Sprintf("/organiser/proposal/%d", proposal.EventID), orgToken, nil).Code)
	var mine eventPage
	decode(t, h.do(http.MethodGet, "/organiser/event?filter=upcoming", orgToken, nil), &mine)
	assert.Equal(t, []uint{proposal.EventID}, ids(mine.Events))
	decode(t, h.do(http.MethodGet, "/organiser/proposal", orgToken, nil), &mine)
	assert.Empty(t, mine.Proposals)
}

func TestEventValidation(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.user("admin", models.RoleAdmin)
	day := time.Now().UTC().AddDate(0, 0, 3)

	body := eventBody(day, 0)
	delete(body, "signup_limit")
	w := h.do(http.MethodPost, "/admin/event", adminToken, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "signup_limit")

	body["event_location_id"] = models.LocationOnline
	body["event_end_time"] = "08:00"
	w = h.do(http.MethodPost, "/admin/event", adminToken, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "event_end_time")

	body["event_end_time"] = "11:00"
	body["reward_id"] = 999
	w = h.do(http.MethodPost, "/admin/event", adminToken, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "reward_id")

	body["reward_id"] = 1
	w = h.do(http.MethodPost, "/admin/event", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ev models.Event
	decode(t, w, &ev)
	assert.Equal(t, models.StatusActive, ev.EventStatusID)
	assert.Nil(t, ev.SignupLimit)
	y, m, d := day.Date()
	assert.Equal(t, time.Date(y, m, d, 9, 0, 0, 0, time.UTC), ev.StartsAt.UTC())
}

func TestAdminEventCRUD(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.user("admin", models.RoleAdmin)
	_, otherAdmin := h.user("admin2", models.RoleAdmin)
	day := time.Now().UTC().AddDate(0, 0, 3)

	w := h.do(http.MethodPost, "/admin/event", adminToken, eventBody(day, models.StatusActive))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ev models.Event
	decode(t, w, &ev)
	path := fmt.Sprintf("/admin/event/%d", ev.EventID)

	var list eventPage
	decode(t, h.do(http.MethodGet, "/admin/event", adminToken, nil), &list)
	assert.Equal(t, []uint{ev.EventID}, ids(list.Events))
	decode(t, h.do(http.MethodGet, "/admin/event?filter=past", adminToken, nil), &list)
	assert.Empty(t, list.Events)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, path, adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, otherAdmin, nil).Code)

	body := eventBody(day, 0)
	body["event_title"] = "Renamed"
	require.Equal(t, http.StatusOK, h.do(http.MethodPut, path, adminToken, body).Code)
	var stored models.Event
	require.NoError(t, h.db.First(&stored, ev.EventID).Error)
	assert.Equal(t, "Renamed", stored.EventTitle)
	assert.Equal(t, models.StatusActive, stored.EventStatusID)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, path, otherAdmin, nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, path, adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, adminToken, nil).Code)
}

func TestAttendanceBatch(t *testing.T) {
	h := newHarness(t)
	org, orgToken := h.user("olive", models.RoleOrganiser)
	_, otherOrg := h.user("oscar", models.RoleOrganiser)
	alice, _ := h.user("alice", models.RoleUser)
	bob, _ := h.user("bob", models.RoleUser)
	ev := h.event("Cleanup", org.UserID, time.Now().UTC().AddDate(0, 0, 1), 1, models.StatusActive)
	for _, uid := range []uint{alice.UserID, bob.UserID} {
		require.NoError(t, h.db.Create(&models.EventSignUp{
			EventID: ev.EventID, UserID: uid, SignUpDate: time.Now().UTC(),
			Status: models.SignUpRegistered, Attendance: models.AttendanceNotMarked,
		}).Error)
	}
	path := fmt.Sprintf("/organiser/event/%d/attendance", ev.EventID)
	upd := func(updates ...map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{"attendanceUpdates": updates}
	}
	marked := func() int64 {
		var n int64
		require.NoError(t, h.db.Model(&models.EventSignUp{}).Where("attendance = ?", models.AttendanceMarked).Count(&n).Error)
		return n
	}

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, path, orgToken, upd()).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, path, orgToken,
		upd(map[string]interface{}{"userId": alice.UserID, "attendance": "present"})).Code)

	w := h.do(http.MethodPut, path, orgToken, upd(
		map[string]interface{}{"userId": alice.UserID, "attendance": "marked"},
		map[string]interface{}{"userId": 999, "attendance": "marked"},
	))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "999")
	assert.Zero(t, marked())

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPut, path, otherOrg,
		upd(map[string]interface{}{"userId": alice.UserID, "attendance": "marked"})).Code)

	w = h.do(http.MethodPut, path, orgToken, upd(
		map[string]interface{}{"userId": alice.UserID, "attendance": "marked"},
		map[string]interface{}{"userId": bob.UserID, "attendance": "marked"},
	))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, marked())

	var list struct {
		Attendance []controllers.AttendanceRow `json:"attendance"`
	}
	decode(t, h.do(http.MethodGet, path, orgToken, nil), &list)
	require.Len(t, list.Attendance, 2)
	assert.Equal(t, "alice", list.Attendance[0].Username)
	assert.Equal(t, "Cleanup", list.Attendance[0].EventTitle)
	assert.Equal(t, models.AttendanceMarked, list.Attendance[0].Attendance)
}

func TestAdminAttendanceOnOrganiserEvent(t *testing.T) {
	h := newHarness(t)
	org, _ := h.user("olive", models.RoleOrganiser)
	_, adminToken := h.user("admin", models.RoleAdmin)
	alice, _ := h.user("alice", models.RoleUser)
	ev := h.event("Cleanup", org.UserID, time.Now().UTC().AddDate(0, 0, 1), 1, models.StatusActive)
	require.NoError(t, h.db.Create(&models.EventSignUp{
		EventID: ev.EventID, UserID: alice.UserID, SignUpDate: time.Now().UTC(),
		Status: models.SignUpRegistered, Attendance: models.AttendanceNotMarked,
	}).Error)
	path := fmt.Sprintf("/admin/event/%d/attendance", ev.EventID)

	var list struct {
		Attendance []controllers.AttendanceRow `json:"attendance"`
	}
	w := h.do(http.MethodGet, path, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &list)
	require.Len(t, list.Attendance, 1)
	assert.Equal(t, alice.UserID, list.Attendance[0].UserID)

	w = h.do(http.MethodPut, path, adminToken, map[string]interface{}{
		"attendanceUpdates": []map[string]interface{}{{"userId": alice.UserID, "attendance": "marked"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stored models.EventSignUp
	require.NoError(t, h.db.Where("event_id = ? AND user_id = ?", ev.EventID, alice.UserID).First(&stored).Error)
	assert.Equal(t, models.AttendanceMarked, stored.Attendance)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/admin/event/999/attendance", adminToken, nil).Code)
}

func TestRewardClaimQuantity(t *testing.T) {
	h := newHarness(t)
	alice, aliceToken := h.user("alice", models.RoleUser)
	bob, bobToken := h.user("bob", models.RoleUser)
	reward := models.Reward{RewardName: "Voucher", RewardsTypeID: 1, RewardQuantity: 1, RewardDuration: 7, RewardDescription: "Last one"}
	require.NoError(t, h.db.Create(&reward).Error)

	claim := func(token string, userID uint) int {
		return h.do(http.MethodPost, "/rewards/claimreward", token, map[string]uint{"userId": userID, "reward_id": reward.RewardID}).Code
	}
	assert.Equal(t, http.StatusForbidden, claim(aliceToken, bob.UserID))
	assert.Equal(t, http.StatusCreated, claim(aliceToken, alice.UserID))
	assert.Equal(t, http.StatusConflict, claim(bobToken, bob.UserID))

	var count int64
	require.NoError(t, h.db.Model(&models.RewardClaim{}).Where("reward_id = ?", reward.RewardID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	var stored models.Reward
	require.NoError(t, h.db.First(&stored, reward.RewardID).Error)
	assert.Zero(t, stored.RewardQuantity)

	var claims struct {
		ClaimedRewards []models.RewardClaim `json:"claimedRewards"`
	}
	decode(t, h.do(http.MethodGet, fmt.Sprintf("/rewards/viewclaimedrewards/%d", alice.UserID), aliceToken, nil), &claims)
	require.Len(t, claims.ClaimedRewards, 1)
	require.NotNil(t, claims.ClaimedRewards[0].Reward)
	assert.Equal(t, "Voucher", claims.ClaimedRewards[0].Reward.RewardName)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, fmt.Sprintf("/rewards/viewclaimedrewards/%d", alice.UserID), bobToken, nil).Code)
}

func TestRewardCatalogue(t *testing.T) {
	h := newHarness(t)
	_, adminToken := h.user("admin", models.RoleAdmin)

	w := h.do(http.MethodPost, "/rewards", adminToken, map[string]interface{}{
		"reward_name": "Plant Voucher", "rewards_type_id": 1, "reward_quantity": 5,
		"reward_duration": 30, "reward_description": "Nursery discount",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Reward
	decode(t, w, &created)

	var list struct {
		Rewards []models.Reward `json:"currentrewards"`
	}
	decode(t, h.do(http.MethodGet, "/rewards?search=plant", "", nil), &list)
	require.Len(t, list.Rewards, 1)
	require.NotNil(t, list.Rewards[0].RewardsType)
	assert.Equal(t, "Voucher", list.Rewards[0].RewardsType.RewardsTypeDescription)
	decode(t, h.do(http.MethodGet, "/rewards?type=3", "", nil), &list)
	assert.Len(t, list.Rewards, 1)

	var filtered struct {
		Selected []models.Reward `json:"selected_rewards"`
	}
	decode(t, h.do(http.MethodPost, "/rewards/filtered", "", map[string]string{"requestBody_type": "Voucher"}), &filtered)
	assert.Equal(t, created.RewardID, filtered.Selected[0].RewardID)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/rewards/filtered", "", map[string]string{"requestBody_type": "Nope"}).Code)

	upd := map[string]interface{}{
		"reward_name": "Plant Voucher XL", "rewards_type_id": 2, "reward_quantity": 9,
		"reward_duration": 60, "reward_description": "Bigger discount",
	}
	require.Equal(t, http.StatusOK, h.do(http.MethodPut, fmt.Sprintf("/rewards/update/%d", created.RewardID), adminToken, upd).Code)
	var details models.Reward
	decode(t, h.do(http.MethodGet, fmt.Sprintf("/rewards/details/%d", created.RewardID), "", nil), &details)
	assert.Equal(t, "Plant Voucher XL", details.RewardName)
	assert.Equal(t, 9, details.RewardQuantity)

	w = h.do(http.MethodPost, "/rewards/addcategory", adminToken, map[string]interface{}{"reward_id": created.RewardID, "category_name": "Green"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	// assigning the same tag twice keeps one row
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/rewards/addcategory", adminToken, map[string]interface{}{"reward_id": created.RewardID, "category_name": "Green"}).Code)
	var tags []models.RewardCategoryAssignment
	decode(t, h.do(http.MethodGet, fmt.Sprintf("/rewards/viewtags/%d", created.RewardID), "", nil), &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, "Green", tags[0].RewardCategory.EventCatDescription)
	var cats []models.RewardCategory
	decode(t, h.do(http.MethodGet, "/rewards/categories", "", nil), &cats)
	assert.Len(t, cats, 1)

	w = h.do(http.MethodPost, "/rewards/types", adminToken, map[string]string{"rewards_type_description": "Experience"})
	require.Equal(t, http.StatusCreated, w.Code)
	var types struct {
		RewardTypes []models.RewardsType `json:"rewardtypes"`
	}
	decode(t, h.do(http.MethodGet, "/rewards/types", "", nil), &types)
	assert.Len(t, types.RewardTypes, 4)

	// rewards offered by an event stay
	h.event("Linked", 1, time.Now().UTC().AddDate(0, 0, 1), 1, models.StatusActive)
	assert.Equal(t, http.StatusConflict, h.do(http.MethodDelete, "/rewards", adminToken, map[string]uint{"id": h.reward.RewardID}).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/rewards", adminToken, map[string]uint{"id": created.RewardID}).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/rewards", adminToken, map[string]uint{"id": created.RewardID}).Code)
}

// smallest PNG signature mimetype recognises
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func TestUploadFile(t *testing.T) {
	h := newHarness(t)
	_, token := h.user("alice", models.RoleUser)

	upload := func(content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/file/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.router.ServeHTTP(w, req)
		return w
	}

	w := upload(pngBytes)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Filename string `json:"filename"`
	}
	decode(t, w, &resp)
	assert.True(t, strings.HasSuffix(resp.Filename, ".png"))

	served := h.do(http.MethodGet, "/uploads/"+resp.Filename, "", nil)
	assert.Equal(t, http.StatusOK, served.Code)

	assert.Equal(t, http.StatusBadRequest, upload([]byte("plain text")).Code)
}
