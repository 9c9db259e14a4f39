package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stays/src/config"
	"stays/src/db"
	"stays/src/middlewares"
	"stays/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type TestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("staydate", stayDateValidatorFunc)
		v.RegisterValidation("gtdate", gtdate)
	}
	router := setupRouter()
	publicRoutes(router)
	guestAuthRoutes(router)
	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		bookingHandlers(authorized)
		listingHandlers(authorized)
		reviewHandlers(authorized)
	}
	s.router = router
}

func (s *TestSuite) SetupTest() {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	sqlDB, err := gdb.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	err = gdb.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Booking{},
		&models.Review{},
	)
	s.Require().NoError(err)
	db.NewDB(gdb)
}

// stayDate keeps fixtures relative to today so past-date validation never
// bites as the calendar moves.
func stayDate(daysOut int) string {
	return time.Now().UTC().AddDate(0, 0, daysOut).Format(config.DATE_PARSE_FORMAT)
}

func (s *TestSuite) request(method, path, body, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// registerUser signs a user up over the API and returns their login token.
func (s *TestSuite) registerUser(name, email string) string {
	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":"s3cret-pass"}`, name, email)
	w := s.request(http.MethodPost, "/api/v1/auth/register", body, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/api/v1/auth/login", fmt.Sprintf(`{"email":%q,"password":"s3cret-pass"}`, email), "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	token := gjson.Get(w.Body.String(), "token").String()
	s.Require().NotEmpty(token)
	return token
}

func (s *TestSuite) promoteToAdmin(email string) {
	err := db.GetDb().
		Model(&models.User{}).
		Where(&models.User{Email: email}).
		Update("role", "admin").
		Error
	s.Require().NoError(err)
}

func (s *TestSuite) createListing(token string) string {
	body := `{"title":"Harbor Loft","city":"Hamburg","country":"DE","price_per_night":100,"max_guests":4}`
	w := s.request(http.MethodPost, "/api/v1/listings", body, token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "listing.id").String()
}

func (s *TestSuite) createBooking(token, listingID, checkIn, checkOut string) string {
	body := fmt.Sprintf(`{"listing_id":%q,"check_in":%q,"check_out":%q,"num_guests":2}`, listingID, checkIn, checkOut)
	w := s.request(http.MethodPost, "/api/v1/bookings", body, token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "booking.id").String()
}

func (s *TestSuite) TestPingRoute() {
	w := s.request(http.MethodGet, "/", "", "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *TestSuite) TestRegisterValidation() {
	w := s.request(http.MethodPost, "/api/v1/auth/register", `{"name":"x"}`, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TestSuite) TestRegisterDuplicateEmail() {
	s.registerUser("Dana", "dana@example.test")
	body := `{"name":"Dana Again","email":"dana@example.test","password":"s3cret-pass"}`
	w := s.request(http.MethodPost, "/api/v1/auth/register", body, "")
	s.Equal(http.StatusConflict, w.Code)
}

func (s *TestSuite) TestLoginRejectsBadPassword() {
	s.registerUser("Dana", "dana@example.test")
	w := s.request(http.MethodPost, "/api/v1/auth/login", `{"email":"dana@example.test","password":"wrong"}`, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *TestSuite) TestRequiresAuthentication() {
	w := s.request(http.MethodGet, "/api/v1/bookings", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *TestSuite) TestBookingFlow() {
	hostToken := s.registerUser("Hanna Host", "host@example.test")
	guestToken := s.registerUser("Gil Guest", "guest@example.test")
	listingID := s.createListing(hostToken)

	bookingID := s.createBooking(guestToken, listingID, stayDate(60), stayDate(63))

	w := s.request(http.MethodGet, "/api/v1/bookings", "", guestToken)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())
	s.Equal(float64(300), gjson.Get(w.Body.String(), "bookings.0.total_price").Float())

	// Overlapping dates are taken, adjacent dates are not.
	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/listings/%s/availability?check_in=%s&check_out=%s", listingID, stayDate(61), stayDate(64)), "", "")
	s.Equal(http.StatusOK, w.Code)
	s.False(gjson.Get(w.Body.String(), "available").Bool())
	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/listings/%s/availability?check_in=%s&check_out=%s", listingID, stayDate(63), stayDate(66)), "", "")
	s.Equal(http.StatusOK, w.Code)
	s.True(gjson.Get(w.Body.String(), "available").Bool())

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/pay", bookingID), `{"outcome":true}`, guestToken)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("confirmed", gjson.Get(w.Body.String(), "booking.status").String())
	s.Equal("paid", gjson.Get(w.Body.String(), "booking.payment_status").String())

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/pay", bookingID), `{"outcome":true}`, guestToken)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TestSuite) TestFailedPaymentReturns402() {
	hostToken := s.registerUser("Hanna Host", "host@example.test")
	guestToken := s.registerUser("Gil Guest", "guest@example.test")
	listingID := s.createListing(hostToken)
	bookingID := s.createBooking(guestToken, listingID, stayDate(60), stayDate(63))

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/pay", bookingID), `{"outcome":false}`, guestToken)
	s.Equal(http.StatusPaymentRequired, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%s", bookingID), "", guestToken)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("pending", gjson.Get(w.Body.String(), "booking.status").String())
	s.Equal("failed", gjson.Get(w.Body.String(), "booking.payment_status").String())
}

func (s *TestSuite) TestBookingDateBindingRejected() {
	hostToken := s.registerUser("Hanna Host", "host@example.test")
	guestToken := s.registerUser("Gil Guest", "guest@example.test")
	listingID := s.createListing(hostToken)

	body := fmt.Sprintf(`{"listing_id":%q,"check_in":%q,"check_out":%q,"num_guests":2}`, listingID, stayDate(63), stayDate(60))
	w := s.request(http.MethodPost, "/api/v1/bookings", body, guestToken)
	s.Equal(http.StatusBadRequest, w.Code)

	body = fmt.Sprintf(`{"listing_id":%q,"check_in":"July 1st","check_out":%q,"num_guests":2}`, listingID, stayDate(63))
	w = s.request(http.MethodPost, "/api/v1/bookings", body, guestToken)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TestSuite) TestCancellationFlow() {
	hostToken := s.registerUser("Hanna Host", "host@example.test")
	guestToken := s.registerUser("Gil Guest", "guest@example.test")
	listingID := s.createListing(hostToken)
	bookingID := s.createBooking(guestToken, listingID, stayDate(60), stayDate(63))

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/pay", bookingID), `{"outcome":true}`, guestToken)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%s/cancel", bookingID), "", guestToken)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("cancellation_requested", gjson.Get(w.Body.String(), "booking.status").String())

	// Check-in is far enough out for a full refund on approval.
	w = s.request(http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%s/cancel/approve", bookingID), "", hostToken)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("cancelled", gjson.Get(w.Body.String(), "booking.status").String())
	s.Equal("refunded", gjson.Get(w.Body.String(), "booking.payment_status").String())
	s.Equal("full", gjson.Get(w.Body.String(), "refund.type").String())
	s.Equal(float64(300), gjson.Get(w.Body.String(), "refund.amount").Float())
}

func (s *TestSuite) TestAdminRoutes() {
	hostToken := s.registerUser("Hanna Host", "host@example.test")
	guestToken := s.registerUser("Gil Guest", "guest@example.test")
	listingID := s.createListing(hostToken)
	bookingID := s.createBooking(guestToken, listingID, stayDate(60), stayDate(63))

	w := s.request(http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%s/status", bookingID), `{"status":"completed"}`, guestToken)
	s.Equal(http.StatusForbidden, w.Code)

	s.registerUser("Ada Admin", "admin@example.test")
	s.promoteToAdmin("admin@example.test")
	adminToken := s.loginAgain("admin@example.test")

	w = s.request(http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%s/status", bookingID), `{"status":"completed"}`, adminToken)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("completed", gjson.Get(w.Body.String(), "booking.status").String())
}

func (s *TestSuite) loginAgain(email string) string {
	w := s.request(http.MethodPost, "/api/v1/auth/login", fmt.Sprintf(`{"email":%q,"password":"s3cret-pass"}`, email), "")
	s.Require().Equal(http.StatusOK, w.Code)
	return gjson.Get(w.Body.String(), "token").String()
}

func (s *TestSuite) TestReviewFlow() {
	hostToken := s.registerUser("Hanna Host", "host@example.test")
	guestToken := s.registerUser("Gil Guest", "guest@example.test")
	listingID := s.createListing(hostToken)
	bookingID := s.createBooking(guestToken, listingID, stayDate(60), stayDate(63))

	w := s.request(http.MethodGet, fmt.Sprintf("/api/v1/reviews/eligibility/%s", bookingID), "", guestToken)
	s.Equal(http.StatusOK, w.Code)
	s.False(gjson.Get(w.Body.String(), "eligible").Bool())

	s.registerUser("Ada Admin", "admin@example.test")
	s.promoteToAdmin("admin@example.test")
	adminToken := s.loginAgain("admin@example.test")
	w = s.request(http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%s/status", bookingID), `{"status":"completed"}`, adminToken)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/reviews/eligibility/%s", bookingID), "", guestToken)
	s.Equal(http.StatusOK, w.Code)
	s.True(gjson.Get(w.Body.String(), "eligible").Bool())

	body := fmt.Sprintf(`{"booking_id":%q,"rating":5,"comment":"spotless"}`, bookingID)
	w = s.request(http.MethodPost, "/api/v1/reviews", body, guestToken)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	reviewID := gjson.Get(w.Body.String(), "review.id").String()

	w = s.request(http.MethodPost, "/api/v1/reviews", body, guestToken)
	s.Equal(http.StatusConflict, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/reviews/listing/%s", listingID), "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())

	w = s.request(http.MethodPatch, fmt.Sprintf("/api/v1/reviews/%s/flag", reviewID), `{"reason":"suspect"}`, hostToken)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("flagged", gjson.Get(w.Body.String(), "review.status").String())

	w = s.request(http.MethodGet, "/api/v1/reviews/flagged", "", adminToken)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())

	w = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%s", reviewID), "", adminToken)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("removed", gjson.Get(w.Body.String(), "review.status").String())
}

func TestMainSuite(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
