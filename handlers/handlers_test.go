package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"swasthsetu/auth"
	"swasthsetu/database"
	"swasthsetu/middleware"
	"swasthsetu/models"
	"swasthsetu/service"
	"swasthsetu/signaling"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	service.InitServices(db, 30)
	tm := auth.NewTokenManager("handler-test-secret", time.Minute, time.Hour)
	Init(tm, nil)
	Hub = signaling.NewHub()

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", Register)
	api.POST("/auth/login", Login)
	api.POST("/auth/refresh", Refresh)
	api.GET("/doctors", ListDoctors)
	api.GET("/doctors/:id/availability", GetDoctorAvailability)

	authed := api.Group("", middleware.RequireAuth(tm))
	authed.GET("/auth/me", Me)
	authed.POST("/appointments", CreateAppointment)
	authed.GET("/appointments", ListAppointments)
	authed.POST("/symptom-check", CheckSymptoms)

	doctor := authed.Group("/doctor", middleware.RequireDoctor())
	doctor.GET("/me", MyDoctorProfile)

	admin := authed.Group("/admin", middleware.RequireStaff())
	admin.GET("/users", ListUsers)

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope from %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "secret123",
		"password_confirm": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: HTTP %d: %s", w.Code, w.Body.String())
	}

	w, resp := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: HTTP %d: %s", w.Code, w.Body.String())
	}

	data := resp.Data.(map[string]any)
	token, _ := data["access"].(string)
	if token == "" {
		t.Fatalf("expected access token, got %v", resp.Data)
	}
	return token
}

func seedDoctor(t *testing.T, db *gorm.DB, username string) *models.Doctor {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsDoctor:     true,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed doctor user: %v", err)
	}
	doctor := models.Doctor{UserID: user.ID, Specialty: "General Physician", Available: true}
	if err := db.Create(&doctor).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return &doctor
}

func TestRegisterLoginAndMe(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := registerAndLogin(t, r, "asha")

	w, resp := doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: HTTP %d: %s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]any)
	if data["username"] != "asha" {
		t.Fatalf("expected username asha, got %v", data["username"])
	}
	if data["is_doctor"] != false {
		t.Fatalf("registration must not grant roles: %v", data)
	}

	// without a token the endpoint rejects
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w2.Code)
	}
}

func TestRegisterRejectsMismatchedPasswords(t *testing.T) {
	r, _ := setupTestRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":         "bala",
		"email":            "bala@example.com",
		"password":         "secret123",
		"password_confirm": "different",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Code != CodeInvalidRequest {
		t.Fatalf("expected %s, got %s", CodeInvalidRequest, resp.Code)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := registerAndLogin(t, r, "charu")

	w, _ := doJSON(t, r, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refresh": token, // access token in the refresh slot
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDoctorRoleRequired(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := registerAndLogin(t, r, "patient1")

	w, _ := doJSON(t, r, http.MethodGet, "/api/doctor/me", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-doctor, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStaffRoleRequired(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := registerAndLogin(t, r, "patient2")

	w, _ := doJSON(t, r, http.MethodGet, "/api/admin/users", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-staff, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBookingFlowAndConflict(t *testing.T) {
	r, db := setupTestRouter(t)
	doctor := seedDoctor(t, db, "drbook")
	token := registerAndLogin(t, r, "booker")

	body := map[string]any{
		"doctor_id":      doctor.ID,
		"scheduled_date": "2026-08-24",
		"scheduled_time": "10:00",
		"reason":         "fever",
	}
	w, resp := doJSON(t, r, http.MethodPost, "/api/appointments", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("booking: HTTP %d: %s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]any)
	if data["status"] != models.AppointmentScheduled {
		t.Fatalf("expected scheduled appointment, got %v", data)
	}

	// the same overlapping slot conflicts
	other := registerAndLogin(t, r, "booker2")
	body["scheduled_time"] = "10:15"
	w, resp = doJSON(t, r, http.MethodPost, "/api/appointments", other, body)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for overlapping slot, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Code != CodeConflict {
		t.Fatalf("expected %s, got %s", CodeConflict, resp.Code)
	}

	// the booking is listed for the patient
	w, resp = doJSON(t, r, http.MethodGet, "/api/appointments", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: HTTP %d", w.Code)
	}
	if items := resp.Data.([]any); len(items) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(items))
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	r, db := setupTestRouter(t)
	doctor := seedDoctor(t, db, "drslots")

	if err := db.Create(&models.DoctorSchedule{
		DoctorID:    doctor.ID,
		DayOfWeek:   0,
		StartTime:   "09:00",
		EndTime:     "10:00",
		IsAvailable: true,
	}).Error; err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	// 2026-08-24 is a Monday
	w, resp := doJSON(t, r, http.MethodGet,
		"/api/doctors/1/availability?date=2026-08-24", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("availability: HTTP %d: %s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]any)
	slots := data["available_slots"].([]any)
	if len(slots) != 2 || slots[0] != "09:00" || slots[1] != "09:30" {
		t.Fatalf("expected slots [09:00 09:30], got %v", slots)
	}

	// missing date parameter
	w, _ = doJSON(t, r, http.MethodGet, "/api/doctors/1/availability", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without date, got %d", w.Code)
	}
}

func TestListDoctorsFilter(t *testing.T) {
	r, db := setupTestRouter(t)
	seedDoctor(t, db, "drgp")
	derm := seedDoctor(t, db, "drskin")
	if err := db.Model(derm).Update("specialty", "Dermatologist").Error; err != nil {
		t.Fatalf("update specialty: %v", err)
	}

	w, resp := doJSON(t, r, http.MethodGet, "/api/doctors?specialty=derma", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list doctors: HTTP %d", w.Code)
	}
	items := resp.Data.([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 dermatologist, got %d", len(items))
	}
	first := items[0].(map[string]any)
	if first["specialty"] != "Dermatologist" {
		t.Fatalf("unexpected doctor: %v", first)
	}
}

func TestSymptomCheckerUnconfigured(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := registerAndLogin(t, r, "sick1")

	w, _ := doJSON(t, r, http.MethodPost, "/api/symptom-check", token, map[string]string{
		"symptoms": "headache and fever",
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when unconfigured, got %d: %s", w.Code, w.Body.String())
	}
}
