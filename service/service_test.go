package service

import (
	"errors"
	"testing"
	"time"

	"swasthsetu/database"
	"swasthsetu/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testServices(t *testing.T) *Services {
	t.Helper()

	db := testDB(t)
	notificationSvc := NewNotificationService(db)
	doctorSvc := NewDoctorService(db)
	return &Services{
		User:         NewUserService(db),
		Doctor:       doctorSvc,
		Appointment:  NewAppointmentService(db, doctorSvc, notificationSvc, 30),
		Pharmacy:     NewPharmacyService(db),
		Notification: notificationSvc,
		VideoCall:    NewVideoCallService(db),
		Application:  NewApplicationService(db),
	}
}

func registerUser(t *testing.T, svc *Services, username string) *models.User {
	t.Helper()

	user, err := svc.User.Register(models.RegisterRequest{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "secret123",
		PasswordConfirm: "secret123",
		FirstName:       "Test",
		LastName:        username,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func makeDoctor(t *testing.T, svc *Services, db *gorm.DB, username string) *models.Doctor {
	t.Helper()

	user := registerUser(t, svc, username)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_doctor", true).Error; err != nil {
		t.Fatalf("grant doctor role: %v", err)
	}
	doctor, err := svc.Doctor.GetOrCreateProfile(user.ID)
	if err != nil {
		t.Fatalf("create doctor profile: %v", err)
	}
	return doctor
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := testServices(t)

	registerUser(t, svc, "asha")

	_, err := svc.User.Register(models.RegisterRequest{
		Username:        "asha",
		Email:           "other@example.com",
		Password:        "secret123",
		PasswordConfirm: "secret123",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticateByUsernameOrEmail(t *testing.T) {
	svc := testServices(t)
	registerUser(t, svc, "ravi")

	if _, err := svc.User.Authenticate(models.LoginRequest{Username: "ravi", Password: "secret123"}); err != nil {
		t.Fatalf("authenticate by username: %v", err)
	}
	if _, err := svc.User.Authenticate(models.LoginRequest{Email: "ravi@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("authenticate by email: %v", err)
	}
	if _, err := svc.User.Authenticate(models.LoginRequest{Username: "ravi", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateRejectsDisabled(t *testing.T) {
	svc := testServices(t)
	user := registerUser(t, svc, "mira")

	if _, err := svc.User.ToggleActive(user.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := svc.User.Authenticate(models.LoginRequest{Username: "mira", Password: "secret123"}); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestScheduleValidation(t *testing.T) {
	svc := testServices(t)
	db := svc.Doctor.db
	doctor := makeDoctor(t, svc, db, "drkhan")

	day := 0
	cases := []struct {
		name  string
		start string
		end   string
	}{
		{"bad start", "9am", "17:00"},
		{"bad end", "09:00", "25:00"},
		{"inverted", "17:00", "09:00"},
	}
	for _, tc := range cases {
		_, err := svc.Doctor.SetSchedule(doctor.ID, models.ScheduleCreate{
			DayOfWeek: &day,
			StartTime: tc.start,
			EndTime:   tc.end,
		})
		if !errors.Is(err, ErrInvalidSchedule) {
			t.Fatalf("%s: expected ErrInvalidSchedule, got %v", tc.name, err)
		}
	}

	row, err := svc.Doctor.SetSchedule(doctor.ID, models.ScheduleCreate{
		DayOfWeek: &day,
		StartTime: "09:00",
		EndTime:   "12:00",
	})
	if err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	if row.DayOfWeek != 0 || row.StartTime != "09:00" {
		t.Fatalf("unexpected schedule row: %+v", row)
	}

	// setting the same weekday again replaces, not duplicates
	if _, err := svc.Doctor.SetSchedule(doctor.ID, models.ScheduleCreate{
		DayOfWeek: &day,
		StartTime: "10:00",
		EndTime:   "13:00",
	}); err != nil {
		t.Fatalf("replace schedule: %v", err)
	}
	rows, err := svc.Doctor.Schedules(doctor.ID)
	if err != nil {
		t.Fatalf("Schedules: %v", err)
	}
	if len(rows) != 1 || rows[0].StartTime != "10:00" {
		t.Fatalf("expected one replaced row, got %+v", rows)
	}
}

func TestAvailabilitySlots(t *testing.T) {
	svc := testServices(t)
	db := svc.Doctor.db
	doctor := makeDoctor(t, svc, db, "drrao")

	// 2026-08-24 is a Monday
	day := 0
	if _, err := svc.Doctor.SetSchedule(doctor.ID, models.ScheduleCreate{
		DayOfWeek: &day,
		StartTime: "09:00",
		EndTime:   "11:00",
	}); err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}

	patient := registerUser(t, svc, "sunil")
	if _, err := svc.Appointment.Create(patient.ID, models.AppointmentCreate{
		DoctorID:      doctor.ID,
		ScheduledDate: "2026-08-24",
		ScheduledTime: "09:30",
	}); err != nil {
		t.Fatalf("Create appointment: %v", err)
	}

	avail, err := svc.Doctor.Availability(doctor.ID, "2026-08-24", 30)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	want := []string{"09:00", "10:00", "10:30"}
	if len(avail.Slots) != len(want) {
		t.Fatalf("expected slots %v, got %v", want, avail.Slots)
	}
	for i, slot := range want {
		if avail.Slots[i] != slot {
			t.Fatalf("expected slots %v, got %v", want, avail.Slots)
		}
	}

	// Tuesday has no schedule
	offDay, err := svc.Doctor.Availability(doctor.ID, "2026-08-25", 30)
	if err != nil {
		t.Fatalf("Availability off day: %v", err)
	}
	if len(offDay.Slots) != 0 || offDay.Message == "" {
		t.Fatalf("expected empty slots with message, got %+v", offDay)
	}
}

func TestCreateAppointmentRejectsOverlap(t *testing.T) {
	svc := testServices(t)
	db := svc.Doctor.db
	doctor := makeDoctor(t, svc, db, "drsen")
	patient := registerUser(t, svc, "kavya")
	other := registerUser(t, svc, "rohan")

	req := models.AppointmentCreate{
		DoctorID:      doctor.ID,
		ScheduledDate: "2026-08-24",
		ScheduledTime: "10:00",
	}
	if _, err := svc.Appointment.Create(patient.ID, req); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// same doctor, overlapping slot 15 minutes in
	req.ScheduledTime = "10:15"
	if _, err := svc.Appointment.Create(other.ID, req); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken for doctor overlap, got %v", err)
	}

	// same patient, different doctor, same time
	doctor2 := makeDoctor(t, svc, db, "drnair")
	req2 := models.AppointmentCreate{
		DoctorID:      doctor2.ID,
		ScheduledDate: "2026-08-24",
		ScheduledTime: "10:00",
	}
	if _, err := svc.Appointment.Create(patient.ID, req2); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken for patient overlap, got %v", err)
	}

	// a cancelled appointment frees the slot
	appts, err := svc.Appointment.ListFor(patient.ID, false, AppointmentFilter{})
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if _, err := svc.Appointment.Cancel(patient.ID, false, appts[0].ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	req.ScheduledTime = "10:00"
	if _, err := svc.Appointment.Create(other.ID, req); err != nil {
		t.Fatalf("rebooking freed slot: %v", err)
	}
}

func TestBookingNotifiesBothParties(t *testing.T) {
	svc := testServices(t)
	db := svc.Doctor.db
	doctor := makeDoctor(t, svc, db, "drjoshi")
	patient := registerUser(t, svc, "leela")

	if _, err := svc.Appointment.Create(patient.ID, models.AppointmentCreate{
		DoctorID:      doctor.ID,
		ScheduledDate: "2026-08-24",
		ScheduledTime: "14:00",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	patientNotifs, err := svc.Notification.ListFor(patient.ID)
	if err != nil {
		t.Fatalf("ListFor patient: %v", err)
	}
	if len(patientNotifs) != 1 || patientNotifs[0].Type != models.NotifyAppointment {
		t.Fatalf("expected one booking notification for patient, got %+v", patientNotifs)
	}
	if patientNotifs[0].Message == "" {
		t.Fatalf("expected notification message text")
	}

	doctorNotifs, err := svc.Notification.ListFor(doctor.UserID)
	if err != nil {
		t.Fatalf("ListFor doctor: %v", err)
	}
	if len(doctorNotifs) != 1 {
		t.Fatalf("expected one booking notification for doctor, got %d", len(doctorNotifs))
	}
}

func TestUpdateAppointmentRoleScopes(t *testing.T) {
	svc := testServices(t)
	db := svc.Doctor.db
	doctor := makeDoctor(t, svc, db, "drmehta")
	patient := registerUser(t, svc, "arjun")

	appt, err := svc.Appointment.Create(patient.ID, models.AppointmentCreate{
		DoctorID:      doctor.ID,
		ScheduledDate: "2026-08-24",
		ScheduledTime: "09:00",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// patient cannot change status
	updated, err := svc.Appointment.Update(patient.ID, false, appt.ID, models.AppointmentUpdate{
		Status: models.AppointmentConfirmed,
		Notes:  "feeling dizzy since morning",
	})
	if err != nil {
		t.Fatalf("patient update: %v", err)
	}
	if updated.Status != models.AppointmentScheduled {
		t.Fatalf("patient must not change status, got %q", updated.Status)
	}
	if updated.Notes != "feeling dizzy since morning" {
		t.Fatalf("expected patient notes to be saved, got %q", updated.Notes)
	}

	// doctor confirms and prescribes
	updated, err = svc.Appointment.Update(doctor.UserID, true, appt.ID, models.AppointmentUpdate{
		Status:       models.AppointmentConfirmed,
		Prescription: "paracetamol 500mg",
	})
	if err != nil {
		t.Fatalf("doctor update: %v", err)
	}
	if updated.Status != models.AppointmentConfirmed || updated.Prescription != "paracetamol 500mg" {
		t.Fatalf("unexpected doctor update result: %+v", updated)
	}

	// outsider sees nothing
	outsider := registerUser(t, svc, "nisha")
	if _, err := svc.Appointment.Get(outsider.ID, false, appt.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestSendRemindersOnce(t *testing.T) {
	svc := testServices(t)
	db := svc.Doctor.db
	doctor := makeDoctor(t, svc, db, "drgupta")
	patient := registerUser(t, svc, "vivek")

	now := time.Now()
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")

	if _, err := svc.Appointment.Create(patient.ID, models.AppointmentCreate{
		DoctorID:      doctor.ID,
		ScheduledDate: tomorrow,
		ScheduledTime: "11:00",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sent, err := svc.Appointment.SendReminders(now)
	if err != nil {
		t.Fatalf("SendReminders: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected 1 reminder, sent %d", sent)
	}

	// both parties are reminded
	if n := countNotifications(t, svc, patient.ID, models.NotifyAppointmentReminder); n != 1 {
		t.Fatalf("expected 1 reminder for patient, got %d", n)
	}
	if n := countNotifications(t, svc, doctor.UserID, models.NotifyAppointmentReminder); n != 1 {
		t.Fatalf("expected 1 reminder for doctor, got %d", n)
	}

	sent, err = svc.Appointment.SendReminders(now)
	if err != nil {
		t.Fatalf("SendReminders again: %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected reminders to be sent once, got %d", sent)
	}
	if n := countNotifications(t, svc, patient.ID, models.NotifyAppointmentReminder); n != 1 {
		t.Fatalf("expected no duplicate patient reminder, got %d", n)
	}
}

func countNotifications(t *testing.T, svc *Services, userID uint, notifType string) int {
	t.Helper()

	notifs, err := svc.Notification.ListFor(userID)
	if err != nil {
		t.Fatalf("ListFor %d: %v", userID, err)
	}
	count := 0
	for _, n := range notifs {
		if n.Type == notifType {
			count++
		}
	}
	return count
}

func TestCompletionNotifiesPatient(t *testing.T) {
	svc := testServices(t)
	db := svc.Doctor.db
	doctor := makeDoctor(t, svc, db, "drdone")
	patient := registerUser(t, svc, "healed")

	appt, err := svc.Appointment.Create(patient.ID, models.AppointmentCreate{
		DoctorID:      doctor.ID,
		ScheduledDate: "2026-08-24",
		ScheduledTime: "12:00",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := countNotifications(t, svc, patient.ID, models.NotifyAppointment)

	if _, err := svc.Appointment.Update(doctor.UserID, true, appt.ID, models.AppointmentUpdate{
		Status: models.AppointmentCompleted,
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	after := countNotifications(t, svc, patient.ID, models.NotifyAppointment)
	if after != before+1 {
		t.Fatalf("expected a completion notification (before=%d after=%d)", before, after)
	}
}

func TestCancelNotifiesBothParties(t *testing.T) {
	svc := testServices(t)
	db := svc.Doctor.db
	doctor := makeDoctor(t, svc, db, "drquit")
	patient := registerUser(t, svc, "walkout")

	appt, err := svc.Appointment.Create(patient.ID, models.AppointmentCreate{
		DoctorID:      doctor.ID,
		ScheduledDate: "2026-08-24",
		ScheduledTime: "15:00",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// patient cancels: the doctor AND the patient are told
	if _, err := svc.Appointment.Cancel(patient.ID, false, appt.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if n := countNotifications(t, svc, patient.ID, models.NotifyAppointmentCancelled); n != 1 {
		t.Fatalf("expected 1 cancellation notification for patient, got %d", n)
	}
	if n := countNotifications(t, svc, doctor.UserID, models.NotifyAppointmentCancelled); n != 1 {
		t.Fatalf("expected 1 cancellation notification for doctor, got %d", n)
	}

	// doctor cancels via status update: again both parties
	appt2, err := svc.Appointment.Create(patient.ID, models.AppointmentCreate{
		DoctorID:      doctor.ID,
		ScheduledDate: "2026-08-25",
		ScheduledTime: "15:00",
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if _, err := svc.Appointment.Update(doctor.UserID, true, appt2.ID, models.AppointmentUpdate{
		Status: models.AppointmentCancelled,
	}); err != nil {
		t.Fatalf("doctor cancel: %v", err)
	}
	if n := countNotifications(t, svc, patient.ID, models.NotifyAppointmentCancelled); n != 2 {
		t.Fatalf("expected 2 cancellation notifications for patient, got %d", n)
	}
	if n := countNotifications(t, svc, doctor.UserID, models.NotifyAppointmentCancelled); n != 2 {
		t.Fatalf("expected 2 cancellation notifications for doctor, got %d", n)
	}
}

func TestUpdateProfileCoordinates(t *testing.T) {
	svc := testServices(t)
	user := registerUser(t, svc, "roamer")

	lat, lon := 26.9124, 75.7873 // Jaipur
	updated, err := svc.User.UpdateProfile(user.ID, models.ProfileUpdate{
		FirstName: "Test",
		LastName:  "roamer",
		Location:  "Jaipur",
		Latitude:  &lat,
		Longitude: &lon,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Latitude == nil || *updated.Latitude != lat ||
		updated.Longitude == nil || *updated.Longitude != lon {
		t.Fatalf("expected coordinates saved, got %+v", updated)
	}

	// an update without coordinates keeps them
	kept, err := svc.User.UpdateProfile(user.ID, models.ProfileUpdate{
		FirstName: "Test",
		LastName:  "roamer",
		Phone:     "9876543210",
	})
	if err != nil {
		t.Fatalf("UpdateProfile again: %v", err)
	}
	if kept.Latitude == nil || *kept.Latitude != lat {
		t.Fatalf("expected coordinates preserved, got %+v", kept)
	}
}

func TestMarkNotificationsRead(t *testing.T) {
	svc := testServices(t)
	user := registerUser(t, svc, "deepa")

	n, err := svc.Notification.Create(user.ID, "Welcome", "Welcome to the platform.", models.NotifyInfo, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := svc.Notification.UnreadCount(user.ID)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 unread, got %d (%v)", count, err)
	}

	read, err := svc.Notification.MarkRead(user.ID, n.ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !read.IsRead || read.ReadAt == nil {
		t.Fatalf("expected read with timestamp, got %+v", read)
	}
	firstReadAt := *read.ReadAt

	// marking again keeps the original timestamp
	again, err := svc.Notification.MarkRead(user.ID, n.ID)
	if err != nil {
		t.Fatalf("MarkRead again: %v", err)
	}
	if again.ReadAt == nil || !again.ReadAt.Equal(firstReadAt) {
		t.Fatalf("expected read_at to be stable, got %v then %v", firstReadAt, again.ReadAt)
	}

	// foreign user cannot read it
	other := registerUser(t, svc, "farah")
	if _, err := svc.Notification.MarkRead(other.ID, n.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNearestPharmaciesSorted(t *testing.T) {
	svc := testServices(t)
	db := svc.Pharmacy.db

	near := registerUser(t, svc, "pnear")
	far := registerUser(t, svc, "pfar")
	noCoords := registerUser(t, svc, "pnone")

	lat1, lon1 := 28.61, 77.21 // New Delhi
	lat2, lon2 := 19.07, 72.87 // Mumbai
	for _, p := range []models.Pharmacist{
		{UserID: near.ID, StoreName: "City Meds", Latitude: &lat1, Longitude: &lon1, IsActive: true},
		{UserID: far.ID, StoreName: "Coast Pharma", Latitude: &lat2, Longitude: &lon2, IsActive: true},
		{UserID: noCoords.ID, StoreName: "No Location", IsActive: true},
	} {
		row := p
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed pharmacist: %v", err)
		}
	}

	// search from near New Delhi
	out, err := svc.Pharmacy.Nearest(28.60, 77.20)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 pharmacies with coordinates, got %d", len(out))
	}
	if out[0].StoreName != "City Meds" || out[1].StoreName != "Coast Pharma" {
		t.Fatalf("expected closest first, got %q then %q", out[0].StoreName, out[1].StoreName)
	}
	if out[0].DistanceKM == nil || *out[0].DistanceKM > 5 {
		t.Fatalf("unexpected distance for close store: %v", out[0].DistanceKM)
	}
	if *out[1].DistanceKM < 1000 {
		t.Fatalf("expected Mumbai to be over 1000 km away, got %v", *out[1].DistanceKM)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Delhi to Mumbai is roughly 1150 km
	d := haversineKM(28.6139, 77.2090, 19.0760, 72.8777)
	if d < 1100 || d > 1200 {
		t.Fatalf("expected ~1150 km, got %.1f", d)
	}
	if haversineKM(10, 20, 10, 20) != 0 {
		t.Fatalf("expected zero distance for identical points")
	}
}

func TestOrderLifecycle(t *testing.T) {
	svc := testServices(t)
	db := svc.Pharmacy.db

	pharmUser := registerUser(t, svc, "pharma1")
	if err := db.Model(&models.User{}).Where("id = ?", pharmUser.ID).Update("is_pharmacist", true).Error; err != nil {
		t.Fatalf("grant pharmacist role: %v", err)
	}
	pharm, err := svc.Pharmacy.GetOrCreateProfile(pharmUser.ID)
	if err != nil {
		t.Fatalf("pharmacist profile: %v", err)
	}
	if err := db.Model(pharm).Update("store_name", "City Meds").Error; err != nil {
		t.Fatalf("set store name: %v", err)
	}

	patient := registerUser(t, svc, "buyer")
	order, err := svc.Pharmacy.CreateOrder(patient.ID, models.OrderCreate{
		PharmacistID:     pharm.ID,
		PrescriptionText: "amoxicillin 250mg x10",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != models.OrderPending {
		t.Fatalf("expected pending order, got %q", order.Status)
	}

	// patient cannot advance status
	if _, err := svc.Pharmacy.UpdateOrder(patient.ID, false, order.ID, models.OrderUpdate{
		Status: models.OrderReady,
	}, svc.Notification); !errors.Is(err, ErrOrderForbidden) {
		t.Fatalf("expected ErrOrderForbidden, got %v", err)
	}

	// pharmacist confirms
	total := 120.0
	updated, err := svc.Pharmacy.UpdateOrder(pharmUser.ID, true, order.ID, models.OrderUpdate{
		Status:      models.OrderConfirmed,
		TotalAmount: &total,
	}, svc.Notification)
	if err != nil {
		t.Fatalf("pharmacist update: %v", err)
	}
	if updated.Status != models.OrderConfirmed || updated.TotalAmount == nil || *updated.TotalAmount != 120.0 {
		t.Fatalf("unexpected order after update: %+v", updated)
	}

	// patient can no longer cancel
	if _, err := svc.Pharmacy.UpdateOrder(patient.ID, false, order.ID, models.OrderUpdate{
		Status: models.OrderCancelled,
	}, svc.Notification); !errors.Is(err, ErrOrderForbidden) {
		t.Fatalf("expected cancel of confirmed order to fail, got %v", err)
	}

	// status change notified the patient
	notifs, err := svc.Notification.ListFor(patient.ID)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("expected one order notification, got %d", len(notifs))
	}
}

func TestVideoCallRoomLifecycle(t *testing.T) {
	svc := testServices(t)
	db := svc.Doctor.db
	doctor := makeDoctor(t, svc, db, "drcall")
	patient := registerUser(t, svc, "caller")

	appt, err := svc.Appointment.Create(patient.ID, models.AppointmentCreate{
		DoctorID:      doctor.ID,
		ScheduledDate: "2026-08-24",
		ScheduledTime: "16:00",
	})
	if err != nil {
		t.Fatalf("Create appointment: %v", err)
	}

	outsider := registerUser(t, svc, "lurker")
	if _, err := svc.VideoCall.GetOrCreateRoom(outsider.ID, appt.ID); !errors.Is(err, ErrRoomForbidden) {
		t.Fatalf("expected ErrRoomForbidden, got %v", err)
	}

	room, err := svc.VideoCall.GetOrCreateRoom(patient.ID, appt.ID)
	if err != nil {
		t.Fatalf("GetOrCreateRoom: %v", err)
	}
	if room.ID == "" || room.RoomName == "" {
		t.Fatalf("expected generated room id and name, got %+v", room)
	}

	again, err := svc.VideoCall.GetOrCreateRoom(doctor.UserID, appt.ID)
	if err != nil {
		t.Fatalf("GetOrCreateRoom again: %v", err)
	}
	if again.ID != room.ID {
		t.Fatalf("expected the same room, got %q and %q", room.ID, again.ID)
	}

	if _, err := svc.VideoCall.CreateRoom(patient.ID, appt.ID); !errors.Is(err, ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}

	joined, err := svc.VideoCall.Join(patient.ID, room.ID)
	if err != nil {
		t.Fatalf("Join patient: %v", err)
	}
	if joined.Status != models.RoomActive || joined.StartedAt == nil {
		t.Fatalf("expected active room with start time, got %+v", joined)
	}
	if _, err := svc.VideoCall.Join(doctor.UserID, room.ID); err != nil {
		t.Fatalf("Join doctor: %v", err)
	}

	// first leaver does not end the call
	after, err := svc.VideoCall.Leave(patient.ID, room.ID)
	if err != nil {
		t.Fatalf("Leave patient: %v", err)
	}
	if after.Status != models.RoomActive {
		t.Fatalf("expected room still active, got %q", after.Status)
	}

	// last leaver ends it and records duration
	final, err := svc.VideoCall.Leave(doctor.UserID, room.ID)
	if err != nil {
		t.Fatalf("Leave doctor: %v", err)
	}
	if final.Status != models.RoomEnded || final.EndedAt == nil || final.DurationSeconds == nil {
		t.Fatalf("expected ended room with duration, got %+v", final)
	}
}

func TestDoctorApplicationApproval(t *testing.T) {
	svc := testServices(t)
	user := registerUser(t, svc, "aspirant")

	app, err := svc.Application.ApplyDoctor(user.ID, models.DoctorApplicationCreate{
		Specialty:     "Cardiology",
		Qualification: "MBBS, MD",
		Fee:           500,
	})
	if err != nil {
		t.Fatalf("ApplyDoctor: %v", err)
	}

	// a second application while one is pending is rejected
	if _, err := svc.Application.ApplyDoctor(user.ID, models.DoctorApplicationCreate{
		Specialty:     "Cardiology",
		Qualification: "MBBS",
	}); !errors.Is(err, ErrApplicationPending) {
		t.Fatalf("expected ErrApplicationPending, got %v", err)
	}

	decided, err := svc.Application.DecideDoctor(app.ID, true, "verified license", svc.Notification)
	if err != nil {
		t.Fatalf("DecideDoctor: %v", err)
	}
	if decided.Status != models.ApplicationApproved {
		t.Fatalf("expected approved, got %q", decided.Status)
	}

	granted, err := svc.User.Get(user.ID)
	if err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if !granted.IsDoctor {
		t.Fatalf("expected doctor role after approval")
	}

	doctor, err := svc.Doctor.GetByUser(user.ID)
	if err != nil {
		t.Fatalf("expected doctor profile after approval: %v", err)
	}
	if doctor.Specialty != "Cardiology" || doctor.Fee != 500 {
		t.Fatalf("expected profile from application, got %+v", doctor)
	}

	// already decided
	if _, err := svc.Application.DecideDoctor(app.ID, false, "", svc.Notification); !errors.Is(err, ErrApplicationDecided) {
		t.Fatalf("expected ErrApplicationDecided, got %v", err)
	}

	// already has the role
	if _, err := svc.Application.ApplyDoctor(user.ID, models.DoctorApplicationCreate{
		Specialty:     "Cardiology",
		Qualification: "MBBS",
	}); !errors.Is(err, ErrAlreadyHasRole) {
		t.Fatalf("expected ErrAlreadyHasRole, got %v", err)
	}
}

func TestPharmacistApplicationRejection(t *testing.T) {
	svc := testServices(t)
	user := registerUser(t, svc, "storekeeper")

	app, err := svc.Application.ApplyPharmacist(user.ID, models.PharmacistApplicationCreate{
		StoreName:    "Wellness Chemist",
		StoreAddress: "12 MG Road",
	})
	if err != nil {
		t.Fatalf("ApplyPharmacist: %v", err)
	}

	decided, err := svc.Application.DecidePharmacist(app.ID, false, "license expired", svc.Notification)
	if err != nil {
		t.Fatalf("DecidePharmacist: %v", err)
	}
	if decided.Status != models.ApplicationRejected {
		t.Fatalf("expected rejected, got %q", decided.Status)
	}

	still, err := svc.User.Get(user.ID)
	if err != nil {
		t.Fatalf("Get user: %v", err)
	}
	if still.IsPharmacist {
		t.Fatalf("rejection must not grant the role")
	}
	if _, err := svc.Pharmacy.GetPharmacistByUser(user.ID); !errors.Is(err, ErrPharmacistNotFound) {
		t.Fatalf("rejection must not create a profile, got %v", err)
	}

	notifs, err := svc.Notification.ListFor(user.ID)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != models.NotifySystem {
		t.Fatalf("expected decision notification, got %+v", notifs)
	}
}

func TestTimeHelpers(t *testing.T) {
	if _, err := parseClock("24:00"); err == nil {
		t.Fatalf("expected 24:00 to be invalid")
	}
	m, err := parseClock("09:30")
	if err != nil || m != 570 {
		t.Fatalf("parseClock(09:30) = %d, %v", m, err)
	}
	if formatClock(570) != "09:30" {
		t.Fatalf("formatClock(570) = %q", formatClock(570))
	}
	if formatClock12("14:05") != "02:05 PM" {
		t.Fatalf("formatClock12(14:05) = %q", formatClock12("14:05"))
	}

	// 2026-08-23 is a Sunday: Monday-based index 6
	d, err := parseDate("2026-08-23")
	if err != nil {
		t.Fatalf("parseDate: %v", err)
	}
	if scheduleWeekday(d) != 6 {
		t.Fatalf("expected Sunday index 6, got %d", scheduleWeekday(d))
	}

	if !rangesOverlap(600, 630, 615, 645) {
		t.Fatalf("expected overlap")
	}
	if rangesOverlap(600, 630, 630, 660) {
		t.Fatalf("adjacent ranges must not overlap")
	}
}
