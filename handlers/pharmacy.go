package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"swasthsetu/middleware"
	"swasthsetu/models"
	"swasthsetu/service"

	"github.com/gin-gonic/gin"
)

// ListPharmacies returns all active pharmacies.
func ListPharmacies(c *gin.Context) {
	rows, err := service.GlobalServices.Pharmacy.ListPharmacists()
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list pharmacies", err.Error())
		return
	}

	out := make([]models.PharmacistRead, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToRead())
	}
	ok(c, out)
}

// NearestPharmacies returns pharmacies sorted by distance from lat/lon.
func NearestPharmacies(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(c.Query("lat")), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(c.Query("lon")), 64)
	if err1 != nil || err2 != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "lat and lon query parameters are required", nil)
		return
	}

	out, err := service.GlobalServices.Pharmacy.Nearest(lat, lon)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to find pharmacies", err.Error())
		return
	}
	ok(c, out)
}

// MyPharmacyProfile returns the caller's store profile, creating it on first
// access. Pharmacist role required.
func MyPharmacyProfile(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	p, err := service.GlobalServices.Pharmacy.GetOrCreateProfile(claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, p.ToRead())
}

// UpdateMyPharmacyProfile edits the caller's store profile.
func UpdateMyPharmacyProfile(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.PharmacistUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	p, err := service.GlobalServices.Pharmacy.UpdateProfile(claims.UserID, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, p.ToRead())
}

// CreatePrescription stores a prescription record for the caller.
func CreatePrescription(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.PrescriptionCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	p, err := service.GlobalServices.Pharmacy.CreatePrescription(claims.UserID, req)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to create prescription", err.Error())
		return
	}
	created(c, p)
}

// ListPrescriptions returns the caller's prescriptions.
func ListPrescriptions(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	rows, err := service.GlobalServices.Pharmacy.ListPrescriptions(claims.UserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list prescriptions", err.Error())
		return
	}
	ok(c, rows)
}

// DeletePrescription removes one of the caller's prescriptions.
func DeletePrescription(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid prescription id", nil)
		return
	}

	if err := service.GlobalServices.Pharmacy.DeletePrescription(claims.UserID, id); err != nil {
		failFromError(c, err)
		return
	}
	ok(c, gin.H{"deleted": id})
}

// CreateOrder places a pharmacy order for the caller.
func CreateOrder(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.OrderCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	order, err := service.GlobalServices.Pharmacy.CreateOrder(claims.UserID, req)
	if err != nil {
		failFromError(c, err)
		return
	}
	created(c, order.ToRead())
}

// ListOrders returns the caller's orders. Pharmacists see the orders placed
// with their store.
func ListOrders(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	orders, err := service.GlobalServices.Pharmacy.ListOrders(claims.UserID, claims.IsPharmacist)
	if err != nil {
		fail(c, http.StatusInternalServerError, CodeInternal, "Failed to list orders", err.Error())
		return
	}

	out := make([]models.OrderRead, 0, len(orders))
	for i := range orders {
		out = append(out, orders[i].ToRead())
	}
	ok(c, out)
}

// GetOrder returns one order visible to the caller.
func GetOrder(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid order id", nil)
		return
	}

	order, err := service.GlobalServices.Pharmacy.GetOrder(claims.UserID, claims.IsPharmacist, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, order.ToRead())
}

// UpdateOrder applies role-scoped edits to an order.
func UpdateOrder(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid order id", nil)
		return
	}

	var req models.OrderUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	order, err := service.GlobalServices.Pharmacy.UpdateOrder(claims.UserID, claims.IsPharmacist, id, req, service.GlobalServices.Notification)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, order.ToRead())
}
