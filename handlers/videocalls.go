package handlers

import (
	"log"
	"net/http"
	"strings"

	"swasthsetu/auth"
	"swasthsetu/middleware"
	"swasthsetu/models"
	"swasthsetu/service"
	"swasthsetu/signaling"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Hub is the in-process signaling hub. Set by main alongside the token manager.
var Hub *signaling.Hub

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from arbitrary dev origins; access is enforced
	// by the token check below, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GetOrCreateCallRoom returns the signaling room for an appointment.
func GetOrCreateCallRoom(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	id, okParam := paramUint(c, "id")
	if !okParam {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid appointment id", nil)
		return
	}

	room, err := service.GlobalServices.VideoCall.GetOrCreateRoom(claims.UserID, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, room)
}

// CreateCallRoom explicitly creates a room for an appointment.
func CreateCallRoom(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)

	var req models.RoomCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	room, err := service.GlobalServices.VideoCall.CreateRoom(claims.UserID, req.AppointmentID)
	if err != nil {
		failFromError(c, err)
		return
	}
	created(c, room)
}

// GetCallRoom returns a room by ID or name, for participants only.
func GetCallRoom(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	room, err := service.GlobalServices.VideoCall.VerifyAccess(claims.UserID, c.Param("room_id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, room)
}

// JoinCallRoom records the caller entering a room.
func JoinCallRoom(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	room, err := service.GlobalServices.VideoCall.Join(claims.UserID, c.Param("room_id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, room)
}

// LeaveCallRoom records the caller leaving a room.
func LeaveCallRoom(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	room, err := service.GlobalServices.VideoCall.Leave(claims.UserID, c.Param("room_id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, room)
}

// ListCallParticipants returns everyone who joined a room.
func ListCallParticipants(c *gin.Context) {
	claims, _ := middleware.CurrentClaims(c)
	roomID := c.Param("room_id")

	if _, err := service.GlobalServices.VideoCall.VerifyAccess(claims.UserID, roomID); err != nil {
		failFromError(c, err)
		return
	}

	rows, err := service.GlobalServices.VideoCall.Participants(roomID)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, rows)
}

// VideoCallWS upgrades the connection to a signaling websocket. Browsers
// cannot set headers on websocket dials, so the access token rides in the
// `token` query parameter.
func VideoCallWS(c *gin.Context) {
	roomID := c.Param("room_id")

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		fail(c, http.StatusUnauthorized, CodeUnauthorized, "token query parameter required", nil)
		return
	}
	claims, err := Tokens.Validate(token, auth.TokenKindAccess)
	if err != nil {
		fail(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token", err.Error())
		return
	}

	room, err := service.GlobalServices.VideoCall.VerifyAccess(claims.UserID, roomID)
	if err != nil {
		failFromError(c, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed for room %s: %v", room.ID, err)
		return
	}

	if _, err := service.GlobalServices.VideoCall.Join(claims.UserID, room.ID); err != nil {
		log.Printf("Join failed for user %d in room %s: %v", claims.UserID, room.ID, err)
	}

	Hub.ServeClient(conn, room.ID, claims.UserID, claims.Username, func() {
		if _, err := service.GlobalServices.VideoCall.Leave(claims.UserID, room.ID); err != nil {
			log.Printf("Leave failed for user %d in room %s: %v", claims.UserID, room.ID, err)
		}
	})
}
