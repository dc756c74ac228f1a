package restapi

import (
	"context"
	"net/http"

	"basebridge/internal/app/service"
	"basebridge/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// SessionResponse is the body of every session API response.
type SessionResponse struct {
	Session entity.SessionState `json:"session"`
	Error   string              `json:"error,omitempty"`
}

// ModeRequest is the body of PUT /session/mode.
type ModeRequest struct {
	Mode string `json:"mode" binding:"max=16"`
}

// TransferRequest is the body of POST /session/transfer.
type TransferRequest struct {
	Recipient string `json:"recipient" binding:"max=128"`
	Amount    string `json:"amount" binding:"max=64"`
}

// TransferResponse carries the receipt of a completed transfer.
type TransferResponse struct {
	Receipt entity.TransferReceipt `json:"receipt"`
	Session entity.SessionState    `json:"session"`
}

// ConvertRequest is the body of POST /session/convert.
type ConvertRequest struct {
	Amount string `json:"amount" binding:"max=64"`
}

// ConvertResponse carries the converted amount.
type ConvertResponse struct {
	Converted string              `json:"converted"`
	Session   entity.SessionState `json:"session"`
}

// SettingsRequest is the body of PUT /session/settings.
type SettingsRequest struct {
	UserName string `json:"userName" binding:"max=128"`
}

// SessionHandler exposes the session container as a JSON API.
type SessionHandler struct{}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

func respond(c *gin.Context, sc *service.SessionContainer, err error) {
	if err != nil {
		c.JSON(statusFor(err), SessionResponse{Session: sc.Snapshot(), Error: entity.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: sc.Snapshot()})
}

func badRequest(c *gin.Context, sc *service.SessionContainer, err error) {
	c.JSON(http.StatusBadRequest, SessionResponse{Session: sc.Snapshot(), Error: err.Error()})
}

// Get handles GET /api/v1/session.
func (h *SessionHandler) Get(c *gin.Context) {
	respond(c, containerFrom(c), nil)
}

// SignIn handles POST /api/v1/session/signin.
func (h *SessionHandler) SignIn(c *gin.Context) {
	sc := containerFrom(c)
	sc.SignIn()
	respond(c, sc, nil)
}

// LogOut handles POST /api/v1/session/logout.
func (h *SessionHandler) LogOut(c *gin.Context) {
	sc := containerFrom(c)
	sc.LogOut()
	respond(c, sc, nil)
}

// ConnectWallet handles POST /api/v1/session/wallet/connect.
func (h *SessionHandler) ConnectWallet(c *gin.Context) {
	sc := containerFrom(c)
	respond(c, sc, sc.ConnectWallet(c.Request.Context()))
}

// SetMode handles PUT /api/v1/session/mode.
func (h *SessionHandler) SetMode(c *gin.Context) {
	sc := containerFrom(c)
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, sc, err)
		return
	}
	respond(c, sc, sc.SetTransferMode(entity.TransferMode(req.Mode)))
}

// Transfer handles POST /api/v1/session/transfer.
func (h *SessionHandler) Transfer(c *gin.Context) {
	sc := containerFrom(c)
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, sc, err)
		return
	}
	receipt, err := sc.Transfer(context.WithoutCancel(c.Request.Context()), req.Recipient, req.Amount)
	if err != nil {
		respond(c, sc, err)
		return
	}
	c.JSON(http.StatusOK, TransferResponse{Receipt: receipt, Session: sc.Snapshot()})
}

// Convert handles POST /api/v1/session/convert.
func (h *SessionHandler) Convert(c *gin.Context) {
	sc := containerFrom(c)
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, sc, err)
		return
	}
	converted, err := sc.Convert(req.Amount)
	if err != nil {
		respond(c, sc, err)
		return
	}
	c.JSON(http.StatusOK, ConvertResponse{Converted: converted, Session: sc.Snapshot()})
}

// UpdateSettings handles PUT /api/v1/session/settings.
func (h *SessionHandler) UpdateSettings(c *gin.Context) {
	sc := containerFrom(c)
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, sc, err)
		return
	}
	respond(c, sc, sc.UpdateSettings(req.UserName))
}
