package restapi

import (
	"context"
	"net/http"

	"basebridge/internal/app/port"
	"basebridge/internal/app/service"
	"basebridge/internal/domain/entity"
	"basebridge/internal/infrastructure/web/views"

	"github.com/gin-gonic/gin"
)

const landingPath = "/landing"

type modeForm struct {
	Mode string `form:"mode"`
}

type transferForm struct {
	Recipient string `form:"recipient"`
	Amount    string `form:"amount"`
}

type convertForm struct {
	Amount string `form:"amount"`
}

type settingsForm struct {
	UserName string `form:"userName"`
}

// PageHandler serves the session view. Every POST runs one container
// operation and redirects back to GET /landing; failures surface through the
// error banner of the next render.
type PageHandler struct {
	network      entity.NetworkDefinition
	fiatCurrency string
	logger       port.Logger
}

// NewPageHandler creates a PageHandler. network labels the dashboard when the
// session has no wallet provider.
func NewPageHandler(network entity.NetworkDefinition, fiatCurrency string, l port.Logger) *PageHandler {
	return &PageHandler{
		network:      network,
		fiatCurrency: fiatCurrency,
		logger:       l.With("component", "PageHandler"),
	}
}

func (h *PageHandler) model(sc *service.SessionContainer) views.LandingModel {
	network := sc.Network()
	if network.Name == "" {
		network = h.network
	}
	symbol := network.NativeSymbol
	if symbol == "" {
		symbol = "ETH"
	}
	fiat := sc.FiatCurrency()
	if fiat == "" {
		fiat = h.fiatCurrency
	}
	return views.LandingModel{
		State:        sc.Snapshot(),
		NetworkName:  network.Name,
		NativeSymbol: symbol,
		FiatCurrency: fiat,
	}
}

// Landing renders the sign-in card or the dashboard. A notice is shown once.
func (h *PageHandler) Landing(c *gin.Context) {
	sc := containerFrom(c)
	c.Header("Cache-Control", "no-store")
	render(c, http.StatusOK, views.Landing(h.model(sc)))
	sc.ClearNotice()
}

func (h *PageHandler) back(c *gin.Context, op string, err error) {
	if err != nil {
		h.logger.Debug("Page action failed", "operation", op, "error", err)
	}
	c.Redirect(http.StatusSeeOther, landingPath)
}

// SignIn handles POST /landing/signin.
func (h *PageHandler) SignIn(c *gin.Context) {
	containerFrom(c).SignIn()
	h.back(c, "sign_in", nil)
}

// LogOut handles POST /landing/logout.
func (h *PageHandler) LogOut(c *gin.Context) {
	containerFrom(c).LogOut()
	h.back(c, "log_out", nil)
}

// ConnectWallet handles POST /landing/wallet/connect.
func (h *PageHandler) ConnectWallet(c *gin.Context) {
	err := containerFrom(c).ConnectWallet(c.Request.Context())
	h.back(c, "connect_wallet", err)
}

// SetMode handles POST /landing/mode.
func (h *PageHandler) SetMode(c *gin.Context) {
	var form modeForm
	_ = c.ShouldBind(&form)
	err := containerFrom(c).SetTransferMode(entity.TransferMode(form.Mode))
	h.back(c, "set_transfer_mode", err)
}

// Transfer handles POST /landing/transfer. A broadcast transaction keeps
// being awaited if the browser disconnects.
func (h *PageHandler) Transfer(c *gin.Context) {
	var form transferForm
	_ = c.ShouldBind(&form)
	_, err := containerFrom(c).Transfer(context.WithoutCancel(c.Request.Context()), form.Recipient, form.Amount)
	h.back(c, "transfer", err)
}

// Convert handles POST /landing/convert.
func (h *PageHandler) Convert(c *gin.Context) {
	var form convertForm
	_ = c.ShouldBind(&form)
	_, err := containerFrom(c).Convert(form.Amount)
	h.back(c, "convert", err)
}

// UpdateSettings handles POST /landing/settings.
func (h *PageHandler) UpdateSettings(c *gin.Context) {
	var form settingsForm
	_ = c.ShouldBind(&form)
	err := containerFrom(c).UpdateSettings(form.UserName)
	h.back(c, "update_settings", err)
}

// Dismiss handles POST /landing/dismiss.
func (h *PageHandler) Dismiss(c *gin.Context) {
	containerFrom(c).DismissMessages()
	h.back(c, "dismiss", nil)
}
