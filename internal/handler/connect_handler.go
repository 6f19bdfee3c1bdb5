package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlevchenko/riskscan/internal/config"
	"github.com/mlevchenko/riskscan/internal/dto"
	"github.com/mlevchenko/riskscan/internal/service"
	"github.com/mlevchenko/riskscan/internal/tiktok"
	"github.com/mlevchenko/riskscan/internal/utils"
)

// ConnectionCookie carries the signed identity reference issued after a
// successful callback.
const ConnectionCookie = "riskscan_connection"

// ConnectHandler handles the authorization flow
type ConnectHandler struct {
	connectService service.ConnectService
	tokens         *utils.ConnectionTokenManager
	tiktokCfg      config.TikTokConfig
}

// NewConnectHandler creates a new connect handler
func NewConnectHandler(connectService service.ConnectService, tokens *utils.ConnectionTokenManager, tiktokCfg config.TikTokConfig) *ConnectHandler {
	return &ConnectHandler{
		connectService: connectService,
		tokens:         tokens,
		tiktokCfg:      tiktokCfg,
	}
}

// Login starts the authorization flow and redirects to the provider.
func (h *ConnectHandler) Login(c *gin.Context) {
	authorizeURL, err := h.connectService.BeginLogin(c.Request.Context())
	if err != nil {
		if errors.Is(err, config.ErrCredentials) {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Configuration error",
				Message: "TikTok credentials are not configured",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal error",
			Message: err.Error(),
		})
		return
	}

	c.Redirect(http.StatusFound, authorizeURL)
}

// Callback completes the authorization flow: it redeems the state,
// exchanges the code and persists the connected identity.
func (h *ConnectHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	identity, err := h.connectService.HandleCallback(c.Request.Context(), code, state)
	if err != nil {
		var apiErr *tiktok.APIError
		switch {
		case errors.Is(err, service.ErrMissingCallbackParams):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Bad request",
				Message: "code and state query parameters are required",
			})
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Invalid state",
				Message: "authorization state is unknown, expired or already used",
			})
		case errors.Is(err, config.ErrCredentials):
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Configuration error",
				Message: "TikTok credentials are not configured",
			})
		case errors.As(err, &apiErr):
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{
				Error:   "Upstream error",
				Message: apiErr.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:   "Internal error",
				Message: err.Error(),
			})
		}
		return
	}

	token, err := h.tokens.Generate(identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal error",
			Message: "failed to issue connection token",
		})
		return
	}

	// Set connection reference in httpOnly cookie
	c.SetCookie(ConnectionCookie, token, h.tokens.Expiry(), "/", "", true, true)

	c.JSON(http.StatusOK, dto.CallbackResponse{
		OK:       true,
		Identity: dto.NewIdentityResponse(identity),
		Scopes:   h.tiktokCfg.ScopeList(),
	})
}

// Debug exposes a masked view of the OAuth configuration.
func (h *ConnectHandler) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, dto.DebugResponse{
		ClientKeySet: h.tiktokCfg.Validate() == nil,
		RedirectURI:  h.tiktokCfg.RedirectURI,
		Scopes:       h.tiktokCfg.ScopeList(),
	})
}
