package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/travelbooking/internal/service/account"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service account.AccountUseCase
	errs    ErrorResponder
}

type registerRequest struct {
	Name        string     `json:"name" binding:"required,min=2,max=100"`
	Email       string     `json:"email" binding:"required,email"`
	Password    string     `json:"password" binding:"required,min=8"`
	Phone       *string    `json:"phone" binding:"omitempty,phone"`
	Nationality *string    `json:"nationality" binding:"omitempty,max=100"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func NewAuthHandler(service account.AccountUseCase, errs ErrorResponder) *AuthHandler {
	return &AuthHandler{service: service, errs: errs}
}

func (h *AuthHandler) Register(router *gin.RouterGroup, mw *Middleware, loginLimit int64, loginWindow time.Duration) {
	router.POST("/register", h.register)
	router.POST("/login", mw.RateLimit("login", loginLimit, loginWindow), h.login)
	router.POST("/refresh", h.refresh)
	router.POST("/logout", mw.Authenticate(), h.logout)
	router.GET("/me", mw.Authenticate(), h.me)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	session, err := h.service.Register(c.Request.Context(), account.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       req.Phone,
		Nationality: req.Nationality,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Registration successful", session)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Login successful", session)
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		h.errs.Respond(c, err)
		return
	}
	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, tokens)
}

func (h *AuthHandler) logout(c *gin.Context) {
	var req logoutRequest
	// the body is optional
	_ = c.ShouldBindJSON(&req)
	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.errs.Respond(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), actorOf(c).UserID)
	if err != nil {
		h.errs.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}
