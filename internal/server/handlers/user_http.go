package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"brewhub-system/internal/database/models"
	"brewhub-system/internal/utils"
)

type UserHTTPHandler struct {
	db       *gorm.DB
	tokenTTL time.Duration
}

func NewUserHTTPHandler(db *gorm.DB, tokenTTL time.Duration) *UserHTTPHandler {
	return &UserHTTPHandler{db: db, tokenTTL: tokenTTL}
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Firstname string `json:"firstname" binding:"required"`
	Lastname  string `json:"lastname" binding:"required"`
	Role      string `json:"role" binding:"required"`
	TenantID  int64  `json:"tenant_id" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	ID        int64      `json:"id"`
	TenantID  int64      `json:"tenant_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Firstname string     `json:"firstname"`
	Lastname  string     `json:"lastname"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func toUserView(u models.User) userView {
	return userView{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Username:  u.Username,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
	}
}

func (h *UserHTTPHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, errorResponse("unknown role: "+req.Role))
		return
	}

	var existing models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, errorResponse("username or email already exists"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, errorResponse("database error while checking existing user"))
		return
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("error hashing password"))
		return
	}

	user := models.User{
		TenantID:  req.TenantID,
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(pwHash),
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Role:      req.Role,
		IsActive:  true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("error creating user"))
		return
	}

	token, exp, err := utils.GenerateToken(user.ID, user.TenantID, user.Username, user.Role, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("error generating token"))
		return
	}

	c.JSON(http.StatusCreated, successResponse("user registered successfully", gin.H{
		"user":       toUserView(user),
		"token":      token,
		"expired_at": exp,
	}))
}

func (h *UserHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse("invalid credentials"))
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, errorResponse("account is disabled"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, errorResponse("invalid credentials"))
		return
	}

	now := time.Now()
	h.db.WithContext(c.Request.Context()).Model(&user).Update("last_login", now)

	token, exp, err := utils.GenerateToken(user.ID, user.TenantID, user.Username, user.Role, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("error generating token"))
		return
	}

	c.JSON(http.StatusOK, successResponse("login successful", gin.H{
		"user":       toUserView(user),
		"token":      token,
		"expired_at": exp,
	}))
}

func (h *UserHTTPHandler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid user ID"))
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse("user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("database error"))
		return
	}

	c.JSON(http.StatusOK, successResponse("user retrieved successfully", toUserView(user)))
}

type ListUsersQuery struct {
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=20"`
	Role     *string `form:"role"`
	IsActive *bool   `form:"is_active"`
}

func (h *UserHTTPHandler) ListUsers(c *gin.Context) {
	var query ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("tenant_id = ?", authTenantID(c))
	if query.Role != nil {
		q = q.Where("role = ?", *query.Role)
	}
	if query.IsActive != nil {
		q = q.Where("is_active = ?", *query.IsActive)
	}

	var totalCount int64
	if err := q.Count(&totalCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("failed to count users"))
		return
	}

	offset := (query.Page - 1) * query.PageSize
	var users []models.User
	if err := q.Order("created_at desc").Offset(offset).Limit(query.PageSize).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("failed to list users"))
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}

	c.JSON(http.StatusOK, successWithMetaResponse("users retrieved successfully", views, PaginationMeta{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: totalCount,
	}))
}
