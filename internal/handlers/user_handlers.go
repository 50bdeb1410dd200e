package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/bizlink/bizlink-golang/internal/auth"
	"github.com/bizlink/bizlink-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
)

//
// --- Auth & Profile Handlers ---
//

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username" binding:"required,min=3"`
	FullName string `json:"fullName" binding:"required"`
}

// Register is the handler for POST /v1/register
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO users (email, password_hash, username, full_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'user', ?, ?)`,
		strings.ToLower(input.Email), password.Hash, input.Username, input.FullName, now, now)
	if err != nil {
		// 1062 is MySQL's duplicate-key error (email or username taken).
		if me, ok := err.(*mysql.MySQLError); ok && me.Number == 1062 {
			c.JSON(http.StatusConflict, gin.H{"error": "Email or username already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	userID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := auth.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": userID, "token": token}})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID int64
	var hash string
	err := h.DB.QueryRow("SELECT id, password_hash FROM users WHERE email = ?",
		strings.ToLower(input.Email)).Scan(&userID, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	password := models.Password{Hash: hash}
	match, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": userID, "token": token}})
}

// GetProfile is the handler for GET /v1/auth
func (h *Handlers) GetProfile(c *gin.Context) {
	userID := currentUserID(c)

	var u models.User
	err := h.DB.QueryRow(`
		SELECT id, email, username, full_name, role, avatar_url, city, district, created_at, updated_at
		FROM users WHERE id = ?`, userID).Scan(
		&u.ID, &u.Email, &u.Username, &u.FullName, &u.Role,
		&u.AvatarURL, &u.City, &u.District, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": u})
}

// ProfilePatch is the typed patch for PUT /v1/auth. Each field is individually
// optional; nil means "leave unchanged".
type ProfilePatch struct {
	Username  *string `json:"username"`
	FullName  *string `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
	City      *string `json:"city"`
	District  *string `json:"district"`
}

// UpdateProfile is the handler for PUT /v1/auth
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID := currentUserID(c)

	var patch ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.DB.Exec(`
		UPDATE users SET
			username   = COALESCE(?, username),
			full_name  = COALESCE(?, full_name),
			avatar_url = COALESCE(?, avatar_url),
			city       = COALESCE(?, city),
			district   = COALESCE(?, district),
			updated_at = ?
		WHERE id = ?`,
		patch.Username, patch.FullName, patch.AvatarURL, patch.City, patch.District,
		time.Now(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	h.GetProfile(c)
}

// PublicProfile is the projection served for other users. Email stays private.
type PublicProfile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	Role      string    `json:"role"`
	City      *string   `json:"city,omitempty"`
	District  *string   `json:"district,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetUser is the handler for GET /v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var p PublicProfile
	err := h.DB.QueryRow(`
		SELECT id, username, full_name, avatar_url, role, city, district, created_at
		FROM users WHERE id = ?`, userID).Scan(&p.ID, &p.Username, &p.FullName,
		&p.AvatarURL, &p.Role, &p.City, &p.District, &p.CreatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

// GetUserStats is the handler for GET /v1/users/:id/stats
func (h *Handlers) GetUserStats(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var followingCount int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM follows WHERE follower_id = ?", userID).Scan(&followingCount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	var businessID int64
	hasBusiness := true
	err := h.DB.QueryRow("SELECT id FROM businesses WHERE user_id = ?", userID).Scan(&businessID)
	if err == sql.ErrNoRows {
		hasBusiness = false
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	followerCount, productCount := 0, 0
	if hasBusiness {
		if err := h.DB.QueryRow("SELECT COUNT(*) FROM follows WHERE business_id = ?", businessID).Scan(&followerCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		if err := h.DB.QueryRow("SELECT COUNT(*) FROM products WHERE business_id = ?", businessID).Scan(&productCount); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"followingCount": followingCount,
		"followerCount":  followerCount,
		"productCount":   productCount,
		"hasBusiness":    hasBusiness,
	}})
}
