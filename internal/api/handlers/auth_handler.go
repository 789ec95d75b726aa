package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"lab-inventory-api-server/config"
	"lab-inventory-api-server/internal/auth"
	"lab-inventory-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthHandler struct {
	DB  *mongo.Database
	Cfg config.Config
}

type SignupRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role" binding:"required,oneof=admin student faculty"`
	Password    string `json:"password" binding:"required,min=6"`
}

// Signup registers a new account. The username is derived from the email
// prefix.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("users")
	email := strings.ToLower(strings.TrimSpace(req.Email))

	count, err := collection.CountDocuments(context.Background(), bson.M{"email": email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for user"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:    strings.Split(email, "@")[0],
		Email:       email,
		Password:    hashedPassword,
		Role:        req.Role,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	c.JSON(http.StatusCreated, gin.H{
		"userId": user.ID.Hex(),
		"email":  user.Email,
		"role":   user.Role,
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection("users").
		FindOne(context.Background(), bson.M{"email": strings.ToLower(strings.TrimSpace(req.Email))}).
		Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	expiration, err := time.ParseDuration(h.Cfg.JWT.Expiration)
	if err != nil {
		expiration = 24 * time.Hour
	}
	token, err := auth.GenerateJWT(h.Cfg.JWT.Secret, user.ID.Hex(), user.Username, user.Role, expiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"userId": user.ID.Hex(),
			"role":   user.Role,
		},
	})
}

// Verify reports whether the presented token is still valid.
func (h *AuthHandler) Verify(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if _, err := auth.ParseJWT(h.Cfg.JWT.Secret, tokenString); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Logout exists for the client's sake; tokens are stateless.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{})
}
