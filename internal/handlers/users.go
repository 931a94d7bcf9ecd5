package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/internal/services"
	"github.com/campuspool/campuspool-backend/internal/store"
)

// GetProfile retrieves the user's profile
func GetProfile(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		user, err := users.Get(c.Request.Context(), userId)
		if err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"name":      user.Name,
			"avatarUrl": user.AvatarURL,
			"createdAt": user.CreatedAt,
		})
	}
}

// UpdateProfile updates the user's profile information. Email is the
// account's identity key and cannot change.
func UpdateProfile(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Name *string `json:"name"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		user, err := users.AtomicUpdate(c.Request.Context(), userId, func(u *models.User) error {
			if input.Name != nil {
				u.Name = *input.Name
			}
			return nil
		})
		if err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"name":      user.Name,
			"avatarUrl": user.AvatarURL,
		})
	}
}

// UploadAvatar stores a new avatar image and points the profile at it
func UploadAvatar(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		file, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(400, gin.H{"error": "Avatar file is required"})
			return
		}

		path, err := services.UploadImage(file, "avatars")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload avatar"})
			return
		}
		avatarURL := services.GetImageURL(path)

		user, err := users.AtomicUpdate(c.Request.Context(), userId, func(u *models.User) error {
			u.AvatarURL = avatarURL
			return nil
		})
		if err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{
			"id":        user.ID,
			"avatarUrl": user.AvatarURL,
		})
	}
}
