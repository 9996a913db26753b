package handlers

import "github.com/gin-gonic/gin"

const userIDKey = "userID"

// SetUserID stores the acting user id on the request context.
func SetUserID(c *gin.Context, userID uint64) {
	c.Set(userIDKey, userID)
}

// GetUserID returns the acting user id, or 0 when unauthenticated.
func GetUserID(c *gin.Context) uint64 {
	value, ok := c.Get(userIDKey)
	if !ok {
		return 0
	}
	userID, ok := value.(uint64)
	if !ok {
		return 0
	}
	return userID
}
