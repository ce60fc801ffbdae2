package response

import "github.com/gin-gonic/gin"

// Error answers with {"message": ..., "code": ...}. Clients display message
// as is, so it is written for end users.
func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"message": message,
		"code":    code,
	})
}

func AbortError(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"message": message,
		"code":    code,
	})
}

func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}
