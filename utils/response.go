package utils

import "github.com/gin-gonic/gin"

// JSONFailure writes the {success:false, message} shape the messaging
// widgets read.
func JSONFailure(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

// JSONProblem writes the {error, message} shape the booking front end reads.
func JSONProblem(c *gin.Context, code int, errText, message string) {
	c.JSON(code, gin.H{"error": errText, "message": message})
}
