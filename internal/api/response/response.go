// Package response renders the uniform API envelope:
// {"status": bool, "message": string, "data"?: object, "error"?: string}.
package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, code int, message string, data any) {
	body := gin.H{"status": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": false, "message": message})
}

func ErrorWith(c *gin.Context, code int, message, detail string) {
	body := gin.H{"status": false, "message": message}
	if detail != "" {
		body["error"] = detail
	}
	c.JSON(code, body)
}
