package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes a flat JSON success body.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

// FailErr maps err onto the error envelope. Messages of taxonomy errors are
// user facing; anything else is reported as an internal error.
func FailErr(c *gin.Context, err error) {
	status, code := StatusOf(err)
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}
