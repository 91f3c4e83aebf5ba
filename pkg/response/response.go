package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gtd-inbox/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 业务错误码
const (
	CodeSuccess       = 0
	CodeBadRequest    = 40000
	CodeNotFound      = 40400
	CodeTooManyReqs   = 42900
	CodeInternalError = 50000
	CodeUnavailable   = 50300
)

// Success 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeSuccess, Message: "success", Data: data})
}

// Created 201，location 写入 Location 头
func Created(c *gin.Context, location string, data interface{}) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, Response{Code: CodeSuccess, Message: "created", Data: data})
}

// NoContent 204，无响应体
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest 400
func BadRequest(c *gin.Context, msg string) {
	if msg == "" {
		msg = "bad request"
	}
	c.JSON(http.StatusBadRequest, Response{Code: CodeBadRequest, Message: msg})
}

// NotFound 404
func NotFound(c *gin.Context, msg string) {
	if msg == "" {
		msg = "not found"
	}
	c.JSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: msg})
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: CodeTooManyReqs, Message: "too many requests"})
}

// InternalError 500，错误细节只写日志不返回给调用方
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error", zap.Error(err), zap.String("path", c.FullPath()))
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(http.StatusInternalServerError, Response{Code: CodeInternalError, Message: "internal server error"})
}

// ServiceUnavailable 503，依赖不可用；错误细节只写日志
func ServiceUnavailable(c *gin.Context, err error) {
	logger.Warn("service unavailable", zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusServiceUnavailable, Response{Code: CodeUnavailable, Message: "service unavailable"})
}
