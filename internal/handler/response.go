package handler

import (
	"strconv"

	"YourTube/internal/apperror"
	"YourTube/internal/dto"
	"YourTube/pkg/logger"

	"github.com/gin-gonic/gin"
)

// sendResponse 成功响应统一走这里
func sendResponse(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, dto.NewResponse(code, data, message))
}

// sendErrorResponse 是唯一把错误翻译成响应的地方：业务错误原样返回，其他错误一律500且不暴露细节
func sendErrorResponse(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.StatusCode >= 500 {
		logger.Log.WithError(err).
			WithField("method", c.Request.Method).
			WithField("path", c.FullPath()).
			Error("请求处理失败")
	}
	c.AbortWithStatusJSON(appErr.StatusCode, dto.NewErrorResponse(appErr))
}

// parseID 解析路径里的ID参数，利用strconv.ParseUint将string转化为uint64
func parseID(c *gin.Context, param, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(c, apperror.BadRequest("无效的"+label))
		return 0, false
	}
	return id, true
}

// pageQuery 解析page和limit，非法值交给dto.NewPagination兜底
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}

// bindJSON 绑定失败统一返回400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Log.WithError(err).WithField("path", c.FullPath()).Warn("请求参数解析失败")
		sendErrorResponse(c, apperror.BadRequest("无效的参数"))
		return false
	}
	return true
}
