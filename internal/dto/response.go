package dto

import "YourTube/internal/apperror"

// Response 所有成功接口统一的返回结构
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorResponse 失败时data固定为null，errors至少是一个空数组
type ErrorResponse struct {
	Response
	Errors []string `json:"errors"`
}

func NewResponse(code int, data interface{}, message string) Response {
	return Response{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    code < 400,
	}
}

func NewErrorResponse(err *apperror.Error) ErrorResponse {
	details := err.Errors
	if details == nil {
		details = []string{}
	}
	return ErrorResponse{
		Response: Response{StatusCode: err.StatusCode, Message: err.Message},
		Errors:   details,
	}
}
