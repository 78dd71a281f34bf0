package public

import (
	"errors"

	"github.com/canteen-rush/internal/http/response"
	"github.com/canteen-rush/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.target.Error(), nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest},
	{target: service.ErrEmailExists, code: response.CodeBadRequest},
	{target: service.ErrPasswordTooWeak, code: response.CodeBadRequest},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized},
	{target: service.ErrUserNotFound, code: response.CodeNotFound},
}

var placeOrderErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest},
	{target: service.ErrStudentBlocked, code: response.CodeForbidden},
	{target: service.ErrVendorNotFound, code: response.CodeNotFound},
	{target: service.ErrVendorClosed, code: response.CodeBadRequest},
	{target: service.ErrFoodItemNotFound, code: response.CodeBadRequest},
	{target: service.ErrFoodItemSoldOut, code: response.CodeBadRequest},
	{target: service.ErrFoodItemNotOfVendor, code: response.CodeBadRequest},
	{target: service.ErrUserNotFound, code: response.CodeNotFound},
}

var orderAccessErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound},
	{target: service.ErrOrderNotOwned, code: response.CodeForbidden},
}

var cancelOrderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound},
	{target: service.ErrOrderNotOwned, code: response.CodeForbidden},
	{target: service.ErrOrderCancelNotAllowed, code: response.CodeBadRequest},
	{target: service.ErrOrderStatusConflict, code: response.CodeConflict},
}
