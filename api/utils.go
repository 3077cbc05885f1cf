package api

import (
	"github.com/gin-gonic/gin"
	"github.com/judgegodwins/chess-arena/http_utils"
	"github.com/judgegodwins/chess-arena/tokens"
)

func errorResponse(msg string) http_utils.BaseResponse {
	return http_utils.NewBaseResponse(false, msg)
}

func successResponse[T interface{}](msg string, data T) http_utils.DataResponse {
	return http_utils.NewDataResponse(msg, data)
}

func GetPayload(ctx *gin.Context) (*tokens.Payload, bool) {
	v, ok := ctx.Get(string(authContextKey))

	if !ok {
		return nil, ok
	}

	payload, ok := v.(*tokens.Payload)

	return payload, ok
}
