package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryUint64 extracts an optional uint64 from query parameters.
// ok is false when the parameter is absent; err is set when it is malformed.
func QueryUint64(c *gin.Context, key string) (value uint64, ok bool, err error) {
	valueStr := c.Query(key)
	if valueStr == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseUint(valueStr, 10, 64)
	return value, err == nil, err
}

// ParamUint64 extracts a uint64 from path parameters
func ParamUint64(c *gin.Context, key string) (uint64, error) {
	return strconv.ParseUint(c.Param(key), 10, 64)
}
