package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/schoolpay/internal/server/http/dto"
)

// maxInflatedBody caps a decompressed request body.
const maxInflatedBody = 1 << 20

type inflatedBody struct {
	*gzip.Reader
	compressed interface{ Close() error }
}

func (b inflatedBody) Close() error {
	_ = b.Reader.Close()
	return b.compressed.Close()
}

// DecompressRequest inflates gzip encoded request bodies. The inflated body
// is size limited, so handlers see a read error instead of an unbounded stream.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(strings.ToLower(c.GetHeader("Content-Encoding")), "gzip") {
			c.Next()
			return
		}

		reader, err := gzip.NewReader(c.Request.Body)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Message: "malformed gzip body"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, inflatedBody{Reader: reader, compressed: c.Request.Body}, maxInflatedBody)
		c.Request.Header.Del("Content-Encoding")
		c.Request.ContentLength = -1
		c.Next()
	}
}
