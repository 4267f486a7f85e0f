package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/pkg/response"
)

func TestWithResponseMetaReachesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/chart", func(c *gin.Context) {
		SetCacheHit(c, true)
		response.JSON(c, http.StatusOK, gin.H{"seated": 1}, nil, ExtractMeta(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chart", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, true, envelope.Meta[cacheHitKey])
	// Only handler-written keys survive serialisation.
	assert.NotContains(t, envelope.Meta, "processing_time_ms")
}

func TestExtractMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))
}
