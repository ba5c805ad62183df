package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultLoggerInstallsConfiguredLogger(t *testing.T) {
	defer SetDefaultLogger(NewLogger())

	logger, err := NewLoggerFromConfig(&config.LogConfig{
		Level: "debug", Format: "text", Output: "stdout",
	})
	require.NoError(t, err)
	SetDefaultLogger(logger)

	assert.Same(t, logger, GetLogger())
	assert.Equal(t, logrus.DebugLevel, GetLogger().GetLevel())

	// retunes apply to the installed logger, not a fresh default
	SetLoggerLevel(logrus.WarnLevel)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	// nil never clobbers the installed logger
	SetDefaultLogger(nil)
	assert.Same(t, logger, GetLogger())
}

func TestAccessLogHonorsConfiguredFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer SetDefaultLogger(NewLogger())

	serve := func() *bytes.Buffer {
		var buf bytes.Buffer
		SetLoggerOutput(&buf)

		router := gin.New()
		router.Use(RequestIDMiddleware())
		router.Use(RequestLogMiddleware())
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		return &buf
	}

	textLogger, err := NewLoggerFromConfig(&config.LogConfig{
		Level: "info", Format: "text", Output: "stdout",
	})
	require.NoError(t, err)
	SetDefaultLogger(textLogger)
	out := serve()
	assert.Contains(t, out.String(), "method=GET")
	assert.NotContains(t, out.String(), `"method":"GET"`)

	jsonLogger, err := NewLoggerFromConfig(&config.LogConfig{
		Level: "info", Format: "json", Output: "stdout",
	})
	require.NoError(t, err)
	SetDefaultLogger(jsonLogger)
	out = serve()
	assert.Contains(t, out.String(), `"method":"GET"`)
	assert.Contains(t, out.String(), `"service":"talawang-api"`)
}
