package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/voiceflow/cms/internal/slogging"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	_ = slogging.Initialize(slogging.Config{
		Level:  slogging.LogLevelError,
		IsDev:  true,
		LogDir: filepath.Join(os.TempDir(), "voiceflow-auth-test-logs"),
	})
	os.Exit(m.Run())
}
