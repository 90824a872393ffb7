// Package server exposes the registry's read model over HTTP for the web
// dashboard and for scripting.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"toolctl/internal/dashboard"
	"toolctl/internal/registry"
	"toolctl/internal/system"
	appver "toolctl/internal/version"
)

type Server struct {
	Addr      string
	Registry  *registry.Registry
	Dashboard *dashboard.Manager
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	s.mountAPI(r)

	srv := &http.Server{Addr: s.Addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	system.Logger.Info("webui server listening", "addr", s.Addr)
	return srv.ListenAndServe()
}

// OpenBrowser tries to open a URL in the system browser.
func OpenBrowser(url string) error {
	var cmd string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}
	return exec.Command(cmd, args...).Start()
}

func (s *Server) mountAPI(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": appver.AppVersion})
	})

	tools := api.Group("/tools")
	tools.GET("/status", s.toolStatus)
	tools.GET("/instances", s.toolInstances)
	tools.POST("/refresh", s.refreshTools)
	tools.GET("/:id/detect", s.detectTool)

	instances := api.Group("/instances")
	instances.POST("/:id/check-update", s.checkUpdate)
	instances.POST("/:id/update", s.updateInstance)
	instances.DELETE("/:id", s.deleteInstance)

	dash := api.Group("/dashboard")
	dash.GET("/selections", s.getSelections)
	dash.PUT("/selections/:tool", s.putSelection)
}

func (s *Server) toolStatus(c *gin.Context) {
	statuses, err := s.Registry.GetLocalToolStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": statuses})
}

func (s *Server) toolInstances(c *gin.Context) {
	grouped, err := s.Registry.GetAllGrouped()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instances": grouped})
}

func (s *Server) refreshTools(c *gin.Context) {
	statuses, err := s.Registry.RefreshAndGetLocalStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": statuses})
}

func (s *Server) detectTool(c *gin.Context) {
	force := c.Query("force") == "true"
	status, err := s.Registry.DetectSingleToolWithCache(c.Request.Context(), c.Param("id"), force)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) checkUpdate(c *gin.Context) {
	result, err := s.Registry.CheckUpdateForInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) updateInstance(c *gin.Context) {
	force := c.Query("force") == "true"
	result, err := s.Registry.UpdateInstance(c.Request.Context(), c.Param("id"), force)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) deleteInstance(c *gin.Context) {
	if err := s.Registry.DeleteInstance(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getSelections(c *gin.Context) {
	st, err := s.Dashboard.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"selections":           st.ToolInstanceSelections,
		"selected_provider_id": st.SelectedProviderID,
		"updated_at":           st.UpdatedAt,
	})
}

func (s *Server) putSelection(c *gin.Context) {
	var body struct {
		InstanceID string `json:"instance_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Dashboard.SetToolSelection(c.Param("tool"), body.InstanceID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// statusFor maps the registry's error taxonomy onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, registry.ErrPreconditionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, registry.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, registry.ErrProbeFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
