// Package status exposes the read-only plugin status HTTP surface. It
// reports; it never mutates: switching plugins and clearing data stay on
// the manager's programmatic API.
package status

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/voicekit/plugin"
	"github.com/skillsenselab/voicekit/version"
)

// Handler serves plugin status endpoints from a Manager.
type Handler struct {
	manager *plugin.Manager
	service string
}

// NewHandler creates a status handler for the given manager.
func NewHandler(manager *plugin.Manager, serviceName string) *Handler {
	return &Handler{manager: manager, service: serviceName}
}

// Register mounts the status routes on the router.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.Health)
	r.GET("/version", h.Version)

	api := r.Group("/api/v1")
	api.GET("/plugins", h.ListPlugins)
	api.GET("/plugins/active", h.ActivePlugin)
	api.GET("/plugins/data", h.DataInfo)
}

// Health reports process liveness and whether a plugin is active.
func (h *Handler) Health(c *gin.Context) {
	active := h.manager.ActiveName()
	status := "healthy"
	httpStatus := http.StatusOK
	if active == "" {
		status = "degraded"
	}
	c.JSON(httpStatus, gin.H{
		"status":        status,
		"service":       h.service,
		"active_plugin": active,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

// Version reports build version information.
func (h *Handler) Version(c *gin.Context) {
	v := version.GetVersionInfo()
	c.JSON(http.StatusOK, gin.H{
		"version":    v.Version,
		"git_commit": v.GitCommit,
		"build_time": v.BuildTime,
		"go_version": v.GoVersion,
		"is_release": v.IsRelease,
	})
}

// pluginView is the wire shape of one plugin's status.
type pluginView struct {
	plugin.Descriptor
	Active bool         `json:"active"`
	State  plugin.State `json:"state"`
}

// ListPlugins reports every registered plugin with its descriptor and
// state, in registration order.
func (h *Handler) ListPlugins(c *gin.Context) {
	reg := h.manager.Registry()
	active := h.manager.ActiveName()

	views := make([]pluginView, 0, reg.Len())
	for _, name := range reg.Names() {
		p, ok := reg.Get(name)
		if !ok {
			continue
		}
		views = append(views, pluginView{
			Descriptor: p.Descriptor(),
			Active:     name == active,
			State:      p.State(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"plugins": views})
}

// ActivePlugin reports the currently active plugin, or 404 when none is.
func (h *Handler) ActivePlugin(c *gin.Context) {
	active := h.manager.ActiveName()
	if active == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active plugin"})
		return
	}
	p, ok := h.manager.Registry().Get(active)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active plugin"})
		return
	}
	c.JSON(http.StatusOK, pluginView{
		Descriptor: p.Descriptor(),
		Active:     true,
		State:      p.State(),
	})
}

// DataInfo reports each plugin's data footprint.
func (h *Handler) DataInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"plugins": h.manager.DataInfo(c.Request.Context()),
	})
}
