package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"scalebar-service/internal/calculator"
	"scalebar-service/internal/config"
	"scalebar-service/internal/excel"
	"scalebar-service/internal/models"
	"scalebar-service/internal/scalebar"
	"scalebar-service/internal/skins"
	"scalebar-service/internal/units"
)

const sessionName = "scalebar"

// === Main ===

func main() {
	configPath := flag.String("config", "scalebar.yaml", "Path to the YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := newRouter(cfg)

	log.Printf("Scalebar server running on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

type server struct {
	cfg    config.Config
	engine scalebar.Engine
}

func newRouter(cfg config.Config) *gin.Engine {
	s := &server{
		cfg:    cfg,
		engine: scalebar.Engine{Thresholds: cfg.Thresholds},
	}

	r := gin.Default()

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.GET("/scalebar", s.handleScalebar)
	r.GET("/scalebar/zoom", s.handleZoomScalebar)
	r.GET("/scalebar/extent", s.handleExtentScalebar)
	r.POST("/view", s.handleView)
	r.DELETE("/view", s.handleDeleteView)
	r.GET("/preferences", s.handleGetPreferences)
	r.POST("/preferences", s.handleSetPreferences)

	r.POST("/export", s.handleExport)
	r.GET("/logs", handleLogs)
	r.GET("/status", handleStatus)
	r.POST("/cancel", handleCancel)
	r.GET("/download-template", s.handleTemplate)
	r.GET("/download-result/:filename", s.handleDownload)

	return r
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
}

// floatQuery parses an optional float query parameter.
func floatQuery(c *gin.Context, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

// preferences merges the session's preferences over the configured defaults.
func (s *server) preferences(c *gin.Context) models.Preferences {
	p := models.Preferences{System: s.cfg.System, Style: s.cfg.Style, Alignment: s.cfg.Alignment}
	session := sessions.Default(c)
	if v, ok := session.Get("system").(string); ok && v != "" {
		p.System = v
	}
	if v, ok := session.Get("style").(string); ok && v != "" {
		p.Style = v
	}
	if v, ok := session.Get("align").(string); ok && v != "" {
		p.Alignment = v
	}
	return p
}

// viewSettings are the system, style and alignment of one request.
type viewSettings struct {
	system    units.System
	style     skins.Style
	alignment skins.Alignment
}

// resolveView reads the view settings of a request. Without an explicit or stored
// system, a unit given with the request selects its own family.
func (s *server) resolveView(c *gin.Context, unit units.LinearUnit) (viewSettings, error) {
	p := s.preferences(c)
	system := p.System
	if v, _ := sessions.Default(c).Get("system").(string); v == "" && unit.ToMeters > 0 {
		system = unit.System().String()
	}
	var vs viewSettings
	var err error
	if vs.system, err = units.ParseSystem(c.DefaultQuery("system", system)); err != nil {
		return vs, err
	}
	if vs.style, err = skins.ParseStyle(c.DefaultQuery("style", p.Style)); err != nil {
		return vs, err
	}
	if vs.alignment, err = skins.ParseAlignment(c.DefaultQuery("align", p.Alignment)); err != nil {
		return vs, err
	}
	return vs, nil
}

func (s *server) respondScalebar(c *gin.Context, width, resolution float64, base units.LinearUnit, vs viewSettings, extra gin.H) {
	fit, err := strconv.ParseBool(c.DefaultQuery("fit", "false"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid fit %q", c.Query("fit")))
		return
	}
	skin, err := skins.New(vs.style)
	if err != nil {
		badRequest(c, err)
		return
	}

	layout := skin.Layout(width, skins.Settings{
		GroundDistancePerPixel: resolution,
		BaseUnit:               base,
		System:                 vs.system,
		Alignment:              vs.alignment,
		AlwaysFit:              fit,
		Engine:                 s.engine,
	})
	result := layout.Result
	if layout.Secondary != nil && vs.system == units.Imperial {
		result = *layout.Secondary
	}

	res := gin.H{
		"ok":           true,
		"distance":     result.Distance.Value,
		"unit":         result.Distance.Unit.Abbreviation,
		"label":        result.Label,
		"render_width": result.RenderWidth,
		"visible":      result.Visible,
		"layout":       layout,
	}
	for k, v := range extra {
		res[k] = v
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) handleScalebar(c *gin.Context) {
	width, err := floatQuery(c, "width", s.cfg.DefaultWidth)
	if err != nil {
		badRequest(c, err)
		return
	}
	resolution, err := floatQuery(c, "resolution", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	base, err := units.ParseLinearUnit(c.DefaultQuery("unit", units.Meters.ID))
	if err != nil {
		badRequest(c, err)
		return
	}
	unit := units.LinearUnit{}
	if c.Query("unit") != "" {
		unit = base
	}
	vs, err := s.resolveView(c, unit)
	if err != nil {
		badRequest(c, err)
		return
	}
	s.respondScalebar(c, width, resolution, base, vs, nil)
}

func (s *server) handleZoomScalebar(c *gin.Context) {
	width, err := floatQuery(c, "width", s.cfg.DefaultWidth)
	if err != nil {
		badRequest(c, err)
		return
	}
	lat, err := floatQuery(c, "lat", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	lon, err := floatQuery(c, "lon", 0)
	if err != nil {
		badRequest(c, err)
		return
	}
	zoom, err := strconv.Atoi(c.Query("zoom"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid zoom %q", c.Query("zoom")))
		return
	}
	vs, err := s.resolveView(c, units.LinearUnit{})
	if err != nil {
		badRequest(c, err)
		return
	}
	resolution := calculator.ResolutionAtZoom(orb.Point{lon, lat}, zoom)
	s.respondScalebar(c, width, resolution, units.Meters, vs, gin.H{"resolution": resolution})
}

func (s *server) handleExtentScalebar(c *gin.Context) {
	width, err := floatQuery(c, "width", s.cfg.DefaultWidth)
	if err != nil {
		badRequest(c, err)
		return
	}
	var corners [4]float64
	for i, key := range []string{"minlon", "minlat", "maxlon", "maxlat"} {
		if c.Query(key) == "" {
			badRequest(c, fmt.Errorf("missing %s", key))
			return
		}
		if corners[i], err = floatQuery(c, key, 0); err != nil {
			badRequest(c, err)
			return
		}
	}
	vs, err := s.resolveView(c, units.LinearUnit{})
	if err != nil {
		badRequest(c, err)
		return
	}
	b := orb.Bound{
		Min: orb.Point{corners[0], corners[1]},
		Max: orb.Point{corners[2], corners[3]},
	}
	resolution := calculator.ResolutionFromExtent(b, width)
	s.respondScalebar(c, width, resolution, units.Meters, vs, gin.H{"resolution": resolution})
}

func (s *server) handleGetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "preferences": s.preferences(c)})
}

func (s *server) handleSetPreferences(c *gin.Context) {
	var p models.Preferences
	if err := c.ShouldBind(&p); err != nil {
		badRequest(c, err)
		return
	}

	current := s.preferences(c)
	if p.System == "" {
		p.System = current.System
	}
	if p.Style == "" {
		p.Style = current.Style
	}
	if p.Alignment == "" {
		p.Alignment = current.Alignment
	}
	if _, err := units.ParseSystem(p.System); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := skins.ParseStyle(p.Style); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := skins.ParseAlignment(p.Alignment); err != nil {
		badRequest(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set("system", p.System)
	session.Set("style", p.Style)
	session.Set("align", p.Alignment)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "preferences": p})
}

func (s *server) handleExport(c *gin.Context) {
	p := s.preferences(c)
	system, err := units.ParseSystem(c.DefaultPostForm("system", p.System))
	if err != nil {
		badRequest(c, err)
		return
	}
	fit, err := strconv.ParseBool(c.DefaultPostForm("fit", "false"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid fit %q", c.PostForm("fit")))
		return
	}
	width, err := strconv.ParseFloat(c.DefaultPostForm("width", strconv.FormatFloat(s.cfg.DefaultWidth, 'f', -1, 64)), 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid width %q", c.PostForm("width")))
		return
	}
	lat, err := strconv.ParseFloat(c.DefaultPostForm("lat", "0"), 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid lat %q", c.PostForm("lat")))
		return
	}
	lon, err := strconv.ParseFloat(c.DefaultPostForm("lon", "0"), 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid lon %q", c.PostForm("lon")))
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	req := ExportRequest{
		Sheet:  c.DefaultPostForm("sheet", "Viewpoints"),
		Center: models.Coordinate{Lat: lat, Lon: lon},
		Width:  width,
		Options: calculator.BatchOptions{
			Engine:       s.engine,
			System:       system,
			AlwaysFit:    fit,
			DefaultWidth: width,
		},
	}

	if file, err := c.FormFile("input_file"); err == nil {
		req.InputPath = filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(file.Filename)))
		if err := c.SaveUploadedFile(file, req.InputPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "could not save upload"})
			return
		}
	}

	job := NewJob()
	req.OutputPath = filepath.Join(s.cfg.OutputDir, fmt.Sprintf("scalebars_%s.xlsx", job.ID))
	RegisterJob(job)

	go processJob(job, req)

	c.JSON(http.StatusAccepted, gin.H{"ok": true, "job_id": job.ID})
}

func handleLogs(c *gin.Context) {
	job := GetJob(c.Query("job_id"))
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Job not found"})
		return
	}

	job.Mutex.RLock()
	logs := make([]string, len(job.Logs))
	copy(logs, job.Logs)
	status := job.Status
	progress := job.Progress
	job.Mutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"logs":     logs,
		"status":   status,
		"progress": progress,
	})
}

func handleStatus(c *gin.Context) {
	job := GetJob(c.Query("job_id"))
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Job not found"})
		return
	}
	job.Mutex.RLock()
	defer job.Mutex.RUnlock()

	res := gin.H{
		"ok":     true,
		"status": job.Status,
		"error":  job.Error,
	}
	if job.Result != nil {
		res["result"] = job.Result
	}
	c.JSON(http.StatusOK, res)
}

func handleCancel(c *gin.Context) {
	job := GetJob(c.Query("job_id"))
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Job not found"})
		return
	}
	job.Log("Cancel requested by user...")
	job.Cancel()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleTemplate(c *gin.Context) {
	if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	target := filepath.Join(s.cfg.OutputDir, "viewpoints_template.xlsx")
	if err := excel.WriteTemplate(target, "Viewpoints"); err != nil {
		log.Printf("template: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Template not available"})
		return
	}
	c.FileAttachment(target, filepath.Base(target))
}

func (s *server) handleDownload(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	target := filepath.Join(s.cfg.OutputDir, filename)
	if _, err := os.Stat(target); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "File not found"})
		return
	}
	c.FileAttachment(target, filename)
}
