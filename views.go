package main

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"scalebar-service/internal/scalebar"
	"scalebar-service/internal/units"
)

// === Live Views ===

// View is the scalebar of one client's map. The model recomputes on every update and
// the subscription counts the results that actually changed.
type View struct {
	ID       string
	Model    *scalebar.Model
	revision atomic.Int64
	cancel   func()
}

var (
	ViewStore = make(map[string]*View)
	ViewLock  sync.Mutex
)

func NewView(engine scalebar.Engine, in scalebar.Input) *View {
	v := &View{ID: uuid.New().String(), Model: scalebar.NewModel(engine, in)}
	v.cancel = v.Model.Subscribe(func(scalebar.Result) { v.revision.Add(1) })
	return v
}

func (v *View) Revision() int64 {
	return v.revision.Load()
}

// Close detaches the revision counter from the model.
func (v *View) Close() {
	v.cancel()
}

func GetView(id string) (*View, bool) {
	ViewLock.Lock()
	defer ViewLock.Unlock()
	v, ok := ViewStore[id]
	return v, ok
}

func (s *server) handleView(c *gin.Context) {
	session := sessions.Default(c)
	id, _ := session.Get("view_id").(string)
	view, ok := GetView(id)
	if !ok {
		vs, err := s.resolveView(c, units.LinearUnit{})
		if err != nil {
			badRequest(c, err)
			return
		}
		view = NewView(s.engine, scalebar.Input{
			AvailableWidth: s.cfg.DefaultWidth,
			BaseUnit:       units.Meters,
			System:         vs.system,
		})
		ViewLock.Lock()
		ViewStore[view.ID] = view
		ViewLock.Unlock()

		session.Set("view_id", view.ID)
		if err := session.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
	}

	edit, err := viewEdit(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	before := view.Revision()
	view.Model.Update(edit)

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"view_id":  view.ID,
		"revision": view.Revision(),
		"changed":  view.Revision() != before,
		"result":   view.Model.Result(),
	})
}

// viewEdit parses the fields present in the request. Absent fields keep their value.
func viewEdit(c *gin.Context) (func(*scalebar.Input), error) {
	var edits []func(*scalebar.Input)

	for _, f := range []struct {
		key string
		set func(*scalebar.Input, float64)
	}{
		{"width", func(in *scalebar.Input, v float64) { in.AvailableWidth = v }},
		{"resolution", func(in *scalebar.Input, v float64) { in.GroundDistancePerPixel = v }},
	} {
		raw, ok := c.GetQuery(f.key)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", f.key, raw)
		}
		set := f.set
		edits = append(edits, func(in *scalebar.Input) { set(in, v) })
	}
	if raw, ok := c.GetQuery("unit"); ok {
		u, err := units.ParseLinearUnit(raw)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(in *scalebar.Input) { in.BaseUnit = u })
	}
	if raw, ok := c.GetQuery("system"); ok {
		sys, err := units.ParseSystem(raw)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(in *scalebar.Input) { in.System = sys })
	}
	if raw, ok := c.GetQuery("fit"); ok {
		fit, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid fit %q", raw)
		}
		edits = append(edits, func(in *scalebar.Input) { in.AlwaysFit = fit })
	}

	return func(in *scalebar.Input) {
		for _, e := range edits {
			e(in)
		}
	}, nil
}

func (s *server) handleDeleteView(c *gin.Context) {
	session := sessions.Default(c)
	id, _ := session.Get("view_id").(string)

	ViewLock.Lock()
	view, ok := ViewStore[id]
	delete(ViewStore, id)
	ViewLock.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "view not found"})
		return
	}
	view.Close()

	session.Delete("view_id")
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
