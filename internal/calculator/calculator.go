package calculator

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/paulmach/orb"

	"scalebar-service/internal/models"
	"scalebar-service/internal/scalebar"
	"scalebar-service/internal/units"
)

type ProgressCallback func(current, total int, msg string)
type LoggerCallback func(msg string)

// ErrCancelled is returned when BatchOptions.Cancelled reports true mid-run.
var ErrCancelled = errors.New("calculation cancelled")

// BatchOptions apply to every viewpoint of a batch.
type BatchOptions struct {
	Engine    scalebar.Engine
	System    units.System
	AlwaysFit bool
	// DefaultWidth is used for viewpoints without a width of their own.
	DefaultWidth float64
	// Cancelled is polled between viewpoints; nil never cancels.
	Cancelled func() bool
}

// Resolve returns the meters per pixel of v: its explicit resolution, else the one of
// its zoom level.
func Resolve(v models.Viewpoint) float64 {
	if v.Resolution > 0 {
		return v.Resolution
	}
	return ResolutionAtZoom(orb.Point{v.Center.Lon, v.Center.Lat}, v.Zoom)
}

// ComputeScalebar runs the engine for a single viewpoint.
func ComputeScalebar(v models.Viewpoint, opts BatchOptions) models.ScaleRow {
	width := v.Width
	if width <= 0 {
		width = opts.DefaultWidth
	}
	res := Resolve(v)
	r := opts.Engine.Compute(scalebar.Input{
		AvailableWidth:         width,
		GroundDistancePerPixel: res,
		BaseUnit:               units.Meters,
		System:                 opts.System,
		AlwaysFit:              opts.AlwaysFit,
	})
	return models.ScaleRow{
		Name:           v.Name,
		Lat:            v.Center.Lat,
		Lon:            v.Center.Lon,
		Zoom:           v.Zoom,
		Resolution:     res,
		Width:          width,
		Distance:       r.Distance.Value,
		Unit:           r.Distance.Unit.Abbreviation,
		DistanceMeters: r.Distance.Meters(),
		Label:          r.Label,
		RenderWidth:    r.RenderWidth,
		Visible:        r.Visible,
	}
}

// ComputeScalebars computes one row per viewpoint, in input order, spreading the
// work over all CPUs.
func ComputeScalebars(viewpoints []models.Viewpoint, opts BatchOptions, onProgress ProgressCallback, logger LoggerCallback) ([]models.ScaleRow, error) {
	if len(viewpoints) == 0 {
		return nil, fmt.Errorf("empty input list")
	}
	if logger == nil {
		logger = func(string) {}
	}

	total := len(viewpoints)
	results := make([]models.ScaleRow, total)

	numCPU := runtime.NumCPU()
	if numCPU < 1 {
		numCPU = 1
	}
	chunkSize := (total + numCPU - 1) / numCPU

	var wg sync.WaitGroup
	var processedCount int64
	var cancelled atomic.Bool

	logger(fmt.Sprintf("Starting parallel processing with %d CPUs, %d viewpoints", numCPU, total))

	for i := 0; i < numCPU; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if start >= total {
			break
		}
		if end > total {
			end = total
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()

			for idx := s; idx < e; idx++ {
				if cancelled.Load() {
					return
				}
				if opts.Cancelled != nil && opts.Cancelled() {
					cancelled.Store(true)
					return
				}
				results[idx] = ComputeScalebar(viewpoints[idx], opts)

				count := atomic.AddInt64(&processedCount, 1)
				if count%500 == 0 && onProgress != nil {
					onProgress(int(count), total, "")
				}
			}
		}(start, end)
	}

	wg.Wait()

	if cancelled.Load() {
		logger("Calculation cancelled.")
		return nil, ErrCancelled
	}
	if onProgress != nil {
		onProgress(total, total, "")
	}

	logger("Calculation completed.")
	return results, nil
}
