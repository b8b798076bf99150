package main

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"scalebar-service/internal/calculator"
	"scalebar-service/internal/excel"
	"scalebar-service/internal/models"
)

// === Job System ===

type JobStatus string

const (
	StatusRunning   JobStatus = "running"
	StatusDone      JobStatus = "done"
	StatusError     JobStatus = "error"
	StatusCancelled JobStatus = "cancelled"
)

type JobResult struct {
	Rows     int    `json:"rows"`
	Sheet    string `json:"sheet"`
	Output   string `json:"output"`   // Full path
	Filename string `json:"filename"` // Just filename for download
}

type Job struct {
	ID        string
	Status    JobStatus
	Logs      []string
	Progress  int // 0-100
	Result    *JobResult
	Error     string
	Mutex     sync.RWMutex
	CreatedAt time.Time

	cancelled atomic.Bool
}

var (
	JobStore = make(map[string]*Job)
	JobLock  sync.RWMutex
)

func NewJob() *Job {
	return &Job{
		ID:        uuid.New().String(),
		Status:    StatusRunning,
		Logs:      []string{},
		CreatedAt: time.Now(),
	}
}

func (j *Job) Log(msg string) {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	j.appendLog(msg)
}

func (j *Job) appendLog(msg string) {
	ts := time.Now().Format("15:04:05")
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", ts, msg))
}

func (j *Job) SetProgress(current, total int, msg string) {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	if total > 0 {
		j.Progress = int(float64(current) / float64(total) * 100)
	}
	if msg != "" {
		j.appendLog(msg)
	}
}

// Cancel asks a running job to stop at its next checkpoint.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
}

func (j *Job) Cancelled() bool {
	return j.cancelled.Load()
}

func RegisterJob(job *Job) {
	JobLock.Lock()
	defer JobLock.Unlock()
	JobStore[job.ID] = job
}

func GetJob(id string) *Job {
	JobLock.RLock()
	defer JobLock.RUnlock()
	return JobStore[id]
}

// ExportRequest describes one batch export.
type ExportRequest struct {
	// InputPath is an uploaded workbook; empty means a generated zoom table.
	InputPath  string
	Sheet      string
	Center     models.Coordinate
	Width      float64
	OutputPath string
	Options    calculator.BatchOptions
}

const resultSheet = "Scalebars"

func processJob(job *Job, req ExportRequest) {
	defer func() {
		if r := recover(); r != nil {
			failJob(job, fmt.Sprintf("Panic: %v", r))
		}
	}()

	var viewpoints []models.Viewpoint
	if req.InputPath != "" {
		job.Log(fmt.Sprintf("Reading workbook: %s", filepath.Base(req.InputPath)))
		f, err := excel.OpenFile(req.InputPath)
		if err != nil {
			failJob(job, fmt.Sprintf("Could not open workbook: %v", err))
			return
		}
		defer f.Close()

		viewpoints, err = excel.ReadViewpoints(f, req.Sheet)
		if err != nil {
			failJob(job, fmt.Sprintf("Could not read viewpoints: %v", err))
			return
		}
		job.Log(fmt.Sprintf("%d viewpoints read from sheet %s.", len(viewpoints), req.Sheet))
	} else {
		viewpoints = excel.ZoomTable(req.Center.Lat, req.Center.Lon, req.Width)
		job.Log(fmt.Sprintf("Generated %d zoom levels at %.5f, %.5f.", len(viewpoints), req.Center.Lat, req.Center.Lon))
	}

	opts := req.Options
	opts.Cancelled = job.Cancelled

	start := time.Now()
	rows, err := calculator.ComputeScalebars(viewpoints, opts, job.SetProgress, job.Log)
	if errors.Is(err, calculator.ErrCancelled) {
		job.Mutex.Lock()
		job.Status = StatusCancelled
		job.appendLog("Cancelled by user.")
		job.Mutex.Unlock()
		return
	}
	if err != nil {
		failJob(job, fmt.Sprintf("Calculation error: %v", err))
		return
	}
	job.Log(fmt.Sprintf("Calculation finished in %s", time.Since(start)))

	job.Log("Writing result workbook...")
	if err := excel.WriteResult(req.OutputPath, rows, resultSheet); err != nil {
		failJob(job, fmt.Sprintf("Write error: %v", err))
		return
	}

	job.Mutex.Lock()
	job.Status = StatusDone
	job.appendLog("Export completed.")
	job.Result = &JobResult{
		Rows:     len(rows),
		Sheet:    resultSheet,
		Output:   req.OutputPath,
		Filename: filepath.Base(req.OutputPath),
	}
	job.Progress = 100
	job.Mutex.Unlock()
}

func failJob(job *Job, msg string) {
	log.Printf("job %s failed: %s", job.ID, msg)
	job.Mutex.Lock()
	job.Status = StatusError
	job.Error = msg
	job.Logs = append(job.Logs, "[ERROR] "+msg)
	job.Mutex.Unlock()
}
