package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Version is set via ldflags at build time
var Version = "dev"

type taskHTTPRequest struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

type taskSpec struct {
	Name         string          `json:"name,omitempty"`
	ScheduleTime string          `json:"scheduleTime,omitempty"`
	HTTPRequest  taskHTTPRequest `json:"httpRequest"`
}

type createTaskRequest struct {
	Task taskSpec `json:"task"`
}

type taskResponse struct {
	Name         string `json:"name"`
	ScheduleTime string `json:"scheduleTime"`
	CreateTime   string `json:"createTime"`
}

type pendingTask struct {
	name         string
	queue        string
	scheduleTime time.Time
	createTime   time.Time
	body         []byte
	headers      map[string]string
	timer        *time.Timer
}

// dispatcher holds named tasks in memory and posts each task's payload
// to the target URL at its schedule time. Creating a task under an
// existing name replaces the pending one, matching Cloud Tasks semantics
// closely enough for local development.
type dispatcher struct {
	mu         sync.Mutex
	tasks      map[string]*pendingTask
	targetURL  string
	httpClient *http.Client
}

func newDispatcher(targetURL string) *dispatcher {
	return &dispatcher{
		tasks:     make(map[string]*pendingTask),
		targetURL: targetURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (d *dispatcher) create(queue string, spec taskSpec) (*pendingTask, error) {
	body, err := base64.StdEncoding.DecodeString(spec.HTTPRequest.Body)
	if err != nil {
		return nil, fmt.Errorf("body is not valid base64: %w", err)
	}

	now := time.Now()
	scheduleTime := now
	if spec.ScheduleTime != "" {
		scheduleTime, err = time.Parse(time.RFC3339, spec.ScheduleTime)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduleTime: %w", err)
		}
	}

	name := spec.Name
	if name == "" {
		name = uuid.NewString()
	}

	t := &pendingTask{
		name:         name,
		queue:        queue,
		scheduleTime: scheduleTime,
		createTime:   now,
		body:         body,
		headers:      spec.HTTPRequest.Headers,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.tasks[name]; ok {
		prev.timer.Stop()
		slog.Debug("replacing pending task", slog.String("task_name", name))
	}

	t.timer = time.AfterFunc(time.Until(scheduleTime), func() {
		d.dispatch(name)
	})
	d.tasks[name] = t

	slog.Info("task scheduled",
		slog.String("task_name", name),
		slog.String("queue", queue),
		slog.Time("schedule_time", scheduleTime),
	)
	return t, nil
}

func (d *dispatcher) delete(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tasks[name]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(d.tasks, name)

	slog.Info("task deleted", slog.String("task_name", name))
	return true
}

func (d *dispatcher) get(name string) (*pendingTask, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tasks[name]
	return t, ok
}

func (d *dispatcher) stopAll() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range d.tasks {
		t.timer.Stop()
	}
	n := len(d.tasks)
	d.tasks = make(map[string]*pendingTask)
	return n
}

// dispatch fires once per task: the entry is removed before delivery so
// a slow target never double-sends.
func (d *dispatcher) dispatch(name string) {
	d.mu.Lock()
	t, ok := d.tasks[name]
	if ok {
		delete(d.tasks, name)
	}
	d.mu.Unlock()

	if !ok {
		return
	}

	req, err := http.NewRequest(http.MethodPost, d.targetURL, bytes.NewReader(t.body))
	if err != nil {
		slog.Error("failed to build dispatch request",
			slog.String("task_name", name),
			slog.String("error", err.Error()),
		)
		return
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		slog.Error("task dispatch failed",
			slog.String("task_name", name),
			slog.String("target", d.targetURL),
			slog.String("error", err.Error()),
		)
		return
	}
	defer resp.Body.Close()

	slog.Info("task dispatched",
		slog.String("task_name", name),
		slog.Int("status_code", resp.StatusCode),
	)
}

func (d *dispatcher) handleCreate(c *gin.Context) {
	queue := c.Param("queue")
	if queue == "" {
		queue = "default"
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed task request"})
		return
	}

	t, err := d.create(queue, req.Task)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, taskResponse{
		Name:         t.name,
		ScheduleTime: t.scheduleTime.Format(time.RFC3339),
		CreateTime:   t.createTime.Format(time.RFC3339),
	})
}

func (d *dispatcher) handleDelete(c *gin.Context) {
	if !d.delete(c.Param("name")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (d *dispatcher) handleGet(c *gin.Context) {
	t, ok := d.get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, taskResponse{
		Name:         t.name,
		ScheduleTime: t.scheduleTime.Format(time.RFC3339),
		CreateTime:   t.createTime.Format(time.RFC3339),
	})
}

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	targetURL := os.Getenv("TARGET_URL")
	if targetURL == "" {
		slog.Error("TARGET_URL is required")
		return 1
	}

	d := newDispatcher(targetURL)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": Version})
	})

	r.POST("/tasks", d.handleCreate)
	r.POST("/tasks/:queue", d.handleCreate)
	r.GET("/task/:name", d.handleGet)
	r.DELETE("/task/:name", d.handleDelete)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting tasks service",
			slog.String("port", port),
			slog.String("target", targetURL),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))

		dropped := d.stopAll()
		if dropped > 0 {
			slog.Warn("dropped pending tasks on shutdown", slog.Int("count", dropped))
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
