package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/fogleman/gg"
)

// ProgressUpdate represents a single finished pass sent via SSE
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
}

// sseWriter writes Server-Sent Events. It is only used from the handler goroutine.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) send(event, data string) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseWriter) sendJSON(event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.send(event, string(data))
}

// sendOrLog is for events after which the handler stops; a failure is only logged
func (s *sseWriter) sendOrLog(event, data string) {
	if err := s.send(event, data); err != nil {
		log.Printf("Error sending %s event: %v", event, err)
	}
}

func (s *sseWriter) sendJSONOrLog(event string, v interface{}) {
	if err := s.sendJSON(event, v); err != nil {
		log.Printf("Error sending %s event: %v", event, err)
	}
}

// handleRender streams a progressive render: one "progress" event per pass,
// "console" events for renderer log output, then "complete" or "error"
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		sse.sendOrLog("error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		sse.sendOrLog("error", err.Error())
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan)

	config := renderer.DefaultProgressiveConfig()
	config.MaxSamplesPerPixel = sceneObj.GetSamplingConfig().SamplesPerPixel
	config.MaxPasses = req.MaxPasses
	config.Seed = req.Seed

	raytracer, err := renderer.NewProgressiveRaytracer(sceneObj, config, webLogger)
	if err != nil {
		sse.sendOrLog("error", err.Error())
		return
	}

	ctx := r.Context()
	startTime := time.Now()
	passChan, errChan := raytracer.RenderProgressive(ctx)

	for passChan != nil {
		select {
		case msg := <-consoleChan:
			sse.sendJSONOrLog("console", msg)

		case result, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			update, err := newProgressUpdate(result, req.MaxPasses, startTime)
			if err != nil {
				log.Printf("Error encoding pass %d: %v", result.PassNumber, err)
				continue
			}
			if err := sse.sendJSON("progress", update); err != nil {
				// Client is gone; the request context cancels the render
				return
			}
		}
	}

	drainConsole(consoleChan, sse)

	if err := <-errChan; err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		sse.sendOrLog("error", fmt.Sprintf("Render error: %v", err))
		return
	}

	sse.sendOrLog("complete", "Rendering completed")
}

// drainConsole forwards console messages that arrived after the last pass
func drainConsole(consoleChan chan ConsoleMessage, sse *sseWriter) {
	for {
		select {
		case msg := <-consoleChan:
			sse.sendJSONOrLog("console", msg)
		default:
			return
		}
	}
}

func newProgressUpdate(result renderer.PassResult, totalPasses int, startTime time.Time) (ProgressUpdate, error) {
	imageData, err := imageToBase64PNG(result.Image)
	if err != nil {
		return ProgressUpdate{}, err
	}

	bounds := result.Image.Bounds()
	return ProgressUpdate{
		PassNumber:  result.PassNumber,
		TotalPasses: totalPasses,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageData:   imageData,
		Stats: Stats{
			TotalPixels:    result.Stats.TotalPixels,
			TotalSamples:   int64(result.Stats.TotalSamples),
			AverageSamples: result.Stats.AverageSamples,
			MaxSamples:     result.Stats.MaxSamples,
			MinSamples:     result.Stats.MinSamples,
			MaxSamplesUsed: result.Stats.MaxSamplesUsed,
		},
		IsComplete: result.IsLast,
		ElapsedMs:  time.Since(startTime).Milliseconds(),
	}, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
