package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/james-see/tasteofcontrol/pkg/engine"
	"github.com/james-see/tasteofcontrol/pkg/logger"
	"github.com/james-see/tasteofcontrol/pkg/notation"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

// AdvanceRequest is one control event.
type AdvanceRequest struct {
	DirectionDelta int     `json:"direction_delta"`
	Volume         float64 `json:"volume" binding:"gte=0,lte=1"`
	Label          string  `json:"label"`
}

// MeasureResponse is a composed measure with each part in LilyPond.
type MeasureResponse struct {
	Number      int               `json:"number"`
	Stage       int               `json:"stage"`
	StageName   string            `json:"stage_name"`
	Direction   int               `json:"direction"`
	Volume      float64           `json:"volume"`
	Label       string            `json:"label"`
	Meter       string            `json:"time_signature"`
	TimeChanged bool              `json:"time_changed"`
	Beats       int               `json:"beats"`
	Parts       map[string]string `json:"parts"`
}

func newMeasureResponse(m *engine.Measure) MeasureResponse {
	return MeasureResponse{
		Number:      m.Number,
		Stage:       int(m.Stage),
		StageName:   m.Stage.String(),
		Direction:   m.Direction,
		Volume:      m.Volume,
		Label:       m.Label,
		Meter:       m.Meter.String(),
		TimeChanged: m.TimeChanged,
		Beats:       int(m.Length() / score.TicksPerBeat),
		Parts:       notation.Measure(m),
	}
}

// handleAdvance godoc
// @Summary Advance the session
// @Description Applies a control event and composes the next measure
// @Tags session
// @Accept json
// @Produce json
// @Param request body AdvanceRequest true "Control event"
// @Success 200 {object} MeasureResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/advance [post]
func (s *Server) handleAdvance(c *gin.Context) {
	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := s.session.Advance(req.DirectionDelta, req.Volume, req.Label)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrDurationMismatch) {
			status = http.StatusConflict
		}
		fields := logger.WithContext(c)
		fields["session_id"] = s.session.ID()
		logger.Error("Advance failed", err, fields)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newMeasureResponse(m))
}

// handleState godoc
// @Summary Session state
// @Tags session
// @Produce json
// @Success 200 {object} engine.Snapshot
// @Router /api/v1/state [get]
func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

// handleLatest godoc
// @Summary Latest measure
// @Tags score
// @Produce json
// @Success 200 {object} MeasureResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/measures/latest [get]
func (s *Server) handleLatest(c *gin.Context) {
	latest := s.session.Snapshot().Latest
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no measure composed yet"})
		return
	}
	c.JSON(http.StatusOK, newMeasureResponse(latest))
}

// handleInstrument godoc
// @Summary Latest line of one instrument
// @Tags score
// @Produce json
// @Param name path string true "Instrument name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/instruments/{name} [get]
func (s *Server) handleInstrument(c *gin.Context) {
	name := c.Param("name")
	latest := s.session.Snapshot().Latest
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no measure composed yet"})
		return
	}
	part, ok := latest.Part(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown instrument %q", name)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"instrument": name,
		"measure":    latest.Number,
		"line":       notation.Measure(latest)[name],
		"duration":   part.Fragment.RealDuration().String(),
		"label":      latest.Label,
	})
}

// handleScore godoc
// @Summary Complete score
// @Tags score
// @Produce plain
// @Success 200 {string} string "LilyPond source"
// @Router /api/v1/score [get]
func (s *Server) handleScore(c *gin.Context) {
	c.Data(http.StatusOK, "text/x-lilypond; charset=utf-8", []byte(notation.Score(s.session.Score())))
}

// handleMIDI godoc
// @Summary Complete score as MIDI
// @Tags score
// @Produce application/octet-stream
// @Success 200 {file} binary
// @Failure 500 {object} map[string]string
// @Router /api/v1/score/midi [get]
func (s *Server) handleMIDI(c *gin.Context) {
	data, err := s.midi.Generate(s.session.Score())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.mid", s.session.ID()))
	c.Data(http.StatusOK, "audio/midi", data)
}

// handleErrors godoc
// @Summary Duration mismatch record
// @Tags session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/errors [get]
func (s *Server) handleErrors(c *gin.Context) {
	entries, err := s.record.Entries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}
