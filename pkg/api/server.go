// Package api provides the REST API server for noteseq
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seqforge/noteseq/pkg/converter"
	"github.com/seqforge/noteseq/pkg/midifile"
	"github.com/seqforge/noteseq/pkg/pianoroll"
	"github.com/seqforge/noteseq/pkg/sequence"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title noteseq API
// @version 1.0
// @description API for converting between MIDI files, NoteSequence documents and pianoroll tensors
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.POST("/convert/midi2seq", handleMidiToSeq)
		v1.POST("/convert/seq2midi", handleSeqToMidi)
		v1.POST("/convert/seq2roll", handleSeqToRoll)
		v1.POST("/convert/roll2seq", handleRollToSeq)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware tags every response with an X-Request-ID so
// conversion failures can be matched against server logs.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "noteseq",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the supported representations and conversion paths
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats": []string{"midi", "sequence", "pianoroll"},
		"conversions": []string{
			"midi -> sequence",
			"sequence -> midi",
			"sequence -> pianoroll",
			"pianoroll -> sequence",
		},
	})
}

// handleMidiToSeq godoc
// @Summary Convert MIDI to NoteSequence
// @Description Upload a MIDI file and receive a NoteSequence document
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to convert"
// @Success 200 {object} sequence.NoteSequence
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/midi2seq [post]
func handleMidiToSeq(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	f, err := midifile.Parse(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ns, err := converter.MidiToSequence(f)
	if err != nil {
		abortWithConversionError(c, err)
		return
	}
	c.JSON(http.StatusOK, ns)
}

// handleSeqToMidi godoc
// @Summary Convert NoteSequence to MIDI
// @Description Post a NoteSequence document and receive a MIDI file
// @Tags convert
// @Accept json
// @Produce application/octet-stream
// @Param sequence body sequence.NoteSequence true "NoteSequence to export"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/seq2midi [post]
func handleSeqToMidi(c *gin.Context) {
	var ns sequence.NoteSequence
	if err := c.ShouldBindJSON(&ns); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid NoteSequence JSON: " + err.Error()})
		return
	}

	f, err := converter.SequenceToMidi(&ns)
	if err != nil {
		abortWithConversionError(c, err)
		return
	}
	data, err := midifile.Serialize(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=sequence.mid")
	c.Data(http.StatusOK, "audio/midi", data)
}

// rollDocument wraps a pianoroll tensor in request and response bodies.
type rollDocument struct {
	Roll pianoroll.Roll `json:"roll"`
}

// handleSeqToRoll godoc
// @Summary Convert NoteSequence to pianoroll
// @Description Post a NoteSequence document and receive a pianoroll tensor. Unquantized sequences are quantized first.
// @Tags convert
// @Accept json
// @Produce json
// @Param sequence body sequence.NoteSequence true "NoteSequence to encode"
// @Param steps query int false "Number of steps in the roll (default: the sequence's last step)"
// @Param stepsPerQuarter query int false "Quantization grid for unquantized sequences (default 4)"
// @Success 200 {object} rollDocument
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/seq2roll [post]
func handleSeqToRoll(c *gin.Context) {
	var ns sequence.NoteSequence
	if err := c.ShouldBindJSON(&ns); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid NoteSequence JSON: " + err.Error()})
		return
	}

	seq := &ns
	if seq.MaxQuantizedEndStep() == 0 && len(seq.Notes) > 0 {
		stepsPerQuarter, err := queryInt(c, "stepsPerQuarter", 4)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		quantized, err := seq.Quantize(stepsPerQuarter)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		seq = quantized
	}

	steps, err := queryInt(c, "steps", seq.MaxQuantizedEndStep())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roll, err := pianoroll.FromSequence(seq, steps)
	if err != nil {
		abortWithConversionError(c, err)
		return
	}
	c.JSON(http.StatusOK, rollDocument{Roll: roll})
}

// handleRollToSeq godoc
// @Summary Convert pianoroll to NoteSequence
// @Description Post a pianoroll tensor and receive the decoded NoteSequence
// @Tags convert
// @Accept json
// @Produce json
// @Param roll body rollDocument true "Pianoroll to decode"
// @Success 200 {object} sequence.NoteSequence
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/roll2seq [post]
func handleRollToSeq(c *gin.Context) {
	var doc rollDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pianoroll JSON: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc.Roll.Sequence())
}

// abortWithConversionError maps the conversion layer's error kinds to
// status codes: invariant violations are unprocessable input, anything
// else is a server error.
func abortWithConversionError(c *gin.Context, err error) {
	var (
		conversion *converter.ConversionError
		malformed  *converter.MalformedInputError
		voice      *pianoroll.InvalidVoiceError
		pitch      *pianoroll.InvalidPitchError
	)
	switch {
	case errors.As(err, &conversion), errors.As(err, &malformed),
		errors.As(err, &voice), errors.As(err, &pitch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Error("conversion failed", "requestID", c.GetString("requestID"), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("query parameter %q must be a non-negative integer", name)
	}
	return v, nil
}
