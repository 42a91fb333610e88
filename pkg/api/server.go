// Package api provides the REST API server for noteroll
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/noteroll/pkg/converter"
	"github.com/james-see/noteroll/pkg/sequence"
	"github.com/james-see/noteroll/pkg/tensor"
)

// @title Noteroll API
// @version 1.0
// @description API for encoding note sequences into model tensors and back
// @host localhost:8080
// @BasePath /api/v1

// EncodeRequest carries a converter spec and the sequence to encode.
type EncodeRequest struct {
	Spec     converter.Spec        `json:"spec"`
	Sequence sequence.NoteSequence `json:"sequence"`
}

// EncodeResponse is the encoded tensor in row-major form.
type EncodeResponse struct {
	Shape  []int       `json:"shape"`
	Tensor [][]float64 `json:"tensor"`
}

// DecodeRequest carries a converter spec and the tensor to decode.
type DecodeRequest struct {
	Spec   converter.Spec `json:"spec"`
	Tensor [][]float64    `json:"tensor"`
}

// DecodeResponse is the reconstructed sequence.
type DecodeResponse struct {
	Sequence *sequence.NoteSequence `json:"sequence"`
}

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := NewRouter()
	return r.Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/converters", listConverters)
		v1.POST("/encode", handleEncode)
		v1.POST("/decode", handleDecode)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
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
		"service": "noteroll",
	})
}

// listConverters godoc
// @Summary List converter kinds
// @Description Returns the recognized converter kinds and their argument schemas
// @Tags info
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/converters [get]
func listConverters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"kinds": converter.Kinds(),
		"args": gin.H{
			string(converter.KindDrums):    "stepCount, segmentCount?, splitCount?, pitchClasses?",
			string(converter.KindDrumRoll): "stepCount, segmentCount?, splitCount?, pitchClasses?",
			string(converter.KindMelody):   "stepCount, minPitch, maxPitch, segmentCount?, splitCount?",
		},
	})
}

// handleEncode godoc
// @Summary Encode a note sequence
// @Description Encodes a quantized note sequence into a model tensor
// @Tags codec
// @Accept json
// @Produce json
// @Param request body EncodeRequest true "Converter spec and sequence"
// @Success 200 {object} EncodeResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/encode [post]
func handleEncode(c *gin.Context) {
	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	conv, err := converter.New(req.Spec)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enc, err := conv.Encode(&req.Sequence)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	rows, cols := enc.Dims()
	c.JSON(http.StatusOK, EncodeResponse{
		Shape:  []int{rows, cols},
		Tensor: enc.Rows(),
	})
}

// handleDecode godoc
// @Summary Decode a model tensor
// @Description Decodes a model output tensor back into a note sequence
// @Tags codec
// @Accept json
// @Produce json
// @Param request body DecodeRequest true "Converter spec and tensor"
// @Success 200 {object} DecodeResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/decode [post]
func handleDecode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	conv, err := converter.New(req.Spec)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := tensor.FromRows(req.Tensor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer t.Free()

	seq, err := conv.Decode(c.Request.Context(), t)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, DecodeResponse{Sequence: seq})
}

// statusFor maps codec validation failures to 400 and anything else to 500.
func statusFor(err error) int {
	for _, sentinel := range []error{
		converter.ErrUnknownPitch,
		converter.ErrNotMonophonic,
		converter.ErrPitchOutOfRange,
		converter.ErrStepOutOfRange,
		converter.ErrUnknownKind,
		converter.ErrInvalidSpec,
	} {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
