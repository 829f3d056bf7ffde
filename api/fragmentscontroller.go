package api

import (
	"net/http"
	"time"

	"transcriptdedup/fragment"
	"transcriptdedup/metrics"

	"github.com/gin-gonic/gin"
)

// RegisterFragmentRoutes registers the stateless similarity check.
func RegisterFragmentRoutes(r *gin.Engine, deps Dependencies) {
	fc := &fragmentController{base: deps.Fragment, strategy: deps.Strategy}
	r.POST("/api/fragments/check", fc.handleCheck)
}

// FragmentCheckRequest compares two texts. Unset overrides fall back to the server configuration.
type FragmentCheckRequest struct {
	ShortText         string   `json:"short_text"`
	LongText          string   `json:"long_text"`
	Strategy          string   `json:"strategy,omitempty"`
	SampleLengthRatio *float64 `json:"sample_length_ratio,omitempty"`
	MinSampleLength   *int     `json:"min_sample_length,omitempty"`
	MaxSampleLength   *int     `json:"max_sample_length,omitempty"`
}

// FragmentCheckResponse carries the decision; probe details are only reported by the quick strategy.
type FragmentCheckResponse struct {
	Similar      bool   `json:"similar"`
	Strategy     string `json:"strategy"`
	Reason       string `json:"reason,omitempty"`
	SampleLength int    `json:"sample_length,omitempty"`
}

type fragmentController struct {
	base     fragment.Options
	strategy string
}

func (fc *fragmentController) handleCheck(c *gin.Context) {
	var req FragmentCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := fc.base
	if req.SampleLengthRatio != nil {
		opts.SampleLengthRatio = *req.SampleLengthRatio
	}
	if req.MinSampleLength != nil {
		opts.MinSampleLength = *req.MinSampleLength
	}
	if req.MaxSampleLength != nil {
		opts.MaxSampleLength = *req.MaxSampleLength
	}
	if err := opts.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := req.Strategy
	if name == "" {
		name = fc.strategy
	}
	strategy, err := fragment.StrategyByName(name, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	resp := FragmentCheckResponse{Strategy: strategy.Name()}
	if quick, ok := strategy.(*fragment.QuickChecker); ok {
		d := quick.Explain(req.ShortText, req.LongText)
		resp.Similar = d.Similar
		resp.Reason = string(d.Reason)
		resp.SampleLength = d.SampleLength
	} else {
		resp.Similar = strategy.Match(req.ShortText, req.LongText)
	}
	metrics.RecordFragmentCheck(resp.Strategy, resp.Similar, time.Since(start))

	c.JSON(http.StatusOK, resp)
}
