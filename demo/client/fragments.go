package client

import (
	"context"
	"net/http"
)

// FragmentCheck mirrors the body of POST /api/fragments/check.
type FragmentCheck struct {
	ShortText         string   `json:"short_text"`
	LongText          string   `json:"long_text"`
	Strategy          string   `json:"strategy,omitempty"`
	SampleLengthRatio *float64 `json:"sample_length_ratio,omitempty"`
	MinSampleLength   *int     `json:"min_sample_length,omitempty"`
	MaxSampleLength   *int     `json:"max_sample_length,omitempty"`
}

// FragmentDecision mirrors the response of POST /api/fragments/check.
type FragmentDecision struct {
	Similar      bool   `json:"similar"`
	Strategy     string `json:"strategy"`
	Reason       string `json:"reason,omitempty"`
	SampleLength int    `json:"sample_length,omitempty"`
}

// CheckFragments asks the server whether the two texts share fragments.
func (c *Client) CheckFragments(ctx context.Context, check FragmentCheck) (*FragmentDecision, error) {
	var d FragmentDecision
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/fragments/check", check, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
