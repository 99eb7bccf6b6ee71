// Package bus fetches and normalizes CTA Bus Tracker v3 predictions.
// The upstream is JSON wrapped in a "bustime-response" envelope; its
// timestamps are kept as the opaque strings upstream sends.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/patrickford1/cta-tracker/internal/common/config"
	"github.com/patrickford1/cta-tracker/internal/upstream"
)

// Prediction is one normalized bus arrival prediction. Minutes is nil
// when upstream reports a non-numeric, non-DUE countdown.
type Prediction struct {
	StopID        string `json:"stop_id"`
	StopName      string `json:"stop_name"`
	Route         string `json:"route"`
	Direction     string `json:"direction"`
	Destination   string `json:"dest_name"`
	VehicleID     string `json:"vehicle_id"`
	PredictedAt   string `json:"predicted_at"`
	ArrivesAt     string `json:"arrives_at"`
	Minutes       *int   `json:"minutes"`
	IsDelayed     bool   `json:"is_delayed"`
	DynamicAction int    `json:"dyn"`
}

type busDocument struct {
	Response *busEnvelope `json:"bustime-response"`
}

type busEnvelope struct {
	// error is usually a list of {msg} objects but is kept raw so an
	// unexpected shape can still be surfaced as text.
	Error       json.RawMessage `json:"error"`
	Predictions []busPrediction `json:"prd"`
}

type busPrediction struct {
	StopID        string `json:"stpid"`
	StopName      string `json:"stpnm"`
	Route         string `json:"rt"`
	Direction     string `json:"rtdir"`
	Destination   string `json:"des"`
	VehicleID     string `json:"vid"`
	Timestamp     string `json:"tmstmp"`
	PredictedTime string `json:"prdtm"`
	Countdown     string `json:"prdctdn"`
	Delayed       bool   `json:"dly"`
	DynamicAction int    `json:"dyn"`
}

// ParsePredictions normalizes a raw getpredictions document, keeping
// only predictions heading in the given direction (case-insensitive).
func ParsePredictions(doc []byte, direction string) ([]Prediction, error) {
	var payload busDocument
	if err := json.Unmarshal(doc, &payload); err != nil {
		return nil, &upstream.ProtocolError{Reason: fmt.Sprintf("unexpected Bus API response: %v", err)}
	}
	if payload.Response == nil {
		return nil, &upstream.ProtocolError{Reason: "unexpected Bus API response"}
	}

	if err := envelopeError(payload.Response.Error); err != nil {
		return nil, err
	}

	predictions := make([]Prediction, 0, len(payload.Response.Predictions))
	for _, prd := range payload.Response.Predictions {
		if !strings.EqualFold(prd.Direction, direction) {
			continue
		}
		predictions = append(predictions, Prediction{
			StopID:        prd.StopID,
			StopName:      prd.StopName,
			Route:         prd.Route,
			Direction:     prd.Direction,
			Destination:   prd.Destination,
			VehicleID:     prd.VehicleID,
			PredictedAt:   prd.Timestamp,
			ArrivesAt:     prd.PredictedTime,
			Minutes:       parseCountdown(prd.Countdown),
			IsDelayed:     prd.Delayed,
			DynamicAction: prd.DynamicAction,
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		if predictions[i].ArrivesAt != predictions[j].ArrivesAt {
			return predictions[i].ArrivesAt < predictions[j].ArrivesAt
		}
		return predictions[i].Route < predictions[j].Route
	})

	return predictions, nil
}

// envelopeError turns a non-empty upstream error list into a
// SemanticError. The messages are joined with "; "; an error value
// that is not the documented list shape is surfaced verbatim.
func envelopeError(raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return &upstream.SemanticError{Message: string(raw)}
	}
	if len(entries) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Msg != "" {
			msgs = append(msgs, e.Msg)
		}
	}
	combined := strings.Join(msgs, "; ")
	if combined == "" {
		combined = "Bus API error"
	}
	return &upstream.SemanticError{Message: combined}
}

// parseCountdown maps the prdctdn field: a digit string is minutes,
// "DUE" in any case is an imminent arrival, anything else ("DLY" and
// friends) carries no usable countdown.
func parseCountdown(raw string) *int {
	value := strings.TrimSpace(raw)
	if isDigits(value) {
		minutes, err := strconv.Atoi(value)
		if err == nil {
			return &minutes
		}
	}
	if strings.EqualFold(value, "DUE") {
		zero := 0
		return &zero
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Client fetches one cycle's worth of predictions from the Bus Tracker.
type Client struct {
	http *upstream.Client
	cfg  config.BusFeedConfig
}

func NewClient(cfg config.BusFeedConfig, httpClient *upstream.Client) *Client {
	return &Client{http: httpClient, cfg: cfg}
}

// Predictions performs the fetch-and-normalize for one refresh cycle.
func (c *Client) Predictions(ctx context.Context) ([]Prediction, error) {
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("stpid", c.cfg.StopID)
	params.Set("format", "json")
	if c.cfg.MaxResults > 0 {
		params.Set("top", strconv.Itoa(c.cfg.MaxResults))
	}

	body, err := c.http.Get(ctx, c.cfg.URL, params)
	if err != nil {
		return nil, err
	}

	return ParsePredictions(body, c.cfg.Direction)
}
