// Package rail fetches and normalizes CTA Train Tracker arrival
// predictions. The upstream is an XML document rooted at <ctatt> whose
// timestamps are local civil times in America/Chicago.
package rail

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickford1/cta-tracker/internal/common/config"
	"github.com/patrickford1/cta-tracker/internal/upstream"
)

// timestampLayout is the Train Tracker wire format for prdt and arrT.
const timestampLayout = "20060102 15:04:05"

// Location is the civil timezone every CTA prediction is interpreted
// in, regardless of where the server runs.
var Location = mustLoadLocation("America/Chicago")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("failed to load timezone " + name + ": " + err.Error())
	}
	return loc
}

// Arrival is one normalized train arrival prediction.
type Arrival struct {
	StationName   string    `json:"station_name"`
	Platform      string    `json:"platform"`
	Route         string    `json:"route"`
	Destination   string    `json:"dest_name"`
	PredictedAt   time.Time `json:"predicted_at"`
	ArrivesAt     time.Time `json:"arrives_at"`
	Minutes       int       `json:"minutes"`
	IsApproaching bool      `json:"is_approaching"`
	IsScheduled   bool      `json:"is_scheduled"`
	IsDelayed     bool      `json:"is_delayed"`
}

type ctattDocument struct {
	XMLName xml.Name `xml:"ctatt"`
	ErrCd   string   `xml:"errCd"`
	ErrNm   string   `xml:"errNm"`
	ETAs    []eta    `xml:"eta"`
}

type eta struct {
	StationName   string `xml:"staNm"`
	Platform      string `xml:"stpDe"`
	Route         string `xml:"rt"`
	Destination   string `xml:"destNm"`
	PredictedAt   string `xml:"prdt"`
	ArrivesAt     string `xml:"arrT"`
	IsApproaching string `xml:"isApp"`
	IsScheduled   string `xml:"isSch"`
	IsDelayed     string `xml:"isDly"`
}

// ParseArrivals normalizes a raw ttarrivals document. A non-zero
// top-level error code fails the whole cycle even though the HTTP call
// succeeded; individual <eta> elements with unparseable timestamps are
// dropped rather than failing the rest.
func ParseArrivals(doc []byte) ([]Arrival, error) {
	var payload ctattDocument
	if err := xml.Unmarshal(doc, &payload); err != nil {
		return nil, &upstream.ProtocolError{Reason: fmt.Sprintf("unexpected Train API response: %v", err)}
	}

	errCd := strings.TrimSpace(payload.ErrCd)
	if errCd != "" && errCd != "0" {
		return nil, &upstream.SemanticError{
			Message: fmt.Sprintf("CTA error %s: %s", errCd, strings.TrimSpace(payload.ErrNm)),
		}
	}

	arrivals := make([]Arrival, 0, len(payload.ETAs))
	for _, e := range payload.ETAs {
		prdt, errP := parseTimestamp(e.PredictedAt)
		arrT, errA := parseTimestamp(e.ArrivesAt)
		if errP != nil || errA != nil {
			continue
		}

		minutes := int(arrT.Sub(prdt) / time.Minute)
		if minutes < 0 {
			minutes = 0
		}

		arrivals = append(arrivals, Arrival{
			StationName:   strings.TrimSpace(e.StationName),
			Platform:      strings.TrimSpace(e.Platform),
			Route:         strings.TrimSpace(e.Route),
			Destination:   strings.TrimSpace(e.Destination),
			PredictedAt:   prdt,
			ArrivesAt:     arrT,
			Minutes:       minutes,
			IsApproaching: flag(e.IsApproaching),
			IsScheduled:   flag(e.IsScheduled),
			IsDelayed:     flag(e.IsDelayed),
		})
	}

	sort.SliceStable(arrivals, func(i, j int) bool {
		if !arrivals[i].ArrivesAt.Equal(arrivals[j].ArrivesAt) {
			return arrivals[i].ArrivesAt.Before(arrivals[j].ArrivesAt)
		}
		return arrivals[i].Route < arrivals[j].Route
	})

	return arrivals, nil
}

func parseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(timestampLayout, strings.TrimSpace(value), Location)
}

func flag(value string) bool {
	return strings.TrimSpace(value) == "1"
}

// Client fetches one cycle's worth of arrivals from the Train Tracker.
type Client struct {
	http *upstream.Client
	cfg  config.TrainFeedConfig
}

func NewClient(cfg config.TrainFeedConfig, httpClient *upstream.Client) *Client {
	return &Client{http: httpClient, cfg: cfg}
}

// Arrivals performs the fetch-and-normalize for one refresh cycle.
func (c *Client) Arrivals(ctx context.Context) ([]Arrival, error) {
	params := url.Values{}
	params.Set("key", c.cfg.APIKey)
	params.Set("max", strconv.Itoa(c.cfg.MaxResults))
	// stpid pins a platform/direction; mapid covers the whole station.
	if c.cfg.StopID != "" {
		params.Set("stpid", c.cfg.StopID)
	} else {
		params.Set("mapid", c.cfg.MapID)
	}

	body, err := c.http.Get(ctx, c.cfg.URL, params)
	if err != nil {
		return nil, err
	}

	return ParseArrivals(body)
}
