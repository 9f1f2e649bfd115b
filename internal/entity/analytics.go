package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMissingField = errors.New("missing field")

// Counters — счётчики одной страницы.
type Counters struct {
	PageViews   uint64 `json:"page_views"`
	Impressions uint64 `json:"impressions"`
	Clicks      uint64 `json:"clicks"`
}

// CountersRequest is the POST body. Pointers let us tell an absent field from zero.
type CountersRequest struct {
	PageViews   *uint64 `json:"page_views"`
	Impressions *uint64 `json:"impressions"`
	Clicks      *uint64 `json:"clicks"`
}

func (r CountersRequest) Validate() error {
	switch {
	case r.PageViews == nil:
		return fmt.Errorf("%w: page_views", ErrMissingField)
	case r.Impressions == nil:
		return fmt.Errorf("%w: impressions", ErrMissingField)
	case r.Clicks == nil:
		return fmt.Errorf("%w: clicks", ErrMissingField)
	}
	return nil
}

// Counters must only be called after a successful Validate.
func (r CountersRequest) Counters() Counters {
	return Counters{PageViews: *r.PageViews, Impressions: *r.Impressions, Clicks: *r.Clicks}
}

// PageStat is encoded as a two-element array: ["home", {"page_views":1,...}].
type PageStat struct {
	Page     string
	Counters Counters
}

func (p PageStat) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Page, p.Counters})
}

func (p *PageStat) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("page stat: want 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Page); err != nil {
		return fmt.Errorf("page stat: page: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Counters); err != nil {
		return fmt.Errorf("page stat: counters: %w", err)
	}
	return nil
}

// Snapshot is the persisted form of the whole store.
type Snapshot struct {
	Analytics map[string]Counters `json:"analytics"`
}

func NewSnapshot() Snapshot {
	return Snapshot{Analytics: make(map[string]Counters)}
}

// DecodeSnapshot parses a persisted snapshot. The analytics field and every
// counter of every page are required; a partial record means a corrupt file.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var raw struct {
		Analytics map[string]CountersRequest `json:"analytics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, err
	}
	if raw.Analytics == nil {
		return Snapshot{}, fmt.Errorf("%w: analytics", ErrMissingField)
	}
	snap := Snapshot{Analytics: make(map[string]Counters, len(raw.Analytics))}
	for page, r := range raw.Analytics {
		if err := r.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("page %q: %w", page, err)
		}
		snap.Analytics[page] = r.Counters()
	}
	return snap, nil
}
