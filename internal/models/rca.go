package models

import (
	"encoding/json"
	"time"
)

// RcaResult is one row of the rca_results table, produced by the upstream
// anomaly-detection pipeline. Events is stored as raw jsonb because upstream
// writers are inconsistent: some write a JSON array of objects, some a JSON
// array of strings, some a JSON-encoded string. The normalizer sorts it out
// on the read path.
type RcaResult struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Filename        string          `json:"filename" gorm:"not null;index"`
	AppID           string          `json:"app_id"`
	Score           *float64        `json:"score"`
	ZScore          *float64        `json:"z_score"`
	UndetectedRatio *float64        `json:"undetected_ratio"`
	Status          string          `json:"status"`
	Events          json.RawMessage `json:"events" gorm:"type:jsonb"`
	Explanation     string          `json:"explanation" gorm:"type:text"`
	Logdate         time.Time       `json:"logdate" gorm:"not null;default:now();index"`
}

// RcaResultResponse is the shape returned to API callers. Logdate is an
// ISO-8601 string, events is always a list of objects, and explanation and
// status are never null.
type RcaResultResponse struct {
	ID              uint             `json:"id"`
	Filename        string           `json:"filename"`
	AppID           string           `json:"app_id"`
	Score           *float64         `json:"score"`
	ZScore          *float64         `json:"z_score"`
	UndetectedRatio *float64         `json:"undetected_ratio"`
	Status          string           `json:"status"`
	Events          []map[string]any `json:"events"`
	Explanation     string           `json:"explanation"`
	Logdate         string           `json:"logdate"`
}

func (RcaResult) TableName() string {
	return "rca_results"
}
