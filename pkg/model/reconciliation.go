package model

import "time"

// ReconciliationRun summarizes one scheduled reconciliation. Only counts are
// stored, never the reconciled records themselves.
type ReconciliationRun struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	From       uint64    `json:"from" bson:"from"`
	To         uint64    `json:"to" bson:"to"`
	Records    int       `json:"records" bson:"records"`
	Booked     int       `json:"booked" bson:"booked"`
	Cancelled  int       `json:"cancelled" bson:"cancelled"`
	Settled    int       `json:"settled" bson:"settled"`
	StartedAt  time.Time `json:"started_at" bson:"started_at"`
	DurationMs int64     `json:"duration_ms" bson:"duration_ms"`
	Error      string    `json:"error,omitempty" bson:"error,omitempty"`
}
