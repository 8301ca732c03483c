package model

import (
	"database/sql"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/laundrywatch/laundrywatch/internal/decode"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Pass{},
	&Reading{},
}

// Pass is one sampling pass over the panel image.
type Pass struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Time        time.Time `json:"time"`
	ImageWidth  int       `json:"imageWidth"`
	ImageHeight int       `json:"imageHeight"`
	Threshold   float32   `json:"threshold"`

	Readings []Reading `json:"readings" gorm:"foreignKey:PassID"`
}

// Reading is one marker's decoded value within a pass, with the raw luminance
// samples kept for threshold tuning.
type Reading struct {
	ID     uint   `json:"id" gorm:"primarykey"`
	PassID uint   `json:"passID" gorm:"index"`
	Name   string `json:"name"`

	// Kind is "boolean", "integer" or "absent".
	Kind      string         `json:"kind"`
	BoolValue sql.NullBool   `json:"boolValue"`
	IntValue  sql.NullInt64  `json:"intValue"`
	Samples   datatypes.JSON `json:"samples"`
	Error     string         `json:"error,omitempty"`
}

// NewReading builds a Reading from a decode result. sampleErr carries the
// per-marker sampling failure, if any.
func NewReading(name string, samples []float32, v decode.Value, sampleErr error) Reading {
	r := Reading{Name: name}

	switch v.Kind {
	case decode.KindBoolean:
		r.Kind = "boolean"
		r.BoolValue = sql.NullBool{Bool: v.Bool, Valid: true}
	case decode.KindInteger:
		r.Kind = "integer"
		r.IntValue = sql.NullInt64{Int64: v.Int, Valid: true}
	default:
		r.Kind = "absent"
	}

	if raw, err := json.Marshal(samples); err == nil {
		r.Samples = datatypes.JSON(raw)
	}
	if sampleErr != nil {
		r.Error = sampleErr.Error()
	}

	return r
}

// Value reconstructs the decoded value of the reading.
func (r Reading) Value() decode.Value {
	switch r.Kind {
	case "boolean":
		return decode.Boolean(r.BoolValue.Bool)
	case "integer":
		return decode.Integer(r.IntValue.Int64)
	default:
		return decode.Absent
	}
}
