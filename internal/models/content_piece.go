// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Well-known workflow stages. Status is free-form: these exist for seeding
// and readability, nothing rejects other values.
const (
	StatusIdeation       = "Ideation"
	StatusNeedsScripting = "Needs Scripting"
	StatusScripting      = "Scripting"
	StatusReadyToPost    = "Ready to Post"
	StatusPosted         = "Posted"
)

// localDateTimeLayout is the zone-less timestamp browsers send from
// datetime-local inputs. It is read as UTC.
const localDateTimeLayout = "2006-01-02T15:04:05.999999999"

// ContentPiece is one planned piece of social-media content with its
// metadata, script and workflow status. Every field except ID is optional;
// nil fields are stored as NULL and encoded as JSON null.
type ContentPiece struct {
	ID            int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title         *string    `json:"title" gorm:"type:text"`
	ContentPillar *string    `json:"contentPillar" gorm:"type:text"`
	Format        *string    `json:"format" gorm:"type:text"`
	Status        *string    `json:"status" gorm:"type:text"`
	Performance   *string    `json:"performance" gorm:"type:text"`
	Notes         *string    `json:"notes" gorm:"type:text"`
	UploadDate    *time.Time `json:"uploadDate"`
	Link          *string    `json:"link" gorm:"type:text"`
	Script        *string    `json:"script" gorm:"type:text"`
	Shotlist      *string    `json:"shotlist" gorm:"type:text"`
	Hook          *string    `json:"hook" gorm:"type:text"`
	Caption       *string    `json:"caption" gorm:"type:text"`
}

// TableName pins the table name for GORM.
func (ContentPiece) TableName() string {
	return "content_pieces"
}

// UnmarshalJSON decodes a content piece, accepting uploadDate either as
// RFC 3339 or as a zone-less local date-time.
func (p *ContentPiece) UnmarshalJSON(data []byte) error {
	type alias ContentPiece
	aux := struct {
		*alias
		UploadDate *string `json:"uploadDate"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.UploadDate = nil
	if aux.UploadDate == nil || *aux.UploadDate == "" {
		return nil
	}
	t, err := ParseTimestamp(*aux.UploadDate)
	if err != nil {
		return err
	}
	p.UploadDate = &t
	return nil
}

// ParseTimestamp parses an RFC 3339 timestamp, falling back to the
// zone-less form (seconds optional) interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(localDateTimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid uploadDate %q", s)
}

// StatusUpdate is the request body for a status-only update. A missing
// "status" key leaves Status nil, which means "no change".
type StatusUpdate struct {
	Status *string `json:"status"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
