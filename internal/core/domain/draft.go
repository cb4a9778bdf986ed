package domain

import "time"

// Draft is a locally saved working copy of a compliance record.
type Draft struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	SSPID     string            `json:"sspId,omitempty"`
	Record    *ComplianceRecord `json:"record"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
