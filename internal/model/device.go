package model

import "time"

type DeviceHeartbeat struct {
	DeviceID   string    `json:"device_id"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
