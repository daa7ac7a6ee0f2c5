package domain

import "time"

type Room struct {
	ID          int64
	Name        string
	Capacity    int
	Location    string
	Equipment   string
	Description string
	CreatedAt   time.Time
}
