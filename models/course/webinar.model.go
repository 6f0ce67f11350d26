package course

import (
	"time"

	"gorm.io/gorm"
)

type Webinar struct {
	gorm.Model
	Title           string    `json:"title"`
	Slug            string    `json:"slug" gorm:"uniqueIndex;size:191;not null"`
	Description     string    `json:"description" gorm:"type:text"`
	Host            string    `json:"host"`
	StartsAt        time.Time `json:"startsAt"`
	DurationMinutes int       `json:"durationMinutes"`
	MeetingURL      string    `json:"meetingUrl"`
	ThumbnailKey    string    `json:"-"`
}
