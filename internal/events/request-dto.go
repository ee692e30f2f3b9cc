package events

import "time"

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description" validate:"max=5000"`
	Location    string    `json:"location" validate:"required,min=2,max=255"`
	Date        time.Time `json:"date" validate:"required"`
	TotalSeats  int       `json:"total_seats" validate:"required,min=1,max=1000000"`
	Price       float64   `json:"price" validate:"min=0"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url,max=500"`
}

// UpdateEventRequest carries only the fields being changed.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Location    *string    `json:"location" validate:"omitempty,min=2,max=255"`
	Date        *time.Time `json:"date"`
	TotalSeats  *int       `json:"total_seats" validate:"omitempty,min=1,max=1000000"`
	Price       *float64   `json:"price" validate:"omitempty,min=0"`
	ImageURL    *string    `json:"image_url" validate:"omitempty,url,max=500"`
}

func (r UpdateEventRequest) fields() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Title != nil {
		updates["title"] = *r.Title
	}
	if r.Description != nil {
		updates["description"] = *r.Description
	}
	if r.Location != nil {
		updates["location"] = *r.Location
	}
	if r.Date != nil {
		updates["date"] = r.Date.UTC()
	}
	if r.Price != nil {
		updates["price"] = *r.Price
	}
	if r.ImageURL != nil {
		updates["image_url"] = *r.ImageURL
	}
	return updates
}

// EventListQuery mirrors the public catalog filters. Date is a calendar day
// in YYYY-MM-DD form.
type EventListQuery struct {
	Location string `form:"location"`
	Date     string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Search   string `form:"search"`
}
