package events

import "time"

type EventResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Date           time.Time `json:"date"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	TrulyAvailable int       `json:"truly_available"`
	Price          float64   `json:"price"`
	ImageURL       string    `json:"image_url"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (e *Event) ToResponse(trulyAvailable int) EventResponse {
	return EventResponse{
		ID:             e.ID.String(),
		Title:          e.Title,
		Description:    e.Description,
		Location:       e.Location,
		Date:           e.Date,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.AvailableSeats,
		TrulyAvailable: trulyAvailable,
		Price:          e.Price,
		ImageURL:       e.ImageURL,
		CreatedBy:      e.CreatedBy.String(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
