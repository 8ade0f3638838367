package domain

// ArtistFull is an artist as listed in the roster, with the orders and ratings attached to them.
type ArtistFull struct {
	ID                 string   `json:"id"`
	Email              string   `json:"email"`
	Role               UserRole `json:"role"`
	FirstName          string   `json:"firstName"`
	LastName           string   `json:"lastName"`
	Genres             []string `json:"genres"`
	ProfileDescription string   `json:"profileDescription"`
	Orders             []Order  `json:"orders"`
	Ratings            []Rating `json:"ratings"`
}

type RatingSeed struct {
	ArtistID string `json:"artistId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type Rating struct {
	// UserID is the id of the customer who left the rating.
	UserID   string `json:"userId"`
	ArtistID string `json:"artistId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	// Timestamp is formatted as ISO 8601.
	Timestamp string `json:"timestamp"`
}

// CountRating returns the mean rating, or 0 when there are no ratings.
func CountRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}

// FindRating returns the rating left by customerID, or 0 if they have not rated.
func FindRating(customerID string, ratings []Rating) int {
	for _, r := range ratings {
		if r.UserID == customerID {
			return r.Rating
		}
	}
	return 0
}
