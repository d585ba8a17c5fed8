// Package seed provides the demo plan catalogue.
package seed

import (
	"context"
	"fmt"

	"flashplan/models"
)

// PlanStore is the part of the plan repository seeding needs.
type PlanStore interface {
	Count(ctx context.Context) (int, error)
	InsertMany(ctx context.Context, plans []models.Plan) error
}

// Plans inserts DefaultPlans when the catalogue is empty and returns how
// many were inserted.
func Plans(ctx context.Context, store PlanStore) (int, error) {
	existing, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	plans := DefaultPlans()
	if err := store.InsertMany(ctx, plans); err != nil {
		return 0, fmt.Errorf("failed to seed plans: %w", err)
	}
	return len(plans), nil
}

// DefaultPlans is the demo catalogue.
func DefaultPlans() []models.Plan {
	return []models.Plan{
		{
			ID: "1", Name: "Concierto Jazz en Vivo", Category: "Musica",
			Distance: 0.8, Attendees: 45, Price: 15, Time: "19:30", Date: "Hoy, 9 de Enero",
			Location: "Jazz Club Central", Address: "Calle Mayor 123, Madrid",
			Description: "Jazz en directo con cuarteto local y cócteles de la casa.",
			Image:       "/jazz-concert-live.jpg", Organizer: "Jazz Club Central",
			Capacity: 80, Latitude: 40.4168, Longitude: -3.7038,
		},
		{
			ID: "2", Name: "Trattoria La Nonna", Category: "Gastronomia",
			Distance: 1.2, Attendees: 28, Price: 25, Time: "20:00", Date: "Hoy, 9 de Enero",
			Location: "Trattoria La Nonna", Address: "Calle de la Luna 45, Madrid",
			Description: "Mesas libres esta noche: pasta fresca y pizza de horno de leña.",
			Image:       "/italian-restaurant-cozy.jpg", Organizer: "Trattoria La Nonna",
			Capacity: 50, Latitude: 40.4215, Longitude: -3.7095,
		},
		{
			ID: "3", Name: "Escape Room Espacial", Category: "Entretenimiento",
			Distance: 2.5, Attendees: 12, Price: 20, Time: "18:00", Date: "Hoy, 9 de Enero",
			Location: "Mystery Box Madrid", Address: "Gran Via 78, Madrid",
			Description: "Sala temática espacial para grupos de 2 a 6 personas.",
			Image:       "/escape-room-space-theme.jpg", Organizer: "Mystery Box Madrid",
			Capacity: 24, Latitude: 40.4203, Longitude: -3.7058,
		},
		{
			ID: "4", Name: "Yoga al Atardecer", Category: "Bienestar",
			Distance: 1.8, Attendees: 35, Price: 0, Time: "20:30", Date: "Hoy, 9 de Enero",
			Location: "Parque del Retiro", Address: "Paseo de la Argentina, Madrid",
			Description: "Sesión gratuita al aire libre. Trae tu esterilla.",
			Image:       "/sunset-yoga-park.jpg", Organizer: "Yoga Madrid Community",
			Capacity: 60, Latitude: 40.4153, Longitude: -3.6845,
		},
	}
}
