package repository

import (
	"context"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
)

type DestinationRepository interface {
	List(ctx context.Context) ([]domain.Destination, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Destination, error)
	Create(ctx context.Context, destination *domain.Destination) error
}

type PGDestinationRepository struct {
	db DB
}

func NewDestinationRepository(db DB) DestinationRepository {
	return &PGDestinationRepository{db: db}
}

const destinationColumns = `ds.id, ds.name, ds.country, ds.city, ds.description, ds.image_url, ds.created_at`

func destinationDest(d *domain.Destination) []any {
	return []any{&d.ID, &d.Name, &d.Country, &d.City, &d.Description, &d.ImageURL, &d.CreatedAt}
}

func (r *PGDestinationRepository) List(ctx context.Context) ([]domain.Destination, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `SELECT `+destinationColumns+`, (SELECT COUNT(*) FROM trips t WHERE t.destination_id = ds.id)
		FROM destinations ds ORDER BY ds.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var destinations []domain.Destination
	for rows.Next() {
		var d domain.Destination
		if err := rows.Scan(append(destinationDest(&d), &d.TripCount)...); err != nil {
			return nil, err
		}
		destinations = append(destinations, d)
	}
	return destinations, rows.Err()
}

func (r *PGDestinationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Destination, error) {
	var d domain.Destination
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT `+destinationColumns+` FROM destinations ds WHERE ds.id = $1`, id).
		Scan(destinationDest(&d)...)
	if err != nil {
		return nil, mapError(err, "destination")
	}
	return &d, nil
}

func (r *PGDestinationRepository) Create(ctx context.Context, d *domain.Destination) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := conn(ctx, r.db).QueryRow(ctx, `INSERT INTO destinations (id, name, country, city, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		d.ID, d.Name, d.Country, d.City, d.Description, d.ImageURL).Scan(&d.CreatedAt)
	return mapError(err, "destination")
}

var _ DestinationRepository = (*PGDestinationRepository)(nil)
