package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bellamoda/salon-bookings/internal/domain"
)

type ServiceRepository interface {
	FindExact(ctx context.Context, clientele domain.Clientele, cut, wash, color bool) (*domain.Service, error)
	ListByClientele(ctx context.Context, clientele domain.Clientele) ([]domain.Service, error)
	ListAll(ctx context.Context) ([]domain.Service, error)
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type serviceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

const serviceCols = `id, name, clientele, washing, cutting, coloring, price`

func scanService(row pgx.Row) (*domain.Service, error) {
	var s domain.Service
	err := row.Scan(&s.ID, &s.Name, &s.Clientele, &s.Washing, &s.Cutting, &s.Coloring, &s.Price)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectServices(rows pgx.Rows) ([]domain.Service, error) {
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Clientele, &s.Washing, &s.Cutting, &s.Coloring, &s.Price); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *serviceRepository) FindExact(ctx context.Context, clientele domain.Clientele, cut, wash, color bool) (*domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services
		WHERE clientele=$1 AND cutting=$2 AND washing=$3 AND coloring=$4`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanService(r.pool.QueryRow(ctx, q, clientele, cut, wash, color))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *serviceRepository) ListByClientele(ctx context.Context, clientele domain.Clientele) ([]domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services WHERE clientele=$1 ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, clientele)
	if err != nil {
		return nil, err
	}
	return collectServices(rows)
}

func (r *serviceRepository) ListAll(ctx context.Context) ([]domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectServices(rows)
}

func (r *serviceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanService(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return s, err
}
