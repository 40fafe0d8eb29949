package geography

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	ListCountries(ctx context.Context) ([]Country, error)
	ListRegions(ctx context.Context, countryID uuid.UUID) ([]Region, error)
	ListCities(ctx context.Context, regionID uuid.UUID) ([]City, error)
	GetCityByID(ctx context.Context, id uuid.UUID) (*City, error)
	GetCityDetail(ctx context.Context, id uuid.UUID) (*CityDetail, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListCountries(ctx context.Context) ([]Country, error) {
	var countries []Country
	err := r.db.SelectContext(ctx, &countries, "SELECT * FROM countries ORDER BY name")
	return countries, err
}

func (r *postgresRepository) ListRegions(ctx context.Context, countryID uuid.UUID) ([]Region, error) {
	var regions []Region
	err := r.db.SelectContext(ctx, &regions,
		"SELECT * FROM regions WHERE country_id = $1 ORDER BY name", countryID)
	return regions, err
}

func (r *postgresRepository) ListCities(ctx context.Context, regionID uuid.UUID) ([]City, error) {
	var cities []City
	err := r.db.SelectContext(ctx, &cities,
		"SELECT * FROM cities WHERE region_id = $1 ORDER BY name", regionID)
	return cities, err
}

func (r *postgresRepository) GetCityByID(ctx context.Context, id uuid.UUID) (*City, error) {
	var city City
	err := r.db.GetContext(ctx, &city, "SELECT * FROM cities WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &city, err
}

func (r *postgresRepository) GetCityDetail(ctx context.Context, id uuid.UUID) (*CityDetail, error) {
	query := `
		SELECT c.id AS city_id, c.name AS city_name,
		       r.name AS region_name, co.name AS country_name
		FROM cities c
		JOIN regions r ON r.id = c.region_id
		JOIN countries co ON co.id = r.country_id
		WHERE c.id = $1`
	var detail CityDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &detail, err
}
