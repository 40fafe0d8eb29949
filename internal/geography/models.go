package geography

import "github.com/google/uuid"

// Country is a reference row, seeded outside the application
type Country struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	Code string    `json:"code" db:"code"`
}

// Region belongs to a country
type Region struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CountryID uuid.UUID `json:"country_id" db:"country_id"`
}

// City belongs to a region
type City struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	PostalCode string    `json:"postal_code" db:"postal_code"`
	RegionID   uuid.UUID `json:"region_id" db:"region_id"`
}

// CityDetail is the denormalized row used when rendering display names
type CityDetail struct {
	CityID      uuid.UUID `json:"city_id" db:"city_id"`
	CityName    string    `json:"city_name" db:"city_name"`
	RegionName  string    `json:"region_name" db:"region_name"`
	CountryName string    `json:"country_name" db:"country_name"`
}
