package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreatePropertyRequest struct {
	Title        string         `json:"title" validate:"required,min=3,max=200"`
	Description  string         `json:"description,omitempty" validate:"omitempty,max=5000"`
	PropertyType string         `json:"propertyType" validate:"required,oneof=house apartment land commercial office"`
	Operation    string         `json:"operation" validate:"required,oneof=sale rent"`
	Status       string         `json:"status,omitempty" validate:"omitempty,oneof=available reserved sold rented inactive"`
	Price        float64        `json:"price" validate:"gte=0"`
	Currency     string         `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Bedrooms     *int           `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=50"`
	Bathrooms    *float64       `json:"bathrooms,omitempty" validate:"omitempty,gte=0,lte=50"`
	AreaM2       *float64       `json:"areaM2,omitempty" validate:"omitempty,gt=0"`
	Street       string         `json:"street,omitempty" validate:"omitempty,max=300"`
	City         string         `json:"city,omitempty" validate:"omitempty,max=120"`
	State        string         `json:"state,omitempty" validate:"omitempty,max=120"`
	PostalCode   string         `json:"postalCode,omitempty" validate:"omitempty,max=20"`
	Latitude     *float64       `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64       `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Features     map[string]any `json:"features,omitempty"`
	ImageURLs    []string       `json:"imageUrls,omitempty" validate:"omitempty,max=40,dive,url"`
	AgentID      *uuid.UUID     `json:"agentId,omitempty"`
}

type UpdatePropertyRequest struct {
	Title        *string        `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description  *string        `json:"description,omitempty" validate:"omitempty,max=5000"`
	PropertyType *string        `json:"propertyType,omitempty" validate:"omitempty,oneof=house apartment land commercial office"`
	Operation    *string        `json:"operation,omitempty" validate:"omitempty,oneof=sale rent"`
	Status       *string        `json:"status,omitempty" validate:"omitempty,oneof=available reserved sold rented inactive"`
	Price        *float64       `json:"price,omitempty" validate:"omitempty,gte=0"`
	Currency     *string        `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Bedrooms     *int           `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=50"`
	Bathrooms    *float64       `json:"bathrooms,omitempty" validate:"omitempty,gte=0,lte=50"`
	AreaM2       *float64       `json:"areaM2,omitempty" validate:"omitempty,gt=0"`
	Street       *string        `json:"street,omitempty" validate:"omitempty,max=300"`
	City         *string        `json:"city,omitempty" validate:"omitempty,max=120"`
	State        *string        `json:"state,omitempty" validate:"omitempty,max=120"`
	PostalCode   *string        `json:"postalCode,omitempty" validate:"omitempty,max=20"`
	Latitude     *float64       `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64       `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Features     map[string]any `json:"features,omitempty"`
	ImageURLs    []string       `json:"imageUrls,omitempty" validate:"omitempty,max=40,dive,url"`
	AgentID      *uuid.UUID     `json:"agentId,omitempty"`
}

type ListPropertiesRequest struct {
	PropertyType string   `form:"type" validate:"omitempty,oneof=house apartment land commercial office"`
	Operation    string   `form:"operation" validate:"omitempty,oneof=sale rent"`
	Status       string   `form:"status" validate:"omitempty,oneof=available reserved sold rented inactive"`
	City         string   `form:"city" validate:"omitempty,max=120"`
	MinPrice     *float64 `form:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice     *float64 `form:"maxPrice" validate:"omitempty,gte=0"`
	MinBedrooms  *int     `form:"bedrooms" validate:"omitempty,gte=0"`
	AgentID      string   `form:"agentId" validate:"omitempty,uuid"`
	Search       string   `form:"search" validate:"omitempty,max=100"`
	SortBy       string   `form:"sortBy" validate:"omitempty,oneof=createdAt price title areaM2"`
	SortOrder    string   `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page         int      `form:"page" validate:"omitempty,min=1"`
	PageSize     int      `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type Address struct {
	Street     *string `json:"street,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
}

type PropertyResponse struct {
	ID           uuid.UUID      `json:"id"`
	Title        string         `json:"title"`
	Description  *string        `json:"description,omitempty"`
	PropertyType string         `json:"propertyType"`
	Operation    string         `json:"operation"`
	Status       string         `json:"status"`
	Price        float64        `json:"price"`
	Currency     string         `json:"currency"`
	Bedrooms     *int           `json:"bedrooms,omitempty"`
	Bathrooms    *float64       `json:"bathrooms,omitempty"`
	AreaM2       *float64       `json:"areaM2,omitempty"`
	Address      Address        `json:"address"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	Features     map[string]any `json:"features"`
	ImageURLs    []string       `json:"imageUrls"`
	AgentID      *uuid.UUID     `json:"agentId,omitempty"`
	PublicURL    string         `json:"publicUrl"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type PropertyListResponse struct {
	Items      []PropertyResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}
