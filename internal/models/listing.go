// internal/models/listing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Location struct {
	City          string `json:"city" bson:"city"`
	District      string `json:"district,omitempty" bson:"district,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty" bson:"streetAddress,omitempty"`
}

type Features struct {
	Bedrooms  int      `json:"bedrooms" bson:"bedrooms"`
	Bathrooms int      `json:"bathrooms" bson:"bathrooms"`
	AreaSqm   float64  `json:"areaSqm" bson:"areaSqm"`
	Furnished bool     `json:"furnished" bson:"furnished"`
	Amenities []string `json:"amenities,omitempty" bson:"amenities,omitempty"`
}

type OwnerContact struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// Listing is a single property listing's public-facing record. Once fetched
// by a client it is treated as immutable.
type Listing struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ListingID    string             `json:"id" bson:"listingId"`
	Title        string             `json:"title" bson:"title"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	Price        float64            `json:"price" bson:"price"`
	PropertyType string             `json:"propertyType" bson:"propertyType"`
	PetsAllowed  bool               `json:"petsAllowed" bson:"petsAllowed"`
	Location     Location           `json:"location" bson:"location"`
	Features     Features           `json:"features" bson:"features"`
	Photos       []string           `json:"photos,omitempty" bson:"photos,omitempty"`
	Owner        OwnerContact       `json:"owner" bson:"owner"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}
