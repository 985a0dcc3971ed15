package models

import (
	"time"
)

// Coordinates is a map position of a voyage
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Voyage represents a sellable cruise itinerary
type Voyage struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	Price       int64       `json:"price"`
	Nights      int         `json:"nights"`
	Rating      float64     `json:"rating"`
	Ship        string      `json:"ship"`
	Itinerary   []string    `json:"itinerary"`
	Coordinates Coordinates `json:"coordinates"`
}

// Excursion represents an optional paid activity in a port
type Excursion struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Port        string `json:"port"`
	Duration    string `json:"duration"`
}

type CabinType string

const (
	CabinInterior  CabinType = "interior"
	CabinOceanview CabinType = "oceanview"
	CabinBalcony   CabinType = "balcony"
	CabinSuite     CabinType = "suite"
)

// Cabin represents a room on the deck plan
type Cabin struct {
	ID       string    `json:"id"`
	Type     CabinType `json:"type"`
	Price    int64     `json:"price"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	IsBooked bool      `json:"isBooked"`
}

type PackageTier string

const (
	PackageStandard PackageTier = "standard"
	PackagePlus     PackageTier = "plus"
	PackagePremier  PackageTier = "premier"
)

// Valid reports whether the tier is one of the known package tiers
func (t PackageTier) Valid() bool {
	switch t {
	case PackageStandard, PackagePlus, PackagePremier:
		return true
	}
	return false
}

// GuestInfo holds the lead guest details entered at checkout
type GuestInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// VoyageSummary is the part of a voyage stored with a booking
type VoyageSummary struct {
	Title  string `json:"title"`
	ID     string `json:"id"`
	Region string `json:"region"`
}

const BookingStatusConfirmed = "confirmed"

// Booking represents a completed checkout
type Booking struct {
	ID         string        `json:"id"`
	Date       time.Time     `json:"date"`
	Guest      GuestInfo     `json:"guest"`
	Voyage     VoyageSummary `json:"voyage"`
	Package    PackageTier   `json:"package"`
	Excursions int           `json:"excursions"`
	TotalPaid  int64         `json:"totalPaid"`
	Status     string        `json:"status"`
}

// AnalyticsEvent represents a tracked interaction
type AnalyticsEvent struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}
