package models

import "time"

// TrackingRecord ties a customer-facing tracking code to an appointment.
type TrackingRecord struct {
	Code                string     `json:"code" bson:"code"`
	AppointmentID       string     `json:"appointmentId" bson:"appointment_id"`
	CustomerID          string     `json:"customerId" bson:"customer_id"`
	ServiceType         string     `json:"serviceType" bson:"service_type"`
	VehicleInfo         string     `json:"vehicleInfo" bson:"vehicle_info"`
	CreatedAt           time.Time  `json:"createdAt" bson:"created_at"`
	Status              Status     `json:"status" bson:"status"`
	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty" bson:"estimated_completion,omitempty"`
	ActualCompletion    *time.Time `json:"actualCompletion,omitempty" bson:"actual_completion,omitempty"`
}

// TrackingRegistration is the caller-supplied part of a TrackingRecord.
// Code and CreatedAt are assigned by the registry.
type TrackingRegistration struct {
	AppointmentID       string     `json:"appointmentId"`
	CustomerID          string     `json:"customerId"`
	ServiceType         string     `json:"serviceType"`
	VehicleInfo         string     `json:"vehicleInfo"`
	Status              Status     `json:"status"`
	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
	ActualCompletion    *time.Time `json:"actualCompletion,omitempty"`
}

// TrackingStatistics summarises the registry contents.
type TrackingStatistics struct {
	Total      int `json:"total"`
	Scheduled  int `json:"scheduled"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	ThisMonth  int `json:"thisMonth"`
	ThisWeek   int `json:"thisWeek"`
}
