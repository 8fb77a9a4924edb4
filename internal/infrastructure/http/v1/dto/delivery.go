package dto

import (
	"time"

	"tidewater/internal/core/id"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/fulfillment"
)

// UpdateDeliveryStatusRequest excludes cancelled: cancellation goes through the order.
type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing in_transit delivered failed"`
	Notes  string `json:"notes" binding:"max=2000"`
}

func (r *UpdateDeliveryStatusRequest) ToInput() fulfillment.UpdateDeliveryInput {
	return fulfillment.UpdateDeliveryInput{Status: delivery.Status(r.Status), Notes: r.Notes}
}

type AssignDeliveryRequest struct {
	EmployeeID string `json:"employeeId" binding:"required,uuid"`
}

func (r *AssignDeliveryRequest) Employee() id.ID { return mustID(r.EmployeeID) }

type CreateDeliveryRequest struct {
	ScheduledAt *time.Time `json:"scheduledAt"`
	Address     string     `json:"address" binding:"max=500"`
	Notes       string     `json:"notes" binding:"max=2000"`
}

func (r *CreateDeliveryRequest) ToInput() fulfillment.CreateDeliveryInput {
	return fulfillment.CreateDeliveryInput{ScheduledAt: r.ScheduledAt, Address: r.Address, Notes: r.Notes}
}
